package sync

import "time"

// Catalog event types pushed to connected listeners.
const (
	CatalogCreate = "catalog.create"
	CatalogUpdate = "catalog.update"
	CatalogDelete = "catalog.delete"
)

// CatalogEvent announces a change to a user's catalog. It carries ids and
// the entry title only; no credential material ever goes through the hub.
type CatalogEvent struct {
	Type    string    `json:"type"`
	EntryID string    `json:"entry_id"`
	UserID  string    `json:"user_id"`
	Title   string    `json:"title,omitempty"`
	At      time.Time `json:"at"`
}
