package catalog

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"mangashelf/internal/auth"
	synchub "mangashelf/internal/sync"
	"mangashelf/pkg/models"
)

type Handler struct {
	Repo *Repo
	Hub  *synchub.Hub
}

func NewHandler(repo *Repo, hub *synchub.Hub) *Handler {
	return &Handler{Repo: repo, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.GET("/:id", h.getOne)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.remove)
}

// The owner never comes from the payload: a userId in the body is simply
// not part of the request shape, so it cannot be spoofed.
type createReq struct {
	Title           string   `json:"title" binding:"required"`
	Author          string   `json:"author"`
	Chapters        int      `json:"chapters"`
	Type            string   `json:"type" binding:"required"`
	Genre           []string `json:"genre" binding:"required,min=1,dive,required"`
	Rating          *int     `json:"rating"`
	ReadStatus      string   `json:"readStatus" binding:"required,readstatus"`
	ReadingPlatform string   `json:"readingPlatform"`
	ReleaseYear     *int     `json:"releaseYear"`
	PosterURL       string   `json:"posterUrl"`
	IsFavourite     bool     `json:"isFavourite"`
}

func (h *Handler) create(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if msg := checkRanges(req.Chapters, req.Rating, req.ReleaseYear); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	// binding sees whitespace-only genres as non-empty, so trim before checking
	genres := trimGenres(req.Genre)
	if len(genres) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "genre must not be empty"})
		return
	}

	now := time.Now().UTC()
	entry := models.MangaEntry{
		ID:              uuid.NewString(),
		Title:           strings.TrimSpace(req.Title),
		Author:          strings.TrimSpace(req.Author),
		Chapters:        req.Chapters,
		Type:            strings.TrimSpace(req.Type),
		Genre:           genres,
		Rating:          req.Rating,
		ReadStatus:      req.ReadStatus,
		ReadingPlatform: strings.TrimSpace(req.ReadingPlatform),
		ReleaseYear:     req.ReleaseYear,
		PosterURL:       strings.TrimSpace(req.PosterURL),
		IsFavourite:     req.IsFavourite,
		UserID:          claims.UserID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := h.Repo.Create(c.Request.Context(), entry); err != nil {
		log.Printf("create entry failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	h.broadcast(synchub.CatalogCreate, entry.ID, claims.UserID, entry.Title)
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) list(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	entries, err := h.Repo.List(c.Request.Context(), claims.UserID)
	if err != nil {
		log.Printf("list entries failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) getOne(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	entry, err := h.Repo.Get(c.Request.Context(), claims.UserID, id)
	if err != nil {
		log.Printf("get entry failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if entry == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "manga entry not found"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

type updateReq struct {
	Title           *string  `json:"title"`
	Author          *string  `json:"author"`
	Chapters        *int     `json:"chapters"`
	Type            *string  `json:"type"`
	Genre           []string `json:"genre"`
	Rating          *int     `json:"rating"`
	ReadStatus      *string  `json:"readStatus"`
	ReadingPlatform *string  `json:"readingPlatform"`
	ReleaseYear     *int     `json:"releaseYear"`
	PosterURL       *string  `json:"posterUrl"`
	IsFavourite     *bool    `json:"isFavourite"`
}

func (h *Handler) update(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title must not be empty"})
		return
	}
	if req.Type != nil && strings.TrimSpace(*req.Type) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must not be empty"})
		return
	}
	if req.Genre != nil && len(trimGenres(req.Genre)) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "genre must not be empty"})
		return
	}
	if req.ReadStatus != nil && !models.ValidReadStatus(*req.ReadStatus) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "readStatus must be one of: Plan to Read, Reading, Completed",
		})
		return
	}
	chapters := 0
	if req.Chapters != nil {
		chapters = *req.Chapters
	}
	if msg := checkRanges(chapters, req.Rating, req.ReleaseYear); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	fields := UpdateFields{
		Title:           req.Title,
		Author:          req.Author,
		Chapters:        req.Chapters,
		Type:            req.Type,
		Rating:          req.Rating,
		ReadStatus:      req.ReadStatus,
		ReadingPlatform: req.ReadingPlatform,
		ReleaseYear:     req.ReleaseYear,
		PosterURL:       req.PosterURL,
		IsFavourite:     req.IsFavourite,
	}
	if req.Genre != nil {
		fields.Genre = trimGenres(req.Genre)
	}

	id := strings.TrimSpace(c.Param("id"))
	ok, err := h.Repo.Update(c.Request.Context(), claims.UserID, id, fields)
	if err != nil {
		log.Printf("update entry failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "manga entry not found"})
		return
	}

	// return the canonical stored row including the bumped updated_at
	saved, err := h.Repo.Get(c.Request.Context(), claims.UserID, id)
	if err != nil || saved == nil {
		log.Printf("fetch saved entry failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch saved failed"})
		return
	}

	h.broadcast(synchub.CatalogUpdate, saved.ID, claims.UserID, saved.Title)
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) remove(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	ok, err := h.Repo.Delete(c.Request.Context(), claims.UserID, id)
	if err != nil {
		log.Printf("delete entry failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "manga entry not found"})
		return
	}

	h.broadcast(synchub.CatalogDelete, id, claims.UserID, "")
	c.JSON(http.StatusOK, gin.H{"message": "manga entry deleted"})
}

func (h *Handler) broadcast(eventType, entryID, userID, title string) {
	if h.Hub == nil {
		return
	}
	ev := synchub.CatalogEvent{
		Type:    eventType,
		EntryID: entryID,
		UserID:  userID,
		Title:   title,
		At:      time.Now().UTC(),
	}
	go h.Hub.BroadcastJSON(ev)
}

func checkRanges(chapters int, rating, releaseYear *int) string {
	if chapters < 0 {
		return "chapters must be >= 0"
	}
	if rating != nil && (*rating < 1 || *rating > 10) {
		return "rating must be between 1 and 10"
	}
	if releaseYear != nil && (*releaseYear < 1000 || *releaseYear > 9999) {
		return "releaseYear must be a four digit year"
	}
	return ""
}

func trimGenres(in []string) []string {
	out := make([]string, 0, len(in))
	for _, g := range in {
		g = strings.TrimSpace(g)
		if g != "" {
			out = append(out, g)
		}
	}
	return out
}

// bindError surfaces field-level detail for validation failures and a flat
// message for anything else (malformed JSON, wrong types).
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
}
