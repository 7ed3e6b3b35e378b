package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mangashelf/pkg/models"
)

// Repo persists manga entries. Every query that touches a single entry
// filters by both id and owner in one statement, so "belongs to someone
// else" and "does not exist" are the same result and there is no window
// between an ownership check and the write.
type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const entryColumns = `
	id, user_id, title, author, chapters, type, genre, rating,
	read_status, reading_platform, release_year, poster_url,
	is_favourite, created_at, updated_at
`

// UpdateFields carries a partial update; nil means "leave unchanged".
type UpdateFields struct {
	Title           *string
	Author          *string
	Chapters        *int
	Type            *string
	Genre           []string
	Rating          *int
	ReadStatus      *string
	ReadingPlatform *string
	ReleaseYear     *int
	PosterURL       *string
	IsFavourite     *bool
}

func (r *Repo) Create(ctx context.Context, e models.MangaEntry) error {
	genreJSON, err := json.Marshal(e.Genre)
	if err != nil {
		return fmt.Errorf("marshal genre: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO manga_entries (
			id, user_id, title, author, chapters, type, genre, rating,
			read_status, reading_platform, release_year, poster_url,
			is_favourite, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.UserID, e.Title, nullStr(e.Author), e.Chapters, e.Type, string(genreJSON),
		nullIntPtr(e.Rating), e.ReadStatus, nullStr(e.ReadingPlatform),
		nullIntPtr(e.ReleaseYear), nullStr(e.PosterURL), e.IsFavourite,
		e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, userID, id string) (*models.MangaEntry, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM manga_entries
		WHERE id = ? AND user_id = ?
	`, id, userID)

	e, err := scanEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return e, nil
}

func (r *Repo) List(ctx context.Context, userID string) ([]models.MangaEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM manga_entries
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	out := make([]models.MangaEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry row: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// Update applies the non-nil fields to the caller's entry. Returns false
// when no row matched (absent or owned by someone else).
func (r *Repo) Update(ctx context.Context, userID, id string, f UpdateFields) (bool, error) {
	var set []string
	var args []any

	add := func(col string, v any) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}

	if f.Title != nil {
		add("title", *f.Title)
	}
	if f.Author != nil {
		add("author", nullStr(*f.Author))
	}
	if f.Chapters != nil {
		add("chapters", *f.Chapters)
	}
	if f.Type != nil {
		add("type", *f.Type)
	}
	if f.Genre != nil {
		genreJSON, err := json.Marshal(f.Genre)
		if err != nil {
			return false, fmt.Errorf("marshal genre: %w", err)
		}
		add("genre", string(genreJSON))
	}
	if f.Rating != nil {
		add("rating", *f.Rating)
	}
	if f.ReadStatus != nil {
		add("read_status", *f.ReadStatus)
	}
	if f.ReadingPlatform != nil {
		add("reading_platform", nullStr(*f.ReadingPlatform))
	}
	if f.ReleaseYear != nil {
		add("release_year", *f.ReleaseYear)
	}
	if f.PosterURL != nil {
		add("poster_url", nullStr(*f.PosterURL))
	}
	if f.IsFavourite != nil {
		add("is_favourite", *f.IsFavourite)
	}

	if len(set) == 0 {
		// nothing to change; still report whether the entry is the caller's
		e, err := r.Get(ctx, userID, id)
		if err != nil {
			return false, err
		}
		return e != nil, nil
	}

	set = append(set, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id, userID)

	res, err := r.DB.ExecContext(ctx, `
		UPDATE manga_entries
		SET `+strings.Join(set, ", ")+`
		WHERE id = ? AND user_id = ?
	`, args...)
	if err != nil {
		return false, fmt.Errorf("update entry: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) Delete(ctx context.Context, userID, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM manga_entries
		WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete entry: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.MangaEntry, error) {
	var (
		e         models.MangaEntry
		author    sql.NullString
		genreJSON string
		rating    sql.NullInt64
		platform  sql.NullString
		year      sql.NullInt64
		posterURL sql.NullString
		created   time.Time
		updated   time.Time
	)

	if err := row.Scan(
		&e.ID, &e.UserID, &e.Title, &author, &e.Chapters, &e.Type, &genreJSON, &rating,
		&e.ReadStatus, &platform, &year, &posterURL, &e.IsFavourite, &created, &updated,
	); err != nil {
		return nil, err
	}

	e.Author = author.String
	e.ReadingPlatform = platform.String
	e.PosterURL = posterURL.String
	if rating.Valid {
		v := int(rating.Int64)
		e.Rating = &v
	}
	if year.Valid {
		v := int(year.Int64)
		e.ReleaseYear = &v
	}
	e.CreatedAt = created
	e.UpdatedAt = updated

	if err := json.Unmarshal([]byte(genreJSON), &e.Genre); err != nil {
		return nil, fmt.Errorf("decode genre: %w", err)
	}
	return &e, nil
}

func nullStr(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func nullIntPtr(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
