package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"mangashelf/pkg/database"
)

func main() {
	var (
		usersOut   = flag.String("users", "data/users.csv", "output CSV path for users")
		entriesOut = flag.String("entries", "data/manga_entries.csv", "output CSV path for catalog entries")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := exportUsers(ctx, db, *usersOut); err != nil {
		log.Fatalf("export users failed: %v", err)
	}
	if err := exportEntries(ctx, db, *entriesOut); err != nil {
		log.Fatalf("export entries failed: %v", err)
	}

	log.Printf("exported users to %s and catalog entries to %s", *usersOut, *entriesOut)
}

func exportUsers(ctx context.Context, db *sql.DB, outPath string) error {
	w, f, err := openWriter(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	// password hashes deliberately stay out of the export
	if err := w.Write([]string{"id", "username", "created_at"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, username, created_at FROM users ORDER BY created_at
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id, username string
		var created time.Time
		if err := rows.Scan(&id, &username, &created); err != nil {
			return err
		}
		if err := w.Write([]string{id, username, created.UTC().Format(time.RFC3339)}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func exportEntries(ctx context.Context, db *sql.DB, outPath string) error {
	w, f, err := openWriter(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := w.Write([]string{
		"id", "user_id", "title", "author", "chapters", "type", "genre",
		"rating", "read_status", "reading_platform", "release_year",
		"poster_url", "is_favourite", "created_at", "updated_at",
	}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, user_id, title, author, chapters, type, genre, rating,
		       read_status, reading_platform, release_year, poster_url,
		       is_favourite, created_at, updated_at
		FROM manga_entries
		ORDER BY user_id, created_at
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, userID, title, readStatus string
			author, platform, posterURL   sql.NullString
			genreJSON                     string
			chapters                      int
			typ                           string
			rating, year                  sql.NullInt64
			fav                           bool
			created, updated              time.Time
		)
		if err := rows.Scan(
			&id, &userID, &title, &author, &chapters, &typ, &genreJSON, &rating,
			&readStatus, &platform, &year, &posterURL, &fav, &created, &updated,
		); err != nil {
			return err
		}

		var genres []string
		_ = json.Unmarshal([]byte(genreJSON), &genres)

		if err := w.Write([]string{
			id, userID, title, author.String,
			strconv.Itoa(chapters), typ, strings.Join(genres, ","),
			nullInt(rating), readStatus, platform.String, nullInt(year),
			posterURL.String, strconv.FormatBool(fav),
			created.UTC().Format(time.RFC3339), updated.UTC().Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func openWriter(outPath string) (*csv.Writer, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, err
	}
	return csv.NewWriter(f), f, nil
}

func nullInt(v sql.NullInt64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatInt(v.Int64, 10)
}
