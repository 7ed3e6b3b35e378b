package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"mangashelf/pkg/models"
)

const defaultBaseURL = "http://localhost:8080"

type tokenData struct {
	Token string `json:"token"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

func main() {
	global := flag.NewFlagSet("mangashelf", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	tokenPath := global.String("token", defaultTokenPath(), "token file path")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := args[0]
	sub := ""
	if len(args) > 1 {
		sub = args[1]
	}

	client := &http.Client{Timeout: 15 * time.Second}

	switch cmd {
	case "auth":
		handleAuth(ctx, client, *baseURL, *tokenPath, sub, args[2:])
	case "manga":
		handleManga(ctx, client, *baseURL, *tokenPath, sub, args[2:])
	case "events":
		handleEvents(*baseURL, sub)
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	switch sub {
	case "register":
		fs := flag.NewFlagSet("auth register", flag.ExitOnError)
		username := fs.String("username", "", "username")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)
		if *username == "" || *password == "" {
			log.Fatal("username and password are required")
		}

		payload := map[string]string{"username": *username, "password": *password}
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/auth/register", "", payload, &resp); err != nil {
			log.Fatalf("register failed: %v", err)
		}
		printJSON(resp)
		fmt.Println("registered; run `mangashelf auth login` to get a token")
	case "login":
		fs := flag.NewFlagSet("auth login", flag.ExitOnError)
		username := fs.String("username", "", "username")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)
		if *username == "" || *password == "" {
			log.Fatal("username and password are required")
		}

		payload := map[string]string{"username": *username, "password": *password}
		var resp loginResponse
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/auth/login", "", payload, &resp); err != nil {
			log.Fatalf("login failed: %v", err)
		}
		if err := saveToken(tokenPath, resp.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Printf("logged in as %s\n", resp.Username)
	case "logout":
		// purely local: the server keeps no session state, so forgetting
		// the token is all logout means
		if err := clearToken(tokenPath); err != nil {
			log.Fatalf("logout failed: %v", err)
		}
		fmt.Println("logged out")
	default:
		log.Fatal("usage: mangashelf auth <register|login|logout>")
	}
}

func handleManga(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	token := mustToken(tokenPath)
	switch sub {
	case "list":
		var resp []models.MangaEntry
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/manga", token, nil, &resp); err != nil {
			log.Fatalf("list failed: %v", err)
		}
		printJSON(resp)
	case "get":
		fs := flag.NewFlagSet("manga get", flag.ExitOnError)
		id := fs.String("id", "", "entry id")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("entry id is required")
		}

		var resp models.MangaEntry
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/manga/"+url.PathEscape(*id), token, nil, &resp); err != nil {
			log.Fatalf("get failed: %v", err)
		}
		printJSON(resp)
	case "add":
		fs := flag.NewFlagSet("manga add", flag.ExitOnError)
		title := fs.String("title", "", "title")
		author := fs.String("author", "", "author")
		chapters := fs.Int("chapters", 0, "chapters read")
		typ := fs.String("type", "Manga", "type (Manga, Manhwa, ...)")
		genre := fs.String("genre", "", "comma-separated genres")
		rating := fs.Int("rating", 0, "rating 1-10 (0 = unset)")
		status := fs.String("status", models.StatusPlanToRead, "read status")
		platform := fs.String("platform", "", "reading platform")
		year := fs.Int("year", 0, "release year (0 = unset)")
		poster := fs.String("poster", "", "poster image URL")
		fav := fs.Bool("favourite", false, "mark as favourite")
		_ = fs.Parse(args)
		if *title == "" || *genre == "" {
			log.Fatal("title and genre are required")
		}

		payload := map[string]any{
			"title":       *title,
			"author":      *author,
			"chapters":    *chapters,
			"type":        *typ,
			"genre":       splitGenres(*genre),
			"readStatus":  *status,
			"isFavourite": *fav,
		}
		if *rating > 0 {
			payload["rating"] = *rating
		}
		if *platform != "" {
			payload["readingPlatform"] = *platform
		}
		if *year > 0 {
			payload["releaseYear"] = *year
		}
		if *poster != "" {
			payload["posterUrl"] = *poster
		}

		var resp models.MangaEntry
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/manga", token, payload, &resp); err != nil {
			log.Fatalf("add failed: %v", err)
		}
		printJSON(resp)
	case "update":
		fs := flag.NewFlagSet("manga update", flag.ExitOnError)
		id := fs.String("id", "", "entry id")
		chapters := fs.Int("chapters", -1, "chapters read (-1 = unchanged)")
		rating := fs.Int("rating", 0, "rating 1-10 (0 = unchanged)")
		status := fs.String("status", "", "read status (empty = unchanged)")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("entry id is required")
		}

		payload := map[string]any{}
		if *chapters >= 0 {
			payload["chapters"] = *chapters
		}
		if *rating > 0 {
			payload["rating"] = *rating
		}
		if *status != "" {
			payload["readStatus"] = *status
		}
		if len(payload) == 0 {
			log.Fatal("nothing to update")
		}

		var resp models.MangaEntry
		if err := doJSON(ctx, client, http.MethodPut, baseURL+"/manga/"+url.PathEscape(*id), token, payload, &resp); err != nil {
			log.Fatalf("update failed: %v", err)
		}
		printJSON(resp)
	case "favourite":
		fs := flag.NewFlagSet("manga favourite", flag.ExitOnError)
		id := fs.String("id", "", "entry id")
		off := fs.Bool("off", false, "remove favourite flag")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("entry id is required")
		}

		payload := map[string]any{"isFavourite": !*off}
		var resp models.MangaEntry
		if err := doJSON(ctx, client, http.MethodPut, baseURL+"/manga/"+url.PathEscape(*id), token, payload, &resp); err != nil {
			log.Fatalf("favourite failed: %v", err)
		}
		printJSON(resp)
	case "delete":
		fs := flag.NewFlagSet("manga delete", flag.ExitOnError)
		id := fs.String("id", "", "entry id")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("entry id is required")
		}

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodDelete, baseURL+"/manga/"+url.PathEscape(*id), token, nil, &resp); err != nil {
			log.Fatalf("delete failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: mangashelf manga <list|get|add|update|favourite|delete>")
	}
}

func handleEvents(baseURL, sub string) {
	if sub != "tail" {
		log.Fatal("usage: mangashelf events tail")
	}

	wsURL, err := websocketURL(baseURL, "/ws")
	if err != nil {
		log.Fatalf("bad base url: %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("dial %s: %v", wsURL, err)
	}
	defer conn.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		_ = conn.Close()
	}()

	log.Printf("tailing catalog events from %s", wsURL)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		fmt.Println(strings.TrimSpace(string(msg)))
	}
}

func doJSON(ctx context.Context, client *http.Client, method, endpoint, token string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: %s", method, endpoint, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("json: %v", err)
	}
	fmt.Println(string(b))
}

func splitGenres(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.mangashelf-token.json"
	}
	return filepath.Join(home, ".mangashelf", "token.json")
}

func saveToken(path, token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tokenData{Token: token}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var td tokenData
	if err := json.Unmarshal(data, &td); err != nil {
		return "", err
	}
	return strings.TrimSpace(td.Token), nil
}

func mustToken(path string) string {
	token, err := readToken(path)
	if err != nil {
		log.Fatalf("token not found, please login: %v", err)
	}
	if token == "" {
		log.Fatal("token empty, please login")
	}
	return token
}

func clearToken(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}).String(), nil
}

func printUsage() {
	fmt.Println("mangashelf <command> [subcommand] [flags]")
	fmt.Println("commands:")
	fmt.Println("  auth register|login|logout")
	fmt.Println("  manga list|get|add|update|favourite|delete")
	fmt.Println("  events tail")
}
