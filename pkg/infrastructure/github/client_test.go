package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type fakeAPI struct {
	mu      sync.Mutex
	created map[string]any
	puts    map[string]map[string]any
}

func newFakeAPI(t *testing.T) (*httptest.Server, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{puts: map[string]map[string]any{}}
	mux := http.NewServeMux()

	writeJSON := func(w http.ResponseWriter, status int, body any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}

	mux.HandleFunc("GET /api/v3/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-123" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Bad credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"login": "octo"})
	})
	mux.HandleFunc("POST /api/v3/user/repos", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		api.mu.Lock()
		api.created = body
		api.mu.Unlock()
		writeJSON(w, http.StatusCreated, map[string]any{
			"name":           body["name"],
			"html_url":       "https://ghe.example/octo/" + body["name"].(string),
			"default_branch": "main",
		})
	})
	mux.HandleFunc("GET /api/v3/repos/octo/task-x/contents/{path}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("path") == "LICENSE" {
			writeJSON(w, http.StatusOK, map[string]string{"type": "file", "name": "LICENSE", "sha": "old-sha"})
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
	})
	mux.HandleFunc("PUT /api/v3/repos/octo/task-x/contents/{path}", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		api.mu.Lock()
		api.puts[r.PathValue("path")] = body
		api.mu.Unlock()
		writeJSON(w, http.StatusCreated, map[string]any{"commit": map[string]string{"sha": "c1"}})
	})
	mux.HandleFunc("GET /api/v3/repos/octo/task-x/branches/main", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"name": "main", "commit": map[string]string{"sha": "deadbeef"}})
	})
	mux.HandleFunc("POST /api/v3/repos/octo/task-x/pages", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "GitHub Pages is already enabled."})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, api
}

func TestClientFlow(t *testing.T) {
	srv, api := newFakeAPI(t)
	ctx := context.Background()

	client, err := NewClient(ctx, Config{Token: "token-123", APIURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if client.Owner() != "octo" {
		t.Fatalf("expected owner resolved from token, got %q", client.Owner())
	}
	if client.BaseURL() != srv.URL {
		t.Fatalf("expected web url %q, got %q", srv.URL, client.BaseURL())
	}

	repo, err := client.CreateRepository(ctx, "task-x", "Auto-generated project for: demo")
	if err != nil {
		t.Fatalf("CreateRepository returned error: %v", err)
	}
	if repo.Owner != "octo" || repo.Name != "task-x" || repo.DefaultBranch != "main" {
		t.Fatalf("unexpected repository %+v", repo)
	}
	api.mu.Lock()
	created := api.created
	api.mu.Unlock()
	if created["private"] != false || created["description"] != "Auto-generated project for: demo" {
		t.Fatalf("unexpected create payload %v", created)
	}

	if err := client.CommitFile(ctx, repo, "README.md", "Add README.md", []byte("# hi")); err != nil {
		t.Fatalf("CommitFile(create) returned error: %v", err)
	}
	if err := client.CommitFile(ctx, repo, "LICENSE", "Add LICENSE", []byte("MIT")); err != nil {
		t.Fatalf("CommitFile(update) returned error: %v", err)
	}

	api.mu.Lock()
	readme, license := api.puts["README.md"], api.puts["LICENSE"]
	api.mu.Unlock()
	if _, hasSHA := readme["sha"]; hasSHA {
		t.Fatalf("create should not send a sha: %v", readme)
	}
	content, _ := base64.StdEncoding.DecodeString(readme["content"].(string))
	if string(content) != "# hi" {
		t.Fatalf("unexpected committed content %q", content)
	}
	if license["sha"] != "old-sha" {
		t.Fatalf("update should carry the existing sha: %v", license)
	}

	sha, err := client.GetLatestCommit(ctx, repo, "main")
	if err != nil || sha != "deadbeef" {
		t.Fatalf("GetLatestCommit = %q, %v", sha, err)
	}
	if err := client.EnablePages(ctx, repo, "main"); err != nil {
		t.Fatalf("EnablePages should accept an already enabled site, got %v", err)
	}
}

func TestNewClientRequiresToken(t *testing.T) {
	if _, err := NewClient(context.Background(), Config{}); err != ErrMissingToken {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestWebURLFromAPI(t *testing.T) {
	tests := map[string]string{
		"https://ghe.example/api/v3/": "https://ghe.example",
		"https://ghe.example/api/v3":  "https://ghe.example",
		"https://api.github.com/":     "https://github.com",
	}
	for in, want := range tests {
		if got := webURLFromAPI(in); got != want {
			t.Errorf("webURLFromAPI(%q) = %q, want %q", in, got, want)
		}
	}
}
