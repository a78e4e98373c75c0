package github

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/msoria/hookfetch/internal/provider"
)

func TestFetchFile(t *testing.T) {
	// "print(1)" base64-encoded, as the contents API returns it.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/octo/demo/contents/src/x.py" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if ref := r.URL.Query().Get("ref"); ref != "abc123" {
			t.Errorf("ref = %q, want %q", ref, "abc123")
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
			t.Errorf("Authorization = %q, want bearer token", auth)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"type":     "file",
			"encoding": "base64",
			"name":     "x.py",
			"path":     "src/x.py",
			"sha":      "f1a2b3c4",
			"size":     8,
			"content":  "cHJpbnQoMSk=",
		})
	}))
	defer srv.Close()

	p := New("test-token", "octo", "demo", WithBaseURL(srv.URL))

	file, err := p.FetchFile(context.Background(), "src/x.py", "abc123")
	if err != nil {
		t.Fatalf("FetchFile() error = %v", err)
	}

	if file.Content != "print(1)" {
		t.Errorf("Content = %q, want %q", file.Content, "print(1)")
	}
	if file.SHA != "f1a2b3c4" {
		t.Errorf("SHA = %q, want %q", file.SHA, "f1a2b3c4")
	}
	if file.Size != 8 {
		t.Errorf("Size = %d, want 8", file.Size)
	}
	if file.Path != "src/x.py" {
		t.Errorf("Path = %q, want %q", file.Path, "src/x.py")
	}
}

func TestFetchFile_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "Not Found"})
	}))
	defer srv.Close()

	p := New("test-token", "octo", "demo", WithBaseURL(srv.URL))

	_, err := p.FetchFile(context.Background(), "gone.py", "abc123")
	if !errors.Is(err, provider.ErrNotFound) {
		t.Errorf("FetchFile() error = %v, want ErrNotFound", err)
	}
}

func TestFetchFile_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := New("test-token", "octo", "demo", WithBaseURL(srv.URL))

	_, err := p.FetchFile(context.Background(), "x.py", "abc123")
	if err == nil {
		t.Fatal("FetchFile() expected error for server fault, got nil")
	}
	if errors.Is(err, provider.ErrNotFound) {
		t.Error("server fault should not be reported as not found")
	}
}

func TestRegisterWebhook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/repos/octo/demo/hooks" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
			return
		}

		var hook struct {
			Events []string       `json:"events"`
			Config map[string]any `json:"config"`
		}
		if err := json.NewDecoder(r.Body).Decode(&hook); err != nil {
			t.Fatalf("decoding hook body: %v", err)
		}
		if len(hook.Events) != 1 || hook.Events[0] != "push" {
			t.Errorf("events = %v, want [push]", hook.Events)
		}
		if hook.Config["url"] != "https://example.com/webhook" {
			t.Errorf("config url = %v", hook.Config["url"])
		}
		if hook.Config["secret"] != "s3cret" {
			t.Errorf("config secret = %v", hook.Config["secret"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": 42})
	}))
	defer srv.Close()

	p := New("test-token", "octo", "demo", WithBaseURL(srv.URL))

	id, err := p.RegisterWebhook(context.Background(), "https://example.com/webhook", "s3cret")
	if err != nil {
		t.Fatalf("RegisterWebhook() error = %v", err)
	}
	if id != 42 {
		t.Errorf("id = %d, want 42", id)
	}
}
