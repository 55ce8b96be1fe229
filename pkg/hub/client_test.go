package hub

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClientListFiles(t *testing.T) {
	mockFiles := []RepoFile{
		{Type: "file", Path: "model.safetensors", Size: 1000},
		{Type: "file", Path: "config.json", Size: 100},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/models/test-org/test-model/tree/main" {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(mockFiles)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	files, err := client.ListFiles(t.Context(), "test-org/test-model", "main")
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}

	if len(files) != 2 {
		t.Errorf("Expected 2 files, got %d", len(files))
	}
}

func TestClientListFilesDefaultRevision(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify the default revision is "main"
		if !strings.Contains(r.URL.Path, "/tree/main") {
			t.Errorf("Expected /tree/main in path, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]RepoFile{})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.ListFiles(t.Context(), "test/model", "")
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
}

func TestClientRequestHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer hf_test" {
			t.Errorf("Expected bearer token, got %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "test-agent" {
			t.Errorf("Expected custom user agent, got %q", got)
		}
		json.NewEncoder(w).Encode([]RepoFile{})
	}))
	defer server.Close()

	client := NewClient(
		WithBaseURL(server.URL),
		WithToken("hf_test"),
		WithUserAgent("test-agent"),
	)
	if _, err := client.ListFiles(t.Context(), "test/model", "main"); err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
}

func TestClientFetchShardIndex(t *testing.T) {
	index := ShardIndex{
		WeightMap: map[string]string{
			"layer.0.weight": "model-00001-of-00002.safetensors",
			"layer.1.weight": "model-00002-of-00002.safetensors",
			"layer.0.bias":   "model-00001-of-00002.safetensors",
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/test/model/resolve/main/model.safetensors.index.json" {
			json.NewEncoder(w).Encode(index)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	got, err := client.FetchShardIndex(t.Context(), "test/model", "main", "model.safetensors.index.json")
	if err != nil {
		t.Fatalf("FetchShardIndex failed: %v", err)
	}

	shards := got.ShardSet()
	want := []string{"model-00001-of-00002.safetensors", "model-00002-of-00002.safetensors"}
	if len(shards) != len(want) {
		t.Fatalf("Expected %d shards, got %d", len(want), len(shards))
	}
	for i := range want {
		if shards[i] != want[i] {
			t.Errorf("ShardSet()[%d] = %q, want %q", i, shards[i], want[i])
		}
	}
}

func TestClientNotFoundError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	_, err := client.ListFiles(t.Context(), "absent/model", "main")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("Expected NotFoundError, got %T", err)
	}
}

func TestClientAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	_, err := client.ListFiles(t.Context(), "private/model", "main")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Errorf("Expected AuthError, got %T", err)
	}
}

func TestClientRateLimitError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	_, err := client.ListFiles(t.Context(), "busy/model", "main")
	var rateLimited *RateLimitError
	if !errors.As(err, &rateLimited) {
		t.Errorf("Expected RateLimitError, got %T", err)
	}
}

func TestClientTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithTimeout(20*time.Millisecond))

	_, err := client.ListFiles(t.Context(), "slow/model", "main")
	if err == nil {
		t.Fatal("Expected timeout error, got nil")
	}
}

func TestResolveURL(t *testing.T) {
	client := NewClient(WithBaseURL("https://example.test"))

	tests := []struct {
		name     string
		revision string
		filename string
		want     string
	}{
		{"explicit revision", "main", "model.safetensors", "https://example.test/org/model/resolve/main/model.safetensors"},
		{"default revision", "", "model.safetensors", "https://example.test/org/model/resolve/main/model.safetensors"},
		{"nested path", "v2", "weights/shard-1.safetensors", "https://example.test/org/model/resolve/v2/weights/shard-1.safetensors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := client.ResolveURL("org/model", tt.revision, tt.filename); got != tt.want {
				t.Errorf("ResolveURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
