package webui

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/dax8it/z-image-mps/history"
	"github.com/dax8it/z-image-mps/imagegen"
)

func newTestServer(t *testing.T) (*Server, *history.Repository) {
	t.Helper()

	store, err := history.Open(filepath.Join(t.TempDir(), "runs.sqlite"))
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	repo := history.NewRepository(store)

	cache := imagegen.NewPipelineCache(t.TempDir())
	t.Cleanup(func() { cache.Close() })
	processor := imagegen.NewProcessor(cache, nil)

	cfg := DefaultServerConfig()
	cfg.LoRADir = t.TempDir()
	srv, err := NewServer(cfg, processor, repo, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv, repo
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv.Handler(), "GET", "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status field = %q, want ok", resp["status"])
	}
}

func TestGenerateEndToEnd(t *testing.T) {
	srv, repo := newTestServer(t)

	rec := doJSON(t, srv.Handler(), "POST", "/api/generate", map[string]interface{}{
		"prompt": "a red bicycle",
		"seed":   "42",
		"device": "cpu",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp generateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Seed != 42 {
		t.Errorf("seed = %d, want 42", resp.Seed)
	}
	if resp.Width != 1024 || resp.Height != 1024 {
		t.Errorf("size = %dx%d, want 1024x1024", resp.Width, resp.Height)
	}
	if len(resp.Image) == 0 {
		t.Error("response image is empty")
	}
	if resp.ID == "" {
		t.Error("response ID is empty")
	}

	// Run should be recorded with a thumbnail.
	run, err := repo.GetRun(context.Background(), resp.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Seed != 42 {
		t.Errorf("recorded seed = %d, want 42", run.Seed)
	}
	if len(run.Thumbnail) == 0 {
		t.Error("recorded run has no thumbnail")
	}
}

func TestGenerateNumericSeedAccepted(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv.Handler(), "POST", "/api/generate", map[string]interface{}{
		"prompt": "numeric fields",
		"seed":   7,
		"steps":  4,
		"device": "cpu",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp generateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Seed != 7 {
		t.Errorf("seed = %d, want 7", resp.Seed)
	}
}

func TestGenerateRequiresPrompt(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv.Handler(), "POST", "/api/generate", map[string]interface{}{
		"seed": "1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGenerateInvalidBackendFails(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv.Handler(), "POST", "/api/generate", map[string]interface{}{
		"prompt":  "flash on cpu",
		"device":  "cpu",
		"backend": "flash2",
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error == "" {
		t.Error("error message is empty")
	}
}

func TestPresets(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv.Handler(), "GET", "/api/presets", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var entries []presetEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 6 {
		t.Fatalf("got %d presets, want 6", len(entries))
	}
	if entries[len(entries)-1].Name != "custom" {
		t.Errorf("last preset = %q, want custom", entries[len(entries)-1].Name)
	}
	found := false
	for _, e := range entries {
		if e.Name == "1:1" {
			found = true
			if e.Width != 1024 || e.Height != 1024 {
				t.Errorf("1:1 = %dx%d, want 1024x1024", e.Width, e.Height)
			}
		}
	}
	if !found {
		t.Error("1:1 preset missing")
	}
}

func TestLoRAs(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv.Handler(), "GET", "/api/loras", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var names []string
	if err := json.Unmarshal(rec.Body.Bytes(), &names); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(names) == 0 || names[0] != "None" {
		t.Errorf("loras = %v, want None first", names)
	}
}

func TestRunEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	// Generate one run first.
	rec := doJSON(t, h, "POST", "/api/generate", map[string]interface{}{
		"prompt": "history entry",
		"seed":   "5",
		"device": "cpu",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status = %d", rec.Code)
	}
	var gen generateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &gen); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = doJSON(t, h, "GET", "/api/runs", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list []runSummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].ID != gen.ID {
		t.Fatalf("list = %+v, want single run %s", list, gen.ID)
	}

	rec = doJSON(t, h, "GET", "/api/runs/"+gen.ID+"/image", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("image status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("image content type = %q", ct)
	}

	rec = doJSON(t, h, "DELETE", "/api/runs/"+gen.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doJSON(t, h, "GET", "/api/runs/"+gen.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestRunNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv.Handler(), "GET", "/api/runs/does-not-exist", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
