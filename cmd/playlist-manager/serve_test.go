package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.etcd.io/bbolt"

	"github.com/alorle/playlist-manager/internal/config"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	db, err := bbolt.Open(filepath.Join(t.TempDir(), "test.db"), 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	a, err := newApp(config.Default(), db, discardLogger())
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	return a
}

func TestNewApp_Routes(t *testing.T) {
	a := newTestApp(t)

	tests := []struct {
		method string
		target string
		status int
	}{
		{method: http.MethodGet, target: "/health", status: http.StatusOK},
		{method: http.MethodGet, target: "/metrics", status: http.StatusOK},
		{method: http.MethodGet, target: "/playlist", status: http.StatusOK},
		{method: http.MethodGet, target: "/playlist/options", status: http.StatusOK},
		{method: http.MethodPost, target: "/playlist/check", status: http.StatusUnprocessableEntity},
		{method: http.MethodGet, target: "/playlist/probes?url=http://a", status: http.StatusOK},
		{method: http.MethodGet, target: "/playlist/export", status: http.StatusUnprocessableEntity},
		{method: http.MethodGet, target: "/unknown", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			rec := httptest.NewRecorder()
			a.handler.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestNewApp_ImportAndExport(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "#EXTM3U\n#EXTINF:-1 group-title=\"Music\",MTV\nhttp://s/mtv\n")
	}))
	defer upstream.Close()

	a := newTestApp(t)

	body, _ := json.Marshal(map[string]string{"url": upstream.URL + "/music.m3u"})
	req := httptest.NewRequest(http.MethodPost, "/playlist/import", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("import: expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/playlist/export?format=m3u", nil)
	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "group-title=\"Music\" tvg-logo=\"\",MTV\nhttp://s/mtv\n") {
		t.Errorf("unexpected export %q", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	if !strings.Contains(rec.Body.String(), "playlist_imports_total") {
		t.Error("metrics should expose playlist_imports_total")
	}
}

func TestNewApp_ImportFailureLeavesStoreUnchanged(t *testing.T) {
	var calls atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) > 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, "#EXTM3U\n#EXTINF:-1,MTV\nhttp://s/mtv\n")
	}))
	defer upstream.Close()

	a := newTestApp(t)

	importList := func() *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]string{"url": upstream.URL + "/music.m3u"})
		req := httptest.NewRequest(http.MethodPost, "/playlist/import", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		a.handler.ServeHTTP(rec, req)
		return rec
	}
	playlist := func() (total, historyLen int) {
		rec := httptest.NewRecorder()
		a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/playlist", nil))
		var resp struct {
			Total      int `json:"total"`
			HistoryLen int `json:"history_len"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode playlist: %v", err)
		}
		return resp.Total, resp.HistoryLen
	}

	if rec := importList(); rec.Code != http.StatusOK {
		t.Fatalf("first import: expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	wantTotal, wantHistory := playlist()

	// The first body is now cached, but stale fallback is off by default.
	if rec := importList(); rec.Code != http.StatusBadGateway {
		t.Fatalf("second import: expected status 502, got %d: %s", rec.Code, rec.Body.String())
	}
	gotTotal, gotHistory := playlist()
	if gotTotal != wantTotal || gotHistory != wantHistory {
		t.Errorf("store changed after failed import: total %d -> %d, history %d -> %d",
			wantTotal, gotTotal, wantHistory, gotHistory)
	}
	if wantTotal != 1 {
		t.Errorf("expected 1 channel after first import, got %d", wantTotal)
	}
}

func TestConfigCmd(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PROBE_BATCH_SIZE", "7")
	t.Chdir(t.TempDir())

	var stdout bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"config"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(stdout.String(), "probeBatchSize: 7") {
		t.Errorf("unexpected output:\n%s", stdout.String())
	}
}
