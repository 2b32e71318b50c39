package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/coreraft/raftcore/raft"
	"github.com/coreraft/raftcore/raft/store"
)

func newTestServer(t *testing.T) *raft.Server {
	t.Helper()
	s, err := raft.NewServer(raft.Config{Self: 1, Peers: []raft.ServerId{2, 3}}, store.NewMemStore(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func TestStatusRoute(t *testing.T) {
	srv := newTestServer(t)
	r := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	NewRouter(srv).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got statusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Id != 1 || got.Role != "Follower" {
		t.Fatalf("status = %+v, want id=1 role=Follower", got)
	}
}

func TestLogRoute(t *testing.T) {
	srv := newTestServer(t)
	if _, err := srv.StartElection(); err != nil {
		t.Fatalf("StartElection: %v", err)
	}
	if _, err := srv.ProposeCommand([]byte("x")); err == nil {
		t.Fatalf("ProposeCommand should fail: Candidate, not Leader")
	}

	r := httptest.NewRequest(http.MethodGet, "/log", nil)
	w := httptest.NewRecorder()
	NewRouter(srv).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got []entryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("log = %+v, want empty (election does not append entries)", got)
	}
}

func TestHealthzRoute(t *testing.T) {
	srv := newTestServer(t)
	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	NewRouter(srv).ServeHTTP(w, r)

	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q, want 200 ok", w.Code, w.Body.String())
	}
}
