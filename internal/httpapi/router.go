// Package httpapi exposes a small read-only debug surface over a
// raft.Server: role, term, and commit state for operators, not the
// client-facing command-submission endpoint, which lives elsewhere as a
// separate collaborator.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/coreraft/raftcore/raft"
)

// NewRouter builds the debug HTTP surface for server.
func NewRouter(server *raft.Server) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, statusView(server.Status()))
	})

	r.GET("/log", func(c *gin.Context) {
		c.JSON(http.StatusOK, logView(server.LogEntries()))
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet},
	}).Handler(r)
}

type statusResponse struct {
	Id          int64  `json:"id"`
	Role        string `json:"role"`
	CurrentTerm int64  `json:"currentTerm"`
	VotedFor    *int64 `json:"votedFor"`
	LogLength   int64  `json:"logLength"`
	CommitIndex int64  `json:"commitIndex"`
	LastApplied int64  `json:"lastApplied"`
}

type entryResponse struct {
	Index int64 `json:"index"`
	Term  int64 `json:"term"`
}

func logView(entries []raft.IndexedEntry) []entryResponse {
	out := make([]entryResponse, len(entries))
	for i, ie := range entries {
		out[i] = entryResponse{Index: int64(ie.Index), Term: int64(ie.Entry.Term)}
	}
	return out
}

func statusView(s raft.Snapshot) statusResponse {
	var votedFor *int64
	if s.VotedFor != nil {
		v := int64(*s.VotedFor)
		votedFor = &v
	}
	return statusResponse{
		Id:          int64(s.Id),
		Role:        s.Role.String(),
		CurrentTerm: int64(s.CurrentTerm),
		VotedFor:    votedFor,
		LogLength:   int64(s.LogLength),
		CommitIndex: int64(s.CommitIndex),
		LastApplied: int64(s.LastApplied),
	}
}
