package api

import (
	"github.com/google/uuid"

	"github.com/matzehuels/conceptgraph/pkg/graph"
	"github.com/matzehuels/conceptgraph/pkg/tour"

	cgerrors "github.com/matzehuels/conceptgraph/pkg/errors"
)

// session is one running tour. graph is only touched while holding the
// controller's lock.
type session struct {
	id        string
	graphID   string
	graphName string
	graph     *graph.Graph
	ctrl      *tour.Guarded
	lastUsed  uint64
}

// tourResponse is the JSON view of a session.
type tourResponse struct {
	ID      string `json:"id"`
	GraphID string `json:"graph_id,omitempty"`
	tour.Snapshot
	Current string `json:"current,omitempty"`
}

func (sess *session) response() tourResponse {
	resp := tourResponse{ID: sess.id, GraphID: sess.graphID}
	_ = sess.ctrl.Do(func(c *tour.Controller) error {
		resp.Snapshot = c.Snapshot()
		resp.Current, _ = c.Current()
		return nil
	})
	return resp
}

func (s *Server) addSession(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.id = uuid.NewString()
	sess.lastUsed = s.tick()
	for len(s.sessions) >= s.maxSessions {
		s.evictOldest()
	}
	s.sessions[sess.id] = sess
}

func (s *Server) evictOldest() {
	var oldest *session
	for _, sess := range s.sessions {
		if oldest == nil || sess.lastUsed < oldest.lastUsed {
			oldest = sess
		}
	}
	if oldest != nil {
		delete(s.sessions, oldest.id)
		s.logger.Debug("evicted tour session", "session", oldest.id)
	}
}

func (s *Server) session(sid string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sid]
	if !ok {
		return nil, cgerrors.New(cgerrors.ErrCodeSessionNotFound, "tour session %s not found", sid)
	}
	sess.lastUsed = s.tick()
	return sess, nil
}

func (s *Server) endSession(sid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sid]; !ok {
		return false
	}
	delete(s.sessions, sid)
	return true
}

// tick returns the next use stamp. Callers hold s.mu.
func (s *Server) tick() uint64 {
	s.clock++
	return s.clock
}

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
