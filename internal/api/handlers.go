package api

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/conceptgraph/pkg/buildinfo"
	"github.com/matzehuels/conceptgraph/pkg/graph"
	"github.com/matzehuels/conceptgraph/pkg/httputil"
	"github.com/matzehuels/conceptgraph/pkg/observability"
	"github.com/matzehuels/conceptgraph/pkg/outline"
	"github.com/matzehuels/conceptgraph/pkg/store"
	"github.com/matzehuels/conceptgraph/pkg/tour"

	cgerrors "github.com/matzehuels/conceptgraph/pkg/errors"
)

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if status := httputil.WriteError(w, err); status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
}

func graphErr(err error, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return cgerrors.Wrap(cgerrors.ErrCodeGraphNotFound, err, "graph %s not found", id)
	}
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

// =============================================================================
// Graphs
// =============================================================================

type saveGraphRequest struct {
	ID    string       `json:"id,omitempty"`
	Name  string       `json:"name,omitempty"`
	Graph *graph.Graph `json:"graph"`
}

type pathResponse struct {
	ID      string   `json:"id"`
	Version string   `json:"version"`
	Path    []string `json:"path"`
}

func (s *Server) handleListGraphs(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListGraphs(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if list == nil {
		list = []store.Summary{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"graphs": list})
}

func (s *Server) handleSaveGraph(w http.ResponseWriter, r *http.Request) {
	var req saveGraphRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	rec := &store.GraphRecord{ID: req.ID, Name: req.Name, Graph: req.Graph}
	if err := s.store.SaveGraph(r.Context(), rec); err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info("graph saved", "id", rec.ID, "nodes", rec.Graph.Len())
	httputil.WriteJSON(w, http.StatusCreated, store.Summarize(rec))
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.store.LoadGraph(r.Context(), id)
	if err != nil {
		s.fail(w, r, graphErr(err, id))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteGraph(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteGraph(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGraphPath(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, path, err := store.TourPath(r.Context(), s.store, s.builder, id)
	if err != nil {
		s.fail(w, r, graphErr(err, id))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pathResponse{ID: rec.ID, Version: rec.Version, Path: path})
}

// =============================================================================
// Tours
// =============================================================================

type startTourRequest struct {
	GraphID string       `json:"graph_id,omitempty"`
	Graph   *graph.Graph `json:"graph,omitempty"`
}

type jumpRequest struct {
	Index *int `json:"index"`
}

type moveRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

func (s *Server) handleStartTour(w http.ResponseWriter, r *http.Request) {
	var req startTourRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	sess, path, err := s.prepareSession(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	ctrl := tour.NewController(s.builder, nil)
	if !ctrl.StartPath(path) {
		s.fail(w, r, cgerrors.New(cgerrors.ErrCodeEmptyGraph, "graph has no nodes to tour"))
		return
	}
	sess.ctrl = tour.NewGuarded(ctrl)
	s.addSession(sess)
	observability.Tour().OnStep(r.Context(), "start", 0, true)
	s.logger.Info("tour started", "session", sess.id, "graph", sess.graphID, "stops", len(path))
	httputil.WriteJSON(w, http.StatusCreated, sess.response())
}

func (s *Server) prepareSession(ctx context.Context, req startTourRequest) (*session, []string, error) {
	switch {
	case req.GraphID != "" && req.Graph != nil:
		return nil, nil, cgerrors.New(cgerrors.ErrCodeInvalidInput, "give either graph_id or graph, not both")
	case req.GraphID != "":
		if s.store == nil {
			return nil, nil, cgerrors.New(cgerrors.ErrCodeUnsupported, "no graph store configured")
		}
		rec, path, err := store.TourPath(ctx, s.store, s.builder, req.GraphID)
		if err != nil {
			return nil, nil, graphErr(err, req.GraphID)
		}
		return &session{graphID: rec.ID, graphName: rec.Name, graph: rec.Graph}, path, nil
	case req.Graph != nil:
		if err := req.Graph.Validate(); err != nil {
			return nil, nil, err
		}
		return &session{graph: req.Graph}, s.builder.Path(ctx, "", req.Graph), nil
	default:
		return nil, nil, cgerrors.New(cgerrors.ErrCodeInvalidInput, "graph_id or graph is required")
	}
}

func (s *Server) handleGetTour(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(chi.URLParam(r, "sid"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sess.response())
}

func (s *Server) handleEndTour(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")
	if !s.endSession(sid) {
		s.fail(w, r, cgerrors.New(cgerrors.ErrCodeSessionNotFound, "tour session %s not found", sid))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStep(op string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.session(chi.URLParam(r, "sid"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		err = sess.ctrl.Do(func(c *tour.Controller) error {
			if !c.Active() && op != "stop" {
				return cgerrors.New(cgerrors.ErrCodeTourInactive, "tour is not active")
			}
			switch op {
			case "next":
				c.Next()
			case "prev":
				c.Prev()
			case "stop":
				c.Stop()
			}
			cur, active := c.Cursor()
			observability.Tour().OnStep(r.Context(), op, cur, active)
			return nil
		})
		if err != nil {
			s.fail(w, r, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, sess.response())
	}
}

func (s *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(chi.URLParam(r, "sid"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req jumpRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Index == nil {
		s.fail(w, r, cgerrors.New(cgerrors.ErrCodeInvalidInput, "index is required"))
		return
	}
	err = sess.ctrl.Do(func(c *tour.Controller) error {
		if err := c.Jump(*req.Index); err != nil {
			return cgerrors.Wrap(cgerrors.ErrCodeInvalidIndex, err, "index %d is outside the tour", *req.Index)
		}
		observability.Tour().OnStep(r.Context(), "jump", *req.Index, true)
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sess.response())
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(chi.URLParam(r, "sid"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req moveRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.From == nil || req.To == nil {
		s.fail(w, r, cgerrors.New(cgerrors.ErrCodeInvalidInput, "from and to are required"))
		return
	}
	from, to := *req.From, *req.To

	err = sess.ctrl.Do(func(c *tour.Controller) error {
		path := c.Path()
		size := outline.BlockSize(path, sess.graph.Types(), from)
		if size == 0 {
			return cgerrors.New(cgerrors.ErrCodeInvalidIndex, "from %d is outside the path", from)
		}
		if to < 0 || to > len(path) {
			return cgerrors.New(cgerrors.ErrCodeInvalidIndex, "to %d is outside [0, %d]", to, len(path))
		}
		moved := outline.Move(path, from, size, to)
		if slices.Equal(moved, path) {
			return nil
		}
		if err := s.persistOrder(r.Context(), sess, moved); err != nil {
			return err
		}
		c.ReplacePath(moved)
		observability.Tour().OnReorder(r.Context(), from, size, to)
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sess.response())
}

func (s *Server) handleRemoveNode(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(chi.URLParam(r, "sid"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	nid := chi.URLParam(r, "nid")

	// The edit is written to the store before the session applies it, so a
	// failed write leaves the session unchanged.
	err = sess.ctrl.Do(func(c *tour.Controller) error {
		edited := sess.graph.Clone()
		inGraph := edited.RemoveNode(nid)
		path := slices.DeleteFunc(c.Path(), func(id string) bool { return id == nid })
		if !inGraph && len(path) == c.Len() {
			return cgerrors.New(cgerrors.ErrCodeNotFound, "node %s not found", nid)
		}
		if sess.graphID != "" && s.store != nil {
			rec := &store.GraphRecord{ID: sess.graphID, Name: sess.graphName, Graph: &edited}
			if err := s.store.SaveGraph(r.Context(), rec); err != nil {
				return err
			}
			if err := s.persistOrder(r.Context(), sess, path); err != nil {
				return err
			}
		}
		sess.graph = &edited
		c.RemoveNode(nid)
		observability.Tour().OnNodeRemoved(r.Context(), nid, c.Len())
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sess.response())
}

// persistOrder saves a custom path for sessions backed by a stored graph.
func (s *Server) persistOrder(ctx context.Context, sess *session, path []string) error {
	if sess.graphID == "" || s.store == nil {
		return nil
	}
	if err := s.store.SaveOrder(ctx, sess.graphID, path); err != nil {
		return graphErr(err, sess.graphID)
	}
	return nil
}
