package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/conceptgraph/pkg/graph"
	"github.com/matzehuels/conceptgraph/pkg/httputil"
	"github.com/matzehuels/conceptgraph/pkg/store"

	cgerrors "github.com/matzehuels/conceptgraph/pkg/errors"
)

// r | c1 b a | c2 e
func testGraph() *graph.Graph {
	return &graph.Graph{
		Nodes: []graph.Node{
			{ID: "r", Type: graph.TypeRoot, Label: "Root"},
			{ID: "c1", Type: graph.TypeCategory, Label: "Logic"},
			{ID: "a", Type: graph.TypeConcept, Label: "Axiom"},
			{ID: "b", Type: graph.TypeWork, Label: "Begriffsschrift"},
			{ID: "c2", Type: graph.TypeCategory, Label: "Ethics"},
			{ID: "e", Type: graph.TypeConcept, Label: "Eudaimonia"},
		},
		Links: []graph.Link{
			{Source: "c1", Target: "a"},
			{Source: "c1", Target: "b"},
			{Source: "c2", Target: "e"},
		},
	}
}

func newTestServer(t *testing.T, st store.Store) *Server {
	t.Helper()
	return New(Config{Store: st, Logger: log.New(io.Discard)})
}

func newFileStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return st
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) cgerrors.Code {
	t.Helper()
	return decode[httputil.ErrorBody](t, w).Error.Code
}

func startInline(t *testing.T, s *Server) tourResponse {
	t.Helper()
	w := do(t, s, http.MethodPost, "/tours", map[string]any{"graph": testGraph()})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[tourResponse](t, w)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	w := do(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestStartInlineTour(t *testing.T) {
	s := newTestServer(t, nil)
	resp := startInline(t, s)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, []string{"r", "c1", "b", "a", "c2", "e"}, resp.Path)
	assert.Equal(t, 0, resp.Cursor)
	assert.True(t, resp.Active)
	assert.Equal(t, "r", resp.Current)
	assert.Equal(t, 1, s.SessionCount())
}

func TestStartTourRejectsBadRequests(t *testing.T) {
	s := newTestServer(t, newFileStore(t))
	tests := []struct {
		name   string
		body   any
		status int
		code   cgerrors.Code
	}{
		{"neither", map[string]any{}, http.StatusBadRequest, cgerrors.ErrCodeInvalidInput},
		{"both", map[string]any{"graph_id": "x", "graph": testGraph()}, http.StatusBadRequest, cgerrors.ErrCodeInvalidInput},
		{"empty graph", map[string]any{"graph": graph.Graph{}}, http.StatusBadRequest, cgerrors.ErrCodeEmptyGraph},
		{"invalid graph", map[string]any{"graph": graph.Graph{Nodes: []graph.Node{{ID: "x", Type: "PLANET"}}}}, http.StatusBadRequest, cgerrors.ErrCodeInvalidGraph},
		{"unknown graph", map[string]any{"graph_id": "missing"}, http.StatusNotFound, cgerrors.ErrCodeGraphNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/tours", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, errCode(t, w))
		})
	}
	assert.Zero(t, s.SessionCount())
}

func TestStepping(t *testing.T) {
	s := newTestServer(t, nil)
	sid := startInline(t, s).ID
	base := "/tours/" + sid

	resp := decode[tourResponse](t, do(t, s, http.MethodPost, base+"/next", nil))
	assert.Equal(t, 1, resp.Cursor)
	assert.Equal(t, "c1", resp.Current)

	resp = decode[tourResponse](t, do(t, s, http.MethodPost, base+"/prev", nil))
	assert.Equal(t, 0, resp.Cursor)

	resp = decode[tourResponse](t, do(t, s, http.MethodPost, base+"/prev", nil))
	assert.Equal(t, 0, resp.Cursor, "prev at the start is a no-op")

	resp = decode[tourResponse](t, do(t, s, http.MethodPost, base+"/jump", map[string]int{"index": 5}))
	assert.Equal(t, "e", resp.Current)

	resp = decode[tourResponse](t, do(t, s, http.MethodPost, base+"/next", nil))
	assert.False(t, resp.Active, "next past the end stops the tour")
	assert.Equal(t, -1, resp.Cursor)
	assert.Len(t, resp.Path, 6, "stopping keeps the path")

	w := do(t, s, http.MethodPost, base+"/next", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, cgerrors.ErrCodeTourInactive, errCode(t, w))

	w = do(t, s, http.MethodPost, base+"/stop", nil)
	assert.Equal(t, http.StatusOK, w.Code, "stop is idempotent")
}

func TestJumpOutOfRangeLeavesState(t *testing.T) {
	s := newTestServer(t, nil)
	sid := startInline(t, s).ID
	do(t, s, http.MethodPost, "/tours/"+sid+"/jump", map[string]int{"index": 2})

	for _, idx := range []int{-1, 6, 99} {
		w := do(t, s, http.MethodPost, "/tours/"+sid+"/jump", map[string]int{"index": idx})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, cgerrors.ErrCodeInvalidIndex, errCode(t, w))
	}

	resp := decode[tourResponse](t, do(t, s, http.MethodGet, "/tours/"+sid, nil))
	assert.Equal(t, 2, resp.Cursor)
	assert.True(t, resp.Active)

	w := do(t, s, http.MethodPost, "/tours/"+sid+"/jump", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMoveBlock(t *testing.T) {
	s := newTestServer(t, nil)
	sid := startInline(t, s).ID
	do(t, s, http.MethodPost, "/tours/"+sid+"/jump", map[string]int{"index": 3})

	// Category c2 at row 4 carries e.
	w := do(t, s, http.MethodPost, "/tours/"+sid+"/move", map[string]int{"from": 4, "to": 0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[tourResponse](t, w)

	assert.Equal(t, []string{"c2", "e", "r", "c1", "b", "a"}, resp.Path)
	assert.Equal(t, "a", resp.Current, "cursor follows its node")
	assert.Equal(t, 5, resp.Cursor)
}

func TestMoveInsideOwnBlockIsNoop(t *testing.T) {
	s := newTestServer(t, nil)
	sid := startInline(t, s).ID

	w := do(t, s, http.MethodPost, "/tours/"+sid+"/move", map[string]int{"from": 1, "to": 2})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"r", "c1", "b", "a", "c2", "e"}, decode[tourResponse](t, w).Path)
}

func TestMoveRejectsBadIndexes(t *testing.T) {
	s := newTestServer(t, nil)
	sid := startInline(t, s).ID
	for _, body := range []map[string]int{
		{"from": 6, "to": 0},
		{"from": 0, "to": 7},
		{"from": -1, "to": 0},
	} {
		w := do(t, s, http.MethodPost, "/tours/"+sid+"/move", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, cgerrors.ErrCodeInvalidIndex, errCode(t, w))
	}
	w := do(t, s, http.MethodPost, "/tours/"+sid+"/move", map[string]int{"from": 1})
	assert.Equal(t, cgerrors.ErrCodeInvalidInput, errCode(t, w))
}

func TestRemoveNode(t *testing.T) {
	s := newTestServer(t, nil)
	sid := startInline(t, s).ID
	do(t, s, http.MethodPost, "/tours/"+sid+"/jump", map[string]int{"index": 5})

	w := do(t, s, http.MethodDelete, "/tours/"+sid+"/nodes/e", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[tourResponse](t, w)
	assert.Equal(t, []string{"r", "c1", "b", "a", "c2"}, resp.Path)
	assert.Equal(t, 4, resp.Cursor, "cursor clamps to the new last index")
	assert.Equal(t, "c2", resp.Current)

	w = do(t, s, http.MethodDelete, "/tours/"+sid+"/nodes/e", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnknownSession(t *testing.T) {
	s := newTestServer(t, nil)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/tours/nope"},
		{http.MethodPost, "/tours/nope/next"},
		{http.MethodDelete, "/tours/nope"},
	} {
		w := do(t, s, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, cgerrors.ErrCodeSessionNotFound, errCode(t, w))
	}
}

func TestEndTour(t *testing.T) {
	s := newTestServer(t, nil)
	sid := startInline(t, s).ID
	w := do(t, s, http.MethodDelete, "/tours/"+sid, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, s.SessionCount())
}

func TestSessionEviction(t *testing.T) {
	s := New(Config{Logger: log.New(io.Discard), MaxSessions: 2})
	first := startInline(t, s).ID
	startInline(t, s)
	startInline(t, s)

	assert.Equal(t, 2, s.SessionCount())
	w := do(t, s, http.MethodGet, "/tours/"+first, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "least recently used session is evicted")
}

func TestGraphsWithoutStore(t *testing.T) {
	s := newTestServer(t, nil)
	w := do(t, s, http.MethodGet, "/graphs", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
	assert.Equal(t, cgerrors.ErrCodeUnsupported, errCode(t, w))
}

func TestStoredGraphTour(t *testing.T) {
	st := newFileStore(t)
	s := newTestServer(t, st)

	w := do(t, s, http.MethodPost, "/graphs", map[string]any{"id": "philo", "name": "Philosophy", "graph": testGraph()})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sum := decode[store.Summary](t, w)
	assert.Equal(t, 6, sum.Nodes)

	list := decode[struct{ Graphs []store.Summary }](t, do(t, s, http.MethodGet, "/graphs", nil))
	require.Len(t, list.Graphs, 1)
	assert.Equal(t, "philo", list.Graphs[0].ID)

	w = do(t, s, http.MethodPost, "/tours", map[string]string{"graph_id": "philo"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sid := decode[tourResponse](t, w).ID

	// Reordering persists the custom order.
	do(t, s, http.MethodPost, "/tours/"+sid+"/move", map[string]int{"from": 4, "to": 1})
	path := decode[pathResponse](t, do(t, s, http.MethodGet, "/graphs/philo/path", nil))
	assert.Equal(t, []string{"r", "c2", "e", "c1", "b", "a"}, path.Path)

	// Deleting a node updates both the stored graph and the order.
	do(t, s, http.MethodDelete, "/tours/"+sid+"/nodes/b", nil)
	path = decode[pathResponse](t, do(t, s, http.MethodGet, "/graphs/philo/path", nil))
	assert.Equal(t, []string{"r", "c2", "e", "c1", "a"}, path.Path)

	rec := decode[store.GraphRecord](t, do(t, s, http.MethodGet, "/graphs/philo", nil))
	assert.Equal(t, 5, rec.Graph.Len())
	assert.Equal(t, "Philosophy", rec.Name)

	// A new session resumes the saved order.
	w = do(t, s, http.MethodPost, "/tours", map[string]string{"graph_id": "philo"})
	assert.Equal(t, []string{"r", "c2", "e", "c1", "a"}, decode[tourResponse](t, w).Path)

	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodDelete, "/graphs/philo", nil).Code)
	w = do(t, s, http.MethodGet, "/graphs/philo", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, cgerrors.ErrCodeGraphNotFound, errCode(t, w))
}

// flakyStore fails every write once failWrites is set.
type flakyStore struct {
	store.Store
	failWrites bool
}

var errDiskFull = errors.New("disk full")

func (f *flakyStore) SaveGraph(ctx context.Context, rec *store.GraphRecord) error {
	if f.failWrites {
		return errDiskFull
	}
	return f.Store.SaveGraph(ctx, rec)
}

func (f *flakyStore) SaveOrder(ctx context.Context, graphID string, path []string) error {
	if f.failWrites {
		return errDiskFull
	}
	return f.Store.SaveOrder(ctx, graphID, path)
}

func startStored(t *testing.T, s *Server) string {
	t.Helper()
	w := do(t, s, http.MethodPost, "/graphs", map[string]any{"id": "philo", "graph": testGraph()})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = do(t, s, http.MethodPost, "/tours", map[string]string{"graph_id": "philo"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[tourResponse](t, w).ID
}

func TestRemoveNodeKeepsSessionWhenStoreFails(t *testing.T) {
	st := &flakyStore{Store: newFileStore(t)}
	s := newTestServer(t, st)
	sid := startStored(t, s)
	do(t, s, http.MethodPost, "/tours/"+sid+"/jump", map[string]int{"index": 3})

	st.failWrites = true
	w := do(t, s, http.MethodDelete, "/tours/"+sid+"/nodes/b", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	resp := decode[tourResponse](t, do(t, s, http.MethodGet, "/tours/"+sid, nil))
	assert.Equal(t, []string{"r", "c1", "b", "a", "c2", "e"}, resp.Path)
	assert.Equal(t, "a", resp.Current)
	rec := decode[store.GraphRecord](t, do(t, s, http.MethodGet, "/graphs/philo", nil))
	assert.Equal(t, 6, rec.Graph.Len())

	// The session graph still holds b, so a retry removes it.
	st.failWrites = false
	w = do(t, s, http.MethodDelete, "/tours/"+sid+"/nodes/b", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"r", "c1", "a", "c2", "e"}, decode[tourResponse](t, w).Path)
	rec = decode[store.GraphRecord](t, do(t, s, http.MethodGet, "/graphs/philo", nil))
	assert.Equal(t, 5, rec.Graph.Len())
}

func TestMoveKeepsSessionWhenStoreFails(t *testing.T) {
	st := &flakyStore{Store: newFileStore(t)}
	s := newTestServer(t, st)
	sid := startStored(t, s)

	st.failWrites = true
	w := do(t, s, http.MethodPost, "/tours/"+sid+"/move", map[string]int{"from": 4, "to": 1})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	resp := decode[tourResponse](t, do(t, s, http.MethodGet, "/tours/"+sid, nil))
	assert.Equal(t, []string{"r", "c1", "b", "a", "c2", "e"}, resp.Path)
}
