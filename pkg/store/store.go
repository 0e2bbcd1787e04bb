// Package store persists concept graphs and user-arranged tour orders.
//
// A [Store] keeps two kinds of documents:
//   - graphs: a [graph.Graph] with a name and content version
//   - orders: a custom tour path saved for a graph, written whenever the
//     tour controller reports a changed path
//
// Two backends are provided: [FileStore] writes JSON files under a config
// directory for CLI use, and the mongo subpackage serves shared deployments.
//
// A saved order may predate edits to its graph. [TourPath] reconciles it with
// a freshly built path so removed ids are dropped and new ids are appended.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/conceptgraph/pkg/graph"
	"github.com/matzehuels/conceptgraph/pkg/tour"

	cgerrors "github.com/matzehuels/conceptgraph/pkg/errors"
)

// ErrNotFound is returned when a graph or order does not exist.
var ErrNotFound = errors.New("not found")

// GraphRecord is a stored graph.
type GraphRecord struct {
	ID        string       `json:"id" bson:"_id"`
	Name      string       `json:"name,omitempty" bson:"name,omitempty"`
	Version   string       `json:"version" bson:"version"`
	Graph     *graph.Graph `json:"graph" bson:"graph"`
	CreatedAt time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" bson:"updated_at"`
}

// Summary describes a stored graph without its content.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name,omitempty" bson:"name,omitempty"`
	Version   string    `json:"version" bson:"version"`
	Nodes     int       `json:"nodes" bson:"nodes"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Order is a custom tour path saved for a graph.
type Order struct {
	GraphID   string    `json:"graph_id" bson:"_id"`
	Path      []string  `json:"path" bson:"path"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Store is the interface for graph and order storage backends.
type Store interface {
	// SaveGraph stores rec, assigning an ID when empty and refreshing its
	// version and timestamps.
	SaveGraph(ctx context.Context, rec *GraphRecord) error

	// LoadGraph returns the graph stored under id or ErrNotFound.
	LoadGraph(ctx context.Context, id string) (*GraphRecord, error)

	// ListGraphs returns summaries ordered by ID.
	ListGraphs(ctx context.Context) ([]Summary, error)

	// DeleteGraph removes a graph and its saved order. Deleting a missing
	// graph is not an error.
	DeleteGraph(ctx context.Context, id string) error

	// SaveOrder stores a custom tour path for a graph.
	SaveOrder(ctx context.Context, graphID string, path []string) error

	// LoadOrder returns the saved path for a graph or ErrNotFound.
	LoadOrder(ctx context.Context, graphID string) (*Order, error)

	Close() error
}

// Prepare fills the derived fields of rec before it is written. It validates
// the graph and the ID, assigning a fresh UUID when the ID is empty.
func Prepare(rec *GraphRecord, now time.Time) error {
	if rec == nil || rec.Graph == nil {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "graph is required")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if err := ValidateID(rec.ID); err != nil {
		return err
	}
	if err := rec.Graph.Validate(); err != nil {
		return err
	}
	rec.Version = rec.Graph.Version()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	return nil
}

// ValidateID rejects ids that cannot be used as document keys or file names.
func ValidateID(id string) error {
	if id == "" {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "id is required")
	}
	if len(id) > 128 || strings.ContainsAny(id, `/\:`) || id == "." || id == ".." {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "invalid id %q", id)
	}
	return nil
}

// Summarize returns the summary of rec.
func Summarize(rec *GraphRecord) Summary {
	s := Summary{ID: rec.ID, Name: rec.Name, Version: rec.Version, UpdatedAt: rec.UpdatedAt}
	if rec.Graph != nil {
		s.Nodes = rec.Graph.Len()
	}
	return s
}

// TourPath loads the graph stored under id and returns its tour path. A saved
// order takes precedence and is reconciled against the built path.
func TourPath(ctx context.Context, s Store, b *tour.Builder, id string) (*GraphRecord, []string, error) {
	rec, err := s.LoadGraph(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	built := b.Path(ctx, rec.Version, rec.Graph)

	order, err := s.LoadOrder(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		return rec, built, nil
	case err != nil:
		return nil, nil, err
	}
	return rec, tour.Reconcile(order.Path, built), nil
}
