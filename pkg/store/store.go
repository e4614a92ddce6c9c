// Package store provides named graph persistence behind a Store interface.
//
// Uploaded graphs are stored as records with a generated UUID, a content
// hash for cache coordination, and timestamps. Two backends exist:
//   - memory: In-memory storage for development, testing, and the CLI
//   - mongo: MongoDB-backed storage for server deployments
//
// # Usage
//
//	// Development
//	st := store.NewMemoryStore()
//
//	// Production
//	st, err := store.NewMongoStore(ctx, store.MongoOptions{
//	    URI: "mongodb://localhost:27017",
//	})
//
//	rec, err := st.Put(ctx, "resnet18", g)
//	got, err := st.Get(ctx, rec.ID)
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/modelcanvas/pkg/cache"
	"github.com/matzehuels/modelcanvas/pkg/graph"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when no record exists for the given ID.
	ErrNotFound = errors.New("graph not found")
)

// Record is a stored graph with its metadata.
type Record struct {
	ID        string      `json:"id" bson:"_id"`
	Name      string      `json:"name,omitempty" bson:"name,omitempty"`
	Graph     graph.Graph `json:"graph" bson:"graph"`
	Hash      string      `json:"hash" bson:"hash"` // content hash of the serialized graph
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" bson:"updated_at"`
}

// Store is the interface for graph persistence backends.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put stores a graph under a fresh UUID and returns the record.
	Put(ctx context.Context, name string, g graph.Graph) (Record, error)

	// Get retrieves a record by ID. Returns ErrNotFound when absent.
	Get(ctx context.Context, id string) (Record, error)

	// List returns all records ordered by creation time.
	List(ctx context.Context) ([]Record, error)

	// Delete removes a record. Returns ErrNotFound when absent.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// contentHash computes the canonical content hash of a serialized graph,
// used as the graph component of layout cache keys.
func contentHash(g graph.Graph) (string, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("hash graph: %w", err)
	}
	return cache.Hash(data), nil
}
