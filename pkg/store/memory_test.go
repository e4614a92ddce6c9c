package store

import (
	"context"
	"errors"
	"testing"

	"github.com/matzehuels/modelcanvas/pkg/graph"
)

func sampleGraph(nodeID string) graph.Graph {
	return graph.Graph{
		Nodes: []graph.Node{{ID: nodeID}},
		Edges: []graph.Edge{},
	}
}

func TestMemoryStorePutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	rec, err := s.Put(ctx, "resnet18", sampleGraph("in"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("Put assigned no ID")
	}
	if rec.Hash == "" {
		t.Fatal("Put computed no content hash")
	}
	if rec.CreatedAt.IsZero() || !rec.CreatedAt.Equal(rec.UpdatedAt) {
		t.Errorf("timestamps = %v / %v", rec.CreatedAt, rec.UpdatedAt)
	}

	got, err := s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "resnet18" || len(got.Graph.Nodes) != 1 {
		t.Errorf("Get = %+v", got)
	}
}

func TestMemoryStoreGetNotFound(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreHashDistinguishesContent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	a, _ := s.Put(ctx, "a", sampleGraph("x"))
	b, _ := s.Put(ctx, "b", sampleGraph("y"))
	c, _ := s.Put(ctx, "c", sampleGraph("x"))

	if a.Hash == b.Hash {
		t.Error("different graphs share a hash")
	}
	if a.Hash != c.Hash {
		t.Error("identical graphs must share a hash")
	}
	if a.ID == c.ID {
		t.Error("records must get distinct IDs")
	}
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	first, _ := s.Put(ctx, "first", sampleGraph("a"))
	second, _ := s.Put(ctx, "second", sampleGraph("b"))

	recs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len = %d, want 2", len(recs))
	}
	ids := map[string]bool{recs[0].ID: true, recs[1].ID: true}
	if !ids[first.ID] || !ids[second.ID] {
		t.Errorf("List missing records: %v", recs)
	}
	if recs[0].CreatedAt.After(recs[1].CreatedAt) {
		t.Error("List not ordered by creation time")
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	rec, _ := s.Put(ctx, "g", sampleGraph("a"))
	if err := s.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}
