package graph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/modelcanvas/pkg/layout"
)

// =============================================================================
// Layout Serialization API
// =============================================================================

// The layout result type carries its own json tags, so serialization here
// is a thin wrapper adding validation, pretty-printing, and file helpers.

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l layout.Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Validates the structural invariants a renderer relies on.
func UnmarshalLayout(data []byte) (layout.Layout, error) {
	var l layout.Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return layout.Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}

	if l.Width <= 0 || l.Height <= 0 {
		return layout.Layout{}, fmt.Errorf("layout canvas must have positive dimensions, got %gx%g", l.Width, l.Height)
	}
	for _, n := range l.Nodes {
		if n.ID == "" {
			return layout.Layout{}, fmt.Errorf("layout contains a node without an ID")
		}
	}
	for _, e := range l.Edges {
		if len(e.Path) < 2 {
			return layout.Layout{}, fmt.Errorf("edge %s→%s has fewer than two path points", e.From, e.To)
		}
	}

	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l layout.Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (layout.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return layout.Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
