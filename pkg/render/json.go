package render

import (
	"github.com/matzehuels/modelcanvas/pkg/graph"
	"github.com/matzehuels/modelcanvas/pkg/layout"
)

// RenderJSON exports the layout as a pretty-printed JSON document, the
// primary data interchange format for caching computed layouts and
// feeding external visualization tools. The coordinate variant is
// preserved as-is; consumers check the nested flag.
func RenderJSON(l layout.Layout) ([]byte, error) {
	return graph.MarshalLayout(l)
}
