// Package render turns computed layouts into output artifacts.
//
// # Overview
//
// A renderer transforms a [layout.Layout] into a final output format.
// This package provides:
//
//   - SVG: Scalable vector graphics of the drawing
//   - JSON: Layout data export for external tools
//   - Generic format conversion (SVG to PDF/PNG)
//
// # SVG Output
//
// [RenderSVG] produces a standalone SVG document: container boxes with
// label bands, category-styled node rectangles, and routed edges with
// arrowheads. Back edges are drawn dashed with a multiplicity label at
// the loop apex.
//
// Basic usage:
//
//	svg := render.RenderSVG(l,
//	    render.WithTitle("resnet18"),
//	)
//
// Nested layouts are resolved to absolute coordinates before drawing, so
// both coordinate variants render identically.
//
// # JSON Output
//
// [RenderJSON] exports the layout as pretty-printed JSON, the primary
// interchange format for caching and external tools.
//
// # PDF and PNG Output
//
// [ToPDF] and [ToPNG] convert SVG bytes via the external rsvg-convert
// tool (from librsvg):
//
//	svg := render.RenderSVG(l)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// These require librsvg to be installed:
//   - macOS: brew install librsvg
//   - Linux: apt install librsvg2-bin
//
// [layout.Layout]: github.com/matzehuels/modelcanvas/pkg/layout.Layout
package render
