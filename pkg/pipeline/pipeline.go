// Package pipeline provides the core visualization pipeline for
// ModelCanvas.
//
// This package implements the complete load → layout → render pipeline
// that can be used by CLI and API components. By centralizing this
// logic, we ensure consistent behavior across all entry points and
// avoid code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read a computation graph from its serialized form
//  2. Layout: Compute visual positions for the graph
//  3. Render: Generate output in various formats (SVG, PNG, PDF, JSON)
//
// Each stage can be run independently or as part of the complete
// pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Engine:  "sugiyama",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, g, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Load only
//	g, err := runner.LoadGraph(ctx, "model.json")
//
//	// Layout with an existing graph
//	l, err := runner.ComputeLayout(ctx, g, layoutOpts)
//
//	// Render with an existing layout
//	artifacts, err := runner.Render(ctx, l, renderOpts)
package pipeline

import (
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/modelcanvas/pkg/cache"
	apperrors "github.com/matzehuels/modelcanvas/pkg/errors"
	"github.com/matzehuels/modelcanvas/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// Engine constants for positioning engines.
const (
	EngineSugiyama = "sugiyama"
	EngineGraphviz = "graphviz"
)

// DefaultEngine is the default positioning engine. The built-in
// sugiyama implementation needs no external tooling, so it is the safe
// choice everywhere.
const DefaultEngine = EngineSugiyama

// Direction constants for the main layout axis.
const (
	DirectionLR = "LR"
	DirectionTB = "TB"
)

// DefaultDirection is the default layout axis.
const DefaultDirection = DirectionLR

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// DefaultScale is the default raster scale factor for PNG output.
const DefaultScale = 2.0

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ValidEngines is the set of supported positioning engines.
var ValidEngines = map[string]bool{
	EngineSugiyama: true,
	EngineGraphviz: true,
}

// ValidDirections is the set of supported layout axes.
var ValidDirections = map[string]bool{
	DirectionLR: true,
	DirectionTB: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the visualization pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Engine    string         `json:"engine,omitempty"`
	Direction string         `json:"direction,omitempty"`
	Nested    bool           `json:"nested,omitempty"`
	Config    *layout.Config `json:"config,omitempty"` // Custom sizing tuning (nil = defaults)

	// Render options
	Formats []string `json:"formats,omitempty"`
	Title   string   `json:"title,omitempty"`
	Scale   float64  `json:"scale,omitempty"` // PNG raster scale factor
	Refresh bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout contains the computed drawing description.
	Layout layout.Layout

	// GraphHash is the content hash of the graph.
	GraphHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount      int
	EdgeCount      int
	ContainerCount int
	LayoutTime     time.Duration
	RenderTime     time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return apperrors.New(apperrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEngine checks that a positioning engine is valid.
func ValidateEngine(engine string) error {
	if !ValidEngines[engine] {
		return apperrors.New(apperrors.ErrCodeInvalidEngine, "invalid engine: %q (must be one of: sugiyama, graphviz)", engine)
	}
	return nil
}

// ValidateDirection checks that a layout axis is valid.
func ValidateDirection(direction string) error {
	if !ValidDirections[direction] {
		return apperrors.New(apperrors.ErrCodeInvalidDirection, "invalid direction: %q (must be one of: LR, TB)", direction)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults for the full
// pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Engine == "" {
		o.Engine = DefaultEngine
	}
	if o.Direction == "" {
		o.Direction = DefaultDirection
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateEngine(o.Engine); err != nil {
		return err
	}
	return ValidateDirection(o.Direction)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Scale < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidScale, "scale must be positive, got %g", o.Scale)
	}
	return ValidateFormats(o.Formats)
}

// LayoutConfig returns the effective sizing configuration.
func (o *Options) LayoutConfig() layout.Config {
	if o.Config != nil {
		return *o.Config
	}
	return layout.DefaultConfig()
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	var configHash string
	if o.Config != nil {
		if data, err := json.Marshal(o.Config); err == nil {
			configHash = cache.Hash(data)
		}
	}
	return cache.LayoutKeyOpts{
		Engine:     o.Engine,
		Direction:  o.Direction,
		Nested:     o.Nested,
		ConfigHash: configHash,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Title:  o.Title,
		Scale:  o.Scale,
	}
}
