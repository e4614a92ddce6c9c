package layout

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the visual tuning constants of the layout engine. All
// values are empirical pixel tunings - load a TOML file via [LoadConfig]
// to retune for a different visual scale.
//
// The zero value is not usable; start from [DefaultConfig].
type Config struct {
	// Fixed node size classes. Tensor leaves use the compact size,
	// operation leaves the standard size.
	TensorWidth  float64 `toml:"tensor_width"`
	TensorHeight float64 `toml:"tensor_height"`
	OpWidth      float64 `toml:"op_width"`
	OpHeight     float64 `toml:"op_height"`

	// Solver spacing.
	NodeSep float64 `toml:"node_sep"`
	RankSep float64 `toml:"rank_sep"`

	// Per-cluster padding handed to the solver. ClusterPadTop includes
	// the label band reserved above cluster contents.
	ClusterPadX   float64 `toml:"cluster_pad_x"`
	ClusterPadTop float64 `toml:"cluster_pad_top"`
	ClusterPadBot float64 `toml:"cluster_pad_bot"`

	// Fallback box padding: BoxPadBase at depth 1, shrinking by
	// BoxPadStep per extra depth level, never below BoxPadFloor.
	BoxPadBase  float64 `toml:"box_pad_base"`
	BoxPadStep  float64 `toml:"box_pad_step"`
	BoxPadFloor float64 `toml:"box_pad_floor"`
	// LabelBand is the extra vertical padding above a fallback box
	// reserved for the container label.
	LabelBand float64 `toml:"label_band"`

	// Back-edge loop routing. The rightward extension scales with the
	// horizontal gap between the endpoints, clamped to
	// [LoopExtMin, LoopExtMax]; the arc rises above the topmost endpoint
	// by a height clamped to [LoopArcMin, LoopArcMax]; corners are
	// rounded by at most LoopCornerRadius (further bounded by the arc
	// height and the extension).
	LoopExtScale     float64 `toml:"loop_ext_scale"`
	LoopExtMin       float64 `toml:"loop_ext_min"`
	LoopExtMax       float64 `toml:"loop_ext_max"`
	LoopArcScale     float64 `toml:"loop_arc_scale"`
	LoopArcMin       float64 `toml:"loop_arc_min"`
	LoopArcMax       float64 `toml:"loop_arc_max"`
	LoopCornerRadius float64 `toml:"loop_corner_radius"`

	// Canvas sizing: max extent of all nodes and boxes plus
	// CanvasMargin, never smaller than the minimum.
	CanvasMargin    float64 `toml:"canvas_margin"`
	CanvasMinWidth  float64 `toml:"canvas_min_width"`
	CanvasMinHeight float64 `toml:"canvas_min_height"`

	// Fallback geometry substituted when the solver reports no (or
	// non-finite) size for a node.
	FallbackWidth  float64 `toml:"fallback_width"`
	FallbackHeight float64 `toml:"fallback_height"`
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	return Config{
		TensorWidth:  96,
		TensorHeight: 28,
		OpWidth:      128,
		OpHeight:     40,

		NodeSep: 24,
		RankSep: 64,

		ClusterPadX:   16,
		ClusterPadTop: 36,
		ClusterPadBot: 16,

		BoxPadBase:  24,
		BoxPadStep:  6,
		BoxPadFloor: 8,
		LabelBand:   20,

		LoopExtScale:     0.25,
		LoopExtMin:       24,
		LoopExtMax:       80,
		LoopArcScale:     0.35,
		LoopArcMin:       32,
		LoopArcMax:       96,
		LoopCornerRadius: 12,

		CanvasMargin:    40,
		CanvasMinWidth:  240,
		CanvasMinHeight: 160,

		FallbackWidth:  96,
		FallbackHeight: 32,
	}
}

// LoadConfig reads a TOML tuning file and overlays it on the defaults,
// so a partial file only overrides the keys it names.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// nodeSize returns the fixed size class for a node category.
func (c Config) nodeSize(tensor bool) (w, h float64) {
	if tensor {
		return c.TensorWidth, c.TensorHeight
	}
	return c.OpWidth, c.OpHeight
}

// boxPadding returns the fallback box padding for a container depth.
// Padding shrinks with depth down to the floor, so outer boxes always
// carry at least as much padding as the boxes they enclose.
func (c Config) boxPadding(depth int) float64 {
	if depth < 1 {
		depth = 1
	}
	pad := c.BoxPadBase - float64(depth-1)*c.BoxPadStep
	if pad < c.BoxPadFloor {
		pad = c.BoxPadFloor
	}
	return pad
}
