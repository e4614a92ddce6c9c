package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

// converterBin is the external SVG rasterizer. Conversion formats are
// delegated rather than linked in, so SVG and JSON output never depend
// on it being installed.
const converterBin = "rsvg-convert"

// ToPDF converts rendered SVG bytes to PDF.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return convert(ctx, svg, "pdf")
}

// ToPNG converts rendered SVG bytes to PNG at the given scale factor.
// A scale of 2.0 doubles the pixel resolution of the canvas.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	return convert(ctx, svg, "png", "-z", strconv.FormatFloat(scale, 'f', 2, 64))
}

// convert pipes svg through the external converter.
func convert(ctx context.Context, svg []byte, format string, extraArgs ...string) ([]byte, error) {
	if _, err := exec.LookPath(converterBin); err != nil {
		return nil, fmt.Errorf("%s export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin", format)
	}

	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.CommandContext(ctx, converterBin, args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %v: %s", converterBin, err, errBuf.String())
	}
	return out.Bytes(), nil
}
