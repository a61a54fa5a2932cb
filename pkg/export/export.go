// Package export converts rendered SVG maps to raster and print formats.
//
// Two converters implement [Converter]:
//   - [Chrome] screenshots the document in headless Chrome (png, jpeg)
//   - [RSVG] shells out to rsvg-convert from librsvg (png, pdf)
//
// Chrome runs the embedded stylesheet the same way a browser does; rsvg is
// lighter and needs no browser. Use [Export] to convert and report the
// conversion to the observability hooks:
//
//	png, err := export.Export(ctx, export.NewChrome(), svg, export.FormatPNG, 2)
package export

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/datamaps/pkg/errors"
	"github.com/matzehuels/datamaps/pkg/observability"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatPDF  = "pdf"
)

// DefaultScale is the device scale factor for raster output.
const DefaultScale = 2.0

// Converter turns SVG bytes into another format.
type Converter interface {
	// Convert renders svg as format at the given scale factor.
	Convert(ctx context.Context, svg []byte, format string, scale float64) ([]byte, error)

	// Supports reports whether the converter can produce format.
	Supports(format string) bool
}

// ParseFormat normalizes a format name or file extension.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "svg":
		return FormatSVG, nil
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported output format %q", s)
}

// ContentType returns the MIME type of format.
func ContentType(format string) string {
	switch format {
	case FormatPNG:
		return "image/png"
	case FormatJPEG:
		return "image/jpeg"
	case FormatPDF:
		return "application/pdf"
	}
	return "image/svg+xml"
}

// Export converts svg with c. SVG output is returned unchanged and c may be
// nil in that case.
func Export(ctx context.Context, c Converter, svg []byte, format string, scale float64) ([]byte, error) {
	if format == FormatSVG {
		return svg, nil
	}
	if c == nil {
		return nil, errors.New(errors.ErrCodeMissingCollaborator, "no converter for %s output", format)
	}
	if !c.Supports(format) {
		return nil, errors.New(errors.ErrCodeUnsupported, "converter cannot produce %s", format)
	}
	if scale <= 0 {
		scale = DefaultScale
	}

	start := time.Now()
	out, err := c.Convert(ctx, svg, format, scale)
	observability.Render().OnExport(ctx, format, len(out), time.Since(start), err)
	return out, err
}
