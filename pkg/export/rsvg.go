package export

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/matzehuels/datamaps/pkg/errors"
)

// RSVG converts with the rsvg-convert binary.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
type RSVG struct {
	// Binary is the executable name or path. Empty means "rsvg-convert".
	Binary string
}

func (r RSVG) binary() string {
	if r.Binary == "" {
		return "rsvg-convert"
	}
	return r.Binary
}

// Available reports whether the binary is on PATH.
func (r RSVG) Available() bool {
	_, err := exec.LookPath(r.binary())
	return err == nil
}

func (r RSVG) Supports(format string) bool {
	return format == FormatPNG || format == FormatPDF
}

func (r RSVG) Convert(ctx context.Context, svg []byte, format string, scale float64) ([]byte, error) {
	if !r.Available() {
		return nil, errors.New(errors.ErrCodeUnsupported,
			"%s export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin", format)
	}

	args := []string{"-f", format}
	if format == FormatPNG {
		args = append(args, "-z", fmt.Sprintf("%.2f", scale))
	}
	cmd := exec.CommandContext(ctx, r.binary(), args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "rsvg-convert: %s", errBuf.String())
	}
	return out.Bytes(), nil
}

var _ Converter = RSVG{}
