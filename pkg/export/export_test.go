package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/matzehuels/datamaps/pkg/errors"
)

type fakeConverter struct {
	scale float64
}

func (f *fakeConverter) Supports(format string) bool { return format == FormatPNG }

func (f *fakeConverter) Convert(_ context.Context, svg []byte, _ string, scale float64) ([]byte, error) {
	f.scale = scale
	return append([]byte("png:"), svg...), nil
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", FormatSVG},
		{".svg", FormatSVG},
		{"PNG", FormatPNG},
		{"jpg", FormatJPEG},
		{".pdf", FormatPDF},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if err != nil || got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
	if _, err := ParseFormat("gif"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ParseFormat(gif) error = %v", err)
	}
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	svg := []byte("<svg/>")

	out, err := Export(ctx, nil, svg, FormatSVG, 0)
	if err != nil || !bytes.Equal(out, svg) {
		t.Errorf("Export(svg) = %q, %v", out, err)
	}

	fc := &fakeConverter{}
	out, err = Export(ctx, fc, svg, FormatPNG, 0)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "png:<svg/>" || fc.scale != DefaultScale {
		t.Errorf("Export(png) = %q at scale %v", out, fc.scale)
	}

	tests := []struct {
		name   string
		c      Converter
		format string
		code   errors.Code
	}{
		{"no converter", nil, FormatPNG, errors.ErrCodeMissingCollaborator},
		{"unsupported", fc, FormatPDF, errors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Export(ctx, tt.c, svg, tt.format, 1); !errors.Is(err, tt.code) {
				t.Errorf("Export() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestSupports(t *testing.T) {
	if !NewChrome().Supports(FormatJPEG) || NewChrome().Supports(FormatPDF) {
		t.Error("Chrome supports the wrong formats")
	}
	if !(RSVG{}).Supports(FormatPDF) || (RSVG{}).Supports(FormatJPEG) {
		t.Error("RSVG supports the wrong formats")
	}
}

func TestRSVGMissingBinary(t *testing.T) {
	r := RSVG{Binary: "datamaps-no-such-binary"}
	if r.Available() {
		t.Skip("unexpected binary on PATH")
	}
	_, err := r.Convert(context.Background(), []byte("<svg/>"), FormatPNG, 1)
	if !errors.Is(err, errors.ErrCodeUnsupported) || !strings.Contains(err.Error(), "librsvg") {
		t.Errorf("Convert() error = %v", err)
	}
}

func TestDataURI(t *testing.T) {
	uri := dataURI([]byte("<svg/>"))
	const prefix = "data:image/svg+xml;base64,"
	if !strings.HasPrefix(uri, prefix) {
		t.Fatalf("dataURI() = %q", uri)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, prefix))
	if err != nil || string(raw) != "<svg/>" {
		t.Errorf("decoded %q, %v", raw, err)
	}
}

func TestToJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	out, err := toJPEG(buf.Bytes(), 80)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) < 2 || out[0] != 0xFF || out[1] != 0xD8 {
		t.Error("output is not a JPEG")
	}
	if _, err := toJPEG([]byte("nope"), 80); !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("toJPEG(garbage) error = %v", err)
	}
}
