package dom

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"

	"github.com/JoshVarga/svgparser"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/net/html/charset"
)

type writeConfig struct {
	styles  []string
	scripts []string
}

// WriteOption configures [Write].
type WriteOption func(*writeConfig)

// WithStyle embeds a CSS stylesheet in the document.
func WithStyle(css string) WriteOption {
	return func(c *writeConfig) {
		if css != "" {
			c.styles = append(c.styles, css)
		}
	}
}

// WithScript embeds a script in the document.
func WithScript(js string) WriteOption {
	return func(c *writeConfig) {
		if js != "" {
			c.scripts = append(c.scripts, js)
		}
	}
}

// envelope attributes are written by the canvas itself.
var envelope = map[string]bool{
	"width": true, "height": true, "xmlns": true, "xmlns:xlink": true,
}

// Write serializes root, an <svg> element, as a standalone SVG document.
// Attributes are written in lexical order so equal trees produce equal output.
func Write(w io.Writer, root *Element, opts ...WriteOption) error {
	cfg := writeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	ew := &errWriter{w: w}
	canvas := svg.New(ew)

	var extra []string
	for _, k := range sortedKeys(root.Attributes) {
		if envelope[k] {
			continue
		}
		extra = append(extra, k+`="`+escape(root.Attributes[k])+`"`)
	}
	canvas.Start(dimension(Attr(root, "width")), dimension(Attr(root, "height")), extra...)
	for _, css := range cfg.styles {
		canvas.Style("text/css", css)
	}
	for _, js := range cfg.scripts {
		canvas.Script("application/javascript", js)
	}

	var buf bytes.Buffer
	for _, c := range root.Children {
		writeElement(&buf, c, 0)
	}
	ew.Write(buf.Bytes())
	canvas.End()
	return ew.err
}

// Marshal renders a single element (and its subtree) without a document
// envelope.
func Marshal(e *Element) string {
	var buf bytes.Buffer
	writeElement(&buf, e, 0)
	return buf.String()
}

func writeElement(buf *bytes.Buffer, e *Element, depth int) {
	for range depth {
		buf.WriteString("  ")
	}
	buf.WriteByte('<')
	buf.WriteString(e.Name)
	for _, k := range sortedKeys(e.Attributes) {
		buf.WriteByte(' ')
		buf.WriteString(k)
		buf.WriteString(`="`)
		buf.WriteString(escape(e.Attributes[k]))
		buf.WriteByte('"')
	}
	if len(e.Children) == 0 && e.Content == "" {
		buf.WriteString("/>\n")
		return
	}
	buf.WriteByte('>')
	if e.Content != "" {
		buf.WriteString(escape(e.Content))
	}
	if len(e.Children) > 0 {
		buf.WriteByte('\n')
		for _, c := range e.Children {
			writeElement(buf, c, depth+1)
		}
		for range depth {
			buf.WriteString("  ")
		}
	}
	buf.WriteString("</")
	buf.WriteString(e.Name)
	buf.WriteString(">\n")
}

// Parse reads an SVG document written by [Write] (or any other SVG) into an
// element tree rooted at the <svg> element.
func Parse(r io.Reader) (*Element, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel
	root, err := svgparser.DecodeFirst(decoder)
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	if err := root.Decode(decoder); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	return root, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func dimension(s string) int {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(math.Round(f))
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	ew.err = err
	return n, err
}
