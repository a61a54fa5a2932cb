package datamaps

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/matzehuels/datamaps/pkg/dom"
	"github.com/matzehuels/datamaps/pkg/geo"
	"github.com/matzehuels/datamaps/pkg/merge"
	"github.com/matzehuels/datamaps/pkg/value"
)

// Attributes carrying hover behavior. They are read both by the methods below
// and by the embedded browser script.
const (
	highlightAttr = "data-highlight"
	previousAttr  = "data-previous-attributes"
	popupAttr     = "data-popup"
)

// highlightProps maps hover style properties to their option keys.
var highlightProps = [][2]string{
	{"fill", "highlightFillColor"},
	{"stroke", "highlightBorderColor"},
	{"stroke-width", "highlightBorderWidth"},
	{"stroke-opacity", "highlightBorderOpacity"},
	{"fill-opacity", "highlightFillOpacity"},
}

// decorate stores the hover style and popup HTML of e, computed from the
// datum first and the layer options second.
func decorate(e *dom.Element, d value.Datum, opts merge.Map, ctx value.Context) {
	dom.DelAttr(e, highlightAttr)
	dom.DelAttr(e, popupAttr)

	if flag(opts, "highlightOnHover") {
		target := make(map[string]string)
		for _, p := range highlightProps {
			if v, ok := prop(d, opts, p[1], ctx); ok && v != "" {
				target[p[0]] = v
			}
		}
		if len(target) > 0 {
			b, _ := json.Marshal(target)
			dom.SetAttr(e, highlightAttr, string(b))
		}
	}
	if flag(opts, "popupOnHover") {
		if html, ok := value.Of[string](opts["popupTemplate"]).Eval(ctx); ok && html != "" {
			dom.SetAttr(e, popupAttr, html)
		}
	}
}

// prop resolves option key for an element: the datum's entry wins over the
// layer option. Numbers are formatted for SVG.
func prop(d value.Datum, opts merge.Map, key string, ctx value.Context) (string, bool) {
	if s, ok := text(d[key], ctx); ok {
		return s, true
	}
	return text(opts[key], ctx)
}

func text(raw any, ctx value.Context) (string, bool) {
	if v := value.Of[string](raw); v.IsSet() {
		return v.Eval(ctx)
	}
	if v := value.Of[float64](raw); v.IsSet() {
		f, ok := v.Eval(ctx)
		return geo.Num(f), ok
	}
	return "", false
}

// number resolves a numeric option for an element.
func number(d value.Datum, opts merge.Map, key string, ctx value.Context) (float64, bool) {
	return value.Resolve(value.Field[float64](d, key), value.Of[float64](opts[key]), ctx)
}

// Highlight applies the hover style of e, saving the properties it overwrites
// so [Map.Unhighlight] can restore them, and raises e to the top of its layer
// unless the legacyBrowser option is set. It reports whether e has a hover
// style.
func (m *Map) Highlight(e *dom.Element) bool {
	raw := dom.Attr(e, highlightAttr)
	if raw == "" {
		return false
	}
	var target map[string]string
	if err := json.Unmarshal([]byte(raw), &target); err != nil {
		m.logger.Warn("ignoring malformed highlight", "err", err)
		return false
	}

	prev := make(map[string]string, len(target))
	for p := range target {
		prev[p] = dom.Style(e, p)
	}
	b, _ := json.Marshal(prev)
	dom.SetAttr(e, previousAttr, string(b))

	props := make([]string, 0, len(target))
	for p := range target {
		props = append(props, p)
	}
	sort.Strings(props)
	for _, p := range props {
		dom.SetStyle(e, p, target[p])
	}

	if !flag(m.options, "legacyBrowser") {
		if parent := dom.Parent(m.root, e); parent != nil {
			dom.Raise(parent, e)
		}
	}
	return true
}

// Unhighlight restores the properties saved by [Map.Highlight] and hides the
// popup. Properties that were absent before the highlight are removed.
func (m *Map) Unhighlight(e *dom.Element) {
	if raw := dom.Attr(e, previousAttr); raw != "" {
		var prev map[string]string
		if err := json.Unmarshal([]byte(raw), &prev); err == nil {
			for p, v := range prev {
				dom.SetStyle(e, p, v)
			}
		}
		dom.DelAttr(e, previousAttr)
	}
	m.HidePopup()
}

// ShowPopup places the popup of e at pos (pointer position in canvas pixels,
// shifted 30px down). It reports whether e has a popup.
func (m *Map) ShowPopup(e *dom.Element, pos geo.XY) bool {
	html := dom.Attr(e, popupAttr)
	if html == "" || m.popup == nil {
		return false
	}
	dom.SetAttrs(m.popup,
		"x", geo.Num(pos.X),
		"y", geo.Num(pos.Y+30),
		"visibility", "visible",
		"data-content", html,
	)
	return true
}

// HidePopup hides the popup overlay.
func (m *Map) HidePopup() {
	if m.popup == nil {
		return
	}
	dom.SetAttr(m.popup, "visibility", "hidden")
	dom.DelAttr(m.popup, "data-content")
}

// PointerEnter is the pointer entering e at pos: highlight, then popup.
func (m *Map) PointerEnter(e *dom.Element, pos geo.XY) {
	m.Highlight(e)
	m.ShowPopup(e, pos)
}

// PointerLeave is the pointer leaving e.
func (m *Map) PointerLeave(e *dom.Element) {
	m.Unhighlight(e)
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
