package datamaps

import (
	"github.com/matzehuels/datamaps/pkg/dom"
	"github.com/matzehuels/datamaps/pkg/geo"
	"github.com/matzehuels/datamaps/pkg/merge"
	"github.com/matzehuels/datamaps/pkg/value"
)

const (
	xhtmlNS      = "http://www.w3.org/1999/xhtml"
	legendHeight = 48.0
)

// renderLegend lists the fills as a definition list. defaultFill is listed
// only when defaultFillName is given; other keys use their entry in labels or
// "<key>: ".
func renderLegend(m *Map, layer *dom.Element, data any, opts merge.Map) error {
	cfg, _ := asDatum(data)
	if cfg == nil {
		cfg = opts
	}
	fills := merge.Sub(m.options, "fills")
	dom.Clear(layer)
	if len(fills) == 0 {
		return nil
	}
	labels, _ := asDatum(cfg["labels"])

	fo := dom.Append(layer, "foreignObject",
		"class", "datamaps-legend",
		"x", "4",
		"y", geo.Num(m.height-legendHeight),
		"width", geo.Num(m.width-8),
		"height", geo.Num(legendHeight),
	)
	div := dom.Append(fo, "div", "xmlns", xhtmlNS)
	if title := str(cfg, "legendTitle"); title != "" {
		dom.Append(div, "h2").Content = title
	}
	dl := dom.Append(div, "dl")
	for _, key := range sortedKeys(fills) {
		var text string
		switch {
		case key == "defaultFill":
			text = str(cfg, "defaultFillName")
			if text == "" {
				continue
			}
		case str(labels, key) != "":
			text = str(labels, key)
		default:
			text = key + ": "
		}
		color, _ := value.Of[string](fills[key]).Eval(value.Context{})
		dom.Append(dl, "dt").Content = text
		dom.Append(dl, "dd", "style", "background-color:"+color).Content = "\u00a0"
	}
	return nil
}

// renderGraticule draws the 10° grid. Its layer is kept below the regions.
func renderGraticule(m *Map, layer *dom.Element, _ any, _ merge.Map) error {
	dom.Join(layer, "path", "datamaps-graticule", []string{"graticule"}, dom.JoinFuncs{
		Update: func(_ int, e *dom.Element) {
			dom.SetAttr(e, "d", geo.GraticulePath(m.projection))
		},
	})
	return nil
}
