package datamaps

import (
	"github.com/matzehuels/datamaps/pkg/dom"
	"github.com/matzehuels/datamaps/pkg/geo"
	"github.com/matzehuels/datamaps/pkg/merge"
)

type label struct {
	id     string
	text   string
	pos    geo.XY
	center geo.XY
}

// renderLabels writes the id of every drawn region next to its centroid.
// Regions of the layout's small list are stacked off-map and joined to their
// centroid by a leader line.
func renderLabels(m *Map, layer *dom.Element, _ any, opts merge.Map) error {
	if m.subunits == nil {
		return nil
	}
	fontSize := num(opts, "fontSize", 10)
	color := str(opts, "labelColor")
	if color == "" {
		color = "#000"
	}
	family := str(opts, "fontFamily")
	if family == "" {
		family = "Verdana"
	}
	lineWidth := num(opts, "lineWidth", 1)
	custom, _ := asDatum(opts["customLabelText"])

	start, stacked := geo.ProjectLonLat(m.projection, m.labels.Start)

	var texts, leaders []label
	for _, e := range dom.Children(m.subunits, "path", "datamaps-subunit") {
		id := dom.Attr(e, dom.KeyAttr)
		center, ok := m.regionCentroid(id)
		if !ok {
			continue
		}
		l := label{id: id, text: id, center: center}
		if s, ok := custom[id].(string); ok && s != "" {
			l.text = s
		}
		off := m.labels.offset(id)
		l.pos = geo.XY{X: center.X - off.X, Y: center.Y + off.Y}
		if i := m.labels.smallIndex(id); i >= 0 && stacked {
			l.pos = geo.StackedLabel(start, i, fontSize)
			leaders = append(leaders, l)
		}
		texts = append(texts, l)
	}

	dom.Join(layer, "line", "datamaps-label-line", labelKeys(leaders), dom.JoinFuncs{
		Update: func(i int, e *dom.Element) {
			l := leaders[i]
			dom.SetAttrs(e,
				"x1", geo.Num(l.pos.X-3),
				"y1", geo.Num(l.pos.Y-5),
				"x2", geo.Num(l.center.X),
				"y2", geo.Num(l.center.Y),
			)
			dom.SetStyles(e, "stroke", color, "stroke-width", geo.Num(lineWidth))
		},
	})
	dom.Join(layer, "text", "datamaps-label", labelKeys(texts), dom.JoinFuncs{
		Update: func(i int, e *dom.Element) {
			l := texts[i]
			dom.SetAttrs(e, "x", geo.Num(l.pos.X), "y", geo.Num(l.pos.Y))
			dom.SetStyles(e,
				"font-size", geo.Num(fontSize)+"px",
				"font-family", family,
				"fill", color,
			)
			e.Content = l.text
		},
	})
	return nil
}

func labelKeys(ls []label) []string {
	keys := make([]string, len(ls))
	for i, l := range ls {
		keys[i] = l.id
	}
	return keys
}
