package datamaps

import (
	"time"

	"github.com/matzehuels/datamaps/pkg/dom"
	"github.com/matzehuels/datamaps/pkg/geo"
	"github.com/matzehuels/datamaps/pkg/merge"
	"github.com/matzehuels/datamaps/pkg/value"
)

const (
	bubbleGrow   = 400 * time.Millisecond
	bubbleShrink = 250 * time.Millisecond
)

type bubble struct {
	datum value.Datum
	pos   geo.XY
}

// renderBubbles draws one circle per datum placed by latitude/longitude or by
// the region named in centered. Data without a position is not drawn.
//
// Circles are keyed by the datum's JSON encoding unless opts holds a key
// callback. Identical data therefore share one circle, and data whose key
// callback returns the same value collapse into one circle showing the last
// of them. Give each datum a distinct key to draw them separately.
func renderBubbles(m *Map, layer *dom.Element, data any, opts merge.Map) error {
	items, err := series("bubbles", data)
	if err != nil {
		return err
	}

	keyFn := value.Of[string](opts["key"])
	var placed []bubble
	var keys []string
	for _, d := range items {
		pos, ok := m.bubblePosition(d)
		if !ok {
			continue
		}
		key := datumKey(d)
		if keyFn.IsCallback() {
			key, _ = keyFn.Eval(value.Context{Datum: d})
		}
		placed = append(placed, bubble{datum: d, pos: pos})
		keys = append(keys, key)
	}

	animate := flag(opts, "animate")
	fills := merge.Sub(m.options, "fills")
	filters := merge.Sub(m.options, "filters")
	exitDelay := time.Duration(num(opts, "exitDelay", 100)) * time.Millisecond

	dom.Join(layer, "circle", "datamaps-bubble", keys, dom.JoinFuncs{
		Enter: func(i int, e *dom.Element) {
			if animate {
				dom.SetAttr(e, "r", "0")
			}
		},
		Update: func(i int, e *dom.Element) {
			b := placed[i]
			ctx := value.Context{Datum: b.datum}

			dom.SetAttrs(e,
				"cx", geo.Num(b.pos.X),
				"cy", geo.Num(b.pos.Y),
				"data-info", marshalDatum(b.datum),
			)
			r, _ := number(b.datum, opts, "radius", ctx)
			if animate {
				dom.Animate(e, dom.Transition{Attr: "r", From: dom.Attr(e, "r"), To: geo.Num(r), Duration: bubbleGrow})
			} else {
				dom.StopAnimation(e, "r")
			}
			dom.SetAttr(e, "r", geo.Num(r))

			dom.DelAttr(e, "filter")
			if key, ok := prop(b.datum, opts, "filterKey", ctx); ok {
				if f, ok := value.Of[string](filters[key]).Eval(ctx); ok {
					dom.SetAttr(e, "filter", f)
				}
			}

			for _, s := range [][2]string{
				{"stroke", "borderColor"},
				{"stroke-width", "borderWidth"},
				{"stroke-opacity", "borderOpacity"},
				{"fill-opacity", "fillOpacity"},
			} {
				v, _ := prop(b.datum, opts, s[1], ctx)
				dom.SetStyle(e, s[0], v)
			}
			dom.SetStyle(e, "fill", bubbleFill(b.datum, opts, fills, ctx))
			decorate(e, b.datum, opts, ctx)
		},
		Exit: func(e *dom.Element) bool {
			dom.Animate(e, dom.Transition{Attr: "r", From: dom.Attr(e, "r"), To: "0", Duration: bubbleShrink, Delay: exitDelay})
			dom.DelAttr(e, highlightAttr)
			dom.DelAttr(e, popupAttr)
			return true
		},
	})
	return nil
}

// bubblePosition resolves where d is drawn: its latitude/longitude, the
// anchor of its centered region, or that region's centroid.
func (m *Map) bubblePosition(d value.Datum) (geo.XY, bool) {
	ctx := value.Context{Datum: d}
	lat, okLat := number(d, nil, "latitude", ctx)
	lon, okLon := number(d, nil, "longitude", ctx)
	if okLat && okLon {
		return m.LatLngToXY(lat, lon)
	}
	region, ok := d["centered"].(string)
	if !ok || region == "" {
		return geo.XY{}, false
	}
	if ll, ok := m.bubbleAnchors[region]; ok {
		return geo.ProjectLonLat(m.projection, ll)
	}
	return m.regionCentroid(region)
}

func bubbleFill(d value.Datum, opts, fills merge.Map, ctx value.Context) string {
	if key, ok := prop(d, opts, "fillKey", ctx); ok {
		if c, ok := value.Of[string](fills[key]).Eval(ctx); ok {
			return c
		}
	}
	if c, ok := value.Field[string](d, "fillColor").Eval(ctx); ok {
		return c
	}
	c, _ := value.Of[string](fills["defaultFill"]).Eval(ctx)
	return c
}
