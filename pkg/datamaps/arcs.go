package datamaps

import (
	"time"

	"github.com/matzehuels/datamaps/pkg/dom"
	"github.com/matzehuels/datamaps/pkg/geo"
	"github.com/matzehuels/datamaps/pkg/merge"
	"github.com/matzehuels/datamaps/pkg/value"
)

const (
	arcRevealDelay = 100 * time.Millisecond
	arcFade        = 250 * time.Millisecond
)

type arc struct {
	datum value.Datum
	path  string
}

// renderArcs draws a path from origin to destination for every datum. An
// endpoint is an anchor code, a region id or an object with latitude and
// longitude. Arcs with an unresolvable endpoint are not drawn.
func renderArcs(m *Map, layer *dom.Element, data any, opts merge.Map) error {
	items, err := series("arcs", data)
	if err != nil {
		return err
	}

	var drawn []arc
	var keys []string
	for _, d := range items {
		d = foldOptions(d)
		path, ok := m.arcPath(d, opts)
		if !ok {
			m.logger.Debug("skipping arc without endpoints", "arc", marshalDatum(d))
			continue
		}
		drawn = append(drawn, arc{datum: d, path: path})
		keys = append(keys, datumKey(d))
	}

	dom.Join(layer, "path", "datamaps-arc", keys, dom.JoinFuncs{
		Enter: func(i int, e *dom.Element) {
			a := drawn[i]
			ctx := value.Context{Datum: a.datum}
			dom.SetAttr(e, "d", a.path)

			length := geo.PathLength(a.path)
			if length <= 0 {
				return
			}
			speed := value.Or(value.Field[float64](a.datum, "animationSpeed"), value.Of[float64](opts["animationSpeed"]), ctx, 600)
			l := geo.Num(length)
			dom.SetAttrs(e, "stroke-dasharray", l+" "+l, "stroke-dashoffset", "0")
			dom.Animate(e, dom.Transition{
				Attr:     "stroke-dashoffset",
				From:     l,
				To:       "0",
				Duration: time.Duration(speed) * time.Millisecond,
				Delay:    arcRevealDelay,
			})
		},
		Update: func(i int, e *dom.Element) {
			a := drawn[i]
			ctx := value.Context{Datum: a.datum}
			stroke, _ := prop(a.datum, opts, "strokeColor", ctx)
			width, _ := prop(a.datum, opts, "strokeWidth", ctx)
			dom.SetStyles(e,
				"stroke-linecap", "round",
				"stroke", stroke,
				"fill", "none",
				"stroke-width", width,
			)
			dom.SetAttr(e, "data-info", marshalDatum(a.datum))
			decorate(e, a.datum, opts, ctx)
		},
		Exit: func(e *dom.Element) bool {
			dom.Animate(e, dom.Transition{Attr: "opacity", From: "1", To: "0", Duration: arcFade})
			dom.DelAttr(e, popupAttr)
			return true
		},
	})
	return nil
}

// foldOptions merges the deprecated nested "options" object of an arc datum
// into the datum itself. d is not modified.
func foldOptions(d value.Datum) value.Datum {
	out, _ := merge.Clone(d).(merge.Map)
	nested, _ := asDatum(out["options"])
	delete(out, "options")
	return merge.Defaults(out, nested)
}

// arcPath returns the path data of an arc: a great arc when the layer's
// greatArc option is set and both endpoints have coordinates, a smooth
// curve otherwise.
func (m *Map) arcPath(d value.Datum, opts merge.Map) (string, bool) {
	ctx := value.Context{Datum: d}
	origin, originLL, ok := m.arcEndpoint(d["origin"], ctx)
	if !ok {
		return "", false
	}
	dest, destLL, ok := m.arcEndpoint(d["destination"], ctx)
	if !ok {
		return "", false
	}
	if flag(opts, "greatArc") {
		if p := geo.GreatArcPath(originLL, destLL, m.projection); p != "" {
			return p, true
		}
	}
	sharpness := value.Or(value.Field[float64](d, "arcSharpness"), value.Of[float64](opts["arcSharpness"]), ctx, 1)
	return geo.CurvePath(origin, dest, sharpness), true
}

// arcEndpoint resolves one end of an arc to pixel and geographic coordinates.
func (m *Map) arcEndpoint(raw any, ctx value.Context) (geo.XY, geo.LonLat, bool) {
	if code, ok := raw.(string); ok {
		if ll, ok := m.arcAnchors[code]; ok {
			xy, ok := geo.ProjectLonLat(m.projection, ll)
			return xy, ll, ok
		}
		f, ok := m.byID[code]
		if !ok {
			return geo.XY{}, geo.LonLat{}, false
		}
		xy, ok := m.regionCentroid(code)
		if !ok {
			return geo.XY{}, geo.LonLat{}, false
		}
		ll, _ := geo.GeoCentroid(f.Geometry)
		return xy, ll, true
	}

	point, ok := asDatum(raw)
	if !ok {
		return geo.XY{}, geo.LonLat{}, false
	}
	lat, okLat := number(point, nil, "latitude", ctx)
	lon, okLon := number(point, nil, "longitude", ctx)
	if !okLat || !okLon {
		return geo.XY{}, geo.LonLat{}, false
	}
	ll := geo.LonLat{Lon: lon, Lat: lat}
	xy, ok := geo.ProjectLonLat(m.projection, ll)
	return xy, ll, ok
}
