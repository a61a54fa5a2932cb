package geo

import (
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// PathData renders g through p as SVG path data. Polygon rings are closed;
// runs of clipped points split a ring into open subpaths.
func PathData(g orb.Geometry, p Projection) string {
	var b strings.Builder
	writeGeometry(&b, g, p)
	return b.String()
}

func writeGeometry(b *strings.Builder, g orb.Geometry, p Projection) {
	switch g := g.(type) {
	case orb.Polygon:
		for _, r := range g {
			writeLine(b, r, p, true)
		}
	case orb.MultiPolygon:
		for _, poly := range g {
			writeGeometry(b, poly, p)
		}
	case orb.Ring:
		writeLine(b, g, p, true)
	case orb.LineString:
		writeLine(b, g, p, false)
	case orb.MultiLineString:
		for _, ls := range g {
			writeLine(b, ls, p, false)
		}
	case orb.Collection:
		for _, c := range g {
			writeGeometry(b, c, p)
		}
	}
}

func writeLine(b *strings.Builder, pts []orb.Point, p Projection, closed bool) {
	drawing := false
	visible := 0
	for _, pt := range pts {
		x, y, ok := p.Project(pt.Lon(), pt.Lat())
		if !ok {
			drawing = false
			continue
		}
		if drawing {
			b.WriteByte('L')
		} else {
			b.WriteByte('M')
			drawing = true
		}
		writeXY(b, x, y)
		visible++
	}
	if closed && visible == len(pts) && visible > 2 {
		b.WriteByte('Z')
	}
}

func writeXY(b *strings.Builder, x, y float64) {
	b.WriteString(Num(x))
	b.WriteByte(',')
	b.WriteString(Num(y))
}

// Num formats a pixel coordinate with at most two decimals.
func Num(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// ProjectGeometry projects g into pixel space, dropping clipped points.
func ProjectGeometry(g orb.Geometry, p Projection) orb.Geometry {
	switch g := g.(type) {
	case orb.Point:
		x, y, ok := p.Project(g.Lon(), g.Lat())
		if !ok {
			return nil
		}
		return orb.Point{x, y}
	case orb.Polygon:
		out := make(orb.Polygon, 0, len(g))
		for _, r := range g {
			if pr := projectPoints(r, p); len(pr) > 2 {
				out = append(out, orb.Ring(pr))
			}
		}
		return out
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, 0, len(g))
		for _, poly := range g {
			if pp, ok := ProjectGeometry(poly, p).(orb.Polygon); ok && len(pp) > 0 {
				out = append(out, pp)
			}
		}
		return out
	case orb.LineString:
		return orb.LineString(projectPoints(g, p))
	case orb.MultiLineString:
		out := make(orb.MultiLineString, 0, len(g))
		for _, ls := range g {
			out = append(out, orb.LineString(projectPoints(ls, p)))
		}
		return out
	}
	return nil
}

func projectPoints(pts []orb.Point, p Projection) []orb.Point {
	out := make([]orb.Point, 0, len(pts))
	for _, pt := range pts {
		if x, y, ok := p.Project(pt.Lon(), pt.Lat()); ok {
			out = append(out, orb.Point{x, y})
		}
	}
	return out
}

// Centroid returns the area-weighted centroid of g in pixel space. ok is false
// when nothing of g is visible through p.
func Centroid(g orb.Geometry, p Projection) (XY, bool) {
	projected := ProjectGeometry(g, p)
	if projected == nil || isEmpty(projected) {
		return XY{}, false
	}
	c, _ := planar.CentroidArea(projected)
	if math.IsNaN(c[0]) || math.IsNaN(c[1]) {
		return XY{}, false
	}
	return XY{c[0], c[1]}, true
}

func isEmpty(g orb.Geometry) bool {
	switch g := g.(type) {
	case orb.Polygon:
		return len(g) == 0
	case orb.MultiPolygon:
		return len(g) == 0
	case orb.LineString:
		return len(g) == 0
	}
	return false
}

// GeoCentroid returns the area-weighted centroid of g in lon/lat degrees.
func GeoCentroid(g orb.Geometry) (LonLat, bool) {
	if g == nil || isEmpty(g) {
		return LonLat{}, false
	}
	c, _ := planar.CentroidArea(g)
	if math.IsNaN(c[0]) || math.IsNaN(c[1]) {
		return LonLat{}, false
	}
	return LonLat{Lon: c[0], Lat: c[1]}, true
}
