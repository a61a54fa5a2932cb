package geo

import (
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
)

// Base offsets of the arc control point at sharpness 1.
const (
	curveOffsetX = 50.0
	curveOffsetY = 75.0
)

// ControlPoint returns the smooth-curve control point between origin and dest:
// their midpoint shifted by (50, -75) scaled by sharpness. Sharpness is not
// clamped.
func ControlPoint(origin, dest XY, sharpness float64) XY {
	return XY{
		X: (origin.X+dest.X)/2 + curveOffsetX*sharpness,
		Y: (origin.Y+dest.Y)/2 - curveOffsetY*sharpness,
	}
}

// CurvePath returns "M origin S control dest".
func CurvePath(origin, dest XY, sharpness float64) string {
	c := ControlPoint(origin, dest, sharpness)
	var b strings.Builder
	b.WriteByte('M')
	writeXY(&b, origin.X, origin.Y)
	b.WriteByte('S')
	writeXY(&b, c.X, c.Y)
	b.WriteByte(',')
	writeXY(&b, dest.X, dest.Y)
	return b.String()
}

// greatArcStep is the maximum angular distance between interpolated points.
const greatArcStep = 2 * rad

// GreatArc returns the great-circle line between two coordinates, sampled
// densely enough to stay smooth after projection.
func GreatArc(origin, dest LonLat) orb.LineString {
	a := s2.PointFromLatLng(s2.LatLngFromDegrees(origin.Lat, origin.Lon))
	b := s2.PointFromLatLng(s2.LatLngFromDegrees(dest.Lat, dest.Lon))

	n := max(2, int(math.Ceil(a.Distance(b).Radians()/greatArcStep)))
	line := make(orb.LineString, 0, n+1)
	for i := 0; i <= n; i++ {
		ll := s2.LatLngFromPoint(s2.Interpolate(float64(i)/float64(n), a, b))
		line = append(line, orb.Point{ll.Lng.Degrees(), ll.Lat.Degrees()})
	}
	return line
}

// GreatArcPath projects [GreatArc] through p as SVG path data.
func GreatArcPath(origin, dest LonLat, p Projection) string {
	return PathData(GreatArc(origin, dest), p)
}

// curveSamples is the number of segments used to measure a curve.
const curveSamples = 64

// PathLength measures path data made of M, L, S and Z commands with absolute
// coordinates, as produced by this package. Unknown commands end the walk.
func PathLength(d string) float64 {
	toks := tokenize(d)
	var (
		total      float64
		cur, start XY
		cmd        byte
	)
	next := func(i *int) (XY, bool) {
		if *i+1 >= len(toks) {
			return XY{}, false
		}
		x, err1 := strconv.ParseFloat(toks[*i], 64)
		y, err2 := strconv.ParseFloat(toks[*i+1], 64)
		*i += 2
		return XY{x, y}, err1 == nil && err2 == nil
	}

	for i := 0; i < len(toks); {
		if t := toks[i]; len(t) == 1 && strings.ContainsAny(t, "MLSZmlsz") {
			cmd = t[0]
			i++
			if cmd == 'Z' || cmd == 'z' {
				total += dist(cur, start)
				cur = start
			}
			continue
		}
		switch cmd {
		case 'M':
			pt, ok := next(&i)
			if !ok {
				return total
			}
			cur, start = pt, pt
			cmd = 'L' // implicit lineto after moveto
		case 'L':
			pt, ok := next(&i)
			if !ok {
				return total
			}
			total += dist(cur, pt)
			cur = pt
		case 'S':
			c, ok1 := next(&i)
			end, ok2 := next(&i)
			if !ok1 || !ok2 {
				return total
			}
			total += cubicLength(cur, cur, c, end)
			cur = end
		default:
			return total
		}
	}
	return total
}

func tokenize(d string) []string {
	var toks []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			toks = append(toks, b.String())
			b.Reset()
		}
	}
	for _, r := range d {
		switch {
		case strings.ContainsRune("MLSZmlsz", r):
			flush()
			toks = append(toks, string(r))
		case r == ',' || r == ' ' || r == '\n' || r == '\t':
			flush()
		case r == '-' && b.Len() > 0:
			flush()
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return toks
}

func cubicLength(p0, p1, p2, p3 XY) float64 {
	var total float64
	prev := p0
	for i := 1; i <= curveSamples; i++ {
		t := float64(i) / curveSamples
		mt := 1 - t
		pt := XY{
			X: mt*mt*mt*p0.X + 3*mt*mt*t*p1.X + 3*mt*t*t*p2.X + t*t*t*p3.X,
			Y: mt*mt*mt*p0.Y + 3*mt*mt*t*p1.Y + 3*mt*t*t*p2.Y + t*t*t*p3.Y,
		}
		total += dist(prev, pt)
		prev = pt
	}
	return total
}

func dist(a, b XY) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
