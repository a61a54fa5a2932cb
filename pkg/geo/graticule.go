package geo

import (
	"github.com/paulmach/orb"
)

const (
	graticuleStep      = 10.0
	graticuleExtent    = 80.0
	graticulePrecision = 2.5
)

// Graticule returns the 10° grid: meridians from 80°S to 80°N (pole to pole
// every 90°) and parallels between 80°S and 80°N.
func Graticule() orb.MultiLineString {
	var lines orb.MultiLineString
	for lon := -180.0; lon <= 180; lon += graticuleStep {
		extent := graticuleExtent
		if int(lon)%90 == 0 {
			extent = 90
		}
		var line orb.LineString
		for lat := -extent; lat <= extent; lat += graticulePrecision {
			line = append(line, orb.Point{lon, lat})
		}
		lines = append(lines, line)
	}
	for lat := -graticuleExtent; lat <= graticuleExtent; lat += graticuleStep {
		var line orb.LineString
		for lon := -180.0; lon <= 180; lon += graticulePrecision {
			line = append(line, orb.Point{lon, lat})
		}
		lines = append(lines, line)
	}
	return lines
}

// GraticulePath renders [Graticule] through p.
func GraticulePath(p Projection) string {
	return PathData(Graticule(), p)
}

// StackedLabel returns the position of the index-th label in a vertical stack
// starting at start. Each row is 2+fontSize pixels below the previous one.
func StackedLabel(start XY, index int, fontSize float64) XY {
	return XY{X: start.X, Y: start.Y + float64(index)*(2+fontSize)}
}
