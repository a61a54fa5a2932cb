package geo

import (
	"github.com/paulmach/orb"
)

// Feature is a decoded region of a topology: a country, a state or any other
// subdivision the active scope draws as a single subunit path.
type Feature struct {
	ID         string         // Region identifier (ISO3 code, FIPS code, ...)
	Name       string         // Display name, from the "name" property when present
	Properties map[string]any // Remaining properties carried by the topology
	Geometry   orb.Geometry   // Unprojected geometry in lon/lat degrees
}

// LonLat is a geographic coordinate pair in degrees.
type LonLat struct {
	Lon, Lat float64
}

// XY is a position in pixel space.
type XY struct {
	X, Y float64
}
