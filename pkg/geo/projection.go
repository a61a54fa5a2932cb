package geo

import (
	"fmt"
	"math"
)

const (
	rad = math.Pi / 180
	deg = 180 / math.Pi

	// mercatorMaxLat keeps the mercator ordinate finite.
	mercatorMaxLat = 85.0511287798
)

// Projection names accepted by [NewProjection].
const (
	Equirectangular = "equirectangular"
	Mercator        = "mercator"
	Orthographic    = "orthographic"
	AlbersUSA       = "albersUsa"
)

// ScopeUSA selects the Albers-USA projection regardless of the configured name.
const ScopeUSA = "usa"

// Projection maps geographic coordinates to pixel coordinates.
type Projection interface {
	// Project returns the pixel position of lon/lat (degrees). ok is false when
	// the point is clipped (behind the globe, outside the composite insets).
	Project(lon, lat float64) (x, y float64, ok bool)
}

// ProjectLonLat is a convenience wrapper returning an [XY].
func ProjectLonLat(p Projection, ll LonLat) (XY, bool) {
	x, y, ok := p.Project(ll.Lon, ll.Lat)
	return XY{x, y}, ok
}

// NewProjection builds the default projection for a scope and canvas size.
//
// The usa scope always uses Albers-USA scaled to the canvas width. Every other
// scope uses the named projection scaled so the whole world spans the width;
// orthographic is fixed at scale 250, clipped at 90° and rotated by rotation
// ([lon, lat] degrees).
func NewProjection(name, scope string, width, height float64, rotation [2]float64) (Projection, error) {
	if scope == ScopeUSA {
		return NewAlbersUSA(width, width/2, height/2), nil
	}

	scale := (width + 1) / 2 / math.Pi
	ty := height / 1.8
	if name == Mercator {
		ty = height / 1.45
	}

	switch name {
	case "", Equirectangular:
		return &simple{raw: equirectangularRaw, scale: scale, tx: width / 2, ty: ty}, nil
	case Mercator:
		return &simple{raw: mercatorRaw, scale: scale, tx: width / 2, ty: ty}, nil
	case Orthographic:
		return &simple{
			raw:       orthographicRaw,
			scale:     250,
			tx:        width / 2,
			ty:        ty,
			rotLambda: rotation[0] * rad,
			rotPhi:    rotation[1] * rad,
			clip:      true,
		}, nil
	case AlbersUSA:
		return NewAlbersUSA(width, width/2, height/2), nil
	}
	return nil, fmt.Errorf("unknown projection: %s", name)
}

type rawFunc func(lambda, phi float64) (float64, float64)

// simple is a raw projection with rotation, scale, center and translate.
type simple struct {
	raw       rawFunc
	scale     float64
	tx, ty    float64
	cx, cy    float64 // raw projection of the center
	rotLambda float64
	rotPhi    float64
	clip      bool // clip the hemisphere facing away (90° clip angle)
}

func (p *simple) Project(lon, lat float64) (float64, float64, bool) {
	lambda, phi := rotate(lon*rad+p.rotLambda, lat*rad, p.rotPhi)
	if p.clip && math.Cos(lambda)*math.Cos(phi) < 0 {
		return 0, 0, false
	}
	x, y := p.raw(lambda, phi)
	return p.tx + p.scale*(x-p.cx), p.ty - p.scale*(y-p.cy), true
}

func rotate(lambda, phi, dphi float64) (float64, float64) {
	lambda = wrapLambda(lambda)
	if dphi == 0 {
		return lambda, phi
	}
	cosDphi, sinDphi := math.Cos(dphi), math.Sin(dphi)
	cosPhi := math.Cos(phi)
	x := math.Cos(lambda) * cosPhi
	y := math.Sin(lambda) * cosPhi
	z := math.Sin(phi)
	k := z*cosDphi + x*sinDphi
	return math.Atan2(y, x*cosDphi-z*sinDphi), math.Asin(max(-1, min(1, k)))
}

func wrapLambda(lambda float64) float64 {
	if lambda > math.Pi {
		return lambda - 2*math.Pi
	}
	if lambda < -math.Pi {
		return lambda + 2*math.Pi
	}
	return lambda
}

func equirectangularRaw(lambda, phi float64) (float64, float64) { return lambda, phi }

func mercatorRaw(lambda, phi float64) (float64, float64) {
	limit := mercatorMaxLat * rad
	phi = max(-limit, min(limit, phi))
	return lambda, math.Log(math.Tan(math.Pi/4 + phi/2))
}

func orthographicRaw(lambda, phi float64) (float64, float64) {
	return math.Cos(phi) * math.Sin(lambda), math.Sin(phi)
}

func conicEqualAreaRaw(phi0, phi1 float64) rawFunc {
	sy0 := math.Sin(phi0)
	n := (sy0 + math.Sin(phi1)) / 2
	c := 1 + sy0*(2*n-sy0)
	r0 := math.Sqrt(c) / n
	return func(lambda, phi float64) (float64, float64) {
		r := math.Sqrt(max(0, c-2*n*math.Sin(phi))) / n
		return r * math.Sin(lambda*n), r0 - r*math.Cos(lambda*n)
	}
}

func newConic(parallels [2]float64, rotateLon float64, center LonLat, scale, tx, ty float64) *simple {
	raw := conicEqualAreaRaw(parallels[0]*rad, parallels[1]*rad)
	cx, cy := raw(center.Lon*rad, center.Lat*rad)
	return &simple{raw: raw, scale: scale, tx: tx, ty: ty, cx: cx, cy: cy, rotLambda: rotateLon * rad}
}

// albersUSA is the composite conic projection showing the lower 48 states
// with Alaska and Hawaii as insets.
type albersUSA struct {
	lower48, alaska, hawaii *simple
	x0, y0, x1, y1          float64 // lower 48 clip extent
}

// NewAlbersUSA returns the composite Albers projection at scale k centered on
// (tx, ty).
func NewAlbersUSA(k, tx, ty float64) Projection {
	return &albersUSA{
		lower48: newConic([2]float64{29.5, 45.5}, 96, LonLat{-0.6, 38.7}, k, tx, ty),
		alaska:  newConic([2]float64{55, 65}, 154, LonLat{-2, 58.5}, k*0.35, tx-0.307*k, ty+0.201*k),
		hawaii:  newConic([2]float64{8, 18}, 157, LonLat{-3, 19.9}, k, tx-0.205*k, ty+0.212*k),
		x0:      tx - 0.455*k,
		y0:      ty - 0.238*k,
		x1:      tx + 0.455*k,
		y1:      ty + 0.238*k,
	}
}

func (p *albersUSA) Project(lon, lat float64) (float64, float64, bool) {
	switch {
	case lat >= 50 && lon <= -129:
		return p.alaska.Project(lon, lat)
	case lat >= 18 && lat <= 23 && lon >= -161 && lon <= -154:
		return p.hawaii.Project(lon, lat)
	}
	x, y, ok := p.lower48.Project(lon, lat)
	if !ok || x < p.x0 || x > p.x1 || y < p.y0 || y > p.y1 {
		return x, y, false
	}
	return x, y, true
}
