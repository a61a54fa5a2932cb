// Package value resolves the effective value of a single visual property.
//
// Every styled property of a rendered element (fill, stroke, radius, popup
// HTML, ...) can come from two places: the datum being rendered and the
// options of the layer rendering it. A [Value] is the tagged union used for
// both sources: it is either unset, a static value, or a callback. Callbacks
// come in two shapes, dispatched by variant rather than by inspecting the
// context they are called with:
//
//   - Region callbacks receive the geography feature and the region datum.
//   - Point callbacks receive the bubble/arc datum only.
//
// # Usage
//
//	fill := value.Resolve(
//	    value.Field[string](datum, "fillColor"),
//	    value.Static("#ABDDA4"),
//	    value.Context{Datum: datum},
//	)
//
// Resolve returns ok=false when neither source is set. Callers treat that as
// "property deliberately unset", never as a zero value.
package value

import (
	"encoding/json"

	"github.com/matzehuels/datamaps/pkg/geo"
)

// Datum is a user supplied record: a per-region entry of the choropleth data,
// or one bubble/arc/label item.
type Datum = map[string]any

// Context carries what a callback may be invoked with.
type Context struct {
	Geography *geo.Feature // Set when resolving for a map region
	Datum     Datum        // Region datum, or the point/arc datum itself
}

type kind uint8

const (
	kindUnset kind = iota
	kindStatic
	kindRegion
	kindPoint
)

// Value is a static value, a callback producing one, or nothing.
// The zero Value is unset.
type Value[T any] struct {
	kind   kind
	static T
	region func(*geo.Feature, Datum) T
	point  func(Datum) T
}

// Static wraps a plain value.
func Static[T any](v T) Value[T] {
	return Value[T]{kind: kindStatic, static: v}
}

// Region wraps a callback computed from a geography feature and its datum.
func Region[T any](fn func(*geo.Feature, Datum) T) Value[T] {
	if fn == nil {
		return Value[T]{}
	}
	return Value[T]{kind: kindRegion, region: fn}
}

// Point wraps a callback computed from a bubble or arc datum.
func Point[T any](fn func(Datum) T) Value[T] {
	if fn == nil {
		return Value[T]{}
	}
	return Value[T]{kind: kindPoint, point: fn}
}

// IsSet reports whether v holds a static value or a callback.
func (v Value[T]) IsSet() bool { return v.kind != kindUnset }

// IsCallback reports whether v is computed rather than static.
func (v Value[T]) IsCallback() bool { return v.kind == kindRegion || v.kind == kindPoint }

// Eval computes v for ctx. The result of a callback is final: a callback
// returning another callback (possible only when T is any) is not invoked again.
func (v Value[T]) Eval(ctx Context) (T, bool) {
	switch v.kind {
	case kindStatic:
		return v.static, true
	case kindRegion:
		return v.region(ctx.Geography, ctx.Datum), true
	case kindPoint:
		return v.point(ctx.Datum), true
	}
	var zero T
	return zero, false
}

// Resolve returns datum when it is set, fallback otherwise, evaluated for ctx.
// ok is false when neither is set.
func Resolve[T any](datum, fallback Value[T], ctx Context) (T, bool) {
	if datum.IsSet() {
		return datum.Eval(ctx)
	}
	return fallback.Eval(ctx)
}

// Or resolves like [Resolve] and substitutes def for the null result.
func Or[T any](datum, fallback Value[T], ctx Context, def T) T {
	if v, ok := Resolve(datum, fallback, ctx); ok {
		return v
	}
	return def
}

// Of classifies a raw option or datum entry. Accepted forms are a T, a
// Value[T], a region or point callback returning T, and numbers convertible to
// T. Anything else, nil included, yields an unset Value.
func Of[T any](raw any) Value[T] {
	switch x := raw.(type) {
	case nil:
		return Value[T]{}
	case Value[T]:
		return x
	case func(*geo.Feature, Datum) T:
		return Region(x)
	case func(Datum) T:
		return Point(x)
	case T:
		return Static(x)
	}
	if v, ok := convert[T](raw); ok {
		return Static(v)
	}
	return Value[T]{}
}

// Field reads the per-datum override stored under key.
func Field[T any](d Datum, key string) Value[T] {
	if d == nil {
		return Value[T]{}
	}
	return Of[T](d[key])
}

func convert[T any](raw any) (T, bool) {
	var out T
	switch p := any(&out).(type) {
	case *float64:
		f, ok := ToFloat(raw)
		*p = f
		return out, ok
	case *int:
		f, ok := ToFloat(raw)
		*p = int(f)
		return out, ok
	case *string:
		if n, ok := raw.(json.Number); ok {
			*p = n.String()
			return out, true
		}
	}
	return out, false
}

// ToFloat converts the numeric types produced by JSON, TOML and Go literals.
func ToFloat(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
