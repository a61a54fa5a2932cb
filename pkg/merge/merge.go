// Package merge fills configuration trees with defaults.
//
// Configuration is carried as nested maps (decoded from TOML/JSON or built in
// Go). [Defaults] walks the defaults key by key and only fills what the target
// is missing, so a partial user configuration keeps every value it states and
// picks up everything else:
//
//	opts := merge.Map{"fills": merge.Map{"HIGH": "#FF0000"}}
//	merge.Defaults(opts, merge.Map{"fills": merge.Map{"defaultFill": "#ABDDA4"}})
//	// opts["fills"] == {"HIGH": "#FF0000", "defaultFill": "#ABDDA4"}
//
// A key is missing when it is absent or nil. Zero values, empty strings and
// false are deliberate overrides.
package merge

import (
	"reflect"
)

// Map is a configuration object.
type Map = map[string]any

// Defaults copies every key of each source that target is missing, applying
// sources in order. Nested maps present on both sides are merged member by
// member; a nested map with string keys of any element type is converted to a
// Map first. Function values are copied by reference; everything else is cloned
// so later mutation of target never aliases into a source.
//
// A nil target is allocated. The (possibly new) target is returned.
func Defaults(target Map, sources ...Map) Map {
	if target == nil {
		target = Map{}
	}
	for _, src := range sources {
		for k, dv := range src {
			tv, present := target[k]
			if !present || tv == nil {
				if dv != nil {
					target[k] = Clone(dv)
				}
				continue
			}
			tm, tok := AsMap(tv)
			dm, dok := AsMap(dv)
			if tok && dok {
				target[k] = Defaults(tm, dm)
			}
		}
	}
	return target
}

// Clone returns a structural copy of v. Maps and slices are copied
// recursively; functions, channels and pointers keep their identity.
func Clone(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case Map:
		out := make(Map, len(x))
		for k, e := range x {
			out[k] = Clone(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Clone(e)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(x))
		for k, e := range x {
			out[k] = e
		}
		return out
	case []string:
		return append([]string(nil), x...)
	case []float64:
		return append([]float64(nil), x...)
	}
	return cloneReflect(v)
}

// cloneReflect handles typed maps and slices not covered by Clone's fast path.
func cloneReflect(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), cloneElem(iter.Value(), rv.Type().Elem()))
		}
		return out.Interface()
	case reflect.Slice:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(cloneElem(rv.Index(i), rv.Type().Elem()))
		}
		return out.Interface()
	}
	return v
}

func cloneElem(v reflect.Value, typ reflect.Type) reflect.Value {
	if !v.IsValid() || (v.Kind() == reflect.Interface && v.IsNil()) {
		return reflect.Zero(typ)
	}
	c := Clone(v.Interface())
	if c == nil {
		return reflect.Zero(typ)
	}
	return reflect.ValueOf(c).Convert(typ)
}

// IsFunc reports whether v is a function value.
func IsFunc(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}

// AsMap returns v as a Map. A Map is returned as is; any other map with
// string keys (map[string]string, map[string]float64, ...) is copied into a
// new Map.
func AsMap(v any) (Map, bool) {
	if m, ok := v.(Map); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(Map, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// Sub returns the nested map stored under key, or nil. A typed map is
// returned as a copy.
func Sub(m Map, key string) Map {
	sub, _ := AsMap(m[key])
	return sub
}
