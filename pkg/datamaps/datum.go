package datamaps

import (
	"encoding/json"
	"reflect"

	"github.com/matzehuels/datamaps/pkg/errors"
	"github.com/matzehuels/datamaps/pkg/merge"
	"github.com/matzehuels/datamaps/pkg/value"
)

// series converts overlay input to a list of data. Anything that is not a
// slice or array of objects is rejected before a renderer touches the tree.
func series(layer string, data any) ([]value.Datum, error) {
	switch x := data.(type) {
	case nil:
		return nil, errors.New(errors.ErrCodeMalformedOverlay, "%s must be an array, got nothing", layer)
	case []value.Datum:
		return x, nil
	case []any:
		out := make([]value.Datum, len(x))
		for i, e := range x {
			d, ok := asDatum(e)
			if !ok {
				return nil, errors.New(errors.ErrCodeMalformedOverlay, "%s[%d] must be an object, got %T", layer, i, e)
			}
			out[i] = d
		}
		return out, nil
	}

	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, errors.New(errors.ErrCodeMalformedOverlay, "%s must be an array, got %T", layer, data)
	}
	out := make([]value.Datum, rv.Len())
	for i := range out {
		e := rv.Index(i).Interface()
		d, ok := asDatum(e)
		if !ok {
			return nil, errors.New(errors.ErrCodeMalformedOverlay, "%s[%d] must be an object, got %T", layer, i, e)
		}
		out[i] = d
	}
	return out, nil
}

func asDatum(v any) (value.Datum, bool) {
	return merge.AsMap(v)
}

// marshalDatum encodes d as JSON, leaving out callbacks. It never fails: an
// unencodable datum becomes "{}".
func marshalDatum(d value.Datum) string {
	if d == nil {
		return "{}"
	}
	b, err := json.Marshal(encodable(d))
	if err != nil {
		return "{}"
	}
	return string(b)
}

func encodable(v any) any {
	switch x := v.(type) {
	case merge.Map:
		out := make(merge.Map, len(x))
		for k, e := range x {
			if merge.IsFunc(e) || isValue(e) {
				continue
			}
			out[k] = encodable(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = encodable(e)
		}
		return out
	}
	return v
}

// isValue reports whether v is a value.Value of any type parameter.
func isValue(v any) bool {
	if v == nil {
		return false
	}
	t := reflect.TypeOf(v)
	return t.Kind() == reflect.Struct && t.PkgPath() == reflect.TypeOf(value.Value[int]{}).PkgPath()
}

// datumKey is the default join key of bubbles and arcs: the datum's JSON.
func datumKey(d value.Datum) string {
	return marshalDatum(d)
}
