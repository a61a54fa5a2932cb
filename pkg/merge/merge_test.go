package merge

import (
	"reflect"
	"testing"
)

func TestDefaultsFillsMissingKeys(t *testing.T) {
	target := Map{"fills": Map{"special": "blue"}}
	Defaults(target, Map{"fills": Map{"defaultFill": "gray"}})

	want := Map{"fills": Map{"special": "blue", "defaultFill": "gray"}}
	if !reflect.DeepEqual(target, want) {
		t.Errorf("Defaults() = %v, want %v", target, want)
	}
}

func TestDefaultsRespectsFalsyOverrides(t *testing.T) {
	target := Map{"borderWidth": 0, "borderColor": "", "animate": false, "radius": nil}
	Defaults(target, Map{"borderWidth": 1, "borderColor": "#FDFDFD", "animate": true, "radius": 5})

	if target["borderWidth"] != 0 {
		t.Errorf("borderWidth = %v, want 0", target["borderWidth"])
	}
	if target["borderColor"] != "" {
		t.Errorf("borderColor = %v, want empty", target["borderColor"])
	}
	if target["animate"] != false {
		t.Errorf("animate = %v, want false", target["animate"])
	}
	if target["radius"] != 5 {
		t.Errorf("radius = %v, want 5 (nil counts as missing)", target["radius"])
	}
}

func TestDefaultsDoesNotAliasSources(t *testing.T) {
	defaults := Map{"geographyConfig": Map{"borderColor": "#FDFDFD"}, "rotation": []any{97.0, 0.0}}
	a := Defaults(nil, defaults)
	b := Defaults(nil, defaults)

	Sub(a, "geographyConfig")["borderColor"] = "#000"
	a["rotation"].([]any)[0] = 10.0

	if got := Sub(b, "geographyConfig")["borderColor"]; got != "#FDFDFD" {
		t.Errorf("second target borderColor = %v, want #FDFDFD", got)
	}
	if got := Sub(defaults, "geographyConfig")["borderColor"]; got != "#FDFDFD" {
		t.Errorf("defaults mutated: borderColor = %v", got)
	}
	if got := defaults["rotation"].([]any)[0]; got != 97.0 {
		t.Errorf("defaults mutated: rotation[0] = %v", got)
	}
}

func TestDefaultsKeepsFunctionIdentity(t *testing.T) {
	calls := 0
	fn := func() { calls++ }
	target := Defaults(nil, Map{"done": fn})

	got, ok := target["done"].(func())
	if !ok {
		t.Fatalf("done = %T, want func()", target["done"])
	}
	got()
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if reflect.ValueOf(got).Pointer() != reflect.ValueOf(fn).Pointer() {
		t.Error("function default was not copied by reference")
	}
}

func TestDefaultsIdempotent(t *testing.T) {
	defaults := Map{
		"scope": "world",
		"fills": Map{"defaultFill": "#ABDDA4"},
		"bubblesConfig": Map{
			"radius":  nil,
			"animate": true,
		},
	}
	once := Defaults(Map{"fills": Map{"HIGH": "#F00"}}, defaults)
	twice := Defaults(Defaults(Map{"fills": Map{"HIGH": "#F00"}}, defaults), defaults)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("merging twice = %v, once = %v", twice, once)
	}
}

func TestDefaultsMultipleSourcesInOrder(t *testing.T) {
	target := Defaults(Map{}, Map{"a": 1}, Map{"a": 2, "b": 2}, nil)
	if target["a"] != 1 || target["b"] != 2 {
		t.Errorf("Defaults() = %v, want a=1 b=2", target)
	}
}

func TestCloneTypedContainers(t *testing.T) {
	src := map[string][]string{"x": {"a", "b"}}
	c := Clone(src).(map[string][]string)
	c["x"][0] = "z"
	if src["x"][0] != "a" {
		t.Error("Clone shared slice storage with source")
	}
}

func TestDefaultsTypedNestedMaps(t *testing.T) {
	tests := []struct {
		name  string
		fills any
	}{
		{"map[string]string", map[string]string{"HIGH": "#FF0000"}},
		{"map[string]any", map[string]any{"HIGH": "#FF0000"}},
		{"named string keys", map[fillKey]string{"HIGH": "#FF0000"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := Defaults(Map{"fills": tt.fills}, Map{"fills": Map{"defaultFill": "#ABDDA4"}})

			want := Map{"HIGH": "#FF0000", "defaultFill": "#ABDDA4"}
			if got := Sub(target, "fills"); !reflect.DeepEqual(got, want) {
				t.Errorf("fills = %#v, want %#v", got, want)
			}
		})
	}
}

type fillKey string

func TestAsMap(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Map
		ok   bool
	}{
		{"map", Map{"a": 1}, Map{"a": 1}, true},
		{"typed", map[string]float64{"a": 1}, Map{"a": 1.0}, true},
		{"int keys", map[int]string{1: "a"}, nil, false},
		{"slice", []any{1}, nil, false},
		{"nil", nil, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsMap(tt.in)
			if ok != tt.ok || !reflect.DeepEqual(got, tt.want) {
				t.Errorf("AsMap(%#v) = %#v, %v; want %#v, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}
