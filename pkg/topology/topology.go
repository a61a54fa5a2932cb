// Package topology decodes arc-encoded (TopoJSON) topologies into map regions.
//
// A topology stores shared borders once as indexed arcs; each region references
// the arcs that outline it. Decoding is delegated to github.com/rubenv/topojson,
// which rebuilds standard orb geometries. This package selects one named
// object group (the map scope), and flattens its geometries into
// [geo.Feature] values keyed by region identifier.
//
// Two sample topologies are embedded: "world" (a handful of simplified
// countries keyed by ISO3 code) and "usa" (simplified states keyed by FIPS
// code). Full datasets are loaded from a URL through a [Source].
package topology

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/paulmach/orb/geojson"
	"github.com/rubenv/topojson"

	"github.com/matzehuels/datamaps/pkg/geo"
)

//go:embed data/*.topo.json
var embedded embed.FS

const embeddedSuffix = ".topo.json"

var (
	// ErrUnknownScope is returned when no embedded topology exists for a scope.
	ErrUnknownScope = errors.New("unknown scope")

	// ErrObjectNotFound is returned when a topology lacks the requested object group.
	ErrObjectNotFound = errors.New("object not found in topology")
)

// Fetcher retrieves remote documents.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Source loads the regions of a scope.
type Source interface {
	// Load returns the regions of scope. When url is not empty the topology is
	// read from it instead of the embedded data.
	Load(ctx context.Context, scope, url string) ([]*geo.Feature, error)
}

// NewSource returns a Source reading embedded topologies and, when fetcher is
// not nil, remote ones.
func NewSource(fetcher Fetcher) Source {
	return &source{fetcher: fetcher}
}

type source struct {
	fetcher Fetcher
}

func (s *source) Load(ctx context.Context, scope, url string) ([]*geo.Feature, error) {
	if url == "" {
		data, err := Embedded(scope)
		if err != nil {
			return nil, err
		}
		return Decode(data, scope)
	}
	if s.fetcher == nil {
		return nil, fmt.Errorf("load %s: no fetcher configured for remote topologies", url)
	}
	data, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return Decode(data, scope)
}

// Embedded returns the raw embedded topology for scope.
func Embedded(scope string) ([]byte, error) {
	data, err := embedded.ReadFile(path.Join("data", scope+embeddedSuffix))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScope, scope)
	}
	return data, err
}

// Scopes lists the embedded scopes in alphabetical order.
func Scopes() []string {
	entries, _ := embedded.ReadDir("data")
	var scopes []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), embeddedSuffix); ok {
			scopes = append(scopes, name)
		}
	}
	sort.Strings(scopes)
	return scopes
}

// Decode parses a topology document and returns the regions of the object
// group named object.
func Decode(data []byte, object string) ([]*geo.Feature, error) {
	var topo topojson.Topology
	if err := json.Unmarshal(data, &topo); err != nil {
		return nil, fmt.Errorf("decode topology: %w", err)
	}
	obj, ok := topo.Objects[object]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, object)
	}

	scoped := topo
	scoped.Objects = map[string]*topojson.Geometry{object: obj}
	fc := scoped.ToGeoJSON()

	features := make([]*geo.Feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		features = append(features, fromGeoJSON(f))
	}
	return features, nil
}

func fromGeoJSON(f *geojson.Feature) *geo.Feature {
	props := map[string]any(f.Properties)
	if props == nil {
		props = map[string]any{}
	}
	feature := &geo.Feature{
		ID:         featureID(f, props),
		Properties: props,
		Geometry:   f.Geometry,
	}
	feature.Name, _ = props["name"].(string)
	return feature
}

func featureID(f *geojson.Feature, props map[string]any) string {
	if f.ID != nil {
		if id := fmt.Sprint(f.ID); id != "" {
			return id
		}
	}
	if id, ok := props["id"]; ok {
		return fmt.Sprint(id)
	}
	return ""
}
