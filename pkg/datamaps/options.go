package datamaps

import (
	"io"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/datamaps/pkg/geo"
	"github.com/matzehuels/datamaps/pkg/merge"
	"github.com/matzehuels/datamaps/pkg/topology"
	"github.com/matzehuels/datamaps/pkg/value"
)

// Default canvas width used when the options do not set one.
const DefaultWidth = 960.0

// Fetcher downloads remote overlay datasets.
type Fetcher = topology.Fetcher

// ProjectionFunc replaces the default projection chooser. It is read from the
// "setProjection" option.
type ProjectionFunc func(width, height float64, opts merge.Map) (geo.Projection, error)

// Defaults returns a fresh copy of the default map options. Keys follow the
// option names of the configuration files.
func Defaults() merge.Map {
	return merge.Map{
		"scope":                "world",
		"responsive":           false,
		"aspectRatio":          0.5625,
		"width":                DefaultWidth,
		"projection":           geo.Equirectangular,
		"dataType":             "json",
		"data":                 merge.Map{},
		"fills":                merge.Map{"defaultFill": "#ABDDA4"},
		"filters":              merge.Map{},
		"disableDefaultStyles": false,
		"legacyBrowser":        false,
		"projectionConfig": merge.Map{
			"rotation": []any{97.0, 0.0},
		},
		"geographyConfig": merge.Map{
			"hideAntarctica":         true,
			"hideHawaiiAndAlaska":    false,
			"borderWidth":            1.0,
			"borderOpacity":          1.0,
			"borderColor":            "#FDFDFD",
			"popupTemplate":          value.Region(regionPopup),
			"popupOnHover":           true,
			"highlightOnHover":       true,
			"highlightFillColor":     "#FC8D59",
			"highlightBorderColor":   "rgba(250, 15, 160, 0.2)",
			"highlightBorderWidth":   2.0,
			"highlightBorderOpacity": 1.0,
		},
		"bubblesConfig": merge.Map{
			"borderWidth":            2.0,
			"borderOpacity":          1.0,
			"borderColor":            "#FFFFFF",
			"popupOnHover":           true,
			"popupTemplate":          value.Point(bubblePopup),
			"fillOpacity":            0.75,
			"animate":                true,
			"highlightOnHover":       true,
			"highlightFillColor":     "#FC8D59",
			"highlightBorderColor":   "rgba(250, 15, 160, 0.2)",
			"highlightBorderWidth":   2.0,
			"highlightBorderOpacity": 1.0,
			"highlightFillOpacity":   0.85,
			"exitDelay":              100.0,
		},
		"arcConfig": merge.Map{
			"strokeColor":    "#DD1C77",
			"strokeWidth":    1.0,
			"arcSharpness":   1.0,
			"animationSpeed": 600.0,
			"popupOnHover":   false,
			"popupTemplate":  value.Point(arcPopup),
			"greatArc":       false,
		},
	}
}

func regionPopup(f *geo.Feature, _ value.Datum) string {
	name := ""
	if f != nil {
		name = f.Name
	}
	return `<div class="hoverinfo"><strong>` + name + `</strong></div>`
}

func bubblePopup(d value.Datum) string {
	name, _ := d["name"].(string)
	return `<div class="hoverinfo"><strong>` + name + `</strong></div>`
}

func arcPopup(d value.Datum) string {
	return `<div class="hoverinfo">` + marshalDatum(d) + `</div>`
}

// Anchors maps region codes to fixed geographic points.
type Anchors map[string]geo.LonLat

// ArcAnchors are the country codes an arc endpoint may name directly.
var ArcAnchors = Anchors{
	"CAN": {Lon: -114.665293, Lat: 56.624472},
	"CHL": {Lon: -70.669265, Lat: -33.448890},
	"IDN": {Lon: 106.845599, Lat: -6.208763},
	"JPN": {Lon: 139.691706, Lat: 35.689487},
	"MYS": {Lon: 101.686855, Lat: 3.139003},
	"NOR": {Lon: 10.752245, Lat: 59.913869},
	"USA": {Lon: -100.760145, Lat: 41.140276},
	"VNM": {Lon: 105.834160, Lat: 21.027764},
}

// BubbleAnchors override the centroid of a bubble's centered region.
var BubbleAnchors = Anchors{
	"USA": {Lon: -98.58333, Lat: 39.83333},
}

// LabelOffset shifts a label from its region centroid: x = cx - X, y = cy + Y.
type LabelOffset struct {
	X, Y float64
}

// LabelLayout places region labels.
type LabelLayout struct {
	// Start is the position of the first stacked label.
	Start geo.LonLat

	// Small lists regions labelled off-map with a leader line, top to bottom.
	Small []string

	// Offset applies to every region without an entry in Offsets.
	Offset  LabelOffset
	Offsets map[string]LabelOffset
}

// DefaultLabelLayout is the layout for the usa scope, keyed by FIPS code.
var DefaultLabelLayout = LabelLayout{
	Start: geo.LonLat{Lon: -67.707617, Lat: 42.722131},
	Small: []string{"50", "33", "25", "44", "09", "34", "10", "24", "11", "72", "78", "66", "60", "69", "74"},
	Offset: LabelOffset{
		X: 7.5,
		Y: 5,
	},
	Offsets: map[string]LabelOffset{
		"12": {X: -2.5, Y: 5},
		"21": {X: -2.5, Y: 5},
		"26": {X: -2.5, Y: 18},
		"36": {X: -1, Y: 5},
		"22": {X: 13, Y: 5},
	},
}

func (l LabelLayout) offset(id string) LabelOffset {
	if o, ok := l.Offsets[id]; ok {
		return o
	}
	return l.Offset
}

func (l LabelLayout) smallIndex(id string) int {
	for i, s := range l.Small {
		if s == id {
			return i
		}
	}
	return -1
}

// Option configures the collaborators of a [Map].
type Option func(*Map)

// WithTopologySource sets where base topologies come from.
func WithTopologySource(src topology.Source) Option {
	return func(m *Map) { m.source, m.sourceSet = src, true }
}

// WithFetcher sets the downloader for overlay datasets and remote topologies.
func WithFetcher(f Fetcher) Option {
	return func(m *Map) { m.fetcher, m.fetcherSet = f, true }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(m *Map) { m.logger, m.loggerSet = l, true }
}

// WithRegistry sets the plugin registry. The default is [NewRegistry].
func WithRegistry(r *Registry) Option {
	return func(m *Map) { m.registry, m.registrySet = r, true }
}

// WithArcAnchors replaces [ArcAnchors].
func WithArcAnchors(a Anchors) Option {
	return func(m *Map) { m.arcAnchors = a }
}

// WithBubbleAnchors replaces [BubbleAnchors].
func WithBubbleAnchors(a Anchors) Option {
	return func(m *Map) { m.bubbleAnchors = a }
}

// WithLabelLayout replaces [DefaultLabelLayout].
func WithLabelLayout(l LabelLayout) Option {
	return func(m *Map) { m.labels = l }
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

// str reads a string option.
func str(m merge.Map, key string) string {
	s, _ := m[key].(string)
	return s
}

// num reads a numeric option, or def when it is not a number.
func num(m merge.Map, key string, def float64) float64 {
	if f, ok := value.ToFloat(m[key]); ok {
		return f
	}
	return def
}

// flag reads a boolean option.
func flag(m merge.Map, key string) bool {
	b, _ := m[key].(bool)
	return b
}

// pair reads a two-element numeric option such as a rotation.
func pair(raw any) ([2]float64, bool) {
	switch x := raw.(type) {
	case [2]float64:
		return x, true
	case []float64:
		if len(x) >= 2 {
			return [2]float64{x[0], x[1]}, true
		}
	case []any:
		if len(x) >= 2 {
			a, ok1 := value.ToFloat(x[0])
			b, ok2 := value.ToFloat(x[1])
			return [2]float64{a, b}, ok1 && ok2
		}
	}
	return [2]float64{}, false
}

// sortedKeys returns the keys of m in order.
func sortedKeys(m merge.Map) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
