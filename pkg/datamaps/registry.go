package datamaps

import (
	"context"
	"reflect"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/matzehuels/datamaps/pkg/dom"
	"github.com/matzehuels/datamaps/pkg/errors"
	"github.com/matzehuels/datamaps/pkg/merge"
	"github.com/matzehuels/datamaps/pkg/observability"
)

// Renderer draws a plugin into its layer group. opts are the plugin options
// already merged over the plugin's configuration defaults. A renderer must
// validate data before mutating layer.
type Renderer func(m *Map, layer *dom.Element, data any, opts merge.Map) error

// Built-in plugin names.
const (
	PluginBubbles   = "bubbles"
	PluginArc       = "arc"
	PluginLabels    = "labels"
	PluginLegend    = "legend"
	PluginGraticule = "graticule"
)

// belowRegions lists plugins whose layer is drawn under the regions.
var belowRegions = map[string]bool{PluginGraticule: true}

// Registry holds named renderers. Registering an existing name replaces it.
// A Registry is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
}

// NewRegistry returns a registry with the built-in plugins.
func NewRegistry() *Registry {
	r := &Registry{renderers: make(map[string]Renderer)}
	r.Register(PluginBubbles, renderBubbles)
	r.Register(PluginArc, renderArcs)
	r.Register(PluginLabels, renderLabels)
	r.Register(PluginLegend, renderLegend)
	r.Register(PluginGraticule, renderGraticule)
	return r
}

// Register adds fn under name, replacing any earlier registration.
func (r *Registry) Register(name string, fn Renderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderers[name] = fn
}

// Lookup returns the renderer registered under name.
func (r *Registry) Lookup(name string) (Renderer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.renderers[name]
	return fn, ok
}

// Names returns the registered plugin names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.renderers))
	for n := range r.renderers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// AddPlugin registers fn under name in the map's registry.
func (m *Map) AddPlugin(name string, fn Renderer) error {
	if name == "" || fn == nil {
		return errors.New(errors.ErrCodeInvalidInput, "plugin needs a name and a renderer")
	}
	m.registry.Register(name, fn)
	return nil
}

// Invoke runs the plugin name with data and opts.
//
// The plugin draws into a layer group named after it. That group is reused on
// later calls unless createNewLayer is set. opts are merged over the options
// of the previous call on the reused layer, or over the "<name>Config" map
// option for a new one. callback, when non-nil, receives the layer after a
// successful render. A failing renderer leaves a new layer detached.
func (m *Map) Invoke(name string, data any, opts merge.Map, callback func(layer *dom.Element), createNewLayer bool) (err error) {
	fn, ok := m.registry.Lookup(name)
	if !ok {
		return errors.New(errors.ErrCodePluginNotFound, "no plugin named %q", name)
	}
	if m.state < StateReady {
		return errors.New(errors.ErrCodeInvalidInput, "plugin %s: map is not drawn", name)
	}

	hooks := observability.Render()
	start := time.Now()
	defer func() {
		hooks.OnLayer(context.Background(), name, count(data), time.Since(start), err)
	}()

	layer := m.layers[name]
	reuse := layer != nil && !createNewLayer
	base := merge.Sub(m.options, configKey(name))
	if reuse {
		base = m.pluginOptions[name]
	}
	var merged merge.Map
	if opts != nil {
		merged, _ = merge.Clone(opts).(merge.Map)
	}
	merged = merge.Defaults(merged, base)

	if !reuse {
		m.layerSeq++
		layer = dom.New("g",
			"class", name,
			"id", "datamaps-"+name+"-"+strconv.Itoa(m.layerSeq),
		)
	}

	prev := m.state
	m.state = StateUpdating
	err = fn(m, layer, data, merged)
	m.state = prev
	if err != nil {
		return err
	}

	if !reuse {
		ref := m.popup
		if belowRegions[name] {
			ref = m.subunits
		}
		dom.InsertBefore(m.root, layer, ref)
		m.layers[name] = layer
	}
	m.pluginOptions[name] = merged
	m.logger.Debug("rendered layer", "plugin", name, "items", count(data))
	if callback != nil {
		callback(layer)
	}
	return nil
}

// configKey is the map option holding the defaults of plugin name.
func configKey(name string) string {
	return name + "Config"
}

func count(data any) int {
	if data == nil {
		return 0
	}
	rv := reflect.ValueOf(data)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len()
	}
	return 1
}

// Bubbles draws data as bubbles.
func (m *Map) Bubbles(data any, opts merge.Map) error {
	return m.Invoke(PluginBubbles, data, opts, nil, false)
}

// Arc draws data as arcs.
func (m *Map) Arc(data any, opts merge.Map) error {
	return m.Invoke(PluginArc, data, opts, nil, false)
}

// Labels labels every region.
func (m *Map) Labels(opts merge.Map) error {
	return m.Invoke(PluginLabels, nil, opts, nil, false)
}

// Legend adds a legend of the fills. data holds legendTitle,
// defaultFillName and labels.
func (m *Map) Legend(data merge.Map) error {
	return m.Invoke(PluginLegend, data, nil, nil, false)
}

// Graticule draws the 10° grid below the regions.
func (m *Map) Graticule() error {
	return m.Invoke(PluginGraticule, nil, nil, nil, false)
}
