package datamaps

import (
	"context"
	stderrors "errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/datamaps/pkg/dom"
	"github.com/matzehuels/datamaps/pkg/errors"
	"github.com/matzehuels/datamaps/pkg/fetch"
	"github.com/matzehuels/datamaps/pkg/geo"
	"github.com/matzehuels/datamaps/pkg/merge"
	"github.com/matzehuels/datamaps/pkg/observability"
	"github.com/matzehuels/datamaps/pkg/topology"
)

// State is the lifecycle stage of a [Map].
type State int

const (
	StateConstructing State = iota
	StateContainerAttached
	StateDrawing
	StateReady
	StateUpdating
	StateResizing
)

func (s State) String() string {
	switch s {
	case StateConstructing:
		return "constructing"
	case StateContainerAttached:
		return "container-attached"
	case StateDrawing:
		return "drawing"
	case StateReady:
		return "ready"
	case StateUpdating:
		return "updating"
	case StateResizing:
		return "resizing"
	}
	return "unknown"
}

// Map is one rendered map: its merged options, its SVG tree and the layers
// drawn into it. A Map is not safe for concurrent use.
type Map struct {
	id      string
	options merge.Map
	state   State

	source        topology.Source
	fetcher       Fetcher
	logger        *log.Logger
	registry      *Registry
	arcAnchors    Anchors
	bubbleAnchors Anchors
	labels        LabelLayout

	sourceSet, fetcherSet, loggerSet, registrySet bool

	root       *dom.Element
	subunits   *dom.Element
	popup      *dom.Element
	projection geo.Projection
	features   []*geo.Feature
	byID       map[string]*geo.Feature
	width      float64
	height     float64

	layers        map[string]*dom.Element
	pluginOptions map[string]merge.Map
	layerSeq      int
}

// New merges options over [Defaults] and attaches an empty SVG container.
// The caller's map is not modified. Call [Map.Draw] to render the base map.
func New(options merge.Map, opts ...Option) (*Map, error) {
	m := &Map{
		id:            uuid.NewString(),
		arcAnchors:    ArcAnchors,
		bubbleAnchors: BubbleAnchors,
		labels:        DefaultLabelLayout,
		layers:        make(map[string]*dom.Element),
		pluginOptions: make(map[string]merge.Map),
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.collaborators(); err != nil {
		return nil, err
	}

	var user merge.Map
	if options != nil {
		user, _ = merge.Clone(options).(merge.Map)
	}
	m.options = merge.Defaults(user, Defaults())
	if err := m.validate(); err != nil {
		return nil, err
	}

	m.width = num(m.options, "width", DefaultWidth)
	m.height = num(m.options, "height", 0)
	if m.height <= 0 || flag(m.options, "responsive") {
		m.height = m.width * num(m.options, "aspectRatio", 0.5625)
	}
	m.attach()
	return m, nil
}

func (m *Map) collaborators() error {
	missing := func(name string) error {
		return errors.New(errors.ErrCodeMissingCollaborator, "%s must not be nil", name)
	}
	switch {
	case m.sourceSet && m.source == nil:
		return missing("topology source")
	case m.fetcherSet && m.fetcher == nil:
		return missing("fetcher")
	case m.loggerSet && m.logger == nil:
		return missing("logger")
	case m.registrySet && m.registry == nil:
		return missing("registry")
	}
	if m.fetcher == nil {
		m.fetcher = fetch.NewClient(nil)
	}
	if m.source == nil {
		m.source = topology.NewSource(m.fetcher)
	}
	if m.logger == nil {
		m.logger = discardLogger()
	}
	if m.registry == nil {
		m.registry = NewRegistry()
	}
	return nil
}

func (m *Map) validate() error {
	if err := errors.ValidateScope(str(m.options, "scope")); err != nil {
		return err
	}
	if err := errors.ValidateDataType(str(m.options, "dataType")); err != nil {
		return err
	}
	for key := range merge.Sub(m.options, "fills") {
		if err := errors.ValidateFillKey(key); err != nil {
			return err
		}
	}
	if w := num(m.options, "width", DefaultWidth); w <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "width must be positive, got %v", w)
	}
	return nil
}

// attach creates the root <svg> container.
func (m *Map) attach() {
	m.root = dom.New("svg",
		"width", geo.Num(m.width),
		"height", geo.Num(m.height),
		"viewBox", "0 0 "+geo.Num(m.width)+" "+geo.Num(m.height),
		"class", "datamap",
		"style", "overflow: hidden",
		"data-width", geo.Num(m.width),
		"data-map-id", m.id,
	)
	if flag(m.options, "responsive") {
		dom.AddClass(m.root, "datamaps-responsive")
		dom.SetAttr(m.root, "preserveAspectRatio", "xMidYMid meet")
	}
	if flag(m.options, "legacyBrowser") {
		dom.SetAttr(m.root, "data-legacy-browser", "true")
	}
	m.state = StateContainerAttached
}

// Draw renders the base map: it builds the projection, loads the scope's
// topology and draws every region. When the dataUrl option is set, the
// overlay dataset is fetched and applied afterwards; a failure there leaves
// the base map in place, is passed to the onError option and returned.
// The done option is called once the map is fully drawn.
func (m *Map) Draw(ctx context.Context) (err error) {
	scope := str(m.options, "scope")
	hooks := observability.Render()
	hooks.OnDrawStart(ctx, scope)
	start := time.Now()
	defer func() {
		hooks.OnDrawComplete(ctx, scope, len(m.features), time.Since(start), err)
	}()

	m.state = StateDrawing
	m.reset()

	if m.projection, err = m.buildProjection(); err != nil {
		m.state = StateContainerAttached
		return err
	}
	geoCfg := merge.Sub(m.options, "geographyConfig")
	features, err := m.source.Load(ctx, scope, str(geoCfg, "dataUrl"))
	if err != nil {
		m.state = StateContainerAttached
		return m.topologyError(err, scope)
	}
	m.setFeatures(features)
	m.drawSubunits()
	m.state = StateReady
	m.logger.Debug("drew base map", "scope", scope, "regions", len(m.features))

	if url := str(m.options, "dataUrl"); url != "" {
		if err := m.loadOverlay(ctx, url); err != nil {
			m.logger.Warn("overlay data failed", "url", url, "err", err)
			if onError, ok := m.options["onError"].(func(error)); ok {
				onError(err)
			}
			return err
		}
	}

	if done, ok := m.options["done"].(func(*Map)); ok {
		done(m)
	}
	return nil
}

func (m *Map) topologyError(err error, scope string) error {
	if stderrors.Is(err, topology.ErrUnknownScope) {
		return errors.Wrap(errors.ErrCodeInvalidScope, err, "load topology for scope %q", scope)
	}
	if errors.GetCode(err) != "" {
		return errors.Wrap(errors.GetCode(err), err, "load topology for scope %q", scope)
	}
	return errors.Wrap(errors.ErrCodeNetwork, err, "load topology for scope %q", scope)
}

// reset empties the container so Draw can run again.
func (m *Map) reset() {
	dom.Clear(m.root)
	m.subunits, m.popup = nil, nil
	m.layers = make(map[string]*dom.Element)
	m.pluginOptions = make(map[string]merge.Map)
}

func (m *Map) buildProjection() (geo.Projection, error) {
	var fn ProjectionFunc
	switch x := m.options["setProjection"].(type) {
	case ProjectionFunc:
		fn = x
	case func(float64, float64, merge.Map) (geo.Projection, error):
		fn = x
	}
	if fn != nil {
		p, err := fn(m.width, m.height, m.options)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidProjection, err, "setProjection")
		}
		if p == nil {
			return nil, errors.New(errors.ErrCodeInvalidProjection, "setProjection returned no projection")
		}
		return p, nil
	}

	rotation, ok := pair(merge.Sub(m.options, "projectionConfig")["rotation"])
	if !ok {
		rotation = [2]float64{97, 0}
	}
	p, err := geo.NewProjection(str(m.options, "projection"), str(m.options, "scope"), m.width, m.height, rotation)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidProjection, err, "build projection")
	}
	return p, nil
}

func (m *Map) setFeatures(features []*geo.Feature) {
	m.features = features
	m.byID = make(map[string]*geo.Feature, len(features))
	for _, f := range features {
		m.byID[f.ID] = f
	}
}

// Render writes the map as a standalone SVG document.
func (m *Map) Render(w io.Writer) error {
	var opts []dom.WriteOption
	if !flag(m.options, "disableDefaultStyles") {
		opts = append(opts, dom.WithStyle(defaultCSS))
	}
	opts = append(opts, dom.WithScript(hoverScript))

	cw := &countingWriter{w: w}
	start := time.Now()
	err := dom.Write(cw, m.root, opts...)
	observability.Render().OnExport(context.Background(), "svg", cw.n, time.Since(start), err)
	return err
}

type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

// Resize rescales every layer group to width when the map is responsive.
// It reports whether anything changed.
func (m *Map) Resize(width float64) bool {
	if !flag(m.options, "responsive") || width <= 0 || m.state < StateReady {
		return false
	}
	prev := m.state
	m.state = StateResizing
	defer func() { m.state = prev }()

	scale := width / num(m.options, "width", DefaultWidth)
	for _, g := range dom.Children(m.root, "g", "") {
		dom.SetAttr(g, "transform", "scale("+geo.Num(scale)+")")
	}
	m.width, m.height = width, width*num(m.options, "aspectRatio", 0.5625)
	dom.SetAttrs(m.root, "width", geo.Num(m.width), "height", geo.Num(m.height))
	return true
}

// ID returns the unique identifier of the map.
func (m *Map) ID() string { return m.id }

// State returns the lifecycle stage.
func (m *Map) State() State { return m.state }

// Options returns the merged options. Mutating them affects later renders.
func (m *Map) Options() merge.Map { return m.options }

// Root returns the <svg> element.
func (m *Map) Root() *dom.Element { return m.root }

// Projection returns the projection of the last Draw.
func (m *Map) Projection() geo.Projection { return m.projection }

// Features returns the regions of the loaded topology.
func (m *Map) Features() []*geo.Feature { return m.features }

// Size returns the canvas size.
func (m *Map) Size() (width, height float64) { return m.width, m.height }

// Subunit returns the path of region id, or nil.
func (m *Map) Subunit(id string) *dom.Element {
	if m.subunits == nil {
		return nil
	}
	for _, e := range dom.Children(m.subunits, "path", "datamaps-subunit") {
		if dom.Attr(e, dom.KeyAttr) == id {
			return e
		}
	}
	return nil
}

// Layer returns the group of the plugin name, or nil when it never ran.
func (m *Map) Layer(name string) *dom.Element { return m.layers[name] }

// Popup returns the popup overlay.
func (m *Map) Popup() *dom.Element { return m.popup }

// LatLngToXY projects a geographic coordinate onto the canvas.
func (m *Map) LatLngToXY(lat, lng float64) (geo.XY, bool) {
	if m.projection == nil {
		return geo.XY{}, false
	}
	return geo.ProjectLonLat(m.projection, geo.LonLat{Lon: lng, Lat: lat})
}

// regionCentroid is the pixel centroid of region id.
func (m *Map) regionCentroid(id string) (geo.XY, bool) {
	f, ok := m.byID[id]
	if !ok || m.projection == nil {
		return geo.XY{}, false
	}
	return geo.Centroid(f.Geometry, m.projection)
}
