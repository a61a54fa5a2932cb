package datamaps

import (
	"github.com/matzehuels/datamaps/pkg/dom"
	"github.com/matzehuels/datamaps/pkg/errors"
	"github.com/matzehuels/datamaps/pkg/geo"
	"github.com/matzehuels/datamaps/pkg/merge"
	"github.com/matzehuels/datamaps/pkg/value"
)

// Region ids hidden by the hideAntarctica and hideHawaiiAndAlaska options.
var (
	antarctica      = map[string]bool{"ATA": true}
	hawaiiAndAlaska = map[string]bool{"02": true, "15": true, "AK": true, "HI": true}
)

// drawSubunits draws one path per visible region and adds the popup overlay.
func (m *Map) drawSubunits() {
	cfg := merge.Sub(m.options, "geographyConfig")
	m.subunits = dom.Append(m.root, "g", "class", "datamaps-subunits")

	var visible []*geo.Feature
	for _, f := range m.features {
		if flag(cfg, "hideAntarctica") && antarctica[f.ID] {
			continue
		}
		if flag(cfg, "hideHawaiiAndAlaska") && hawaiiAndAlaska[f.ID] {
			continue
		}
		visible = append(visible, f)
	}
	ids := make([]string, len(visible))
	for i, f := range visible {
		ids[i] = f.ID
	}

	dom.Join(m.subunits, "path", "datamaps-subunit", ids, dom.JoinFuncs{
		Enter: func(i int, e *dom.Element) {
			f := visible[i]
			dom.AddClass(e, f.ID)
			dom.SetAttr(e, "d", geo.PathData(f.Geometry, m.projection))
		},
		Update: func(i int, e *dom.Element) {
			f := visible[i]
			d := m.regionDatum(f.ID)
			ctx := value.Context{Geography: f, Datum: d}
			dom.SetStyle(e, "fill", m.regionFill(ctx))
			for _, s := range [][2]string{
				{"stroke-width", "borderWidth"},
				{"stroke-opacity", "borderOpacity"},
				{"stroke", "borderColor"},
			} {
				v, _ := prop(d, cfg, s[1], ctx)
				dom.SetStyle(e, s[0], v)
			}
			if d != nil {
				dom.SetAttr(e, "data-info", marshalDatum(d))
			}
			decorate(e, d, cfg, ctx)
		},
	})

	m.attachPopup()
}

// regionDatum returns the entry of the data option for id, or nil.
func (m *Map) regionDatum(id string) value.Datum {
	d, _ := asDatum(merge.Sub(m.options, "data")[id])
	return d
}

// regionFill resolves the fill of a region: the fill named by the datum's
// fillKey, then the datum's fillColor, then the default fill.
func (m *Map) regionFill(ctx value.Context) string {
	fills := merge.Sub(m.options, "fills")
	if key, ok := value.Field[string](ctx.Datum, "fillKey").Eval(ctx); ok {
		if c, ok := value.Of[string](fills[key]).Eval(ctx); ok {
			return c
		}
	}
	return value.Or(value.Field[string](ctx.Datum, "fillColor"), value.Of[string](fills["defaultFill"]), ctx, "")
}

func (m *Map) defaultFill() string {
	fill, _ := value.Of[string](merge.Sub(m.options, "fills")["defaultFill"]).Eval(value.Context{})
	return fill
}

// UpdateChoropleth recolors regions from data, keyed by region id. A value is
// either a fill key or a color string, or an object with color, fillColor or
// fillKey; objects are also merged into the region's stored datum. With reset,
// every region first goes back to the default fill with an empty datum.
func (m *Map) UpdateChoropleth(data merge.Map, reset bool) error {
	if m.state < StateReady || m.subunits == nil {
		return errors.New(errors.ErrCodeInvalidInput, "map is not drawn")
	}
	prev := m.state
	m.state = StateUpdating
	defer func() { m.state = prev }()

	cfg := merge.Sub(m.options, "geographyConfig")
	fills := merge.Sub(m.options, "fills")
	store := merge.Sub(m.options, "data")
	if store == nil || reset {
		store = merge.Map{}
	}
	m.options["data"] = store

	if reset {
		def := m.defaultFill()
		for _, e := range dom.Children(m.subunits, "path", "datamaps-subunit") {
			dom.SetAttr(e, "data-info", "{}")
			dom.SetStyle(e, "fill", def)
			f := m.byID[dom.Attr(e, dom.KeyAttr)]
			decorate(e, nil, cfg, value.Context{Geography: f})
		}
	}

	for _, id := range sortedKeys(data) {
		if id == "" {
			continue
		}
		var color string
		switch x := data[id].(type) {
		case string:
			if c, ok := value.Of[string](fills[x]).Eval(value.Context{}); ok {
				color = c
			} else {
				color = x
			}
		default:
			d, ok := asDatum(x)
			if !ok {
				m.logger.Warn("skipping choropleth entry", "region", id, "type", typeName(x))
				continue
			}
			color = choroplethColor(d, fills)
			existing, _ := asDatum(store[id])
			merged, _ := merge.Clone(d).(merge.Map)
			store[id] = merge.Defaults(merged, existing)
		}

		e := m.Subunit(id)
		if e == nil {
			continue
		}
		if color != "" {
			dom.SetStyle(e, "fill", color)
		}
		d := m.regionDatum(id)
		if d != nil {
			dom.SetAttr(e, "data-info", marshalDatum(d))
		}
		decorate(e, d, cfg, value.Context{Geography: m.byID[id], Datum: d})
	}
	return nil
}

func choroplethColor(d value.Datum, fills merge.Map) string {
	if c, ok := d["color"].(string); ok {
		return c
	}
	if c, ok := d["fillColor"].(string); ok {
		return c
	}
	key, _ := d["fillKey"].(string)
	c, _ := value.Of[string](fills[key]).Eval(value.Context{Datum: d})
	return c
}

// UpdatePopup replaces geographyConfig options (popupTemplate, popupOnHover,
// highlight settings) and recomputes the hover behavior of every region.
func (m *Map) UpdatePopup(cfg merge.Map) error {
	if m.state < StateReady || m.subunits == nil {
		return errors.New(errors.ErrCodeInvalidInput, "map is not drawn")
	}
	geoCfg := merge.Sub(m.options, "geographyConfig")
	for k, v := range cfg {
		geoCfg[k] = v
	}
	for _, e := range dom.Children(m.subunits, "path", "datamaps-subunit") {
		id := dom.Attr(e, dom.KeyAttr)
		d := m.regionDatum(id)
		decorate(e, d, geoCfg, value.Context{Geography: m.byID[id], Datum: d})
	}
	return nil
}

// attachPopup adds the hidden popup overlay on top of everything.
func (m *Map) attachPopup() {
	m.popup = dom.Append(m.root, "foreignObject",
		"class", "datamaps-hoverover",
		"x", "0",
		"y", "0",
		"width", "250",
		"height", "150",
		"visibility", "hidden",
	)
	dom.Append(m.popup, "div",
		"xmlns", "http://www.w3.org/1999/xhtml",
		"class", "datamaps-hoverover-content",
	)
}
