// Package pkg provides the libraries behind datamaps.
//
// # Overview
//
// datamaps draws world and US maps as SVG documents: regions filled from a
// choropleth dataset, with bubble, arc, label, legend and graticule layers on
// top. The pkg directory is organized into three areas:
//
//  1. Drawing - [datamaps] (map instance, layers, plugins), [geo]
//     (projections, paths, great arcs), [topology] (embedded and remote
//     TopoJSON), [dom] (the SVG element tree), [value] and [merge] (option
//     resolution)
//  2. Infrastructure - [cache], [fetch], [httputil], [store], [observability],
//     [errors], [buildinfo]
//  3. Delivery - [export] (PNG, JPEG and PDF conversion) and [server] (the
//     HTTP API)
//
// # Data flow
//
//	configuration (TOML / JSON / merge.Map)
//	         ↓
//	    [merge] defaults → [datamaps.New]
//	         ↓
//	    [topology] regions → [geo] projection → [dom] paths
//	         ↓
//	    plugins: bubbles, arcs, labels, legend, graticule
//	         ↓
//	    SVG → [export] PNG/JPEG/PDF
//
// # Quick Start
//
//	m, err := datamaps.New(merge.Map{
//	    "scope": "usa",
//	    "fills": merge.Map{"HIGH": "#FF0000"},
//	    "data":  merge.Map{"06": merge.Map{"fillKey": "HIGH"}},
//	})
//	if err != nil { ... }
//	if err := m.Draw(ctx); err != nil { ... }
//	m.Bubbles([]any{merge.Map{"latitude": 38.58, "longitude": -121.49, "radius": 8.0}}, nil)
//	m.Render(os.Stdout)
package pkg
