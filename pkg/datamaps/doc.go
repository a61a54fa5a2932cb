// Package datamaps renders interactive choropleth maps as standalone SVG.
//
// A [Map] merges its options over [Defaults], loads the topology of its scope
// and draws one path per region into an in-memory SVG tree. Overlays are
// plugins run through [Map.Invoke]: bubbles, arcs, labels, a legend and a
// graticule are built in, and [Map.AddPlugin] adds more. [Map.Render] writes
// the document with its default styles and a small script that highlights
// regions and shows popups in the browser.
//
// # Usage
//
//	m, err := datamaps.New(merge.Map{
//	    "scope": "usa",
//	    "fills": merge.Map{"HIGH": "#FF0000", "defaultFill": "#ABDDA4"},
//	    "data":  merge.Map{"06": merge.Map{"fillKey": "HIGH"}},
//	})
//	if err != nil {
//	    return err
//	}
//	if err := m.Draw(ctx); err != nil {
//	    return err
//	}
//	m.Bubbles([]any{merge.Map{"centered": "06", "radius": 15}}, nil)
//	return m.Render(w)
//
// # Options
//
// Style options resolve per element: an entry on the datum wins over the layer
// option, and either may be a static value or a callback (see package value).
// Region callbacks have the form func(*geo.Feature, value.Datum) T, bubble
// and arc callbacks func(value.Datum) T.
//
// # Collaborators
//
// The topology source, the fetcher used for remote datasets, the logger and
// the plugin registry are injected with [Option]s. Passing nil for any of them
// is an error; leaving one out selects the default.
package datamaps
