package datamaps

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/matzehuels/datamaps/pkg/dom"
	"github.com/matzehuels/datamaps/pkg/errors"
	"github.com/matzehuels/datamaps/pkg/geo"
	"github.com/matzehuels/datamaps/pkg/merge"
)

func usaMap(t *testing.T, extra merge.Map) *Map {
	t.Helper()
	options := merge.Map{
		"scope": "usa",
		"fills": merge.Map{"HIGH": "#FF0000", "LOW": "#0000FF"},
		"data":  merge.Map{"06": merge.Map{"fillKey": "HIGH"}},
	}
	for k, v := range extra {
		options[k] = v
	}
	return newDrawn(t, options)
}

func TestUpdateChoropleth(t *testing.T) {
	m := usaMap(t, nil)
	err := m.UpdateChoropleth(merge.Map{
		"36": merge.Map{"fillKey": "LOW", "votes": 29},
		"12": "HIGH",
		"48": "#00FF00",
		"17": merge.Map{"color": "#111111"},
		"08": merge.Map{"fillColor": "#222222"},
		"":   "HIGH",
		"99": "HIGH",
	}, false)
	if err != nil {
		t.Fatalf("UpdateChoropleth() error: %v", err)
	}

	tests := map[string]string{
		"06": "#FF0000",
		"36": "#0000FF",
		"12": "#FF0000",
		"48": "#00FF00",
		"17": "#111111",
		"08": "#222222",
	}
	for id, want := range tests {
		if got := dom.Style(m.Subunit(id), "fill"); got != want {
			t.Errorf("%s fill = %q, want %q", id, got, want)
		}
	}

	var info map[string]any
	if err := json.Unmarshal([]byte(dom.Attr(m.Subunit("36"), "data-info")), &info); err != nil {
		t.Fatalf("36 data-info: %v", err)
	}
	if info["fillKey"] != "LOW" || info["votes"] != 29.0 {
		t.Errorf("36 data-info = %v", info)
	}
	if m.State() != StateReady {
		t.Errorf("state = %s after update", m.State())
	}
}

func TestUpdateChoroplethMergesDatum(t *testing.T) {
	m := usaMap(t, merge.Map{"data": merge.Map{"06": merge.Map{"fillKey": "HIGH", "electoralVotes": 55}}})
	if err := m.UpdateChoropleth(merge.Map{"06": merge.Map{"fillKey": "LOW"}}, false); err != nil {
		t.Fatal(err)
	}
	d := m.regionDatum("06")
	if d["fillKey"] != "LOW" || d["electoralVotes"] != 55 {
		t.Errorf("datum = %v, want new fillKey with old electoralVotes", d)
	}
}

func TestUpdateChoroplethReset(t *testing.T) {
	m := usaMap(t, nil)
	if err := m.UpdateChoropleth(merge.Map{"36": merge.Map{"fillKey": "LOW"}}, true); err != nil {
		t.Fatal(err)
	}

	ca := m.Subunit("06")
	if got := dom.Style(ca, "fill"); got != "#ABDDA4" {
		t.Errorf("06 fill after reset = %q, want default", got)
	}
	if got := dom.Attr(ca, "data-info"); got != "{}" {
		t.Errorf("06 data-info after reset = %q, want {}", got)
	}
	if got := dom.Style(m.Subunit("36"), "fill"); got != "#0000FF" {
		t.Errorf("36 fill = %q, want #0000FF", got)
	}
	if m.regionDatum("06") != nil {
		t.Error("stored datum of 06 survived the reset")
	}
}

func TestUpdateChoroplethBeforeDraw(t *testing.T) {
	m, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.UpdateChoropleth(merge.Map{"USA": "#000"}, false); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("UpdateChoropleth() error = %v, want INVALID_INPUT", err)
	}
}

func TestHighlightRestoresExactly(t *testing.T) {
	m := usaMap(t, nil)
	ca := m.Subunit("06")
	before := dom.Attr(ca, "style")

	if !m.Highlight(ca) {
		t.Fatal("Highlight() returned false for a region")
	}
	want := map[string]string{
		"fill":           "#FC8D59",
		"stroke":         "rgba(250, 15, 160, 0.2)",
		"stroke-width":   "2",
		"stroke-opacity": "1",
	}
	for prop, v := range want {
		if got := dom.Style(ca, prop); got != v {
			t.Errorf("highlighted %s = %q, want %q", prop, got, v)
		}
	}
	if !dom.HasAttr(ca, "data-previous-attributes") {
		t.Error("snapshot not stored")
	}
	kids := m.subunits.Children
	if kids[len(kids)-1] != ca {
		t.Error("highlighted region not raised")
	}

	m.Unhighlight(ca)
	if got := dom.Attr(ca, "style"); got != before {
		t.Errorf("style after unhighlight = %q, want %q", got, before)
	}
	if dom.HasAttr(ca, "data-previous-attributes") {
		t.Error("snapshot kept after unhighlight")
	}
}

func TestHighlightLegacyBrowser(t *testing.T) {
	m := usaMap(t, merge.Map{"legacyBrowser": true})
	ca := m.Subunit("06")
	idx := func() int {
		for i, e := range m.subunits.Children {
			if e == ca {
				return i
			}
		}
		return -1
	}
	pos := idx()
	m.Highlight(ca)
	if idx() != pos {
		t.Error("legacy browser mode raised the region")
	}
}

func TestHighlightDisabled(t *testing.T) {
	m := usaMap(t, merge.Map{"geographyConfig": merge.Map{"highlightOnHover": false, "popupOnHover": false}})
	ca := m.Subunit("06")
	before := dom.Attr(ca, "style")
	if m.Highlight(ca) {
		t.Error("Highlight() should do nothing when highlightOnHover is false")
	}
	if m.ShowPopup(ca, geo.XY{}) {
		t.Error("ShowPopup() should do nothing when popupOnHover is false")
	}
	if dom.Attr(ca, "style") != before {
		t.Error("style changed")
	}
}

func TestPopup(t *testing.T) {
	m := usaMap(t, nil)
	ca := m.Subunit("06")
	if got := dom.Attr(ca, "data-popup"); got != `<div class="hoverinfo"><strong>California</strong></div>` {
		t.Errorf("data-popup = %q", got)
	}

	m.PointerEnter(ca, geo.XY{X: 10, Y: 20})
	p := m.Popup()
	if dom.Attr(p, "visibility") != "visible" || dom.Attr(p, "x") != "10" || dom.Attr(p, "y") != "50" {
		t.Errorf("popup = %v", p.Attributes)
	}
	if dom.Attr(p, "data-content") != dom.Attr(ca, "data-popup") {
		t.Error("popup content not set")
	}

	m.PointerLeave(ca)
	if dom.Attr(p, "visibility") != "hidden" {
		t.Error("popup still visible after leave")
	}
}

func TestUpdatePopup(t *testing.T) {
	m := usaMap(t, nil)
	err := m.UpdatePopup(merge.Map{
		"popupTemplate": func(f *geo.Feature, d map[string]any) string {
			key, _ := d["fillKey"].(string)
			return "<b>" + f.Name + " " + key + "</b>"
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := dom.Attr(m.Subunit("06"), "data-popup"); got != "<b>California HIGH</b>" {
		t.Errorf("06 popup = %q", got)
	}
	if got := dom.Attr(m.Subunit("36"), "data-popup"); got != "<b>New York </b>" {
		t.Errorf("36 popup = %q", got)
	}

	if err := m.UpdatePopup(merge.Map{"popupOnHover": false}); err != nil {
		t.Fatal(err)
	}
	if dom.HasAttr(m.Subunit("06"), "data-popup") {
		t.Error("popup kept after popupOnHover=false")
	}
}

func TestOverlayData(t *testing.T) {
	tests := []struct {
		name     string
		dataType string
		body     string
	}{
		{"json object", "json", `{"06": {"fillKey": "HIGH"}, "36": "LOW"}`},
		{"json array", "json", `[{"id": "06", "fillKey": "HIGH"}, {"id": "36", "fillKey": "LOW"}]`},
		{"csv", "csv", "id,fillKey\n06,HIGH\n36,LOW\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const url = "https://example.com/votes"
			m, err := New(merge.Map{
				"scope":    "usa",
				"fills":    merge.Map{"HIGH": "#FF0000", "LOW": "#0000FF"},
				"dataUrl":  url,
				"dataType": tt.dataType,
			}, WithFetcher(stubFetcher{url: []byte(tt.body)}))
			if err != nil {
				t.Fatal(err)
			}
			if err := m.Draw(context.Background()); err != nil {
				t.Fatalf("Draw() error: %v", err)
			}
			if got := dom.Style(m.Subunit("06"), "fill"); got != "#FF0000" {
				t.Errorf("06 fill = %q", got)
			}
			if got := dom.Style(m.Subunit("36"), "fill"); got != "#0000FF" {
				t.Errorf("36 fill = %q", got)
			}
		})
	}
}

func TestOverlayErrors(t *testing.T) {
	tests := []struct {
		name    string
		fetcher stubFetcher
		code    errors.Code
	}{
		{"missing dataset", stubFetcher{}, errors.ErrCodeNotFound},
		{"malformed dataset", stubFetcher{"https://example.com/votes": []byte(`"nope"`)}, errors.ErrCodeMalformedOverlay},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reported error
			doneCalled := false
			m, err := New(merge.Map{
				"scope":   "usa",
				"dataUrl": "https://example.com/votes",
				"onError": func(err error) { reported = err },
				"done":    func(*Map) { doneCalled = true },
			}, WithFetcher(tt.fetcher))
			if err != nil {
				t.Fatal(err)
			}

			err = m.Draw(context.Background())
			if !errors.Is(err, tt.code) {
				t.Errorf("Draw() error = %v, want %s", err, tt.code)
			}
			if reported != err {
				t.Errorf("onError got %v, want the returned error", reported)
			}
			if doneCalled {
				t.Error("done called despite the overlay failure")
			}
			if m.State() != StateReady || m.Subunit("06") == nil {
				t.Error("base map not kept after overlay failure")
			}
		})
	}
}

func TestParseOverlayCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"no id column", "state,fillKey\nCA,HIGH\n"},
		{"ragged rows", "id,fillKey\n06,HIGH,extra\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseOverlay([]byte(tt.body), "csv"); !errors.Is(err, errors.ErrCodeMalformedOverlay) {
				t.Errorf("ParseOverlay() error = %v, want INVALID_OVERLAY", err)
			}
		})
	}
}
