package datamaps

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/matzehuels/datamaps/pkg/errors"
	"github.com/matzehuels/datamaps/pkg/merge"
)

// loadOverlay fetches the choropleth dataset at url and applies it.
func (m *Map) loadOverlay(ctx context.Context, url string) error {
	body, err := m.fetcher.Fetch(ctx, url)
	if err != nil {
		code := errors.GetCode(err)
		if code == "" {
			code = errors.ErrCodeNetwork
		}
		return errors.Wrap(code, err, "load overlay data")
	}
	data, err := ParseOverlay(body, str(m.options, "dataType"))
	if err != nil {
		return err
	}
	return m.UpdateChoropleth(data, false)
}

// ParseOverlay decodes a choropleth dataset. JSON is an object keyed by region
// id, or an array of objects with an "id" field. CSV needs a header row with
// an "id" column; every row becomes the datum of its id.
func ParseOverlay(body []byte, dataType string) (merge.Map, error) {
	switch dataType {
	case "", "json":
		return parseOverlayJSON(body)
	case "csv":
		return parseOverlayCSV(body)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported data type %q", dataType)
}

func parseOverlayJSON(body []byte) (merge.Map, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedOverlay, err, "decode overlay json")
	}
	switch x := raw.(type) {
	case map[string]any:
		return x, nil
	case []any:
		return byID(x)
	}
	return nil, errors.New(errors.ErrCodeMalformedOverlay, "overlay json must be an object or an array")
}

func byID(rows []any) (merge.Map, error) {
	out := make(merge.Map, len(rows))
	for i, r := range rows {
		d, ok := asDatum(r)
		if !ok {
			return nil, errors.New(errors.ErrCodeMalformedOverlay, "overlay row %d is not an object", i)
		}
		id, _ := d["id"].(string)
		if id == "" {
			continue
		}
		out[id] = d
	}
	return out, nil
}

func parseOverlayCSV(body []byte) (merge.Map, error) {
	r := csv.NewReader(bytes.NewReader(body))
	r.TrimLeadingSpace = true
	header, err := r.Read()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedOverlay, err, "read overlay csv header")
	}
	idCol := -1
	for i, h := range header {
		if h == "id" {
			idCol = i
		}
	}
	if idCol < 0 {
		return nil, errors.New(errors.ErrCodeMalformedOverlay, "overlay csv has no id column")
	}

	out := merge.Map{}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedOverlay, err, "read overlay csv")
		}
		row := make(merge.Map, len(header))
		for i, h := range header {
			if i < len(rec) {
				row[h] = rec[i]
			}
		}
		if id := rec[idCol]; id != "" {
			out[id] = row
		}
	}
	return out, nil
}
