package datamaps

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/datamaps/pkg/errors"
	"github.com/matzehuels/datamaps/pkg/merge"
)

// Config formats accepted by [ParseConfig].
const (
	FormatTOML = "toml"
	FormatJSON = "json"
)

// layerSections are the configuration sections drawn as plugins, in drawing
// order, with the plugin each one invokes.
var layerSections = []struct{ key, plugin string }{
	{"graticule", PluginGraticule},
	{"bubbles", PluginBubbles},
	{"arcs", PluginArc},
	{"labels", PluginLabels},
	{"legend", PluginLegend},
}

// ParseConfig decodes a map configuration document.
func ParseConfig(data []byte, format string) (merge.Map, error) {
	cfg := merge.Map{}
	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode toml config")
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode json config")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported config format %q", format)
	}
	return cfg, nil
}

// LoadConfig reads a configuration file, choosing the format by extension.
func LoadConfig(path string) (merge.Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	format := FormatTOML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = FormatJSON
	}
	return ParseConfig(data, format)
}

// Build creates a map from a configuration document, draws it and renders
// the layer sections it contains:
//
//	graticule = true
//	bubbles   = [{ centered = "USA", radius = 20 }]
//	arcs      = [{ origin = "JPN", destination = "USA" }]
//	[labels]  fontSize = 10
//	[legend]  legendTitle = "Votes"
//
// Every other key is a map option.
func Build(ctx context.Context, cfg merge.Map, opts ...Option) (*Map, error) {
	options, _ := merge.Clone(cfg).(merge.Map)
	sections := make(map[string]any, len(layerSections))
	for _, s := range layerSections {
		if v, ok := options[s.key]; ok {
			sections[s.key] = v
			delete(options, s.key)
		}
	}

	m, err := New(options, opts...)
	if err != nil {
		return nil, err
	}
	if err := m.Draw(ctx); err != nil {
		return m, err
	}

	for _, s := range layerSections {
		raw, ok := sections[s.key]
		if !ok {
			continue
		}
		var err error
		switch s.plugin {
		case PluginGraticule:
			if on, isBool := raw.(bool); isBool && !on {
				continue
			}
			err = m.Graticule()
		case PluginLabels:
			lopts, _ := asDatum(raw)
			err = m.Labels(lopts)
		case PluginLegend:
			data, _ := asDatum(raw)
			err = m.Legend(data)
		default:
			err = m.Invoke(s.plugin, raw, nil, nil, false)
		}
		if err != nil {
			return m, err
		}
	}
	return m, nil
}
