package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/datamaps/pkg/datamaps"
	"github.com/matzehuels/datamaps/pkg/errors"
	"github.com/matzehuels/datamaps/pkg/export"
	"github.com/matzehuels/datamaps/pkg/merge"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string   // output file (single format) or base path (multiple)
	formats    []string // svg, png, jpeg, pdf
	data       string   // local overlay dataset merged into the choropleth data
	dataType   string   // json or csv; inferred from the data file extension
	scope      string   // overrides the configured scope
	projection string   // overrides the configured projection
	width      float64  // overrides the configured width
	noCache    bool     // bypass the fetch cache
	exporter   string   // chrome or rsvg
	chromePath string   // Chrome binary for the chrome exporter
	scale      float64  // raster scale factor
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: export.DefaultScale}

	cmd := &cobra.Command{
		Use:   "render [config]",
		Short: "Draw a map configuration to SVG, PNG, JPEG or PDF",
		Long: `Draw a map from a TOML or JSON configuration file.

The configuration holds the map options (scope, fills, data, geographyConfig,
bubblesConfig, arcConfig, ...) plus optional layer sections: bubbles, arcs,
labels, legend and graticule. A local dataset can be merged into the
choropleth data with --data.`,
		Example: `  datamaps render election.toml
  datamaps render election.toml --data votes.csv -f svg,png
  datamaps render world.json --scope usa --width 600 -o usa.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(formatsStr)
			if err != nil {
				return err
			}
			opts.formats = formats
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, jpeg, pdf (comma-separated)")
	cmd.Flags().StringVar(&opts.data, "data", "", "overlay dataset (json or csv) merged into the choropleth data")
	cmd.Flags().StringVar(&opts.dataType, "data-type", "", "overlay dataset format: json or csv (default: from extension)")
	cmd.Flags().StringVar(&opts.scope, "scope", "", "override the configured scope")
	cmd.Flags().StringVar(&opts.projection, "projection", "", "override the configured projection: equirectangular, mercator, orthographic")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "override the configured width")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the fetch cache")
	cmd.Flags().StringVar(&opts.exporter, "exporter", "chrome", "raster exporter: chrome, rsvg")
	cmd.Flags().StringVar(&opts.chromePath, "chrome-path", "", "Chrome or Chromium binary for the chrome exporter")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "raster scale factor")

	_ = cmd.RegisterFlagCompletionFunc("scope", completeScopes)
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	_ = cmd.RegisterFlagCompletionFunc("exporter", completeFixed(exporterNames))
	_ = cmd.RegisterFlagCompletionFunc("projection", completeFixed(projections))
	_ = cmd.RegisterFlagCompletionFunc("data-type", completeFixed([]string{"json", "csv"}))

	return cmd
}

// parseFormats parses the --format flag. If empty, defaults to ["svg"].
func parseFormats(s string) ([]string, error) {
	if s == "" {
		return []string{export.FormatSVG}, nil
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		format, err := export.ParseFormat(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		formats = append(formats, format)
	}
	return formats, nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input. A known format
// extension on output is stripped as well.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if _, err := export.ParseFormat(ext); err == nil && ext != "" {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath returns where format is written. A single format with an
// explicit output path is written there verbatim.
func outputPath(opts *renderOpts, input, format string) string {
	if len(opts.formats) == 1 && opts.output != "" {
		return opts.output
	}
	return basePath(opts.output, input) + "." + format
}

// loadRenderConfig reads the configuration, applies flag overrides and
// merges the local dataset.
func loadRenderConfig(input string, opts *renderOpts) (merge.Map, error) {
	cfg, err := datamaps.LoadConfig(input)
	if err != nil {
		return nil, err
	}
	if opts.scope != "" {
		cfg["scope"] = opts.scope
	}
	if opts.projection != "" {
		cfg["projection"] = opts.projection
	}
	if opts.width > 0 {
		cfg["width"] = opts.width
	}
	if opts.data == "" {
		return cfg, nil
	}

	dataType := opts.dataType
	if dataType == "" {
		dataType = strings.TrimPrefix(strings.ToLower(filepath.Ext(opts.data)), ".")
	}
	body, err := os.ReadFile(opts.data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read data %s", opts.data)
	}
	overlay, err := datamaps.ParseOverlay(body, dataType)
	if err != nil {
		return nil, err
	}
	data := merge.Sub(cfg, "data")
	if data == nil {
		data = merge.Map{}
	}
	for id, v := range overlay {
		existing, isMap := data[id].(merge.Map)
		incoming, incomingMap := v.(merge.Map)
		if isMap && incomingMap {
			for k, iv := range incoming {
				existing[k] = iv
			}
			continue
		}
		data[id] = v
	}
	cfg["data"] = data
	return cfg, nil
}

// runRender draws the configuration in input and writes every requested
// format.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	cfg, err := loadRenderConfig(input, opts)
	if err != nil {
		return err
	}
	fetcher, err := newFetcher(opts.noCache)
	if err != nil {
		return err
	}

	m, err := datamaps.Build(ctx, cfg, datamaps.WithFetcher(fetcher), datamaps.WithLogger(logger))
	if err != nil {
		return err
	}
	w, h := m.Size()
	prog.done(fmt.Sprintf("Drew %s", m.Options()["scope"]), "regions", len(m.Features()), "size", fmt.Sprintf("%gx%g", w, h))

	var svg bytes.Buffer
	if err := m.Render(&svg); err != nil {
		return err
	}

	var conv export.Converter
	for _, format := range opts.formats {
		if format != export.FormatSVG && conv == nil {
			if conv, err = newConverter(opts.exporter, opts.chromePath); err != nil {
				return err
			}
		}
		if err := writeFormat(ctx, conv, opts.exporter, svg.Bytes(), format, outputPath(opts, input, format), opts.scale); err != nil {
			return err
		}
	}
	return nil
}

func writeFormat(ctx context.Context, conv export.Converter, exporter string, svg []byte, format, path string, scale float64) error {
	var out []byte
	var err error
	if format == export.FormatSVG {
		out = svg
	} else {
		spinner := newSpinner(ctx, exportLabel(format, scale, exporter))
		spinner.Start()
		out, err = export.Export(ctx, conv, svg, format, scale)
		elapsed := spinner.Stop()
		if err != nil {
			return err
		}
		loggerFromContext(ctx).Debug("exported", "format", format, "scale", scale, "via", exporter,
			"bytes", len(out), "elapsed", elapsed.Round(time.Millisecond))
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printFile(path)
	return nil
}
