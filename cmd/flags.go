package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/surfloom-cli/internal/dataset"
	"github.com/KaramelBytes/surfloom-cli/internal/surface"
	"github.com/KaramelBytes/surfloom-cli/internal/view"
	"github.com/spf13/cobra"
)

// dataFlags select the columns of a table and how to read it.
type dataFlags struct {
	x, y, z, label, lat, lon string
	delimiter                string
	decimal                  string
	thousands                string
	sheetName                string
	sheetIndex               int
}

func (f *dataFlags) register(c *cobra.Command) {
	def := dataset.DefaultColumns()
	fl := c.Flags()
	fl.StringVar(&f.x, "x", def.X, "predictor column plotted on the x axis")
	fl.StringVar(&f.y, "y", def.Y, "predictor column plotted on the y axis")
	fl.StringVar(&f.z, "z", def.Z, "response column")
	fl.StringVar(&f.label, "label", def.Label, "optional label column shown next to pins")
	fl.StringVar(&f.lat, "lat", def.Lat, "latitude column (quartile map)")
	fl.StringVar(&f.lon, "lon", def.Lon, "longitude column (quartile map)")
	fl.StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (by extension if omitted)")
	fl.StringVar(&f.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted; auto-detect reads a lone comma as decimal, so set '.' for values like 1,250)")
	fl.StringVar(&f.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted; pair with --decimal when grouping is ambiguous)")
	fl.StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to read")
	fl.IntVar(&f.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

func (f *dataFlags) columns() dataset.Columns {
	return dataset.Columns{
		X:     strings.TrimSpace(f.x),
		Y:     strings.TrimSpace(f.y),
		Z:     strings.TrimSpace(f.z),
		Label: strings.TrimSpace(f.label),
		Lat:   strings.TrimSpace(f.lat),
		Lon:   strings.TrimSpace(f.lon),
	}
}

func (f *dataFlags) readOptions() (dataset.Options, error) {
	opt := dataset.Options{SheetName: f.sheetName, SheetIndex: f.sheetIndex}
	if f.delimiter != "" {
		switch f.delimiter {
		case ",":
			opt.Delimiter = ','
		case "\t", "tab":
			opt.Delimiter = '\t'
		case ";":
			opt.Delimiter = ';'
		default:
			return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
		}
	}
	switch strings.ToLower(strings.TrimSpace(f.decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", f.decimal)
	}
	switch strings.ToLower(strings.TrimSpace(f.thousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", f.thousands)
	}
	return opt, nil
}

// viewFlags override the configured chart defaults for one view.
type viewFlags struct {
	resolution       int
	colorscale       string
	markerColorscale string
	pins             bool
	contours         bool
	widthCm          float64
	heightCm         float64
}

func (f *viewFlags) register(c *cobra.Command) {
	fl := c.Flags()
	fl.IntVar(&f.resolution, "resolution", surface.DefaultResolution, "grid samples per axis (>= 2)")
	fl.StringVar(&f.colorscale, "colorscale", view.DefaultColorscale, "surface colorscale: "+strings.Join(view.Colorscales(), ", "))
	fl.StringVar(&f.markerColorscale, "marker-colorscale", view.DefaultMarkerColorscale, "colorscale for pins")
	fl.BoolVar(&f.pins, "pins", true, "draw observations as pins colored by response")
	fl.BoolVar(&f.contours, "contours", true, "draw contour lines over the surface")
	fl.Float64Var(&f.widthCm, "width", view.DefaultWidthCm, "chart width in cm")
	fl.Float64Var(&f.heightCm, "height", view.DefaultHeightCm, "chart height in cm")
}

// options starts from the loaded config and applies only the flags the user set.
func (f *viewFlags) options(c *cobra.Command) (view.Options, error) {
	opt := configViewOptions()
	fl := c.Flags()
	if fl.Changed("resolution") {
		opt.GridResolution = f.resolution
	}
	if fl.Changed("colorscale") {
		opt.Colorscale = f.colorscale
	}
	if fl.Changed("marker-colorscale") {
		opt.MarkerColorscale = f.markerColorscale
	}
	if fl.Changed("pins") {
		opt.ShowPins = f.pins
	}
	if fl.Changed("contours") {
		opt.ShowContours = f.contours
	}
	if fl.Changed("width") {
		opt.WidthCm = f.widthCm
	}
	if fl.Changed("height") {
		opt.HeightCm = f.heightCm
	}
	if err := opt.Validate(); err != nil {
		return opt, err
	}
	return opt, nil
}

func configViewOptions() view.Options {
	opt := view.DefaultOptions()
	if cfg == nil {
		return opt
	}
	if cfg.GridResolution > 0 {
		opt.GridResolution = cfg.GridResolution
	}
	if cfg.Colorscale != "" {
		opt.Colorscale = cfg.Colorscale
	}
	if cfg.MarkerColorscale != "" {
		opt.MarkerColorscale = cfg.MarkerColorscale
	}
	opt.ShowPins = cfg.ShowPins
	opt.ShowContours = cfg.ShowContours
	if cfg.ChartWidthCm > 0 {
		opt.WidthCm = cfg.ChartWidthCm
	}
	if cfg.ChartHeightCm > 0 {
		opt.HeightCm = cfg.ChartHeightCm
	}
	return opt
}

// imageFormat resolves --format, then the output extension, then config.
func imageFormat(flag, output string) (string, error) {
	switch {
	case flag != "":
		return view.NormalizeFormat(flag)
	case filepath.Ext(output) != "":
		return view.NormalizeFormat(filepath.Ext(output))
	case cfg != nil && cfg.ImageFormat != "":
		return view.NormalizeFormat(cfg.ImageFormat)
	}
	return view.FormatPNG, nil
}

// expandHome resolves a leading ~ against the user's home directory.
func expandHome(dir string) (string, error) {
	if !strings.HasPrefix(dir, "~") {
		return filepath.Clean(dir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	dir = strings.TrimPrefix(dir, "~")
	dir = strings.TrimPrefix(dir, string(os.PathSeparator))
	dir = strings.TrimPrefix(dir, "/")
	return filepath.Join(home, dir), nil
}
