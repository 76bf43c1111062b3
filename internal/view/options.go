// Package view turns a fitted plane and its dataset into charts and a
// Markdown summary. It is the presentation collaborator of the surface and
// quartile packages and never fits or classifies on its own.
package view

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/surfloom-cli/internal/errs"
	"github.com/KaramelBytes/surfloom-cli/internal/surface"
)

// Kind selects which chart a view renders.
type Kind string

const (
	// KindSurface is the fitted plane as a heat map with optional contours and pins.
	KindSurface Kind = "surface"
	// KindQuartile is a longitude/latitude map colored by quartile band.
	KindQuartile Kind = "quartile"
)

// ParseKind accepts a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindSurface, "":
		return KindSurface, nil
	case KindQuartile:
		return KindQuartile, nil
	}
	return "", fmt.Errorf("unknown view kind %q (want %s or %s)", s, KindSurface, KindQuartile)
}

// Supported image formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
	FormatPDF = "pdf"
)

var formats = map[string]bool{FormatPNG: true, FormatSVG: true, FormatPDF: true}

// Chart defaults.
const (
	DefaultColorscale       = "YlGnBu"
	DefaultMarkerColorscale = "RdYlGn"
	DefaultWidthCm          = 16.0
	DefaultHeightCm         = 12.0
)

// Options is the presentation config of one view.
type Options struct {
	ShowPins       bool   `json:"show_pins" yaml:"show_pins"`
	ShowContours   bool   `json:"show_contours" yaml:"show_contours"`
	GridResolution int    `json:"grid_resolution" yaml:"grid_resolution"`
	Colorscale     string `json:"colorscale" yaml:"colorscale"`
	// MarkerColorscale colors pins by response on the surface chart.
	MarkerColorscale string  `json:"marker_colorscale,omitempty" yaml:"marker_colorscale,omitempty"`
	WidthCm          float64 `json:"width_cm,omitempty" yaml:"width_cm,omitempty"`
	HeightCm         float64 `json:"height_cm,omitempty" yaml:"height_cm,omitempty"`
}

// DefaultOptions mirrors the built-in config defaults.
func DefaultOptions() Options {
	return Options{
		ShowPins:         true,
		ShowContours:     true,
		GridResolution:   surface.DefaultResolution,
		Colorscale:       DefaultColorscale,
		MarkerColorscale: DefaultMarkerColorscale,
		WidthCm:          DefaultWidthCm,
		HeightCm:         DefaultHeightCm,
	}
}

// Validate rejects resolutions below 2, unknown colorscales and
// non-positive chart sizes.
func (o Options) Validate() error {
	if o.GridResolution < 2 {
		return fmt.Errorf("grid resolution %d: %w", o.GridResolution, errs.ErrInvalidResolution)
	}
	if _, ok := lookupColorscale(o.Colorscale); !ok {
		return fmt.Errorf("unknown colorscale %q (available: %s)", o.Colorscale, strings.Join(Colorscales(), ", "))
	}
	if o.MarkerColorscale != "" {
		if _, ok := lookupColorscale(o.MarkerColorscale); !ok {
			return fmt.Errorf("unknown marker colorscale %q (available: %s)", o.MarkerColorscale, strings.Join(Colorscales(), ", "))
		}
	}
	if o.WidthCm < 0 || o.HeightCm < 0 {
		return fmt.Errorf("chart size must be positive, got %gx%g cm", o.WidthCm, o.HeightCm)
	}
	return nil
}

func (o Options) withDefaults() Options {
	if o.MarkerColorscale == "" {
		o.MarkerColorscale = DefaultMarkerColorscale
	}
	if o.WidthCm == 0 {
		o.WidthCm = DefaultWidthCm
	}
	if o.HeightCm == 0 {
		o.HeightCm = DefaultHeightCm
	}
	return o
}

// NormalizeFormat lowercases f, strips a leading dot and checks it is supported.
func NormalizeFormat(f string) (string, error) {
	f = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(f), "."))
	if f == "" {
		return FormatPNG, nil
	}
	if !formats[f] {
		keys := make([]string, 0, len(formats))
		for k := range formats {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "", fmt.Errorf("unsupported image format %q (want one of %s)", f, strings.Join(keys, ", "))
	}
	return f, nil
}
