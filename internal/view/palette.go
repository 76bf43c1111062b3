package view

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/palette/moreland"
)

// paletteSize is the number of discrete steps used for heat maps and pins.
// Nine is the largest size every supported ColorBrewer scheme provides.
const paletteSize = 9

type colorscale func(n int) (palette.Palette, error)

func brewerScale(name string) colorscale {
	return func(n int) (palette.Palette, error) {
		return brewer.GetPalette(brewer.TypeAny, name, n)
	}
}

var colorscales = map[string]colorscale{
	"ylgnbu":   brewerScale("YlGnBu"),
	"rdylgn":   brewerScale("RdYlGn"),
	"spectral": brewerScale("Spectral"),
	"heat": func(n int) (palette.Palette, error) {
		return palette.Heat(n, 1), nil
	},
	"bluered": func(n int) (palette.Palette, error) {
		cm := moreland.SmoothBlueRed()
		cm.SetMin(0)
		cm.SetMax(1)
		return cm.Palette(n), nil
	},
}

var colorscaleNames = map[string]string{
	"ylgnbu":   "YlGnBu",
	"rdylgn":   "RdYlGn",
	"spectral": "Spectral",
	"heat":     "heat",
	"bluered":  "bluered",
}

func lookupColorscale(name string) (colorscale, bool) {
	cs, ok := colorscales[strings.ToLower(strings.TrimSpace(name))]
	return cs, ok
}

// Colorscales lists the supported colorscale names.
func Colorscales() []string {
	out := make([]string, 0, len(colorscaleNames))
	for _, v := range colorscaleNames {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// newPalette resolves name into n colors ordered low to high.
func newPalette(name string, n int) (palette.Palette, error) {
	cs, ok := lookupColorscale(name)
	if !ok {
		return nil, fmt.Errorf("unknown colorscale %q", name)
	}
	return cs(n)
}

// fixedPalette is a palette of explicit colors.
type fixedPalette []color.Color

func (p fixedPalette) Colors() []color.Color { return p }

// colorFor maps v within [lo, hi] onto the palette. A zero-width range
// maps everything to the middle color.
func colorFor(colors []color.Color, v, lo, hi float64) color.Color {
	if len(colors) == 0 {
		return color.Black
	}
	if hi <= lo || math.IsNaN(v) {
		return colors[len(colors)/2]
	}
	t := (v - lo) / (hi - lo)
	idx := int(math.Round(t * float64(len(colors)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(colors) {
		idx = len(colors) - 1
	}
	return colors[idx]
}
