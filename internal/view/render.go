package view

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/surfloom-cli/internal/dataset"
	"github.com/KaramelBytes/surfloom-cli/internal/errs"
	"github.com/KaramelBytes/surfloom-cli/internal/quartile"
	"github.com/KaramelBytes/surfloom-cli/internal/surface"
	"github.com/KaramelBytes/surfloom-cli/internal/utils"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// contourLevels is the number of iso-lines drawn across the predicted range.
const contourLevels = 8

// gridXYZ adapts surface.Grid to plotter.GridXYZ. Columns follow x, rows follow y.
type gridXYZ struct{ g surface.Grid }

func (a gridXYZ) Dims() (c, r int)   { return len(a.g.X), len(a.g.Y) }
func (a gridXYZ) Z(c, r int) float64 { return a.g.Z[r][c] }
func (a gridXYZ) X(c int) float64    { return a.g.X[c] }
func (a gridXYZ) Y(r int) float64    { return a.g.Y[r] }

// Chart is a view ready to be written: the plot and the numbers behind it.
type Chart struct {
	Kind   Kind
	Plot   *plot.Plot
	Report *Report
	opt    Options
}

// NewChart fits, classifies and plots ds for the given kind. Surface charts
// fail on a degenerate fit; quartile maps only need coordinates.
func NewChart(ds *dataset.Dataset, kind Kind, opt Options) (*Chart, error) {
	opt = opt.withDefaults()
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	rep, err := NewReport(ds, kind)
	if err != nil {
		return nil, err
	}
	var p *plot.Plot
	switch kind {
	case KindSurface:
		if rep.FitErr != nil {
			return nil, rep.FitErr
		}
		g, err := surface.EvaluateGrid(rep.Plane, ds, opt.GridResolution)
		if err != nil {
			return nil, err
		}
		rep.Grid = &g
		p, err = SurfacePlot(ds, rep.Plane, g, opt)
		if err != nil {
			return nil, err
		}
	case KindQuartile:
		p, err = QuartilePlot(ds, rep.Quartiles, opt)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown view kind %q", kind)
	}
	return &Chart{Kind: kind, Plot: p, Report: rep, opt: opt}, nil
}

// Encode writes the chart to w in format (png, svg or pdf).
func (c *Chart) Encode(w io.Writer, format string) error {
	f, err := NormalizeFormat(format)
	if err != nil {
		return err
	}
	wt, err := c.Plot.WriterTo(vg.Length(c.opt.WidthCm)*vg.Centimeter, vg.Length(c.opt.HeightCm)*vg.Centimeter, f)
	if err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	return nil
}

// Save writes the chart to path, picking the format from its extension.
func (c *Chart) Save(path string) error {
	return SaveChart(path, c.Plot, c.opt)
}

// SaveChart encodes p using the extension of path and writes it atomically.
func SaveChart(path string, p *plot.Plot, opt Options) error {
	opt = opt.withDefaults()
	f, err := NormalizeFormat(filepath.Ext(path))
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(vg.Length(opt.WidthCm)*vg.Centimeter, vg.Length(opt.HeightCm)*vg.Centimeter, f)
	if err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("ensure output dir: %w", err)
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

// RenderSurface writes the surface chart for an already fitted plane and grid.
func RenderSurface(w io.Writer, ds *dataset.Dataset, plane surface.Plane, grid surface.Grid, opt Options, format string) error {
	opt = opt.withDefaults()
	p, err := SurfacePlot(ds, plane, grid, opt)
	if err != nil {
		return err
	}
	return (&Chart{Kind: KindSurface, Plot: p, opt: opt}).Encode(w, format)
}

// RenderQuartileMap writes the quartile map for precomputed quartiles.
func RenderQuartileMap(w io.Writer, ds *dataset.Dataset, q quartile.Quartiles, opt Options, format string) error {
	opt = opt.withDefaults()
	p, err := QuartilePlot(ds, q, opt)
	if err != nil {
		return err
	}
	return (&Chart{Kind: KindQuartile, Plot: p, opt: opt}).Encode(w, format)
}

// SurfacePlot draws the predicted plane as a heat map over the predictor
// ranges, with optional iso-lines and observation pins colored by response.
func SurfacePlot(ds *dataset.Dataset, plane surface.Plane, grid surface.Grid, opt Options) (*plot.Plot, error) {
	opt = opt.withDefaults()
	if ds.Len() == 0 {
		return nil, fmt.Errorf("surface chart: %w", errs.ErrEmptyDataset)
	}
	if grid.Resolution() < 2 || len(grid.Y) < 2 {
		return nil, fmt.Errorf("surface chart: %w", errs.ErrInvalidResolution)
	}
	pal, err := newPalette(opt.Colorscale, paletteSize)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s  (R² = %.3f)", plane.FormulaFor(ds.Columns.X, ds.Columns.Y, ds.Columns.Z), plane.RSquared)
	p.X.Label.Text = ds.Columns.X
	p.Y.Label.Text = ds.Columns.Y

	g := gridXYZ{g: grid}
	hm := plotter.NewHeatMap(g, pal)
	lo, hi := grid.ZRange()
	if hi <= lo {
		// Flat plane: widen the range so the palette index stays finite.
		hm.Min, hm.Max = lo-0.5, hi+0.5
	}
	p.Add(hm)

	if opt.ShowContours && hi > lo {
		levels := make([]float64, contourLevels)
		step := (hi - lo) / float64(contourLevels+1)
		for i := range levels {
			levels[i] = lo + step*float64(i+1)
		}
		ink := fixedPalette{color.Gray{Y: 0x40}}
		p.Add(plotter.NewContour(g, levels, ink))
	}

	if opt.ShowPins {
		if err := addPins(p, ds, opt); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func addPins(p *plot.Plot, ds *dataset.Dataset, opt Options) error {
	markers, err := newPalette(opt.MarkerColorscale, paletteSize)
	if err != nil {
		return err
	}
	colors := markers.Colors()
	xys := make(plotter.XYs, ds.Len())
	labels := make([]string, ds.Len())
	zs := ds.Responses()
	zlo, zhi := zs[0], zs[0]
	hasLabels := false
	for i, o := range ds.Observations {
		xys[i].X, xys[i].Y = o.X, o.Y
		labels[i] = o.Label
		zlo, zhi = min(zlo, o.Z), max(zhi, o.Z)
		if o.Label != "" {
			hasLabels = true
		}
	}
	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("pins: %w", err)
	}
	sc.GlyphStyle = draw.GlyphStyle{Color: color.Black, Radius: vg.Points(3.5), Shape: draw.CircleGlyph{}}
	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{Color: colorFor(colors, zs[i], zlo, zhi), Radius: vg.Points(3.5), Shape: draw.CircleGlyph{}}
	}
	p.Add(sc)
	p.Legend.Add(fmt.Sprintf("%s (%.4g to %.4g)", ds.Columns.Z, zlo, zhi), sc)
	p.Legend.Top = true

	if hasLabels {
		l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
		if err != nil {
			return fmt.Errorf("pin labels: %w", err)
		}
		l.Offset = vg.Point{X: vg.Points(5), Y: vg.Points(3)}
		p.Add(l)
	}
	return nil
}

// QuartilePlot draws observations at their coordinates, one series per band.
// Observations without coordinates are left out; none at all is an error.
func QuartilePlot(ds *dataset.Dataset, q quartile.Quartiles, opt Options) (*plot.Plot, error) {
	if ds.Len() == 0 {
		return nil, fmt.Errorf("quartile map: %w", errs.ErrEmptyDataset)
	}
	series := map[quartile.Band]plotter.XYs{}
	located := 0
	for _, o := range ds.Observations {
		if !o.HasGeo {
			continue
		}
		b := quartile.Classify(o.Z, q)
		series[b] = append(series[b], plotter.XY{X: o.Lon, Y: o.Lat})
		located++
	}
	if located == 0 {
		return nil, fmt.Errorf("quartile map needs %q and %q: %w", ds.Columns.Lat, ds.Columns.Lon, errs.ErrNoCoordinates)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s quartiles", ds.Columns.Z)
	p.X.Label.Text = nonEmpty(ds.Columns.Lon, dataset.ColLongitude)
	p.Y.Label.Text = nonEmpty(ds.Columns.Lat, dataset.ColLatitude)
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for _, b := range quartile.Bands {
		xys := series[b]
		if len(xys) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("band %s: %w", b, err)
		}
		sc.GlyphStyle = draw.GlyphStyle{Color: b.Color(), Radius: vg.Points(4), Shape: draw.CircleGlyph{}}
		p.Add(sc)
		p.Legend.Add(bandLegend(b, q, len(xys)), sc)
	}
	return p, nil
}

func bandLegend(b quartile.Band, q quartile.Quartiles, n int) string {
	lo, hi := q.Range(b)
	switch b {
	case quartile.Q1:
		return fmt.Sprintf("%s ≤ %.4g (%d)", b, hi, n)
	case quartile.Q4:
		return fmt.Sprintf("%s > %.4g (%d)", b, lo, n)
	}
	return fmt.Sprintf("%s %.4g to %.4g (%d)", b, lo, hi, n)
}

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
