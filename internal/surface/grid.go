package surface

import (
	"fmt"

	"github.com/KaramelBytes/surfloom-cli/internal/dataset"
	"github.com/KaramelBytes/surfloom-cli/internal/errs"
	"gonum.org/v1/gonum/floats"
)

// DefaultResolution is the number of grid samples per axis.
const DefaultResolution = 30

// Grid is a rectangular mesh of predicted responses. Z[j][i] is the plane
// evaluated at (X[i], Y[j]): rows follow y, columns follow x.
type Grid struct {
	X []float64
	Y []float64
	Z [][]float64
}

// EvaluateGrid samples the plane on resolution×resolution evenly spaced points
// spanning [min x, max x] × [min y, max y] of ds, both endpoints included.
// The dataset only supplies the axis ranges; nothing is refitted.
func EvaluateGrid(p Plane, ds *dataset.Dataset, resolution int) (Grid, error) {
	if resolution < 2 {
		return Grid{}, fmt.Errorf("grid: resolution %d: %w", resolution, errs.ErrInvalidResolution)
	}
	if ds.Len() == 0 {
		return Grid{}, fmt.Errorf("grid: %w", errs.ErrEmptyDataset)
	}
	xs, ys, _ := ds.XYZ()
	g := Grid{
		X: linspace(floats.Min(xs), floats.Max(xs), resolution),
		Y: linspace(floats.Min(ys), floats.Max(ys), resolution),
		Z: make([][]float64, resolution),
	}
	for j, y := range g.Y {
		row := make([]float64, resolution)
		for i, x := range g.X {
			row[i] = p.Predict(x, y)
		}
		g.Z[j] = row
	}
	return g, nil
}

// linspace returns n evenly spaced values from lo to hi. The last element is
// pinned to hi so the far edge of the grid matches the data exactly.
func linspace(lo, hi float64, n int) []float64 {
	out := floats.Span(make([]float64, n), lo, hi)
	out[n-1] = hi
	return out
}

// Resolution returns the number of samples per axis.
func (g Grid) Resolution() int { return len(g.X) }

// ZRange returns the smallest and largest predicted value on the grid.
func (g Grid) ZRange() (lo, hi float64) {
	for j, row := range g.Z {
		if j == 0 {
			lo, hi = floats.Min(row), floats.Max(row)
			continue
		}
		lo = min(lo, floats.Min(row))
		hi = max(hi, floats.Max(row))
	}
	return lo, hi
}
