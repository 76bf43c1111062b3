package surface

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/KaramelBytes/surfloom-cli/internal/dataset"
	"github.com/KaramelBytes/surfloom-cli/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDataset(pts ...[3]float64) *dataset.Dataset {
	obs := make([]dataset.Observation, len(pts))
	for i, p := range pts {
		obs[i] = dataset.Observation{X: p[0], Y: p[1], Z: p[2]}
	}
	return dataset.New("test", dataset.DefaultColumns(), obs)
}

func TestFitExactPlane(t *testing.T) {
	var pts [][3]float64
	for x := 0.0; x <= 4; x++ {
		for y := 0.0; y <= 3; y++ {
			pts = append(pts, [3]float64{x, y, 2*x - 3*y + 7})
		}
	}
	p, err := Fit(newDataset(pts...))
	require.NoError(t, err)

	assert.InDelta(t, 2.0, p.A, 1e-9)
	assert.InDelta(t, -3.0, p.B, 1e-9)
	assert.InDelta(t, 7.0, p.C, 1e-9)
	assert.InDelta(t, 1.0, p.RSquared, 1e-12)
	assert.InDelta(t, 0.0, p.RMSE, 1e-9)
	assert.Equal(t, len(pts), p.N)
}

func TestFitNoisyPlaneRSquaredInUnitInterval(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var pts [][3]float64
	for i := 0; i < 60; i++ {
		x := rng.Float64() * 10
		y := rng.Float64() * 5
		pts = append(pts, [3]float64{x, y, 100 - 3*x - 2*y + rng.NormFloat64()*4})
	}
	ds := newDataset(pts...)
	p, err := Fit(ds)
	require.NoError(t, err)

	assert.Greater(t, p.RSquared, 0.0)
	assert.Less(t, p.RSquared, 1.0)
	assert.InDelta(t, -3.0, p.A, 1.0)
	assert.InDelta(t, -2.0, p.B, 2.0)

	// Round trip: residuals at the input points reproduce the reported R².
	zs := ds.Responses()
	var mean float64
	for _, z := range zs {
		mean += z
	}
	mean /= float64(len(zs))
	var ssRes, ssTot float64
	for i, r := range p.Residuals(ds) {
		ssRes += r * r
		ssTot += (zs[i] - mean) * (zs[i] - mean)
	}
	assert.InDelta(t, p.RSquared, 1-ssRes/ssTot, 1e-9)
	assert.InDelta(t, p.RMSE, math.Sqrt(ssRes/float64(len(zs))), 1e-9)
}

func TestFitConstantResponse(t *testing.T) {
	for _, k := range []float64{42, 0.1, 0.7, 3.3, -2.45} {
		t.Run(fmt.Sprint(k), func(t *testing.T) {
			p, err := Fit(newDataset(
				[3]float64{0, 0, k},
				[3]float64{1, 0, k},
				[3]float64{0, 1, k},
				[3]float64{3, 2, k},
				[3]float64{5, 7, k},
				[3]float64{2, 9, k},
			))
			require.NoError(t, err)
			assert.Equal(t, 0.0, p.A)
			assert.Equal(t, 0.0, p.B)
			assert.Equal(t, k, p.C)
			assert.Equal(t, 1.0, p.RSquared)
			assert.Equal(t, 0.0, p.RMSE)
		})
	}
}

func TestFitDegenerate(t *testing.T) {
	cases := map[string]*dataset.Dataset{
		"one point":  newDataset([3]float64{1, 2, 3}),
		"two points": newDataset([3]float64{1, 2, 3}, [3]float64{2, 3, 4}),
		"constant x": newDataset([3]float64{1, 0, 1}, [3]float64{1, 1, 2}, [3]float64{1, 2, 4}),
		"constant y": newDataset([3]float64{0, 5, 1}, [3]float64{1, 5, 2}, [3]float64{2, 5, 4}),
		"collinear":  newDataset([3]float64{0, 0, 1}, [3]float64{1, 2, 2}, [3]float64{2, 4, 4}, [3]float64{3, 6, 3}),
	}
	for name, ds := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Fit(ds)
			require.ErrorIs(t, err, errs.ErrDegenerateFit)
		})
	}
}

func TestFitEmpty(t *testing.T) {
	_, err := Fit(newDataset())
	require.ErrorIs(t, err, errs.ErrEmptyDataset)
}

func TestEvaluateGridCorners(t *testing.T) {
	ds := newDataset(
		[3]float64{0, 0, 1},
		[3]float64{10, 1, 2},
		[3]float64{4, 5, 3},
		[3]float64{7, 2, 9},
	)
	p := Plane{A: 1.5, B: -2, C: 3}
	g, err := EvaluateGrid(p, ds, DefaultResolution)
	require.NoError(t, err)

	require.Len(t, g.X, 30)
	require.Len(t, g.Y, 30)
	require.Len(t, g.Z, 30)
	for _, row := range g.Z {
		require.Len(t, row, 30)
	}
	assert.Equal(t, 30, g.Resolution())

	last := 29
	corners := []struct {
		i, j int
		x, y float64
	}{
		{0, 0, 0, 0},
		{last, 0, 10, 0},
		{0, last, 0, 5},
		{last, last, 10, 5},
	}
	for _, c := range corners {
		assert.Equal(t, c.x, g.X[c.i])
		assert.Equal(t, c.y, g.Y[c.j])
		assert.Equal(t, 1.5*c.x-2*c.y+3, g.Z[c.j][c.i])
	}

	for i := 1; i < len(g.X); i++ {
		assert.InDelta(t, 10.0/29, g.X[i]-g.X[i-1], 1e-12)
		assert.InDelta(t, 5.0/29, g.Y[i]-g.Y[i-1], 1e-12)
	}

	lo, hi := g.ZRange()
	assert.Equal(t, 1.5*0-2*5+3.0, lo)
	assert.Equal(t, 1.5*10-2*0+3.0, hi)
}

func TestEvaluateGridFromFit(t *testing.T) {
	ds := newDataset(
		[3]float64{1, 1, 10},
		[3]float64{2, 4, 7},
		[3]float64{5, 2, 3},
		[3]float64{6, 6, 1},
	)
	p, err := Fit(ds)
	require.NoError(t, err)
	g, err := EvaluateGrid(p, ds, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 6}, g.X)
	assert.Equal(t, []float64{1, 6}, g.Y)
	assert.InDelta(t, p.Predict(6, 1), g.Z[0][1], 1e-12)
}

func TestEvaluateGridInvalidResolution(t *testing.T) {
	ds := newDataset([3]float64{0, 0, 1}, [3]float64{1, 1, 2}, [3]float64{2, 0, 3})
	for _, r := range []int{-1, 0, 1} {
		_, err := EvaluateGrid(Plane{}, ds, r)
		require.ErrorIs(t, err, errs.ErrInvalidResolution)
	}
	_, err := EvaluateGrid(Plane{}, newDataset(), 30)
	require.ErrorIs(t, err, errs.ErrEmptyDataset)
}

func TestFormula(t *testing.T) {
	p := Plane{A: -3.25, B: 2, C: 105.5}
	assert.Equal(t, "z = 105.5 - 3.25·x + 2·y", p.Formula())
	assert.Equal(t, "Readiness Score = 105.5 - 3.25·Mission Complexity + 2·Maintenance Burden",
		p.FormulaFor(dataset.ColMissionComplexity, dataset.ColMaintenanceBurden, dataset.ColReadinessScore))
}
