package quartile

import (
	"math"
	"testing"

	"github.com/KaramelBytes/surfloom-cli/internal/dataset"
	"github.com/KaramelBytes/surfloom-cli/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func responses(zs ...float64) *dataset.Dataset {
	obs := make([]dataset.Observation, len(zs))
	for i, z := range zs {
		obs[i] = dataset.Observation{X: float64(i), Y: float64(i * i), Z: z}
	}
	return dataset.New("test", dataset.DefaultColumns(), obs)
}

func TestComputeQuartilesLinearInterpolation(t *testing.T) {
	q, err := ComputeQuartiles(responses(40, 10, 30, 20))
	require.NoError(t, err)
	assert.Equal(t, Quartiles{Q1: 17.5, Q2: 25, Q3: 32.5}, q)
}

func TestComputeQuartilesDoesNotReorderDataset(t *testing.T) {
	ds := responses(3, 1, 2)
	_, err := ComputeQuartiles(ds)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, ds.Responses())
}

func TestComputeQuartilesSingleValue(t *testing.T) {
	q, err := ComputeQuartiles(responses(7))
	require.NoError(t, err)
	assert.Equal(t, Quartiles{Q1: 7, Q2: 7, Q3: 7}, q)
	assert.Equal(t, Q1, Classify(7, q))
	assert.Equal(t, Q4, Classify(7.01, q))
}

func TestComputeQuartilesEmpty(t *testing.T) {
	_, err := ComputeQuartiles(responses())
	require.ErrorIs(t, err, errs.ErrEmptyDataset)
}

func TestClassifyBoundaries(t *testing.T) {
	q := Quartiles{Q1: 17.5, Q2: 25, Q3: 32.5}
	cases := []struct {
		v    float64
		want Band
	}{
		{-100, Q1},
		{17.5, Q1},
		{17.6, Q2},
		{25, Q2},
		{25.0001, Q3},
		{32.5, Q3},
		{32.6, Q4},
		{math.Inf(1), Q4},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Classify(c.v, q), "Classify(%v)", c.v)
	}
}

func TestAssignAndCounts(t *testing.T) {
	ds := responses(10, 20, 30, 40, 17.5, 50)
	q, err := ComputeQuartiles(ds)
	require.NoError(t, err)
	bands := Assign(ds, q)
	require.Len(t, bands, ds.Len())

	counts := Counts(bands)
	total := 0
	for _, b := range Bands {
		total += counts[b]
	}
	assert.Equal(t, ds.Len(), total)
	assert.Equal(t, Q1, bands[0])
	assert.Equal(t, Q4, bands[5])
}

func TestBandPresentation(t *testing.T) {
	assert.Equal(t, "Q1", Q1.String())
	assert.Equal(t, "Q4", Q4.String())
	assert.Equal(t, "Band(9)", Band(9).String())
	assert.Equal(t, "#d73027", Q1.Hex())
	assert.Equal(t, "#1a9850", Q4.Hex())

	seen := map[string]Band{}
	for _, b := range Bands {
		hex := b.Hex()
		_, dup := seen[hex]
		assert.False(t, dup, "band %s shares color %s", b, hex)
		seen[hex] = b
	}
}

func TestRange(t *testing.T) {
	q := Quartiles{Q1: 1, Q2: 2, Q3: 3}
	lo, hi := q.Range(Q1)
	assert.True(t, math.IsInf(lo, -1))
	assert.Equal(t, 1.0, hi)
	lo, hi = q.Range(Q3)
	assert.Equal(t, 2.0, lo)
	assert.Equal(t, 3.0, hi)
	lo, hi = q.Range(Q4)
	assert.Equal(t, 3.0, lo)
	assert.True(t, math.IsInf(hi, 1))
}
