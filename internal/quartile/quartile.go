// Package quartile splits a response column at its 25th/50th/75th percentiles
// and assigns observations to one of four ordered bands, each with a fixed
// display color.
package quartile

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/KaramelBytes/surfloom-cli/internal/dataset"
	"github.com/KaramelBytes/surfloom-cli/internal/errs"
)

// Band is one of four ordered response ranges.
type Band int

const (
	Q1 Band = iota + 1
	Q2
	Q3
	Q4
)

// Bands lists the bands from lowest to highest.
var Bands = []Band{Q1, Q2, Q3, Q4}

// bandColors runs red to green: the lowest responses are the ones to flag.
var bandColors = map[Band]color.RGBA{
	Q1: {R: 0xd7, G: 0x30, B: 0x27, A: 0xff},
	Q2: {R: 0xfc, G: 0x8d, B: 0x59, A: 0xff},
	Q3: {R: 0x91, G: 0xcf, B: 0x60, A: 0xff},
	Q4: {R: 0x1a, G: 0x98, B: 0x50, A: 0xff},
}

func (b Band) String() string {
	if b < Q1 || b > Q4 {
		return fmt.Sprintf("Band(%d)", int(b))
	}
	return fmt.Sprintf("Q%d", int(b))
}

// Color returns the band's display color; unknown bands are gray.
func (b Band) Color() color.RGBA {
	if c, ok := bandColors[b]; ok {
		return c
	}
	return color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}
}

// Hex returns Color as #rrggbb.
func (b Band) Hex() string {
	c := b.Color()
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Quartiles are the band boundaries.
type Quartiles struct {
	Q1, Q2, Q3 float64
}

// Range returns the closed-above interval a band covers, with the open
// outer bounds reported as infinities.
func (q Quartiles) Range(b Band) (lo, hi float64) {
	switch b {
	case Q1:
		return math.Inf(-1), q.Q1
	case Q2:
		return q.Q1, q.Q2
	case Q3:
		return q.Q2, q.Q3
	default:
		return q.Q3, math.Inf(1)
	}
}

// ComputeQuartiles returns the 25th, 50th and 75th percentiles of the
// response column using linear interpolation between order statistics.
func ComputeQuartiles(ds *dataset.Dataset) (Quartiles, error) {
	if ds.Len() == 0 {
		return Quartiles{}, fmt.Errorf("quartiles: %w", errs.ErrEmptyDataset)
	}
	vals := ds.Responses()
	sort.Float64s(vals)
	return Quartiles{
		Q1: quantile(vals, 0.25),
		Q2: quantile(vals, 0.5),
		Q3: quantile(vals, 0.75),
	}, nil
}

// Classify maps v to its band. Upper bounds are inclusive, so a value equal
// to a boundary lands in the lower band.
func Classify(v float64, q Quartiles) Band {
	switch {
	case v <= q.Q1:
		return Q1
	case v <= q.Q2:
		return Q2
	case v <= q.Q3:
		return Q3
	default:
		return Q4
	}
}

// Assign classifies every observation of ds, in order.
func Assign(ds *dataset.Dataset, q Quartiles) []Band {
	out := make([]Band, ds.Len())
	for i, o := range ds.Observations {
		out[i] = Classify(o.Z, q)
	}
	return out
}

// Counts tallies observations per band.
func Counts(bands []Band) map[Band]int {
	out := make(map[Band]int, len(Bands))
	for _, b := range Bands {
		out[b] = 0
	}
	for _, b := range bands {
		out[b]++
	}
	return out
}

// quantile expects sorted input; pos = q·(n-1).
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
