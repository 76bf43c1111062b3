// Package surface fits an ordinary-least-squares response plane
//
//	z = A·x + B·y + C
//
// over the two predictor columns of a dataset and evaluates it on a regular
// grid spanning the observed predictor ranges.
//
// Both operations are pure: they read the dataset, never modify it, and keep
// no state between calls. A Plane is immutable once returned by Fit.
package surface

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/surfloom-cli/internal/dataset"
	"github.com/KaramelBytes/surfloom-cli/internal/errs"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// collinearTol bounds the squared correlation between the predictors:
// 1 - r² at or below this value is treated as perfectly collinear.
const collinearTol = 1e-12

// Plane is a fitted response plane with its goodness of fit.
type Plane struct {
	// A and B are the slopes along x and y; C is the intercept.
	A, B, C float64
	// RSquared is the coefficient of determination against the fitted dataset.
	RSquared float64
	// RMSE is the root mean square residual.
	RMSE float64
	// N is the number of observations the plane was fitted on.
	N int
}

// Fit solves the least-squares problem over all observations of ds using a QR
// factorization of the design matrix [x y 1].
//
// Fit returns errs.ErrEmptyDataset for an empty dataset and
// errs.ErrDegenerateFit when fewer than three observations are given, when a
// predictor has no spread, when the predictors are perfectly collinear, or
// when the solver reports a singular system.
//
// When every response is identical the result is A=0, B=0, C=k with
// RSquared exactly 1.
func Fit(ds *dataset.Dataset) (Plane, error) {
	n := ds.Len()
	if n == 0 {
		return Plane{}, fmt.Errorf("fit: %w", errs.ErrEmptyDataset)
	}
	if n < 3 {
		return Plane{}, fmt.Errorf("fit: %d observations for 3 coefficients: %w", n, errs.ErrDegenerateFit)
	}
	xs, ys, zs := ds.XYZ()
	if err := checkPredictors(xs, ys); err != nil {
		return Plane{}, err
	}

	// A repeated decimal like 0.1 does not average back to itself exactly,
	// so constancy is checked on the extremes.
	if floats.Min(zs) == floats.Max(zs) {
		return Plane{C: zs[0], RSquared: 1, N: n}, nil
	}

	zMean := stat.Mean(zs, nil)
	var ssTot float64
	for _, z := range zs {
		d := z - zMean
		ssTot += d * d
	}
	design := mat.NewDense(n, 3, nil)
	for i := range xs {
		design.Set(i, 0, xs[i])
		design.Set(i, 1, ys[i])
		design.Set(i, 2, 1)
	}
	var qr mat.QR
	qr.Factorize(design)
	coef := mat.NewVecDense(3, nil)
	if err := qr.SolveVecTo(coef, false, mat.NewVecDense(n, zs)); err != nil {
		return Plane{}, fmt.Errorf("fit: solve: %v: %w", err, errs.ErrDegenerateFit)
	}

	p := Plane{A: coef.AtVec(0), B: coef.AtVec(1), C: coef.AtVec(2), N: n}
	var ssRes float64
	for i := range xs {
		r := zs[i] - p.Predict(xs[i], ys[i])
		ssRes += r * r
	}
	p.RSquared = math.Max(0, math.Min(1, 1-ssRes/ssTot))
	p.RMSE = math.Sqrt(ssRes / float64(n))
	return p, nil
}

// checkPredictors rejects predictor columns that cannot identify both slopes.
func checkPredictors(xs, ys []float64) error {
	mx := stat.Mean(xs, nil)
	my := stat.Mean(ys, nil)
	var sxx, syy, sxy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}
	switch {
	case sxx == 0:
		return fmt.Errorf("fit: x predictor is constant: %w", errs.ErrDegenerateFit)
	case syy == 0:
		return fmt.Errorf("fit: y predictor is constant: %w", errs.ErrDegenerateFit)
	case sxx*syy-sxy*sxy <= collinearTol*sxx*syy:
		return fmt.Errorf("fit: predictors are collinear: %w", errs.ErrDegenerateFit)
	}
	return nil
}

// Predict evaluates the plane at (x, y).
func (p Plane) Predict(x, y float64) float64 {
	return p.A*x + p.B*y + p.C
}

// Residuals returns z - Predict(x, y) for every observation of ds, in order.
func (p Plane) Residuals(ds *dataset.Dataset) []float64 {
	out := make([]float64, ds.Len())
	for i, o := range ds.Observations {
		out[i] = o.Z - p.Predict(o.X, o.Y)
	}
	return out
}

// Formula renders the plane with generic axis names.
func (p Plane) Formula() string {
	return p.FormulaFor("x", "y", "z")
}

// FormulaFor renders the plane using the given column names.
func (p Plane) FormulaFor(x, y, z string) string {
	return fmt.Sprintf("%s = %.4g %s %.4g·%s %s %.4g·%s",
		z, p.C, signOf(p.A), math.Abs(p.A), x, signOf(p.B), math.Abs(p.B), y)
}

// String returns a compact summary of the plane.
func (p Plane) String() string {
	return fmt.Sprintf("Plane{%s, R²: %.4f, RMSE: %.4f, N: %d}", p.Formula(), p.RSquared, p.RMSE, p.N)
}

func signOf(v float64) string {
	if v < 0 {
		return "-"
	}
	return "+"
}
