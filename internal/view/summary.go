package view

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/surfloom-cli/internal/dataset"
	"github.com/KaramelBytes/surfloom-cli/internal/errs"
	"github.com/KaramelBytes/surfloom-cli/internal/quartile"
	"github.com/KaramelBytes/surfloom-cli/internal/surface"
	"gonum.org/v1/gonum/stat"
)

// Report holds the numbers shown next to a chart.
type Report struct {
	Name     string
	Kind     Kind
	Columns  dataset.Columns
	N        int
	Rows     int
	Skipped  int
	Warnings []string

	Plane surface.Plane
	// FitErr is set when no plane could be fitted; quartile views still render.
	FitErr error
	// Grid is set once the plane has been evaluated for a surface chart.
	Grid *surface.Grid

	Quartiles quartile.Quartiles
	Counts    map[quartile.Band]int
	Located   int

	Lowest, Highest dataset.Observation

	// stdX, stdY and stdZ are sample standard deviations used to scale slopes.
	stdX, stdY, stdZ float64

	// Provenance is free text describing where the data came from (e.g. cache hit).
	Provenance string
}

// NewReport fits and classifies ds. A degenerate fit is recorded in FitErr
// rather than returned, so quartile reports survive it.
func NewReport(ds *dataset.Dataset, kind Kind) (*Report, error) {
	if ds.Len() == 0 {
		return nil, fmt.Errorf("report: %w", errs.ErrEmptyDataset)
	}
	r := &Report{
		Name:     ds.Name,
		Kind:     kind,
		Columns:  ds.Columns,
		N:        ds.Len(),
		Rows:     ds.Rows,
		Skipped:  ds.Skipped,
		Warnings: append([]string(nil), ds.Warnings...),
	}
	plane, err := surface.Fit(ds)
	if err != nil {
		r.FitErr = err
	} else {
		r.Plane = plane
	}
	q, err := quartile.ComputeQuartiles(ds)
	if err != nil {
		return nil, err
	}
	r.Quartiles = q
	r.Counts = quartile.Counts(quartile.Assign(ds, q))

	r.Lowest, r.Highest = ds.Observations[0], ds.Observations[0]
	for _, o := range ds.Observations {
		if o.Z < r.Lowest.Z {
			r.Lowest = o
		}
		if o.Z > r.Highest.Z {
			r.Highest = o
		}
		if o.HasGeo {
			r.Located++
		}
	}
	xs, ys, zs := ds.XYZ()
	if len(zs) > 1 {
		r.stdX = stat.StdDev(xs, nil)
		r.stdY = stat.StdDev(ys, nil)
		r.stdZ = stat.StdDev(zs, nil)
	}
	return r, nil
}

// Markdown renders a compact summary suitable for a caption or standalone doc.
func (r *Report) Markdown() string {
	var b strings.Builder
	cols := r.Columns

	b.WriteString("[FIT SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	if r.Skipped > 0 {
		b.WriteString(fmt.Sprintf("Observations: %d (of %d rows)\n", r.N, r.Rows))
	} else {
		b.WriteString(fmt.Sprintf("Observations: %d\n", r.N))
	}
	if r.FitErr != nil {
		b.WriteString(fmt.Sprintf("Model: unavailable (%v)\n", r.FitErr))
	} else {
		b.WriteString(fmt.Sprintf("Model: %s\n", r.Plane.FormulaFor(cols.X, cols.Y, cols.Z)))
		b.WriteString(fmt.Sprintf("R²: %.4f\n", r.Plane.RSquared))
		b.WriteString(fmt.Sprintf("RMSE: %.4g\n", r.Plane.RMSE))
	}
	if r.Grid != nil {
		lo, hi := r.Grid.ZRange()
		b.WriteString(fmt.Sprintf("Grid: %d×%d, predicted %s %.4g to %.4g\n", len(r.Grid.X), len(r.Grid.Y), cols.Z, lo, hi))
	}
	b.WriteString("\n")

	b.WriteString("[INTERPRETATION]\n")
	if r.FitErr != nil {
		b.WriteString("- No response plane could be fitted; see the model line above.\n")
	} else if r.Plane.A == 0 && r.Plane.B == 0 {
		b.WriteString(fmt.Sprintf("- %s is constant at %.4g; neither predictor changes it.\n", cols.Z, r.Plane.C))
	} else {
		b.WriteString(r.effectLine(cols.X, r.Plane.A, r.stdX))
		b.WriteString(r.effectLine(cols.Y, r.Plane.B, r.stdY))
		b.WriteString(fmt.Sprintf("- The plane explains %.1f%% of the variation in %s (%s fit).\n",
			r.Plane.RSquared*100, cols.Z, fitQuality(r.Plane.RSquared)))
	}
	b.WriteString(fmt.Sprintf("- Lowest %s: %s\n", cols.Z, describe(r.Lowest, cols)))
	b.WriteString(fmt.Sprintf("- Highest %s: %s\n", cols.Z, describe(r.Highest, cols)))
	b.WriteString("\n")

	b.WriteString("[QUARTILE BANDS]\n")
	q := r.Quartiles
	b.WriteString(fmt.Sprintf("Boundaries: Q1 ≤ %.4g < Q2 ≤ %.4g < Q3 ≤ %.4g < Q4\n", q.Q1, q.Q2, q.Q3))
	for _, band := range quartile.Bands {
		b.WriteString(fmt.Sprintf("- %s (%s): %d observation%s\n", band, band.Hex(), r.Counts[band], plural(r.Counts[band])))
	}
	b.WriteString("\n")

	var notes []string
	notes = append(notes, r.Warnings...)
	if r.Kind == KindQuartile && r.Located < r.N {
		notes = append(notes, fmt.Sprintf("%d of %d observations have no coordinates and are not on the map", r.N-r.Located, r.N))
	}
	if r.Provenance != "" {
		notes = append(notes, "Data: "+r.Provenance)
	}
	if len(notes) > 0 {
		b.WriteString("[NOTES]\n")
		for _, n := range notes {
			b.WriteString("- ")
			b.WriteString(n)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (r *Report) effectLine(name string, slope, std float64) string {
	dir := "rises"
	if slope < 0 {
		dir = "falls"
	}
	if slope == 0 {
		return fmt.Sprintf("- %s does not change with %s.\n", r.Columns.Z, name)
	}
	line := fmt.Sprintf("- %s %s by %.4g per unit of %s", r.Columns.Z, dir, math.Abs(slope), name)
	if r.stdZ > 0 && std > 0 {
		beta := slope * std / r.stdZ
		line += fmt.Sprintf(" (%s effect, standardized %.2f)", effectStrength(beta), beta)
	}
	return line + ".\n"
}

func effectStrength(beta float64) string {
	switch a := math.Abs(beta); {
	case a >= 0.5:
		return "strong"
	case a >= 0.2:
		return "moderate"
	default:
		return "weak"
	}
}

func fitQuality(r2 float64) string {
	switch {
	case r2 >= 0.7:
		return "good"
	case r2 >= 0.4:
		return "fair"
	default:
		return "poor"
	}
}

func describe(o dataset.Observation, cols dataset.Columns) string {
	s := fmt.Sprintf("%.4g", o.Z)
	if o.Label != "" {
		s += " at " + o.Label
	}
	return s + fmt.Sprintf(" (%s %.4g, %s %.4g)", cols.X, o.X, cols.Y, o.Y)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
