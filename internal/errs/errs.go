// Package errs holds the sentinel errors shared by the dataset, surface and
// quartile packages. Callers match them with errors.Is; producers wrap them
// with context (column name, row count) using fmt.Errorf("...: %w", err).
package errs

import "errors"

var (
	// ErrMissingColumn indicates a required column is absent from the input table.
	ErrMissingColumn = errors.New("missing column")
	// ErrEmptyDataset indicates the input has no usable rows.
	ErrEmptyDataset = errors.New("empty dataset")
	// ErrDegenerateFit indicates the least-squares system is singular or
	// under-determined (too few points, no predictor spread, collinear predictors).
	ErrDegenerateFit = errors.New("degenerate fit")
	// ErrInvalidResolution indicates a grid resolution below 2.
	ErrInvalidResolution = errors.New("invalid grid resolution")
	// ErrNoCoordinates indicates a map view was requested for observations
	// without latitude/longitude.
	ErrNoCoordinates = errors.New("no coordinates")
)
