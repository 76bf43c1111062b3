package dataset

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/surfloom-cli/internal/errs"
)

// DefaultFile is the data file the dashboards read when none is given.
const DefaultFile = "USAF_3D_Data.csv"

// Column names of the readiness dataset. They must match the file header exactly.
const (
	ColMissionComplexity = "Mission Complexity"
	ColMaintenanceBurden = "Maintenance Burden"
	ColReadinessScore    = "Readiness Score"
	ColBase              = "Base"
	ColLatitude          = "Latitude"
	ColLongitude         = "Longitude"
)

// Columns names the header cells that feed each Observation field.
// X, Y and Z are required; Label, Lat and Lon are optional unless
// Options.RequireGeo is set, in which case Lat and Lon are required.
type Columns struct {
	X     string `json:"x" yaml:"x"`
	Y     string `json:"y" yaml:"y"`
	Z     string `json:"z" yaml:"z"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	Lat   string `json:"lat,omitempty" yaml:"lat,omitempty"`
	Lon   string `json:"lon,omitempty" yaml:"lon,omitempty"`
}

// DefaultColumns returns the readiness dataset column mapping.
func DefaultColumns() Columns {
	return Columns{
		X:     ColMissionComplexity,
		Y:     ColMaintenanceBurden,
		Z:     ColReadinessScore,
		Label: ColBase,
		Lat:   ColLatitude,
		Lon:   ColLongitude,
	}
}

// Key returns a stable identity for the mapping, used in cache keys.
func (c Columns) Key() string {
	return strings.Join([]string{c.X, c.Y, c.Z, c.Label, c.Lat, c.Lon}, "\x1f")
}

// Observation is one row of the table: two predictors, one response and
// display-only extras.
type Observation struct {
	X, Y, Z float64
	// Label is shown next to pins; it never takes part in the fit.
	Label string
	// Lat/Lon are set when HasGeo is true.
	Lat, Lon float64
	HasGeo   bool
}

// Dataset is an ordered sequence of observations loaded from one table.
type Dataset struct {
	Name         string
	Columns      Columns
	Observations []Observation
	// Rows counts data rows read (header excluded); Skipped counts rows
	// dropped because a required cell was blank or not numeric.
	Rows     int
	Skipped  int
	Warnings []string
}

// New builds an in-memory dataset, mainly for programmatic callers and tests.
func New(name string, cols Columns, obs []Observation) *Dataset {
	return &Dataset{Name: name, Columns: cols, Observations: obs, Rows: len(obs)}
}

// Len returns the number of observations.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Observations)
}

// XYZ splits the observations into column slices.
func (d *Dataset) XYZ() (xs, ys, zs []float64) {
	n := d.Len()
	xs = make([]float64, n)
	ys = make([]float64, n)
	zs = make([]float64, n)
	for i, o := range d.Observations {
		xs[i], ys[i], zs[i] = o.X, o.Y, o.Z
	}
	return xs, ys, zs
}

// Responses returns the response column.
func (d *Dataset) Responses() []float64 {
	_, _, zs := d.XYZ()
	return zs
}

// HasGeo reports whether every observation carries coordinates.
func (d *Dataset) HasGeo() bool {
	if d.Len() == 0 {
		return false
	}
	for _, o := range d.Observations {
		if !o.HasGeo {
			return false
		}
	}
	return true
}

// Options controls how a table is read.
type Options struct {
	// Delimiter for CSV. If 0, picks '\t' for .tsv files and ',' otherwise.
	Delimiter rune `json:"delimiter,omitempty"`
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune `json:"decimal_separator,omitempty"`
	ThousandsSeparator rune `json:"thousands_separator,omitempty"`
	// RequireGeo makes the Lat/Lon columns mandatory (map views).
	RequireGeo bool `json:"require_geo,omitempty"`
	// XLSX sheet selection; SheetIndex is 1-based and used when SheetName is empty.
	SheetName  string `json:"sheet_name,omitempty"`
	SheetIndex int    `json:"sheet_index,omitempty"`
}

// Key returns a stable identity for the options, used in cache keys.
func (o Options) Key() string {
	return fmt.Sprintf("%q|%q|%q|%t|%s|%d", o.Delimiter, o.DecimalSeparator, o.ThousandsSeparator, o.RequireGeo, o.SheetName, o.SheetIndex)
}

// Load reads a CSV/TSV or XLSX file into a Dataset using the given column mapping.
func Load(path string, cols Columns, opt Options) (*Dataset, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		src, err := openXLSX(path, opt.SheetName, opt.SheetIndex)
		if err != nil {
			return nil, err
		}
		return build(filepath.Base(path), src, cols, opt)
	}
	src, closer, err := openCSV(path, opt)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return build(filepath.Base(path), src, cols, opt)
}

// rowSource yields a header followed by data rows.
type rowSource interface {
	Header() ([]string, error)
	// Next returns the next row; ok is false at the end of input.
	Next() (row []string, ok bool, err error)
}

type columnIndex struct {
	x, y, z, label, lat, lon int
}

func resolveColumns(header []string, cols Columns, opt Options) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}
	lookup := func(name string, required bool) (int, error) {
		if name == "" {
			if required {
				return -1, fmt.Errorf("column name not configured: %w", errs.ErrMissingColumn)
			}
			return -1, nil
		}
		idx, ok := pos[name]
		if !ok {
			if required {
				return -1, fmt.Errorf("%w: %q", errs.ErrMissingColumn, name)
			}
			return -1, nil
		}
		return idx, nil
	}
	var ci columnIndex
	var err error
	if ci.x, err = lookup(cols.X, true); err != nil {
		return ci, err
	}
	if ci.y, err = lookup(cols.Y, true); err != nil {
		return ci, err
	}
	if ci.z, err = lookup(cols.Z, true); err != nil {
		return ci, err
	}
	if ci.label, err = lookup(cols.Label, false); err != nil {
		return ci, err
	}
	if ci.lat, err = lookup(cols.Lat, opt.RequireGeo); err != nil {
		return ci, err
	}
	if ci.lon, err = lookup(cols.Lon, opt.RequireGeo); err != nil {
		return ci, err
	}
	return ci, nil
}

func build(name string, src rowSource, cols Columns, opt Options) (*Dataset, error) {
	header, err := src.Header()
	if err != nil {
		return nil, err
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("%s: no header row: %w", name, errs.ErrEmptyDataset)
	}
	ci, err := resolveColumns(header, cols, opt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	ds := &Dataset{Name: name, Columns: cols}
	cell := func(row []string, idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}
	num := func(row []string, idx int) (float64, bool) {
		v := cell(row, idx)
		if v == "" {
			return 0, false
		}
		return parseNumeric(v, opt)
	}
	for {
		row, ok, err := src.Next()
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", ds.Rows+1, err)
		}
		if !ok {
			break
		}
		ds.Rows++
		x, okx := num(row, ci.x)
		y, oky := num(row, ci.y)
		z, okz := num(row, ci.z)
		if !okx || !oky || !okz {
			ds.Skipped++
			continue
		}
		o := Observation{X: x, Y: y, Z: z, Label: cell(row, ci.label)}
		if ci.lat >= 0 && ci.lon >= 0 {
			lat, oklat := num(row, ci.lat)
			lon, oklon := num(row, ci.lon)
			if oklat && oklon {
				o.Lat, o.Lon, o.HasGeo = lat, lon, true
			}
		}
		if opt.RequireGeo && !o.HasGeo {
			ds.Skipped++
			continue
		}
		ds.Observations = append(ds.Observations, o)
	}
	if ds.Skipped > 0 {
		ds.Warnings = append(ds.Warnings, fmt.Sprintf("skipped %d/%d rows with blank or non-numeric values", ds.Skipped, ds.Rows))
	}
	if len(ds.Observations) == 0 {
		return nil, fmt.Errorf("%s: %w", name, errs.ErrEmptyDataset)
	}
	return ds, nil
}
