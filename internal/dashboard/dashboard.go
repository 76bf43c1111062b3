// Package dashboard persists groups of chart views as dashboard.json.
package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/KaramelBytes/surfloom-cli/internal/dataset"
	"github.com/KaramelBytes/surfloom-cli/internal/errs"
	"github.com/KaramelBytes/surfloom-cli/internal/utils"
	"github.com/KaramelBytes/surfloom-cli/internal/view"
	"github.com/google/uuid"
)

// FileName is the dashboard file inside its directory.
const FileName = "dashboard.json"

// Dashboard is a named set of views persisted on disk.
type Dashboard struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Views       map[string]*View `json:"views"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	// Not serialized: on-disk location of the dashboard.json
	rootDir string `json:"-"`
}

// New constructs an in-memory dashboard. Call Save() to persist.
func New(name, description, rootDir string) *Dashboard {
	return &Dashboard{
		Name:        name,
		Description: description,
		Views:       make(map[string]*View),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		rootDir:     rootDir,
	}
}

// Load reads dashboard.json from the provided directory.
func Load(dir string) (*Dashboard, error) {
	path := filepath.Join(dir, FileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("dashboard not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read dashboard: %w", err)
	}
	var d Dashboard
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("parse dashboard: %w", err)
	}
	if d.Views == nil {
		d.Views = make(map[string]*View)
	}
	d.rootDir = dir
	return &d, nil
}

// RootDir returns the on-disk dashboard directory path.
func (d *Dashboard) RootDir() string { return d.rootDir }

// Save writes dashboard.json using atomic write.
func (d *Dashboard) Save() error {
	if d.rootDir == "" {
		return errors.New("dashboard root directory not set")
	}
	if err := utils.EnsureDir(d.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	d.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(d)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(d.rootDir, FileName), data)
}

// AddView validates v against its data file and adds it under a fresh ID.
// The data must load with the declared columns; quartile views also need at
// least one observation with coordinates.
func (d *Dashboard) AddView(v View) (*View, error) {
	kind, err := view.ParseKind(string(v.Kind))
	if err != nil {
		return nil, err
	}
	v.Kind = kind
	if err := v.Options.Validate(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(v.DataPath)
	if err != nil {
		return nil, fmt.Errorf("resolve data path: %w", err)
	}
	ds, err := dataset.Load(abs, v.Columns, v.Read)
	if err != nil {
		return nil, fmt.Errorf("validate data: %w", err)
	}
	if kind == view.KindQuartile && !anyGeo(ds) {
		return nil, fmt.Errorf("quartile view needs %q and %q: %w", v.Columns.Lat, v.Columns.Lon, errs.ErrNoCoordinates)
	}
	v.DataPath = abs
	v.ID = uuid.NewString()
	v.AddedAt = time.Now()
	if strings.TrimSpace(v.Title) == "" {
		v.Title = fmt.Sprintf("%s %s", strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs)), kind)
	}
	if d.Views == nil {
		d.Views = make(map[string]*View)
	}
	d.Views[v.ID] = &v
	d.UpdatedAt = time.Now()
	return &v, nil
}

// RemoveView deletes the view whose ID starts with prefix. The prefix must
// identify exactly one view.
func (d *Dashboard) RemoveView(prefix string) (*View, error) {
	v, err := d.FindView(prefix)
	if err != nil {
		return nil, err
	}
	delete(d.Views, v.ID)
	d.UpdatedAt = time.Now()
	return v, nil
}

// FindView returns the view whose ID starts with prefix.
func (d *Dashboard) FindView(prefix string) (*View, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, errors.New("view id is empty")
	}
	var found *View
	for id, v := range d.Views {
		if strings.HasPrefix(id, prefix) {
			if found != nil {
				return nil, fmt.Errorf("view id %q is ambiguous", prefix)
			}
			found = v
		}
	}
	if found == nil {
		return nil, fmt.Errorf("view %q not found in dashboard %q", prefix, d.Name)
	}
	return found, nil
}

// SortedViews returns views in insertion order, ties broken by ID.
func (d *Dashboard) SortedViews() []*View {
	out := make([]*View, 0, len(d.Views))
	for _, v := range d.Views {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].AddedAt.Before(out[j].AddedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func anyGeo(ds *dataset.Dataset) bool {
	for _, o := range ds.Observations {
		if o.HasGeo {
			return true
		}
	}
	return false
}

// slug lowercases s and keeps letters and digits, joining runs of anything
// else with a single dash.
func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
