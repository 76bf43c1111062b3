package dashboard

import (
	"time"

	"github.com/KaramelBytes/surfloom-cli/internal/dataset"
	"github.com/KaramelBytes/surfloom-cli/internal/view"
)

// View is one persisted chart definition: which data to read and how to draw it.
type View struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Kind     view.Kind       `json:"kind"`
	DataPath string          `json:"data_path"`
	Columns  dataset.Columns `json:"columns"`
	Read     dataset.Options `json:"read"`
	Options  view.Options    `json:"options"`
	AddedAt  time.Time       `json:"added_at"`
}

// OutputName returns a file name for the rendered chart without extension.
func (v *View) OutputName() string {
	base := slug(v.Title)
	if base == "" {
		base = string(v.Kind)
	}
	if len(v.ID) >= 8 {
		return base + "-" + v.ID[:8]
	}
	return base
}
