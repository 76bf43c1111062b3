package cmd

import (
	"fmt"
	"io"

	"github.com/KaramelBytes/surfloom-cli/internal/cache"
	"github.com/KaramelBytes/surfloom-cli/internal/dataset"
	"go.uber.org/zap"
)

// datasets is shared by every command in one process; build renders many
// views over few files.
var datasets = cache.New(nil)

func loadDataset(path string, df *dataFlags) (*dataset.Dataset, bool, error) {
	opt, err := df.readOptions()
	if err != nil {
		return nil, false, err
	}
	ds, hit, err := datasets.Get(path, df.columns(), opt)
	if err != nil {
		return nil, false, err
	}
	logger.Debug("dataset ready",
		zap.String("path", path),
		zap.Int("observations", ds.Len()),
		zap.Int("skipped", ds.Skipped),
		zap.Bool("cache_hit", hit),
		zap.Strings("warnings", ds.Warnings),
	)
	return ds, hit, nil
}

// printWarnings shows dataset warnings to the user. Commands call it where
// the warnings are not already part of their output.
func printWarnings(w io.Writer, ds *dataset.Dataset) {
	for _, msg := range ds.Warnings {
		fmt.Fprintf(w, "⚠ %s\n", msg)
	}
}

func provenance(hit bool) string {
	if hit {
		return "served from dataset cache"
	}
	return "loaded from disk"
}
