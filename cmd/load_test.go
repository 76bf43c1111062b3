package cmd

import (
	"strings"
	"testing"

	"github.com/KaramelBytes/surfloom-cli/internal/dataset"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoadDatasetLogsWarningsAtDebug(t *testing.T) {
	_, data := isolate(t)
	datasets.Purge()

	core, logs := observer.New(zapcore.DebugLevel)
	prev := logger
	logger = zap.New(core)
	t.Cleanup(func() { logger = prev })

	def := dataset.DefaultColumns()
	df := dataFlags{x: def.X, y: def.Y, z: def.Z, label: def.Label, lat: def.Lat, lon: def.Lon, sheetIndex: 1}
	ds, hit, err := loadDataset(data, &df)
	if err != nil {
		t.Fatalf("loadDataset: %v", err)
	}
	if hit || len(ds.Warnings) == 0 {
		t.Fatalf("hit=%v warnings=%v", hit, ds.Warnings)
	}
	if n := logs.FilterLevelExact(zapcore.WarnLevel).Len(); n != 0 {
		t.Fatalf("expected no warn-level entries, got %d", n)
	}
	ready := logs.FilterMessage("dataset ready").All()
	if len(ready) != 1 || ready[0].Level != zapcore.DebugLevel {
		t.Fatalf("unexpected log entries: %+v", logs.All())
	}
	if _, ok := ready[0].ContextMap()["warnings"]; !ok {
		t.Fatalf("debug entry lacks warnings field: %+v", ready[0].ContextMap())
	}
}

func TestCLI_FitPrintsWarningOnce(t *testing.T) {
	_, data := isolate(t)
	out := runCmd(t, "fit", data)
	if n := strings.Count(out, "skipped 1/7 rows"); n != 1 {
		t.Fatalf("warning printed %d times:\n%s", n, out)
	}
}
