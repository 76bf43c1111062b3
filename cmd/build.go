package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/surfloom-cli/internal/dashboard"
	"github.com/KaramelBytes/surfloom-cli/internal/utils"
	"github.com/KaramelBytes/surfloom-cli/internal/view"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	buildDashboard string
	buildOutDir    string
	buildFormat    string
	buildKeepGoing bool
	buildQuiet     bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render every view of a dashboard with progress and a Markdown index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		dir, err := resolveDashboardDir(buildDashboard)
		if err != nil {
			return err
		}
		d, err := dashboard.Load(dir)
		if err != nil {
			return err
		}
		views := d.SortedViews()
		if len(views) == 0 {
			return fmt.Errorf("dashboard %q has no views; add one with 'surfloom add -d %s <file>'", d.Name, d.Name)
		}
		format, err := imageFormat(buildFormat, "")
		if err != nil {
			return err
		}
		outDir := buildOutDir
		if outDir == "" {
			outDir = filepath.Join(d.RootDir(), "charts")
		}
		if err := utils.EnsureDir(outDir); err != nil {
			return fmt.Errorf("ensure output dir: %w", err)
		}

		var index strings.Builder
		index.WriteString(fmt.Sprintf("# %s\n\n", d.Name))
		if d.Description != "" {
			index.WriteString(d.Description + "\n\n")
		}

		used := map[string]struct{}{}
		failed := 0
		total := len(views)
		for i, v := range views {
			if !buildQuiet {
				fmt.Fprintf(out, "[%d/%d] Rendering %s...\n", i+1, total, v.Title)
			}
			name := uniqueName(used, v.OutputName())
			imgPath := filepath.Join(outDir, name+"."+format)
			md, err := buildView(v, imgPath)
			if err != nil {
				if !buildKeepGoing {
					return fmt.Errorf("view %s (%s): %w", shortID(v.ID), v.Title, err)
				}
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ View %s failed: %v\n", v.Title, err)
				index.WriteString(fmt.Sprintf("## %s\n\n_Render failed: %v_\n\n", v.Title, err))
				continue
			}
			if err := utils.SafeWriteFile(filepath.Join(outDir, name+".md"), []byte(md)); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			index.WriteString(fmt.Sprintf("## %s\n\n![%s](%s)\n\n%s\n", v.Title, v.Title, filepath.Base(imgPath), md))
		}

		indexPath := filepath.Join(outDir, "index.md")
		if err := utils.SafeWriteFile(indexPath, []byte(index.String())); err != nil {
			return fmt.Errorf("write index: %w", err)
		}
		st := datasets.Stats()
		logger.Debug("build finished",
			zap.String("dashboard", d.Name),
			zap.Int("views", total),
			zap.Int("failed", failed),
			zap.Int("cache_hits", st.Hits),
			zap.Int("cache_misses", st.Misses),
		)
		if !buildQuiet {
			fmt.Fprintf(out, "✓ Dashboard built: %s (%d/%d views)\n", indexPath, total-failed, total)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d views failed", failed, total)
		}
		return nil
	},
}

// buildView renders one view to imgPath and returns its Markdown summary.
func buildView(v *dashboard.View, imgPath string) (string, error) {
	ds, hit, err := datasets.Get(v.DataPath, v.Columns, v.Read)
	if err != nil {
		return "", err
	}
	chart, err := view.NewChart(ds, v.Kind, v.Options)
	if err != nil {
		return "", err
	}
	chart.Report.Provenance = provenance(hit)
	if err := chart.Save(imgPath); err != nil {
		return "", err
	}
	logger.Debug("view rendered", zap.String("id", v.ID), zap.String("path", imgPath), zap.Bool("cache_hit", hit))
	return chart.Report.Markdown(), nil
}

// uniqueName appends __2, __3, ... until name is unused in this build.
func uniqueName(used map[string]struct{}, name string) string {
	cand := name
	for idx := 2; ; idx++ {
		if _, ok := used[cand]; !ok {
			used[cand] = struct{}{}
			return cand
		}
		cand = fmt.Sprintf("%s__%d", name, idx)
	}
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVarP(&buildDashboard, "dashboard", "d", "", "dashboard name (searches upward for dashboard.json if omitted)")
	buildCmd.Flags().StringVarP(&buildOutDir, "output-dir", "o", "", "directory for charts and summaries (default <dashboard>/charts)")
	buildCmd.Flags().StringVar(&buildFormat, "format", "", "image format: png | svg | pdf (default from config)")
	buildCmd.Flags().BoolVar(&buildKeepGoing, "keep-going", false, "continue past failing views and report them at the end")
	buildCmd.Flags().BoolVar(&buildQuiet, "quiet", false, "suppress progress and non-essential output")
}
