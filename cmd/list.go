package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/surfloom-cli/internal/dashboard"
	"github.com/spf13/cobra"
)

var (
	listDashboard string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List dashboards, or the views of one dashboard with --dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if listDashboard == "" {
			return listAllDashboards(out)
		}
		dir, err := resolveDashboardDir(listDashboard)
		if err != nil {
			return err
		}
		d, err := dashboard.Load(dir)
		if err != nil {
			return err
		}
		views := d.SortedViews()
		if len(views) == 0 {
			fmt.Fprintln(out, "(no views)")
			return nil
		}
		for _, v := range views {
			fmt.Fprintf(out, "- %s: %s [%s] %s\n", shortID(v.ID), v.Title, v.Kind, v.DataPath)
		}
		return nil
	},
}

func listAllDashboards(out io.Writer) error {
	root, err := defaultDashboardsDir()
	if err != nil {
		return err
	}
	dirs, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	found := false
	for _, e := range dirs {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		d, err := dashboard.Load(dir)
		if err != nil {
			continue
		}
		fmt.Fprintf(out, "- %s (%d views)\n", e.Name(), len(d.Views))
		found = true
	}
	if !found {
		fmt.Fprintln(out, "(no dashboards)")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listDashboard, "dashboard", "d", "", "dashboard whose views to list")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
