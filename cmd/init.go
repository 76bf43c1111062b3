package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/surfloom-cli/internal/dashboard"
	"github.com/KaramelBytes/surfloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	initDescription string
)

var initCmd = &cobra.Command{
	Use:   "init <dashboard-name>",
	Short: "Initialize a new dashboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		root, err := defaultDashboardsDir()
		if err != nil {
			return err
		}
		dir := filepath.Join(root, name)
		// Refuse to overwrite an existing dashboard.
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			if _, err := os.Stat(filepath.Join(dir, dashboard.FileName)); err == nil {
				return fmt.Errorf("dashboard already exists at %s", dir)
			}
			entries, err := os.ReadDir(dir)
			if err != nil {
				return fmt.Errorf("inspect dashboard directory: %w", err)
			}
			if len(entries) > 0 {
				return fmt.Errorf("directory %s already exists and is not empty; refusing to initialize dashboard", dir)
			}
		} else if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("stat dashboard directory: %w", err)
		}
		if err := utils.EnsureDir(dir); err != nil {
			return err
		}
		d := dashboard.New(name, initDescription, dir)
		if err := d.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Dashboard initialized: %s\n", dir)
		return nil
	},
}

func defaultDashboardsDir() (string, error) {
	var dir string
	if cfg != nil && cfg.DashboardsDir != "" {
		d, err := expandHome(cfg.DashboardsDir)
		if err != nil {
			return "", err
		}
		dir = d
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".surfloom", "dashboards")
	}
	if err := utils.EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// resolveDashboardDir maps a dashboard name to its directory. An empty name
// searches upward from the working directory for a dashboard.json.
func resolveDashboardDir(name string) (string, error) {
	if name == "" {
		dir, err := utils.FindUp("", dashboard.FileName)
		if err != nil {
			return "", errors.New("dashboard name is required (--dashboard) outside a dashboard directory")
		}
		return dir, nil
	}
	root, err := defaultDashboardsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, name), nil
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initDescription, "desc", "", "dashboard description")
}
