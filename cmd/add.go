package cmd

import (
	"fmt"

	"github.com/KaramelBytes/surfloom-cli/internal/dashboard"
	"github.com/KaramelBytes/surfloom-cli/internal/view"
	"github.com/spf13/cobra"
)

var (
	addDashboard string
	addTitle     string
	addKind      string
	addData      dataFlags
	addView      viewFlags
)

var addCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Add a view over a data file to a dashboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveDashboardDir(addDashboard)
		if err != nil {
			return err
		}
		d, err := dashboard.Load(dir)
		if err != nil {
			return err
		}
		kind, err := view.ParseKind(addKind)
		if err != nil {
			return err
		}
		opt, err := addView.options(cmd)
		if err != nil {
			return err
		}
		read, err := addData.readOptions()
		if err != nil {
			return err
		}
		v, err := d.AddView(dashboard.View{
			Title:    addTitle,
			Kind:     kind,
			DataPath: args[0],
			Columns:  addData.columns(),
			Read:     read,
			Options:  opt,
		})
		if err != nil {
			return err
		}
		if err := d.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ View added: %s (%s, id %s)\n", v.Title, v.Kind, shortID(v.ID))
		return nil
	},
}

var (
	removeDashboard string
)

var removeCmd = &cobra.Command{
	Use:   "remove <view-id>",
	Short: "Remove a view from a dashboard by id or id prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveDashboardDir(removeDashboard)
		if err != nil {
			return err
		}
		d, err := dashboard.Load(dir)
		if err != nil {
			return err
		}
		v, err := d.RemoveView(args[0])
		if err != nil {
			return err
		}
		if err := d.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ View removed: %s\n", v.Title)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addDashboard, "dashboard", "d", "", "dashboard name")
	addCmd.Flags().StringVar(&addTitle, "title", "", "view title (defaults to file name and kind)")
	addCmd.Flags().StringVarP(&addKind, "kind", "k", string(view.KindSurface), "view kind: surface | quartile")
	addData.register(addCmd)
	addView.register(addCmd)

	rootCmd.AddCommand(removeCmd)
	removeCmd.Flags().StringVarP(&removeDashboard, "dashboard", "d", "", "dashboard name")
}
