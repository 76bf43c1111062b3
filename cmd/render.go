package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/surfloom-cli/internal/utils"
	"github.com/KaramelBytes/surfloom-cli/internal/view"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	renderData    dataFlags
	renderView    viewFlags
	renderKind    string
	renderOutput  string
	renderFormat  string
	renderSummary bool
	renderQuiet   bool
)

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Render a surface chart or quartile map with a Markdown summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := view.ParseKind(renderKind)
		if err != nil {
			return err
		}
		opt, err := renderView.options(cmd)
		if err != nil {
			return err
		}
		ds, hit, err := loadDataset(args[0], &renderData)
		if err != nil {
			return err
		}
		chart, err := view.NewChart(ds, kind, opt)
		if err != nil {
			return err
		}
		chart.Report.Provenance = provenance(hit)

		if renderOutput == "-" {
			f, err := imageFormat(renderFormat, "")
			if err != nil {
				return err
			}
			printWarnings(cmd.ErrOrStderr(), ds)
			return chart.Encode(cmd.OutOrStdout(), f)
		}
		out, err := chartPath(args[0], kind, renderOutput, renderFormat)
		if err != nil {
			return err
		}
		if err := chart.Save(out); err != nil {
			return err
		}
		logger.Debug("chart written", zap.String("path", out), zap.String("kind", string(kind)))
		if !renderQuiet {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Chart written: %s\n", out)
		}
		md := chart.Report.Markdown()
		if renderSummary {
			mdPath := strings.TrimSuffix(out, filepath.Ext(out)) + ".md"
			if err := utils.SafeWriteFile(mdPath, []byte(md)); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			if !renderQuiet {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Summary written: %s\n", mdPath)
				printWarnings(cmd.ErrOrStderr(), ds)
			}
		} else if !renderQuiet {
			fmt.Fprintln(cmd.OutOrStdout(), md)
		}
		return nil
	},
}

// chartPath resolves the output file: an explicit path keeps its directory and
// gains the format extension when it has none; otherwise the chart lands in
// output_dir (or the working directory) named after the data file and kind.
func chartPath(dataPath string, kind view.Kind, output, formatFlag string) (string, error) {
	format, err := imageFormat(formatFlag, output)
	if err != nil {
		return "", err
	}
	if output != "" {
		ext := filepath.Ext(output)
		if ext == "" {
			return output + "." + format, nil
		}
		if f, err := view.NormalizeFormat(ext); err != nil || f != format {
			return "", fmt.Errorf("output %s does not match format %s", output, format)
		}
		return output, nil
	}
	dir := "."
	if cfg != nil && cfg.OutputDir != "" {
		d, err := expandHome(cfg.OutputDir)
		if err != nil {
			return "", err
		}
		dir = d
	}
	base := filepath.Base(dataPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, fmt.Sprintf("%s-%s.%s", base, kind, format)), nil
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderData.register(renderCmd)
	renderView.register(renderCmd)
	renderCmd.Flags().StringVarP(&renderKind, "kind", "k", string(view.KindSurface), "view kind: surface | quartile")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output image path ('-' writes to stdout)")
	renderCmd.Flags().StringVar(&renderFormat, "format", "", "image format: png | svg | pdf (default from --output or config)")
	renderCmd.Flags().BoolVar(&renderSummary, "summary", false, "write the Markdown summary next to the image instead of printing it")
	renderCmd.Flags().BoolVar(&renderQuiet, "quiet", false, "suppress status and summary output")
}
