package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-docmark/internal/datafile"
	"github.com/benjaminschreck/go-docmark/pkg/docmark"
)

var renderFlags struct {
	data string
	out  string
}

var renderCmd = &cobra.Command{
	Use:   "render TEMPLATE",
	Short: "Render a template with data",
	Long: `Render a template once and write the result.

Examples:
  # Render to a new file
  docmark render invoice.docx --data invoice.yaml --out out.docx

  # Write the rendered package to stdout
  docmark render invoice.docx --data invoice.json --out - > out.docx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return renderFile(cmd.OutOrStdout(), args[0], renderFlags.data, renderFlags.out)
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&renderFlags.data, "data", "d", "", "YAML or JSON data file")
	renderCmd.Flags().StringVarP(&renderFlags.out, "out", "o", "", `output file, "-" for stdout`)
	_ = renderCmd.MarkFlagRequired("out")
}

// loadData reads the data file at path. No path renders against nil data.
func loadData(path string) (any, error) {
	if path == "" {
		return nil, nil
	}
	return datafile.Load(path)
}

// renderFile renders templatePath into outPath, or into stdout when outPath
// is "-".
func renderFile(stdout io.Writer, templatePath, dataPath, outPath string) error {
	data, err := loadData(dataPath)
	if err != nil {
		return err
	}

	tmpl, err := docmark.Open(templatePath)
	if err != nil {
		return err
	}
	defer tmpl.Close()

	if err := tmpl.Render(data); err != nil {
		return fmt.Errorf("render %s: %w", templatePath, err)
	}

	if outPath == "-" {
		_, err := tmpl.WriteTo(stdout)
		return err
	}
	return tmpl.SaveAs(outPath)
}
