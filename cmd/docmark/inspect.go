package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-docmark/pkg/docmark"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect TEMPLATE",
	Short: "List the comment directives of a template",
	Long: `Parse every comment of a template and print its id, the kind of
directive and the directive in canonical form. A template with a syntax
error fails with the id of the offending comment.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspectTemplate(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func inspectTemplate(w io.Writer, path string) error {
	tmpl, err := docmark.Open(path)
	if err != nil {
		return err
	}
	defer tmpl.Close()

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tDIRECTIVE\tTEXT")
	for _, id := range tmpl.CommentIDs() {
		d, ok := tmpl.Directive(id)
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", id, d.Kind(), d.String(), strconv.Quote(tmpl.CommentText(id)))
	}
	return tw.Flush()
}
