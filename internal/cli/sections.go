package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/respimg/pkg/errors"
	sectionio "github.com/matzehuels/respimg/pkg/io"
	"github.com/matzehuels/respimg/pkg/plugin"
)

// sectionsCommand creates the sections command, which lists registered
// sections as a table or re-encodes them in another format.
func (c *CLI) sectionsCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "sections FILE...",
		Short: "List the sections defined in files",
		Long: `List every valid section defined in the given files, one row per size rule.

With --output the merged definitions are written to stdout as json, toml or
yaml instead, which converts between formats:

  respimg sections sections.json --output toml > sections.toml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.loadPlugin(cmd.Context(), args, plugin.Options{})
			if err != nil {
				return err
			}
			defs := p.Registry().Definitions()

			if output != "" {
				return sectionio.Write(c.Out, sectionio.Format(output), defs)
			}
			if len(defs) == 0 {
				c.printWarning("No valid sections found")
				return nil
			}
			fmt.Fprintln(c.Out, renderSectionTable(defs))
			c.printDetail("%s from %s", plural(len(defs), "section"), plural(len(args), "file"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write definitions as json, toml or yaml instead of a table")
	_ = cmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{string(sectionio.FormatJSON), string(sectionio.FormatTOML), string(sectionio.FormatYAML)}, cobra.ShellCompDirectiveNoFileComp
	})
	cmd.PreRunE = func(*cobra.Command, []string) error {
		switch sectionio.Format(output) {
		case "", sectionio.FormatJSON, sectionio.FormatTOML, sectionio.FormatYAML:
			return nil
		}
		return errors.New(errors.ErrCodeInvalidInput, "unknown output format %q", output)
	}

	return cmd
}
