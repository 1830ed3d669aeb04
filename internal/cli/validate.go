package cli

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/respimg/pkg/diag"
	sectionio "github.com/matzehuels/respimg/pkg/io"
	"github.com/matzehuels/respimg/pkg/plugin"
)

// validateCommand creates the validate command, which loads section files
// with diagnostics enabled and reports every problem found.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check section definition files",
		Long: `Load one or more section definition files (JSON, TOML or YAML) and report
invalid or duplicate definitions. Files share one registry, so a section id
declared in two files is reported as a duplicate.

Exits with a non-zero status when a file cannot be read or a definition is rejected.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(args)
		},
	}
}

func (c *CLI) runValidate(paths []string) error {
	prog := newProgress(c.Logger)

	rec := &diag.Recorder{}
	counts := map[diag.Kind]int{}
	sink := diag.Tee{rec, diag.SinkFunc(func(r diag.Record) { counts[r.Kind]++ })}
	if c.Logger.GetLevel() <= log.DebugLevel {
		sink = append(sink, diag.NewLogSink(c.Logger))
	}
	p := plugin.New(plugin.Options{Logger: c.Logger, Sink: sink, Debug: true})

	unreadable := 0
	for _, path := range paths {
		defs, err := sectionio.ImportFile(path)
		if err != nil {
			c.printError("%v", err)
			unreadable++
			continue
		}

		rec.Reset()
		accepted := 0
		for _, def := range defs {
			if p.RegisterSection(def) == nil {
				accepted++
			}
		}

		records := rec.Records()
		if len(records) == 0 {
			c.printSuccess("%s: %s", path, plural(accepted, "section"))
			continue
		}
		c.printInfo("%s: %s, %d accepted", path, plural(len(defs), "section"), accepted)
		for _, r := range records {
			c.printDiagnostic(r)
		}
	}
	prog.done("validated section files", "files", len(paths))

	rejected := counts[diag.KindInvalidDefinition]
	fmt.Fprintln(c.Out)
	c.printKeyValue("Sections", joinIDs(p.Registry().IDs()))
	c.printKeyValue("Rejected", fmt.Sprint(rejected))
	c.printKeyValue("Duplicates", fmt.Sprint(counts[diag.KindDuplicateSection]))

	if unreadable > 0 || rejected > 0 {
		return fmt.Errorf("%s unreadable, %s rejected", plural(unreadable, "file"), plural(rejected, "definition"))
	}
	c.printNextStep("Inspect the sections", appName+" sections "+paths[0])
	return nil
}
