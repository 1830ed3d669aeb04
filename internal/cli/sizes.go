package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/respimg/pkg/errors"
	"github.com/matzehuels/respimg/pkg/plugin"
)

// sizesOptions holds the flags of the sizes command.
type sizesOptions struct {
	sections []string
	section  string
	sizes    string
	pick     bool
	noCache  bool
}

// sizesCommand creates the sizes command, which prints the sizes attribute
// an image would get inside one section.
func (c *CLI) sizesCommand() *cobra.Command {
	opts := sizesOptions{}

	cmd := &cobra.Command{
		Use:   "sizes",
		Short: "Compute the sizes attribute for an image inside a section",
		Long: `Compute the sizes attribute an image receives inside a section.

The host default is the sizes string a template would emit without sections;
its trailing "<n>px" is the image width appended as the final fallback.

Examples:
  respimg sizes -s sections.toml --section hero --default "(max-width: 1024px) 100vw, 1024px"
  respimg sizes -s sections.toml --pick`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSizes(cmd, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.sections, "sections", "s", nil, "section definition file (repeatable)")
	cmd.Flags().StringVar(&opts.section, "section", "", "section to evaluate the image in")
	cmd.Flags().StringVarP(&opts.sizes, "default", "d", defaultSizes, "host default sizes string")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "choose the section interactively")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "do not cache generated expressions")
	_ = cmd.MarkFlagRequired("sections")
	cmd.MarkFlagsMutuallyExclusive("section", "pick")

	return cmd
}

func (c *CLI) runSizes(cmd *cobra.Command, opts sizesOptions) error {
	ctx := cmd.Context()

	store, err := c.newCache(ctx, cacheOptions{noCache: opts.noCache})
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := c.loadPlugin(ctx, opts.sections, plugin.Options{Cache: store})
	if err != nil {
		return err
	}
	if p.Registry().Len() == 0 {
		return errors.New(errors.ErrCodeInvalidSection, "no valid sections in %v", opts.sections)
	}

	id := opts.section
	if opts.pick {
		id, err = pickSection(p.Registry().Definitions(), os.Stdin, os.Stderr)
		if err != nil {
			return err
		}
		if id == "" {
			return nil
		}
	}
	if id == "" {
		return errors.New(errors.ErrCodeInvalidInput, "either --section or --pick is required")
	}
	if !p.Registry().IsRegistered(id) {
		return errors.New(errors.ErrCodeUnknownSection, "section %q does not exist (have: %s)", id, joinIDs(p.Registry().IDs()))
	}

	p.BeginSection(id, nil)
	defer p.EndSection(id)

	out, err := p.ComputeSizes(ctx, plugin.ImageRequest{Sizes: opts.sizes})
	if err != nil {
		return err
	}
	fmt.Fprintln(c.Out, out)
	return nil
}
