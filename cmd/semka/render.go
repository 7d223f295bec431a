package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"impractical.co/semka"
)

func newRenderCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [page]",
		Short: "Render a page of the site",
		Long: "Render a page of the site as HTML or Markdown. Without a page, the site " +
			"manifest's index page is rendered.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var page string
			if len(args) > 0 {
				page = args[0]
			}
			loop, ctx, err := opts.load(cmd, page)
			if err != nil {
				return err
			}
			tree, site := loop.Tree(), loop.Site()
			switch opts.cfg.Format {
			case formatMarkdown:
				md, err := semka.RenderMarkdown(tree.View(ctx, site))
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), md)
				return err
			default:
				semka.Render(ctx, cmd.OutOrStdout(), tree, site)
				return nil
			}
		},
	}
	cmd.Flags().StringVarP(&opts.cfg.Format, "format", "f", opts.cfg.Format, "Output format (html or markdown)")
	return cmd
}
