package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jcadam/vaultkey/pkg/contacts"
	"github.com/jcadam/vaultkey/pkg/render"
	"github.com/spf13/cobra"
)

type listOptions struct {
	sort  string
	desc  bool
	query string
}

func newListCmd(a *app) *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List contacts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.sort, "sort", string(contacts.SortByName), "Sort by name, company or created")
	cmd.Flags().BoolVar(&opts.desc, "desc", false, "Reverse the sort order")
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "Only list contacts matching this text")
	return cmd
}

func (a *app) runList(cmd *cobra.Command, opts listOptions) error {
	field, err := contacts.ParseSortField(opts.sort)
	if err != nil {
		return err
	}
	all, err := a.loadAll(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(all) == 0 {
		fmt.Fprintln(out, "No contacts. Use 'vk add' or 'vk import <file>'.")
		return nil
	}

	list := contacts.Filter(all, opts.query)
	if len(list) == 0 {
		fmt.Fprintf(out, "No contacts matching %q\n", opts.query)
		return nil
	}
	contacts.Sort(list, field, opts.desc)

	for _, c := range list {
		fmt.Fprintf(out, "  %s\n", summaryLine(c))
	}
	fmt.Fprintf(out, "\n%d contact(s)\n", len(list))
	return nil
}

// summaryLine is the one-line form used by list: name, first email,
// first phone and company.
func summaryLine(c contacts.Contact) string {
	parts := []string{c.DisplayName()}
	if parts[0] == "" {
		parts[0] = "(unnamed)"
	}
	if e := c.PrimaryEmail(); e != "" {
		parts = append(parts, e)
	}
	if p := c.PrimaryPhone(); p != "" {
		parts = append(parts, p)
	}
	if c.Company != "" {
		parts = append(parts, c.Company)
	}
	return strings.Join(parts, " · ")
}

func newShowCmd(a *app) *cobra.Command {
	var reveal, photo bool
	cmd := &cobra.Command{
		Use:   "show <name|id>",
		Short: "Show a contact card",
		Long:  "Show a contact card. Sensitive custom fields are masked unless --reveal is given or rendering.mask_sensitive is false.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.resolve(cmd.Context(), args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			tty := isTerminal(out)

			if photo {
				tier := render.TierNone
				if tty {
					tier = render.DetectImageTier(a.cfg.Rendering.Images)
				}
				err := render.WritePhoto(out, c.Photo, tier)
				switch {
				case errors.Is(err, render.ErrNoPhoto):
					fmt.Fprintf(cmd.ErrOrStderr(), "  warning: %s has no photo\n", c.DisplayName())
				case err != nil:
					fmt.Fprintf(cmd.ErrOrStderr(), "  warning: showing photo: %v\n", err)
				case tier == render.TierNone:
					fmt.Fprintln(cmd.ErrOrStderr(), "  warning: this terminal cannot show images inline")
				}
			}

			card := render.CardMarkdown(c, render.CardOptions{Reveal: reveal || !a.cfg.Rendering.MaskSensitive})
			style := a.cfg.Rendering.Style
			if !tty {
				style = render.StyleNoTTY
			}
			rendered, err := render.RenderMarkdown(card, terminalWidth(out), style)
			if err != nil {
				fmt.Fprint(out, card)
				return nil
			}
			fmt.Fprint(out, rendered)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "Show sensitive custom fields")
	cmd.Flags().BoolVar(&photo, "photo", false, "Show the photo inline on supporting terminals")
	return cmd
}
