package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jcadam/vaultkey/pkg/charts"
	"github.com/jcadam/vaultkey/pkg/contacts"
	"github.com/jcadam/vaultkey/pkg/history"
	"github.com/jcadam/vaultkey/pkg/render"
	"github.com/spf13/cobra"
)

func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse contacts interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(cmd.OutOrStdout()) {
				return errors.New("browse needs an interactive terminal; use 'vk list' instead")
			}
			all, err := a.loadAll(cmd.Context())
			if err != nil {
				return err
			}
			contacts.Sort(all, contacts.SortByName, false)

			return render.RunBrowser(all,
				render.WithHandoff(a.handoff()),
				render.WithStyle(a.cfg.Rendering.Style),
				render.WithReveal(!a.cfg.Rendering.MaskSensitive),
				render.WithImageTier(render.DetectImageTier(a.cfg.Rendering.Images)),
			)
		},
	}
}

func newOpenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "open <name|id>",
		Short: "Open a contact's website in the browser",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.resolve(cmd.Context(), args)
			if err != nil {
				return err
			}
			if err := a.handoff().OpenWebsite(c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Opened %s\n", contacts.EnsureURLProtocol(c.Website))
			return nil
		},
	}
}

func newMailCmd(a *app) *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "mail <name|id>",
		Short: "Start an email to a contact in the mail client",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.resolve(cmd.Context(), args)
			if err != nil {
				return err
			}
			if err := a.handoff().MailContact(c, subject); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Mail to %s\n", c.PrimaryEmail())
			return nil
		},
	}
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "Subject line")
	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	var (
		chartPath string
		kind      string
		top       int
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise the address book",
		Long: `Summarise the address book. On terminals with inline image support the
charts are drawn in place; elsewhere they are printed as tables.
--chart writes one chart (--kind company, fields, labels or growth) as PNG.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := a.loadAll(cmd.Context())
			if err != nil {
				return err
			}
			st := charts.Compute(all)
			series := map[string]charts.Series{
				"company": st.CompanySeries(top),
				"fields":  st.CompletenessSeries(),
				"labels":  st.PhoneLabelSeries(),
				"growth":  st.GrowthSeries(),
			}

			out := cmd.OutOrStdout()
			if chartPath != "" {
				d, ok := series[strings.ToLower(kind)]
				if !ok {
					return fmt.Errorf("unknown chart kind %q (want company, fields, labels or growth)", kind)
				}
				png, err := charts.RenderPNG(d, 800, 400)
				if err != nil {
					return err
				}
				if err := os.WriteFile(chartPath, png, 0o600); err != nil {
					return fmt.Errorf("writing chart: %w", err)
				}
				fmt.Fprintf(out, "Wrote %s chart to %s\n", kind, chartPath)
				return nil
			}

			fmt.Fprintf(out, "%d contact(s), %d with email, %d with phone, %d with photo\n\n",
				st.Total, st.WithEmail, st.WithPhone, st.WithPhoto)
			if st.Total == 0 {
				return nil
			}

			tier := render.TierNone
			if isTerminal(out) {
				tier = render.DetectImageTier(a.cfg.Rendering.Images)
			}
			for _, name := range []string{"company", "fields", "labels"} {
				d := series[name]
				if len(d.Values) == 0 {
					continue
				}
				if tier != render.TierNone {
					if png, err := charts.RenderPNG(d, 800, 400); err == nil {
						if err := render.WriteInlineImage(out, png, tier); err == nil {
							fmt.Fprintln(out)
							continue
						}
					}
				}
				fmt.Fprintln(out, charts.RenderTextTable(d))
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&chartPath, "chart", "", "Write a chart PNG to this file")
	cmd.Flags().StringVar(&kind, "kind", "company", "Chart for --chart: company, fields, labels or growth")
	cmd.Flags().IntVar(&top, "top", 10, "Companies to show before folding the rest into Other")
	return cmd
}

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit      int
		entryType  string
		search     string
		showTotals bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the import, export and share ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.historyLedger()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if showTotals {
				stats, err := l.Stats()
				if err != nil {
					return err
				}
				if len(stats) == 0 {
					fmt.Fprintln(out, "No history yet.")
					return nil
				}
				for _, t := range []string{history.TypeImport, history.TypeExport, history.TypeShare} {
					s, ok := stats[t]
					if !ok {
						continue
					}
					fmt.Fprintf(out, "  %-7s %3d entries, %4d contact(s), last %s\n",
						t, s.Entries, s.Contacts, s.Latest.Local().Format("2006-01-02 15:04"))
				}
				return nil
			}

			var entries []history.Entry
			if search != "" {
				entries, err = l.Search(search)
				if limit > 0 && len(entries) > limit {
					entries = entries[:limit]
				}
			} else {
				entries, err = l.List(entryType, limit)
			}
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No history yet.")
				return nil
			}

			for _, e := range entries {
				line := fmt.Sprintf("  %s  %-6s  %s  %d contact(s)",
					e.Timestamp.Local().Format("2006-01-02 15:04"), e.Type, e.Label, e.Count)
				if e.Format != "" {
					line += " [" + e.Format + "]"
				}
				if e.Warnings > 0 {
					line += fmt.Sprintf(", %d warning(s)", e.Warnings)
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show (0 for all)")
	cmd.Flags().StringVar(&entryType, "type", "", "Only show import, export or share entries")
	cmd.Flags().StringVar(&search, "search", "", "Only show entries mentioning this text")
	cmd.Flags().BoolVar(&showTotals, "totals", false, "Show per-type totals instead of entries")
	return cmd
}
