package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jcadam/vaultkey/pkg/contacts"
	"github.com/jcadam/vaultkey/pkg/export"
	"github.com/jcadam/vaultkey/pkg/history"
	"github.com/jcadam/vaultkey/pkg/share"
	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		format  string
		noPhoto bool
		reveal  bool
		query   string
		output  string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export contacts as vCard, JSON backup or HTML",
		Long: `Export contacts. The default file name is dated, e.g.
vaultkey_contacts_2024-07-09.vcf, and is written to export.dir (or the
current directory). Use -o - to write to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			all, err := a.loadAll(cmd.Context())
			if err != nil {
				return err
			}
			list := contacts.Filter(all, query)
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No contacts to export.")
				return nil
			}

			now := a.now()
			data, err := export.Render(f, list, export.Options{
				IncludePhoto: !noPhoto,
				Reveal:       reveal,
				Now:          now,
			})
			if err != nil {
				return err
			}

			if output == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			path := output
			if path == "" {
				path = filepath.Join(expandHome(a.cfg.Export.Dir), export.DefaultName(f, now))
			}
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o700); err != nil {
					return fmt.Errorf("creating export directory: %w", err)
				}
			}
			if err := os.WriteFile(path, data, 0o600); err != nil {
				return fmt.Errorf("writing export: %w", err)
			}
			a.dbg.Printf("wrote %d bytes to %s", len(data), path)

			a.record(history.Entry{
				Type:   history.TypeExport,
				Label:  filepath.Base(path),
				Format: string(f),
				Count:  len(list),
			})
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d contact(s) to %s\n", len(list), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "vcf", "Export format: vcf, json or html")
	cmd.Flags().BoolVar(&noPhoto, "no-photo", false, "Leave photos out of vCard and HTML exports")
	cmd.Flags().BoolVar(&reveal, "reveal", false, "Write sensitive fields in clear in HTML exports")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Only export contacts matching this text")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, or - for stdout")
	return cmd
}

func newShareCmd(a *app) *cobra.Command {
	var copyFlag bool
	cmd := &cobra.Command{
		Use:   "share <name|id>",
		Short: "Print the vCard a QR code for this contact would carry",
		Long:  "Print the photo-less vCard used for QR sharing. --copy puts it on the clipboard instead.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.resolve(cmd.Context(), args)
			if err != nil {
				return err
			}
			p := share.QRPayload(c, a.now())
			if w := p.Warning(); w != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "  warning: %s\n", w)
			}

			if copyFlag {
				if err := share.CopyToClipboard(p.Data); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Copied vCard for %s (%d bytes)\n", c.DisplayName(), p.Size)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), p.Data)
			}

			a.record(history.Entry{
				Type:   history.TypeShare,
				Label:  c.DisplayName(),
				Format: "qr",
				Count:  1,
			})
			return nil
		},
	}
	cmd.Flags().BoolVar(&copyFlag, "copy", false, "Copy the payload to the clipboard")
	return cmd
}
