package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jcadam/vaultkey/pkg/contacts"
	"github.com/jcadam/vaultkey/pkg/history"
	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>...",
		Short: "Import contacts from vCard, CSV or a JSON backup",
		Long: `Import contacts from .vcf/.vcard, .csv/.txt, or a JSON backup (any other
extension). Every imported contact is added as new; nothing is merged.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			im := &contacts.Importer{
				Store:       s,
				MaxFileSize: a.cfg.Import.MaxFileSize,
				Debug:       a.dbg,
			}

			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			failed := 0
			for _, path := range args {
				res, err := a.importFile(cmd, im, path)
				if err != nil {
					failed++
					fmt.Fprintf(errOut, "%s: %s\n", path, importMessage(err))
					continue
				}
				for _, w := range res.Warnings {
					fmt.Fprintf(errOut, "  warning: %s\n", w)
				}
				fmt.Fprintf(out, "Imported %d contact(s) from %s\n", len(res.Imported), filepath.Base(path))
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d file(s) failed to import", failed, len(args))
			}
			return nil
		},
	}
}

func (a *app) importFile(cmd *cobra.Command, im *contacts.Importer, path string) (*contacts.ImportResult, error) {
	if info, err := os.Stat(path); err != nil {
		return nil, err
	} else if limit := im.MaxFileSize; limit > 0 && info.Size() > limit {
		return nil, fmt.Errorf("%w: %s is %d bytes (limit %d)", contacts.ErrFileTooLarge, path, info.Size(), limit)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	res, err := im.Import(cmd.Context(), path, data)
	if err != nil {
		return nil, err
	}

	var body strings.Builder
	for _, w := range res.Warnings {
		body.WriteString("- " + w + "\n")
	}
	a.record(history.Entry{
		Type:     history.TypeImport,
		Label:    filepath.Base(path),
		Format:   string(res.Format),
		Count:    len(res.Imported),
		Warnings: len(res.Warnings),
		Content:  body.String(),
	})
	return res, nil
}

// importMessage turns an import error into the message shown to the user.
func importMessage(err error) string {
	switch {
	case errors.Is(err, contacts.ErrUnparseable):
		return "Failed to parse file."
	case errors.Is(err, contacts.ErrNoContacts):
		return "No valid contacts found in file."
	case errors.Is(err, contacts.ErrFileTooLarge):
		return "File too large."
	case errors.Is(err, os.ErrNotExist):
		return "File not found."
	}
	return err.Error()
}
