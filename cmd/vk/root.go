package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jcadam/vaultkey/pkg/config"
	"github.com/jcadam/vaultkey/pkg/contacts"
	"github.com/jcadam/vaultkey/pkg/debug"
	"github.com/jcadam/vaultkey/pkg/history"
	"github.com/jcadam/vaultkey/pkg/share"
	"github.com/jcadam/vaultkey/pkg/store"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// app carries what every command needs: the data directory, the loaded
// config, and lazily opened store and ledger.
type app struct {
	dataDir string
	cfg     *config.Config
	dbg     *debug.Logger
	now     func() time.Time

	store  store.Store
	ledger *history.Ledger
}

func newRootCmd() *cobra.Command {
	a := &app{now: time.Now}

	root := &cobra.Command{
		Use:           "vk",
		Short:         "VaultKey: a private address book for the terminal",
		Long:          "VaultKey keeps your contacts on your own machine. It imports vCard, CSV and JSON backups, exports vCard, JSON and HTML, and never syncs anywhere.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(cmd, listOptions{sort: string(contacts.SortByName)})
		},
	}
	root.PersistentFlags().Bool("debug", false, "Print debug output (decoded input, timing, store access)")

	root.AddCommand(
		newListCmd(a),
		newShowCmd(a),
		newAddCmd(a),
		newEditCmd(a),
		newRemoveCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newShareCmd(a),
		newBrowseCmd(a),
		newOpenCmd(a),
		newMailCmd(a),
		newStatsCmd(a),
		newHistoryCmd(a),
		newConfigCmd(a),
	)

	return root
}

// setup resolves the data directory and loads config. The store is opened
// on first use.
func (a *app) setup(cmd *cobra.Command) error {
	dir, err := config.Dir()
	if err != nil {
		return err
	}
	a.dataDir = dir

	cfg, err := config.LoadOrDefault(dir)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config %s: %w", config.Path(dir), err)
	}
	a.cfg = cfg

	debugFlag, _ := cmd.Flags().GetBool("debug")
	if debugFlag || cfg.Debug {
		a.dbg = debug.NewLogger(cmd.ErrOrStderr())
		a.dbg.Section("vk " + cmd.Name())
		a.dbg.Printf("data dir: %s, backend: %s", dir, cfg.Store.Backend)
	}
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

// openStore opens the configured backend once per command.
func (a *app) openStore() (store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	backend := strings.ToLower(a.cfg.Store.Backend)
	s, err := store.Open(backend, expandHome(a.cfg.Store.Path), a.dataDir)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", backend, err)
	}
	a.store = s
	return s, nil
}

// loadAll returns every stored contact in insertion order.
func (a *app) loadAll(ctx context.Context) ([]contacts.Contact, error) {
	s, err := a.openStore()
	if err != nil {
		return nil, err
	}
	done := a.dbg.Timed("load contacts")
	defer done()
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading contacts: %w", err)
	}
	return all, nil
}

// resolve finds one contact by id or name.
func (a *app) resolve(ctx context.Context, args []string) (contacts.Contact, error) {
	ref := strings.Join(args, " ")
	all, err := a.loadAll(ctx)
	if err != nil {
		return contacts.Contact{}, err
	}
	return contacts.Lookup(all, ref)
}

// record appends a history entry. Ledger failures never fail the command.
func (a *app) record(e history.Entry) {
	l, err := a.historyLedger()
	if err != nil {
		a.dbg.Printf("history disabled: %v", err)
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = a.now().UTC()
	}
	if err := l.Append(e); err != nil {
		a.dbg.Printf("recording history: %v", err)
	}
}

func (a *app) historyLedger() (*history.Ledger, error) {
	if a.ledger != nil {
		return a.ledger, nil
	}
	l, err := history.NewLedger(filepath.Join(a.dataDir, "history"))
	if err != nil {
		return nil, err
	}
	a.ledger = l
	return l, nil
}

func (a *app) handoff() *share.Handoff {
	return share.NewHandoff(a.cfg.Apps)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w, or 80 when it is not a terminal.
func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return 80
}

// expandHome replaces a leading ~/ with the home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return home + path[1:]
		}
	}
	return path
}
