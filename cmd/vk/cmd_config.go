package main

import (
	"fmt"
	"os"

	"github.com/jcadam/vaultkey/pkg/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(a *app) *cobra.Command {
	var initFlag, force bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialise the configuration",
		Long:  "Print the effective configuration (config.yaml plus VAULTKEY_* overrides). --init writes a default config.yaml.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path := config.Path(a.dataDir)

			if initFlag {
				if _, err := os.Stat(path); err == nil && !force {
					fmt.Fprintln(out, "Configuration already exists at", path)
					fmt.Fprintln(out, "Use 'vk config --init --force' to overwrite it.")
					return nil
				}
				if err := config.Save(a.dataDir, config.Default()); err != nil {
					return fmt.Errorf("saving configuration: %w", err)
				}
				fmt.Fprintln(out, "Wrote", path)
				return nil
			}

			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return fmt.Errorf("marshaling config: %w", err)
			}
			fmt.Fprintf(out, "# %s\n%s", path, data)
			return nil
		},
	}
	cmd.Flags().BoolVar(&initFlag, "init", false, "Write a default config.yaml")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config.yaml with --init")
	return cmd
}
