package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-html2pdf/internal/yamlutil"
)

func newConfigCmd(env *Environment, common *commonFlags) *cobra.Command {
	var f settingsFlags

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Long: `Print the configuration serve would run with, after the config file,
environment variables and flags are applied. The API key is masked.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd.Flags(), common, &f)
			if err != nil {
				return err
			}
			out, err := yamlutil.Marshal(cfg.Redacted())
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			_, err = env.Stdout.Write(out)
			return err
		},
	}

	fs := cmd.Flags()
	addServerFlags(fs, &f.server)
	addPolicyFlags(fs, &f.policy)
	addEngineFlags(fs, &f.engine, true)
	addPageFlags(fs, &f.page)

	return cmd
}
