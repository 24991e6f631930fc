package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pthm/relgraph/internal/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return cli.GeneralError("marshaling config", err)
		}
		if configPath != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "# loaded from %s\n", configPath)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "# no config file found, using defaults and environment")
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}
