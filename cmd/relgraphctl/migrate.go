package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm/relgraph/internal/cli"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the store schema and push the current index to it",
	Long: `migrate applies store/sql/schema.sql against store.url (creating the
relgraph_node and relgraph_edge tables if they do not already exist) and
then forces a full resync of the current index state, the same push every
write/delete triggers automatically.

Useful on first setup, and to repair drift after a manual change to the
mirrored tables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		svc, err := cli.BuildService(ctx, cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		if err := svc.Service.Resync(ctx); err != nil {
			return cli.GeneralError("resyncing store", err)
		}

		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "store schema applied and index resynced")
		}
		return nil
	},
}
