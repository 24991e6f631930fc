package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm/relgraph/internal/cli"
)

var deleteFlags tripleFlags

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Retract a relational triple and remove its implied edges",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		triple := deleteFlags.triple()

		svc, err := cli.BuildService(ctx, cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		if err := svc.Service.Delete(ctx, triple); err != nil {
			return cli.GeneralError("deleting triple", err)
		}
		if err := cli.RemoveTuple(svc.TuplesPath, triple); err != nil {
			return cli.GeneralError("persisting tuple log", err)
		}

		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
		}
		return nil
	},
}

func init() {
	deleteFlags.register(deleteCmd)
}
