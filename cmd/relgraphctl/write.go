package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm/relgraph/internal/cli"
)

var writeFlags tripleFlags

var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Assert a relational triple and expand it into the index",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		triple := writeFlags.triple()

		svc, err := cli.BuildService(ctx, cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		if err := svc.Service.Write(ctx, triple); err != nil {
			return cli.GeneralError("writing triple", err)
		}
		if err := cli.AppendTuple(svc.TuplesPath, triple); err != nil {
			return cli.GeneralError("persisting tuple log", err)
		}

		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
		}
		return nil
	},
}

func init() {
	writeFlags.register(writeCmd)
}
