package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm/relgraph/internal/cli"
)

var checkFlags tripleFlags

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether subject can reach object in the index",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		triple := checkFlags.triple()

		svc, err := cli.BuildService(ctx, cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		allowed, err := svc.Service.Check(ctx, triple)
		if err != nil {
			return cli.GeneralError("checking triple", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), allowed)
		if !allowed {
			exitCode = 1
		}
		return nil
	},
}

func init() {
	checkFlags.register(checkCmd)
}
