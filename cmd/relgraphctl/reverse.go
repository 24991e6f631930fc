package main

import (
	"github.com/spf13/cobra"

	"github.com/pthm/relgraph/internal/cli"
)

var reverseNode nodeFlags

var reverseCmd = &cobra.Command{
	Use:   "reverse",
	Short: "List every node that can reach the given node",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		svc, err := cli.BuildService(ctx, cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		nodes := svc.Service.ListReverse(reverseNode.node())
		return encodeNodes(cmd, nodes)
	},
}

func init() {
	reverseNode.register(reverseCmd)
}
