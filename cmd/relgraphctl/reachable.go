package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/pthm/relgraph/entity"
	"github.com/pthm/relgraph/internal/cli"
)

var reachableNode nodeFlags

var reachableCmd = &cobra.Command{
	Use:   "reachable",
	Short: "List every node the given node can reach",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		svc, err := cli.BuildService(ctx, cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		nodes := svc.Service.ListReachable(reachableNode.node())
		return encodeNodes(cmd, nodes)
	},
}

func init() {
	reachableNode.register(reachableCmd)
}

// nodeFlags holds the flag values identifying a single entity.Node: a
// reachability query's subject or object, as opposed to tripleFlags'
// object#relation@subject triple.
type nodeFlags struct {
	nodeType      string
	nodeName      string
	nodePredicate string
}

func (f *nodeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.nodeType, "type", "", "entity type (required)")
	cmd.Flags().StringVar(&f.nodeName, "name", "", "entity name (required)")
	cmd.Flags().StringVar(&f.nodePredicate, "predicate", "", "relation or sub-relation this node is folded under (default: the entity itself)")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("name")
}

func (f *nodeFlags) node() entity.Node {
	if f.nodePredicate == "" {
		return entity.Node{Type: f.nodeType, Name: f.nodeName, Predicate: entity.SelfRef{}}
	}
	return entity.Node{Type: f.nodeType, Name: f.nodeName, Predicate: entity.NamedPredicate(f.nodePredicate)}
}

func encodeNodes(cmd *cobra.Command, nodes []entity.Node) error {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.String())
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return cli.GeneralError("encoding node list", err)
	}
	return nil
}
