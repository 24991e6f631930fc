package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/pthm/relgraph/entity"
	"github.com/pthm/relgraph/internal/cli"
)

var expandFlags tripleFlags

var expandCmd = &cobra.Command{
	Use:   "expand",
	Short: "Print the schema-implied closure of a triple without touching the index",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		triple := expandFlags.triple()

		svc, err := cli.BuildService(ctx, cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		implied, err := svc.Service.Expand(triple)
		if err != nil {
			return cli.GeneralError("expanding triple", err)
		}

		out := make([]tripleView, 0, len(implied))
		for _, t := range implied {
			out = append(out, newTripleView(t))
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return cli.GeneralError("encoding closure", err)
		}
		return nil
	},
}

func init() {
	expandFlags.register(expandCmd)
}

// tripleView is the JSON shape expand prints closures in, distinct from the
// on-disk tuple log format in package cli.
type tripleView struct {
	Subject          string `json:"subject"`
	Relation         string `json:"relation"`
	Object           string `json:"object"`
	SubjectPredicate string `json:"subject_predicate,omitempty"`
}

func newTripleView(t entity.RelationalTriple) tripleView {
	v := tripleView{
		Subject:  t.Subject.String(),
		Relation: t.Relation,
		Object:   t.Object.String(),
	}
	if _, self := t.SubjectPredicate.(entity.SelfRef); !self && t.SubjectPredicate != nil {
		v.SubjectPredicate = t.SubjectPredicate.String()
	}
	return v
}
