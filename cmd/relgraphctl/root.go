package main

import (
	"github.com/spf13/cobra"

	"github.com/pthm/relgraph/entity"
	"github.com/pthm/relgraph/internal/cli"
)

var (
	cfg        *cli.Config
	configPath string

	cfgFile string
	quiet   bool

	// exitCode lets a RunE report a non-error outcome the shell should
	// still see as a failure, e.g. check printing "false" for a denied
	// triple. 0 unless a subcommand sets it.
	exitCode int
)

var rootCmd = &cobra.Command{
	Use:   "relgraphctl",
	Short: "Incremental reachability index and rewrite-rule authorization demo",
	Long: `relgraphctl - counted reachability index + Zanzibar/OpenFGA rewrite engine demo

relgraphctl drives the relgraph facade from the command line: assert and
retract relationship tuples, check reachability, inspect a schema's implied
closure, and optionally mirror the index to PostgreSQL.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, configPath, err = cli.LoadConfig(cfgFile)
		if err != nil {
			return cli.ConfigError("loading configuration", err)
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

const (
	groupTuples = "tuples"
	groupQuery  = "query"
	groupAdmin  = "admin"
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: auto-discover relgraph.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")

	rootCmd.AddGroup(
		&cobra.Group{ID: groupTuples, Title: "Tuples:"},
		&cobra.Group{ID: groupQuery, Title: "Query:"},
		&cobra.Group{ID: groupAdmin, Title: "Admin:"},
	)

	writeCmd.GroupID = groupTuples
	deleteCmd.GroupID = groupTuples
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(deleteCmd)

	checkCmd.GroupID = groupQuery
	expandCmd.GroupID = groupQuery
	reachableCmd.GroupID = groupQuery
	reverseCmd.GroupID = groupQuery
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(expandCmd)
	rootCmd.AddCommand(reachableCmd)
	rootCmd.AddCommand(reverseCmd)

	migrateCmd.GroupID = groupAdmin
	configCmd.GroupID = groupAdmin
	versionCmd.GroupID = groupAdmin
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cli.ExitWithError(err)
	}
}

// tripleFlags holds the flag values common to every command that names a
// RelationalTriple.
type tripleFlags struct {
	subjectType      string
	subjectName      string
	relation         string
	objectType       string
	objectName       string
	subjectPredicate string
}

func (f *tripleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.subjectType, "subject-type", "", "subject entity type (required)")
	cmd.Flags().StringVar(&f.subjectName, "subject-name", "", "subject entity name (required)")
	cmd.Flags().StringVar(&f.relation, "relation", "", "relation name (required)")
	cmd.Flags().StringVar(&f.objectType, "object-type", "", "object entity type (required)")
	cmd.Flags().StringVar(&f.objectName, "object-name", "", "object entity name (required)")
	cmd.Flags().StringVar(&f.subjectPredicate, "subject-predicate", "", "subject sub-relation, e.g. member (default: subject itself)")
	_ = cmd.MarkFlagRequired("subject-type")
	_ = cmd.MarkFlagRequired("subject-name")
	_ = cmd.MarkFlagRequired("relation")
	_ = cmd.MarkFlagRequired("object-type")
	_ = cmd.MarkFlagRequired("object-name")
}

func (f *tripleFlags) triple() entity.RelationalTriple {
	return cli.ParseTriple(f.subjectType, f.subjectName, f.relation, f.objectType, f.objectName, f.subjectPredicate)
}
