package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pthm/relgraph"
	"github.com/pthm/relgraph/entity"
	"github.com/pthm/relgraph/store"
)

// BuiltService bundles the facade relgraphctl's subcommands operate on
// together with the bits they need to persist its effects back to disk
// (and, if configured, to the optional Postgres mirror).
type BuiltService struct {
	Service    *relgraph.Service
	TuplesPath string
	pool       *pgxpool.Pool
}

// Close releases the optional Postgres pool, if one was opened.
func (b *BuiltService) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
}

// BuildService loads cfg's rule file and tuple log, replays every logged
// triple through a fresh Service, and wires the optional store.Mirror if
// cfg.Store names a database. Every relgraphctl subcommand that touches the
// index goes through this so the in-memory state it starts from always
// matches what previous invocations left behind. If cfg.Store is unset,
// BuildService logs a warning and runs in-memory-only, the same way the
// teacher's Checker logs a warning instead of failing outright when an
// optional piece of setup is missing.
func BuildService(ctx context.Context, cfg *Config) (*BuiltService, error) {
	rules, err := LoadRuleSet(cfg.Rules)
	if err != nil {
		return nil, err
	}

	var opts []relgraph.Option
	var pool *pgxpool.Pool

	dsn, err := cfg.DSN()
	if err != nil {
		return nil, ConfigError("resolving store DSN", err)
	}
	if dsn != "" {
		pool, err = pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, DBConnectError("connecting to store", err)
		}
		mirror := store.New(pool)
		if err := mirror.ApplyDDL(ctx); err != nil {
			pool.Close()
			return nil, DBConnectError("applying store schema", err)
		}
		opts = append(opts, relgraph.WithStore(mirror))
	} else {
		log.Printf("[relgraph] WARNING: no store DSN configured, falling back to in-memory-only mode (writes will not be mirrored to Postgres)")
	}

	svc := relgraph.New(rules, opts...)

	triples, err := LoadTupleLog(cfg.Tuples)
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, err
	}
	for _, t := range triples {
		if err := svc.Write(ctx, t); err != nil {
			if pool != nil {
				pool.Close()
			}
			return nil, fmt.Errorf("replaying tuple log %s: %w", cfg.Tuples, err)
		}
	}

	return &BuiltService{Service: svc, TuplesPath: cfg.Tuples, pool: pool}, nil
}

// ParseTriple builds an entity.RelationalTriple from flag values. An empty
// subjectPredicate means SelfRef (the ordinary "subject is the entity
// itself" case).
func ParseTriple(subjectType, subjectName, relation, objectType, objectName, subjectPredicate string) entity.RelationalTriple {
	subject := entity.Entity{Type: subjectType, Name: subjectName}
	object := entity.Entity{Type: objectType, Name: objectName}
	if subjectPredicate == "" {
		return entity.NewTriple(subject, relation, object)
	}
	return entity.NewUsersetTriple(subject, subjectPredicate, relation, object)
}
