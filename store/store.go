// Package store mirrors a reach.ReachabilityIndex into PostgreSQL, the
// optional persistence collaborator spec.md §6 names but leaves
// unspecified: two tables, relgraph_node and relgraph_edge, rewritten
// wholesale inside one transaction per facade call.
//
// The mirror is write-only: nothing in this repository reconstructs a
// ReachabilityIndex from these tables on startup (the reachability index
// itself is the source of truth; PostgreSQL only ever observes it). A
// read path would require deserializing entity.Predicate's sum type back
// out of its string form, which is exactly the "mirror, not source of
// truth" boundary spec.md §6 describes this collaborator as sitting at.
package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pthm/relgraph/entity"
	"github.com/pthm/relgraph/reach"
)

// Querier is the read half of the pgx surface a Mirror needs. Satisfied by
// *pgxpool.Pool, pgx.Tx, and *pgx.Conn.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Execer extends Querier with Exec, the minimal surface ApplyDDL and Sync
// need. Mirrors the teacher's Querier/Execer split: read-only callers never
// need to prove they can mutate the schema.
type Execer interface {
	Querier
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Beginner is implemented by connection pools (e.g. *pgxpool.Pool) that can
// hand out transactions. pgx.Tx implements Begin too, so a Mirror built over
// a transaction runs each Sync inside a nested savepoint of it, the same
// "Execer is typically *sql.DB but can be *sql.Tx for testing" duality the
// teacher's Migrator documents. Only an Execer without Begin has Sync run
// directly against it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Mirror writes an in-memory ReachabilityIndex's state to PostgreSQL.
type Mirror struct {
	db Execer
}

// New builds a Mirror over db. db is typically a *pgxpool.Pool in
// production and a pgx.Tx in tests that want the mirror's effects rolled
// back automatically.
func New(db Execer) *Mirror {
	return &Mirror{db: db}
}

// ApplyDDL creates the relgraph_node/relgraph_edge tables and indexes if
// they do not already exist. Safe to call on every process start.
func (m *Mirror) ApplyDDL(ctx context.Context) error {
	if _, err := m.db.Exec(ctx, SchemaSQL); err != nil {
		return fmt.Errorf("store: applying schema.sql: %w", err)
	}
	return nil
}

// Sync rewrites relgraph_node and relgraph_edge to reflect idx's current
// state, inside a single transaction when the Mirror's Execer can begin
// one. Nodes are assigned fresh synthetic UUIDs on every Sync (the mirror
// is a snapshot, not an append log, per the package doc), and edges carry
// both direct_edge_count (direct_edges) and indirect_edge_count
// (paths_fwd), matching spec.md §6's two counters.
func (m *Mirror) Sync(ctx context.Context, idx *reach.ReachabilityIndex) error {
	if beginner, ok := m.db.(Beginner); ok {
		tx, err := beginner.Begin(ctx)
		if err != nil {
			return fmt.Errorf("store: begin: %w", err)
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := syncWithin(ctx, tx, idx); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("store: commit: %w", err)
		}
		return nil
	}

	return syncWithin(ctx, m.db, idx)
}

// execer is the subset syncWithin needs, satisfied by both a Mirror's
// configured Execer and a pgx.Tx handed out by Beginner.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

func syncWithin(ctx context.Context, db execer, idx *reach.ReachabilityIndex) error {
	if _, err := db.Exec(ctx, "TRUNCATE relgraph_edge, relgraph_node"); err != nil {
		return fmt.Errorf("store: truncate: %w", err)
	}

	nodes := idx.Nodes()
	ids := make(map[entity.Node]uuid.UUID, len(nodes))

	nodeBatch := &pgx.Batch{}
	for _, rec := range nodes {
		id := uuid.New()
		ids[rec.Node] = id
		nodeBatch.Queue(
			`INSERT INTO relgraph_node (id, type, name, predicate, implicit, ref_count)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			id, rec.Node.Type, rec.Node.Name, rec.Node.Predicate.String(), rec.Implicit, rec.RefCount,
		)
	}
	if err := drainBatch(ctx, db, nodeBatch, len(nodes)); err != nil {
		return fmt.Errorf("store: inserting nodes: %w", err)
	}

	direct := make(map[entity.Edge]uint64, len(idx.DirectEdges()))
	for _, e := range idx.DirectEdges() {
		direct[entity.Edge{From: e.From, To: e.To}] = e.Count
	}

	edgeBatch := &pgx.Batch{}
	edgeCount := 0
	for _, e := range idx.IndirectEdges() {
		fromID, ok := ids[e.From]
		if !ok {
			return fmt.Errorf("store: node %v missing from synced node set", e.From)
		}
		toID, ok := ids[e.To]
		if !ok {
			return fmt.Errorf("store: node %v missing from synced node set", e.To)
		}
		directCount := direct[entity.Edge{From: e.From, To: e.To}]
		edgeBatch.Queue(
			`INSERT INTO relgraph_edge (id, subject_id, object_id, direct_edge_count, indirect_edge_count)
			 VALUES ($1, $2, $3, $4, $5)`,
			uuid.New(), fromID, toID, directCount, e.Count,
		)
		edgeCount++
	}
	if err := drainBatch(ctx, db, edgeBatch, edgeCount); err != nil {
		return fmt.Errorf("store: inserting edges: %w", err)
	}

	return nil
}

func drainBatch(ctx context.Context, db execer, batch *pgx.Batch, n int) error {
	if n == 0 {
		return nil
	}
	results := db.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	for i := 0; i < n; i++ {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}
