package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pthm/relgraph/entity"
	"github.com/pthm/relgraph/reach"
	"github.com/pthm/relgraph/store"
)

// newTestPool starts a disposable PostgreSQL container and returns a pool
// connected to it, torn down automatically at test cleanup. Mirrors the
// teacher's test/testutil.DB helper, stripped down to what this package's
// integration test needs (one fresh database per test run rather than a
// template-cloning pool, since this suite only exercises a handful of
// cases).
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL-backed test in short mode")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("relgraph"),
		postgres.WithUsername("relgraph"),
		postgres.WithPassword("relgraph"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "starting postgres container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pool.Ping(ctx))
	return pool
}

func node(name string) entity.Node {
	return entity.Node{Type: "n", Name: name, Predicate: entity.SelfRef{}}
}

func TestMirrorSyncReflectsIndexState(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	m := store.New(pool)
	require.NoError(t, m.ApplyDDL(ctx))

	idx := reach.New()
	a, b, c := node("a"), node("b"), node("c")
	require.NoError(t, idx.AddEdge(a, b))
	require.NoError(t, idx.AddEdge(b, c))
	require.NoError(t, idx.AddEdge(a, b)) // parallel edge, direct count 2

	require.NoError(t, m.Sync(ctx, idx))

	var nodeCount int
	require.NoError(t, pool.QueryRow(ctx, "SELECT count(*) FROM relgraph_node").Scan(&nodeCount))
	require.Equal(t, 3, nodeCount)

	var directCount, indirectCount int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT direct_edge_count, indirect_edge_count FROM relgraph_edge
		 JOIN relgraph_node s ON s.id = relgraph_edge.subject_id
		 JOIN relgraph_node o ON o.id = relgraph_edge.object_id
		 WHERE s.name = 'a' AND o.name = 'b'`,
	).Scan(&directCount, &indirectCount))
	require.Equal(t, 2, directCount)
	require.Equal(t, 2, indirectCount)

	var acCount int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT indirect_edge_count FROM relgraph_edge
		 JOIN relgraph_node s ON s.id = relgraph_edge.subject_id
		 JOIN relgraph_node o ON o.id = relgraph_edge.object_id
		 WHERE s.name = 'a' AND o.name = 'c'`,
	).Scan(&acCount))
	require.Equal(t, 2, acCount) // one path through each parallel a -> b edge
}

func TestMirrorSyncDropsEdgesAfterRemoval(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	m := store.New(pool)
	require.NoError(t, m.ApplyDDL(ctx))

	idx := reach.New()
	a, b := node("a"), node("b")
	require.NoError(t, idx.AddEdge(a, b))
	require.NoError(t, m.Sync(ctx, idx))

	require.NoError(t, idx.RemoveEdge(a, b))
	require.NoError(t, m.Sync(ctx, idx))

	var edgeCount int
	require.NoError(t, pool.QueryRow(ctx, "SELECT count(*) FROM relgraph_edge").Scan(&edgeCount))
	require.Equal(t, 0, edgeCount)

	var nodeCount int
	require.NoError(t, pool.QueryRow(ctx, "SELECT count(*) FROM relgraph_node").Scan(&nodeCount))
	require.Equal(t, 0, nodeCount, "a and b have no incident edges and were never pinned explicit")
}
