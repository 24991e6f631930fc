package store

import _ "embed"

// SchemaSQL contains the relgraph_node/relgraph_edge table definitions and
// indexes described in spec.md §6. Applied via CREATE TABLE IF NOT EXISTS
// for idempotence, the same discipline the teacher's sql package uses for
// its own embedded DDL.
//
//go:embed sql/schema.sql
var SchemaSQL string
