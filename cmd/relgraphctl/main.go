// Command relgraphctl is a demo CLI around the relgraph facade: write and
// delete relational triples, run reachability checks, inspect a schema's
// implied closure, and mirror the index to PostgreSQL. It exists for
// exploration and integration testing, not as a production authorization
// server (spec.md §1 names the CLI demo harness explicitly out of scope for
// the core the rest of this repository implements).
package main

import "os"

func main() {
	Execute()
	os.Exit(exitCode)
}
