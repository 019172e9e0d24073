// Package testutil provides in-memory fakes and spies for testing the
// lending coordinator and the HTTP layer without a running Postgres or
// Neo4j instance.
//
// The fakes honor the contracts the real stores give: the inventory fake
// serializes transactions and discards uncommitted writes on error, and
// the graph fake can be told to fail a number of calls to exercise the
// mirror retry path.
package testutil
