// Package graphstore implements the Neo4j-backed relationship store: a
// read-optimized, non-authoritative mirror of the borrowing ledger as
// Borrower --BORROWED--> Book edges.
//
// The mirror receives best-effort writes after the primary transaction
// has committed and may transiently lag behind the ledger. It must never
// be consulted for lending legality checks.
package graphstore
