// Package inventorystore implements the authoritative Postgres store for
// books, borrowers and the borrowing ledger.
//
// SQL is built with goqu and executed through an internal adapter layer
// that supports pgxpool.Pool, sql.DB and sqlx.DB connections. Plain keyed
// CRUD is exposed directly on the Store; everything the lending
// coordinator touches runs inside a closure-scoped transaction obtained
// via WithinTx, which locks the affected book row (SELECT ... FOR UPDATE)
// so that concurrent borrows of the last copy cannot both pass the
// availability check.
package inventorystore
