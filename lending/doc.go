// Package lending implements the lending coordinator: the component that
// validates borrow and return requests, executes their effects atomically
// against the inventory store, and mirrors the outcome into the
// relationship store.
//
// Write ordering is fixed: all precondition checks and ledger writes
// happen inside a single primary-store transaction with a row-level lock
// on the book; the mirror write runs after commit, asynchronously, on an
// at-least-once best-effort basis, and shares no lock with the primary
// transaction. A mirror failure is logged and swallowed - it never fails
// nor rolls back the primary operation.
package lending
