// Package core contains the domain model of the lending service:
// books, borrowers, borrowing records, the calendar-date value type
// and the pure decision logic governing borrow and return legality.
//
// Nothing in this package performs I/O. The stores project the current
// state, the decision functions judge it, and the lending coordinator
// applies the outcome. This keeps the business rules trivially testable
// without a database.
package core
