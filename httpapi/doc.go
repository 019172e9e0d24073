// Package httpapi exposes the lending service over HTTP with gin.
//
// The layer is deliberately thin: typed request structs validate field
// presence and date format at the boundary, then delegate to the lending
// coordinator or the stores. Domain errors map to status codes via the
// sentinel taxonomy in core; the handlers never inspect error strings.
package httpapi
