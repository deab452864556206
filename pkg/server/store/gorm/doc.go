// Package gorm provides GORM-based implementations of the store interfaces
// defined in the parent store package.
//
// The implementations work against both dialects opened by pkg/db
// (PostgreSQL and SQLite). Duplicate key errors are mapped to the store
// sentinel errors, and every call is bounded by the timeout given to the
// constructor.
package gorm
