// Package store provides storage abstractions for the Flasky server.
//
// This package defines interfaces for database operations, allowing the
// request handlers to be decoupled from the specific database
// implementation. This enables testing with mocks and running against
// either PostgreSQL or SQLite.
//
// # Available Stores
//
//   - VisitorsStore: visitor lookup, insert and insert-if-absent
//   - RolesStore: role seed data and the visitors-of-a-role query
//   - HealthStore: database connectivity checks
//
// # Usage
//
//	visitors := gorm.NewVisitorsStore(db, cfg.StoreTimeout())
//	v, created, err := visitors.EnsureVisitor(ctx, "Ada")
//	if err != nil {
//	    // store failure
//	}
//
// Uniqueness violations surface as ErrVisitorExists or ErrRoleExists and
// are checked with errors.Is.
package store
