// Package model defines the database models for Flasky.
//
// This package contains GORM models that map to the two-table schema
// created by the migrations under db/migrations.
//
// # Core Models
//
//   - Role: a labeled grouping, unique by name
//   - Visitor: a person recorded once by unique username, optionally
//     referencing a Role
//
// # Database Schema
//
//   - roles(id, name) with a unique index on name
//   - users(id, username, role_id) with a unique index on username and a
//     foreign key role_id -> roles.id
//
// The inverse relationship (visitors of a role) is not a model attribute;
// it is the explicit RolesStore.VisitorsForRole query.
package model
