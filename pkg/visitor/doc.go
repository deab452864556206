// Package visitor resolves submitted names against the visitor store.
//
// Registrar.Register is the core of the index form workflow: it inserts the
// name if absent, reports whether the name was New or Known, and notifies
// the administrator the first time a name is seen. Notification is
// best-effort; a failed send is logged and audited but never fails the
// registration.
package visitor
