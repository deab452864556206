// Package endpoints registers the HTTP routes of the visitor application.
//
//   - GET  /          greeting and name form
//   - POST /          name submission, answered with 303 See Other to /
//   - GET  /status    database connectivity as JSON
//   - GET  /static/*  embedded stylesheet
//
// Unknown paths render the 404 page; store failures and panics render the
// 500 page.
package endpoints
