// Package server provides the HTTP server for quillsign.
//
// the server is configured through environment variables
// (see internal/config/config.go for details)
//
// The package includes the handlers for the document, field, signer and
// signing-workflow APIs. Common infrastructure handlers (health, version,
// metrics) are in internal/server/handlers and middleware is in
// internal/server/middleware.
package server
