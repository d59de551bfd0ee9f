// Package http implements the HTTP handlers for the wizard service.
// It is a thin layer between transport and business logic: handlers
// parse and validate requests, delegate to the service layer, and
// transform service errors into HTTP responses. No business logic
// lives here.
package http
