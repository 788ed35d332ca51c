// Package http exposes the analysis pipeline over a REST API. Handlers
// translate between HTTP and the services layer; no numeric logic lives
// here.
package http
