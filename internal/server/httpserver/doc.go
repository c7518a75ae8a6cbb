// Package httpserver provides the HTTP/HTTPS server for gymdesk.
//
// It uses the Go standard library net/http. NewRouter mounts the routes
// declared by the handler package, wrapping each in the middleware
// chain and the token check the route asks for. /metrics is served from
// the Prometheus registry when one is configured.
package httpserver
