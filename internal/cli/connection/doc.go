// Package connection provides the HTTP client gymdesk-cli uses to talk
// to a gymdesk server.
//
// Responses arrive in the server's envelope; the client unwraps the data
// field on success and turns error envelopes into *APIError.
package connection
