// Package httpapi exposes the mirror over HTTP.
//
// Routes are served by a gorilla/mux router. Callers authenticate with an
// HS256 JWT carried in the Authorization header or the ledgerbridge_token
// cookie; the token subject becomes the principal id and the admin claim
// marks administrators. The OAuth connect flow keeps its CSRF state in a
// gorilla/sessions cookie. Every error is rendered as application/problem+json.
package httpapi
