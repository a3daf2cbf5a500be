// Package mcp provides an MCP (Model Context Protocol) server adapter for ledgerbridge.
// It lets AI assistants read mirrored invoices and trigger syncs as the
// principal chosen with --as and --admin, under that principal's scope.
package mcp

import "errors"

// ErrMissingMirrorService is returned when the mirror service is not provided.
var ErrMissingMirrorService = errors.New("mcp: mirror service is required")

// ErrMissingPrincipal is returned when no acting principal is provided.
var ErrMissingPrincipal = errors.New("mcp: principal is required")
