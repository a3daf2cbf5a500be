// Package file provides the TOML-backed settings store.
//
// Keys are addressed in dotted form ("oauth.client_id") and written back
// as nested TOML tables, so the file stays hand-editable.
package file
