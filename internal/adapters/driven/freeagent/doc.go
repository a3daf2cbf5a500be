// Package freeagent implements driven.AccountingAPI against the FreeAgent v2 API.
//
// The Gateway owns every remote call: it obtains a bearer token for the
// owner, applies a per-owner token bucket, retries transport failures with a
// fixed backoff, maps HTTP statuses to domain errors, walks page/per_page
// pagination and serves list/detail reads through a namespaced cache.
//
// Invoice PDFs arrive base64-encoded inside a JSON envelope and are decoded
// and signature-checked here. They are never cached.
package freeagent
