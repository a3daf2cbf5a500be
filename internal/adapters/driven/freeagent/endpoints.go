package freeagent

import (
	"strings"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

// Base URLs per environment.
const (
	ProductionBaseURL = "https://api.freeagent.com/v2"
	SandboxBaseURL    = "https://api.sandbox.freeagent.com/v2"
)

// BaseURL returns the API root for env.
func BaseURL(env domain.Environment) string {
	if env == domain.EnvironmentSandbox {
		return SandboxBaseURL
	}
	return ProductionBaseURL
}

// AuthorizeURL returns the consent endpoint under base.
func AuthorizeURL(base string) string {
	return strings.TrimRight(base, "/") + "/approve_app"
}

// TokenURL returns the token endpoint under base.
func TokenURL(base string) string {
	return strings.TrimRight(base, "/") + "/token_endpoint"
}
