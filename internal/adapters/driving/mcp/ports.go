package mcp

import (
	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
	"github.com/custodia-labs/ledgerbridge/internal/core/ports/driving"
)

// Ports aggregates what the MCP server drives.
type Ports struct {
	// Mirror serves scoped reads and syncs.
	Mirror driving.MirrorService

	// Principal is who every tool call acts as.
	Principal domain.Principal
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Mirror == nil {
		return ErrMissingMirrorService
	}
	if p.Principal == nil {
		return ErrMissingPrincipal
	}
	return nil
}
