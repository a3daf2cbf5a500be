// Package tui provides an interactive terminal browser for the invoice mirror.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
	"github.com/custodia-labs/ledgerbridge/internal/core/ports/driving"
)

// Ports aggregates what the TUI needs from the core.
type Ports struct {
	// Mirror serves invoices, contacts and syncs.
	Mirror driving.MirrorService

	// Principal is the identity every view acts as.
	Principal domain.Principal
}

// NewPorts creates a new Ports aggregate.
func NewPorts(mirror driving.MirrorService, p domain.Principal) *Ports {
	return &Ports{Mirror: mirror, Principal: p}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Mirror == nil {
		return ErrMissingMirrorService
	}
	if p.Principal == nil {
		return ErrMissingPrincipal
	}
	return nil
}
