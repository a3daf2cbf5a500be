package services

import (
	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
	"github.com/custodia-labs/ledgerbridge/internal/core/ports/driving"
)

var (
	_ driving.OwnerResolver = SystemOwnerResolver{}
	_ driving.OwnerResolver = PrincipalOwnerResolver{}
)

// SystemOwnerResolver maps every principal to the shared system owner.
type SystemOwnerResolver struct{}

// OwnerFor returns domain.SystemOwner.
func (SystemOwnerResolver) OwnerFor(domain.Principal) string {
	return domain.SystemOwner
}

// PrincipalOwnerResolver gives each principal its own owner key.
type PrincipalOwnerResolver struct{}

// OwnerFor returns "user:<id>".
func (PrincipalOwnerResolver) OwnerFor(p domain.Principal) string {
	return "user:" + p.ID()
}

// NewOwnerResolver returns the resolver for mode. Unknown modes fall back to
// the system owner.
func NewOwnerResolver(mode domain.OwnerMode) driving.OwnerResolver {
	if mode == domain.OwnerModePerUser {
		return PrincipalOwnerResolver{}
	}
	return SystemOwnerResolver{}
}
