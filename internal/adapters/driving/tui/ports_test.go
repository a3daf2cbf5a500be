package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name  string
		ports *Ports
		want  error
	}{
		{"nil ports", nil, ErrInvalidPorts},
		{"missing mirror", &Ports{Principal: domain.User{UserID: "ops"}}, ErrMissingMirrorService},
		{"missing principal", &Ports{Mirror: &mockMirror{}}, ErrMissingPrincipal},
		{"complete", NewPorts(&mockMirror{}, domain.User{UserID: "ops"}), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
