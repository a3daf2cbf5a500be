package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContact_DisplayName(t *testing.T) {
	tests := []struct {
		name     string
		contact  Contact
		expected string
	}{
		{"organisation wins", Contact{OrganisationName: "Acme Ltd", FirstName: "Jo", LastName: "Bloggs"}, "Acme Ltd"},
		{"person", Contact{FirstName: "Jo", LastName: "Bloggs"}, "Jo Bloggs"},
		{"first name only", Contact{FirstName: "Jo"}, "Jo"},
		{"last name only", Contact{LastName: "Bloggs"}, "Bloggs"},
		{"blank organisation", Contact{OrganisationName: "  "}, "Unnamed Contact"},
		{"nothing", Contact{}, "Unnamed Contact"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.contact.DisplayName())
		})
	}
}
