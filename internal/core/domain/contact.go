package domain

import (
	"strings"
	"time"
)

// ContactType distinguishes organisations from individual people.
type ContactType string

// Contact types.
const (
	ContactOrganisation ContactType = "organisation"
	ContactPerson       ContactType = "person"
)

// Contact is the local mirror of a remote contact.
type Contact struct {
	// RemoteID is the stable remote identifier (a URL).
	RemoteID         string
	OrganisationName string
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	Type             ContactType
	IsActive         bool
	// RawPayload is the remote JSON the record was built from.
	RawPayload []byte
	SyncedAt   time.Time
}

// DisplayName returns the organisation name, else the person's name,
// else "Unnamed Contact".
func (c *Contact) DisplayName() string {
	if name := strings.TrimSpace(c.OrganisationName); name != "" {
		return name
	}
	if name := strings.TrimSpace(c.FirstName + " " + c.LastName); name != "" {
		return name
	}
	return "Unnamed Contact"
}
