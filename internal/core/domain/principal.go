package domain

// Principal is the capability every caller type must implement to be scoped.
type Principal interface {
	// ID identifies the principal. Used for per-principal owner resolution.
	ID() string
	// IsAdministrator reports whether the principal sees everything.
	IsAdministrator() bool
	// LinkedContactID returns the contact a scoped user is linked to.
	LinkedContactID() (string, bool)
}

// User is the default Principal implementation.
type User struct {
	UserID  string
	Admin   bool
	Contact string
}

// ID implements Principal.
func (u User) ID() string { return u.UserID }

// IsAdministrator implements Principal.
func (u User) IsAdministrator() bool { return u.Admin }

// LinkedContactID implements Principal.
func (u User) LinkedContactID() (string, bool) {
	return u.Contact, u.Contact != ""
}

// ScopeKind describes how an invoice listing is narrowed.
type ScopeKind int

// Scope kinds.
const (
	// ScopeAll applies no filter.
	ScopeAll ScopeKind = iota
	// ScopeContact restricts to one contact.
	ScopeContact
	// ScopeNone matches nothing.
	ScopeNone
)

// InvoiceScope is the filter produced by the scope resolver.
type InvoiceScope struct {
	Kind       ScopeKind
	ContactRef string
}

// Matches reports whether an invoice falls inside the scope.
func (s InvoiceScope) Matches(inv *Invoice) bool {
	switch s.Kind {
	case ScopeAll:
		return true
	case ScopeContact:
		return inv.ContactRef != nil && *inv.ContactRef == s.ContactRef
	default:
		return false
	}
}

// PrincipalLink ties a principal to the one contact it may see.
type PrincipalLink struct {
	PrincipalID     string
	ContactRemoteID string
}
