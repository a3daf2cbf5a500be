package gormdb

import (
	"time"

	"gorm.io/datatypes"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

type tokenModel struct {
	ID           string    `gorm:"primaryKey;size:64"`
	OwnerID      string    `gorm:"uniqueIndex;size:191;not null"`
	AccessToken  string    `gorm:"type:text;not null"`
	RefreshToken string    `gorm:"type:text;not null"`
	TokenType    string    `gorm:"size:32"`
	ExpiresAt    time.Time `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (tokenModel) TableName() string { return "oauth_tokens" }

type contactModel struct {
	RemoteID         string `gorm:"primaryKey;size:191"`
	OrganisationName string `gorm:"size:255"`
	FirstName        string `gorm:"size:255"`
	LastName         string `gorm:"size:255"`
	Email            string `gorm:"size:255"`
	Phone            string `gorm:"size:64"`
	ContactType      string `gorm:"size:32"`
	IsActive         bool
	RawPayload       datatypes.JSON
	SyncedAt         time.Time
}

func (contactModel) TableName() string { return "contacts" }

type projectModel struct {
	RemoteID   string  `gorm:"primaryKey;size:191"`
	ContactRef *string `gorm:"index;size:191"`
	Name       string  `gorm:"size:255"`
	Status     string  `gorm:"size:64"`
	StartsOn   *time.Time
	EndsOn     *time.Time
	Budget     *string `gorm:"size:64"`
	Currency   string  `gorm:"size:8"`
	RawPayload datatypes.JSON
	SyncedAt   time.Time
}

func (projectModel) TableName() string { return "projects" }

type invoiceModel struct {
	RemoteID   string    `gorm:"primaryKey;size:191"`
	ContactRef *string   `gorm:"index;size:191"`
	ProjectRef *string   `gorm:"size:191"`
	Reference  string    `gorm:"size:255"`
	Status     string    `gorm:"size:64"`
	DatedOn    time.Time `gorm:"index"`
	DueOn      *time.Time
	NetValue   string `gorm:"size:64"`
	TaxValue   string `gorm:"size:64"`
	TotalValue string `gorm:"size:64"`
	Currency   string `gorm:"size:8"`
	RawPayload datatypes.JSON
	SyncedAt   time.Time
}

func (invoiceModel) TableName() string { return "invoices" }

type linkModel struct {
	PrincipalID     string `gorm:"primaryKey;size:191"`
	ContactRemoteID string `gorm:"size:191;not null"`
	LinkedAt        time.Time
}

func (linkModel) TableName() string { return "principal_contacts" }

// allModels lists every table for AutoMigrate.
var allModels = []any{&tokenModel{}, &contactModel{}, &projectModel{}, &invoiceModel{}, &linkModel{}}

func toTokenModel(t domain.OAuthToken) tokenModel {
	return tokenModel{
		ID: t.ID, OwnerID: t.OwnerID, AccessToken: t.AccessToken, RefreshToken: t.RefreshToken,
		TokenType: t.TokenType, ExpiresAt: t.ExpiresAt.UTC(), CreatedAt: t.CreatedAt.UTC(), UpdatedAt: t.UpdatedAt.UTC(),
	}
}

func (m tokenModel) toDomain() domain.OAuthToken {
	return domain.OAuthToken{
		ID: m.ID, OwnerID: m.OwnerID, AccessToken: m.AccessToken, RefreshToken: m.RefreshToken,
		TokenType: m.TokenType, ExpiresAt: m.ExpiresAt, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
	}
}

// payload keeps an empty payload valid JSON.
func payload(raw []byte) datatypes.JSON {
	if len(raw) == 0 {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(raw)
}

func toContactModel(c domain.Contact) contactModel {
	return contactModel{
		RemoteID: c.RemoteID, OrganisationName: c.OrganisationName, FirstName: c.FirstName,
		LastName: c.LastName, Email: c.Email, Phone: c.Phone, ContactType: string(c.Type),
		IsActive: c.IsActive, RawPayload: payload(c.RawPayload), SyncedAt: c.SyncedAt.UTC(),
	}
}

func (m contactModel) toDomain() domain.Contact {
	return domain.Contact{
		RemoteID: m.RemoteID, OrganisationName: m.OrganisationName, FirstName: m.FirstName,
		LastName: m.LastName, Email: m.Email, Phone: m.Phone, Type: domain.ContactType(m.ContactType),
		IsActive: m.IsActive, RawPayload: []byte(m.RawPayload), SyncedAt: m.SyncedAt,
	}
}

func toProjectModel(p domain.Project) projectModel {
	return projectModel{
		RemoteID: p.RemoteID, ContactRef: p.ContactRef, Name: p.Name, Status: p.Status,
		StartsOn: p.StartsOn, EndsOn: p.EndsOn, Budget: p.Budget, Currency: p.Currency,
		RawPayload: payload(p.RawPayload), SyncedAt: p.SyncedAt.UTC(),
	}
}

func (m projectModel) toDomain() domain.Project {
	return domain.Project{
		RemoteID: m.RemoteID, ContactRef: m.ContactRef, Name: m.Name, Status: m.Status,
		StartsOn: m.StartsOn, EndsOn: m.EndsOn, Budget: m.Budget, Currency: m.Currency,
		RawPayload: []byte(m.RawPayload), SyncedAt: m.SyncedAt,
	}
}

func toInvoiceModel(i domain.Invoice) invoiceModel {
	return invoiceModel{
		RemoteID: i.RemoteID, ContactRef: i.ContactRef, ProjectRef: i.ProjectRef, Reference: i.Reference,
		Status: i.Status, DatedOn: i.DatedOn.UTC(), DueOn: i.DueOn, NetValue: i.NetValue,
		TaxValue: i.TaxValue, TotalValue: i.TotalValue, Currency: i.Currency,
		RawPayload: payload(i.RawPayload), SyncedAt: i.SyncedAt.UTC(),
	}
}

func (m invoiceModel) toDomain() domain.Invoice {
	return domain.Invoice{
		RemoteID: m.RemoteID, ContactRef: m.ContactRef, ProjectRef: m.ProjectRef, Reference: m.Reference,
		Status: m.Status, DatedOn: m.DatedOn, DueOn: m.DueOn, NetValue: m.NetValue,
		TaxValue: m.TaxValue, TotalValue: m.TotalValue, Currency: m.Currency,
		RawPayload: []byte(m.RawPayload), SyncedAt: m.SyncedAt,
	}
}
