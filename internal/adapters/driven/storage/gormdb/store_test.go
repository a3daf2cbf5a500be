package gormdb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

func ref(s string) *string { return &s }

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "dsn")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestInvoiceModel_RoundTrip(t *testing.T) {
	due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	inv := domain.Invoice{
		RemoteID:   "https://api.example.com/v2/invoices/1",
		ContactRef: ref("https://api.example.com/v2/contacts/42"),
		Reference:  "INV-001",
		Status:     domain.InvoiceOpen,
		DatedOn:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DueOn:      &due,
		TotalValue: "120.00",
		Currency:   "GBP",
		RawPayload: []byte(`{"url":"x"}`),
		SyncedAt:   time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
	}

	assert.Equal(t, inv, toInvoiceModel(inv).toDomain())
}

func TestContactModel_EmptyPayloadIsValidJSON(t *testing.T) {
	m := toContactModel(domain.Contact{RemoteID: "c", Type: domain.ContactPerson})

	assert.JSONEq(t, `{}`, string(m.RawPayload))
	assert.Equal(t, "person", m.ContactType)
}

func TestProjectModel_RoundTrip(t *testing.T) {
	p := domain.Project{
		RemoteID:   "https://api.example.com/v2/projects/1",
		ContactRef: ref("https://api.example.com/v2/contacts/42"),
		Name:       "Website",
		Budget:     ref("1500.00"),
		RawPayload: []byte(`{}`),
		SyncedAt:   time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
	}

	assert.Equal(t, p, toProjectModel(p).toDomain())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `42`, escapeLike("42"))
	assert.Equal(t, `a\%b\_c`, escapeLike("a%b_c"))
}

// TestStore_Postgres runs against a real server when one is configured.
func TestStore_Postgres(t *testing.T) {
	dsn := os.Getenv("LEDGERBRIDGE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("LEDGERBRIDGE_TEST_POSTGRES_DSN not set")
	}

	db, err := Open("postgres", dsn)
	require.NoError(t, err)
	store, err := NewStore(db)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, db.Exec("DELETE FROM invoices; DELETE FROM contacts; DELETE FROM oauth_tokens").Error)

	contact := domain.Contact{RemoteID: "https://api.example.com/v2/contacts/42", OrganisationName: "Acme",
		Type: domain.ContactOrganisation, IsActive: true, SyncedAt: time.Now()}
	created, err := store.ContactStore().Upsert(ctx, contact)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = store.ContactStore().Upsert(ctx, contact)
	require.NoError(t, err)
	assert.False(t, created)

	got, err := store.ContactStore().Get(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.OrganisationName)

	now := time.Now().UTC().Truncate(time.Second)
	tokens := store.TokenStore()
	require.NoError(t, tokens.Save(ctx, domain.OAuthToken{ID: "t1", OwnerID: "system", AccessToken: "a",
		RefreshToken: "r", ExpiresAt: now, CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, tokens.Update(ctx, domain.OAuthToken{OwnerID: "system", AccessToken: "b",
		RefreshToken: "r2", ExpiresAt: now.Add(time.Hour), UpdatedAt: now}))
	token, err := tokens.GetByOwner(ctx, "system")
	require.NoError(t, err)
	assert.Equal(t, "b", token.AccessToken)
	assert.ErrorIs(t, tokens.Update(ctx, domain.OAuthToken{OwnerID: "nobody"}), domain.ErrNotFound)
}
