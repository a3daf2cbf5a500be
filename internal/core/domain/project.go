package domain

import "time"

// Project is the local mirror of a remote project.
type Project struct {
	RemoteID string
	// ContactRef is the owning contact's RemoteID, nil if unknown locally.
	ContactRef *string
	Name       string
	Status     string
	StartsOn   *time.Time
	EndsOn     *time.Time
	// Budget is a decimal string, nil when the project has none.
	Budget     *string
	Currency   string
	RawPayload []byte
	SyncedAt   time.Time
}
