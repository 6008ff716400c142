// Package stores owns all persistence. Each store is a thin type over the
// shared *gorm.DB; the interfaces here are what the service layer consumes,
// so tests can substitute in-memory implementations.
package stores

import (
	"context"
	"errors"
	"time"

	"campusgpt-backend/models"
)

// ErrNotFound is returned by lookups when no row matches.
var ErrNotFound = errors.New("record not found")

// CredentialStore owns user identity records and password hashes.
type CredentialStore interface {
	// Create inserts a new user. Returns a Conflict error when the
	// username, email or student id is already registered.
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindById(ctx context.Context, id string) (*models.User, error)
	// Exists is the liveness check used by the auth gate.
	Exists(ctx context.Context, id string) (bool, error)
	// Taken reports whether the username or email is already registered.
	Taken(ctx context.Context, username, email string) (bool, error)
}

// SessionLedger persists login sessions. Last login wins: Open expires all
// prior non-expired sessions for the user and inserts the new row as one
// atomic unit.
type SessionLedger interface {
	Open(ctx context.Context, userId, token, ipAddress, userAgent string) error
	// Close expires the session matching token. A no-op when no
	// non-expired row matches.
	Close(ctx context.Context, token string) error
}

// QueryTx is the transaction a single query submission runs in. The pending
// insert and the success finalize happen inside it; the failure write does
// not (see QueryLedger.RecordFailure).
type QueryTx interface {
	InsertPending(ctx context.Context, userId, text string) (string, error)
	FinalizeSuccess(ctx context.Context, id, answer string, metadata []byte) error
	Commit() error
	Rollback() error
}

// QueryLedger persists query lifecycle records.
type QueryLedger interface {
	Begin(ctx context.Context) (QueryTx, error)
	// RecordFailure upserts a failed record under id, outside any
	// transaction. The pending row that identified the query was rolled
	// back together with its transaction, so this write re-creates it.
	RecordFailure(ctx context.Context, id, userId, text, errorMessage string) error
	ListForUser(ctx context.Context, userId string, limit, offset int) ([]models.QueryRecord, int64, error)
	// StatsForUser returns the total query count and last query time.
	StatsForUser(ctx context.Context, userId string) (int64, *time.Time, error)
}
