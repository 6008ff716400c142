package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"campusgpt-backend/clients"
	"campusgpt-backend/models"
	"campusgpt-backend/stores"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memQueryLedger is an in-memory stores.QueryLedger. Staged writes only
// become visible on Commit; Rollback discards them, mirroring the real
// transaction semantics the pipeline depends on.
type memQueryLedger struct {
	mu      sync.Mutex
	records map[string]*models.QueryRecord

	beginErr    error
	commitErr   error
	rollbackErr error
	failureErr  error

	failureWrites int
	clock         time.Time
}

// nextTime hands out strictly increasing timestamps so ordering assertions
// cannot flake on clock resolution.
func (m *memQueryLedger) nextTime() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clock.IsZero() {
		m.clock = time.Now()
	}
	m.clock = m.clock.Add(time.Millisecond)
	return m.clock
}

func newMemQueryLedger() *memQueryLedger {
	return &memQueryLedger{records: make(map[string]*models.QueryRecord)}
}

func (m *memQueryLedger) Begin(ctx context.Context) (stores.QueryTx, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	return &memQueryTx{ledger: m}, nil
}

func (m *memQueryLedger) RecordFailure(ctx context.Context, id, userId, text, errorMessage string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failureWrites++
	if m.failureErr != nil {
		return m.failureErr
	}
	m.records[id] = &models.QueryRecord{
		Id:           id,
		UserId:       userId,
		QueryText:    text,
		Status:       models.QueryFailed,
		ErrorMessage: errorMessage,
		CreatedAt:    time.Now(),
	}
	return nil
}

func (m *memQueryLedger) ListForUser(ctx context.Context, userId string, limit, offset int) ([]models.QueryRecord, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []models.QueryRecord
	for _, rec := range m.records {
		if rec.UserId == userId {
			all = append(all, *rec)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (m *memQueryLedger) StatsForUser(ctx context.Context, userId string) (int64, *time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	var last *time.Time
	for _, rec := range m.records {
		if rec.UserId != userId {
			continue
		}
		total++
		if last == nil || rec.CreatedAt.After(*last) {
			t := rec.CreatedAt
			last = &t
		}
	}
	return total, last, nil
}

// get returns a copy of the stored record, or nil.
func (m *memQueryLedger) get(id string) *models.QueryRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil
	}
	cp := *rec
	return &cp
}

func (m *memQueryLedger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

type memQueryTx struct {
	ledger *memQueryLedger
	staged []*models.QueryRecord
}

func (t *memQueryTx) InsertPending(ctx context.Context, userId, text string) (string, error) {
	rec := &models.QueryRecord{
		Id:        uuid.NewString(),
		UserId:    userId,
		QueryText: text,
		Status:    models.QueryPending,
		CreatedAt: t.ledger.nextTime(),
	}
	t.staged = append(t.staged, rec)
	return rec.Id, nil
}

func (t *memQueryTx) FinalizeSuccess(ctx context.Context, id, answer string, metadata []byte) error {
	for _, rec := range t.staged {
		if rec.Id == id {
			rec.Status = models.QueryCompleted
			rec.ResponseText = &answer
			rec.Metadata = datatypes.JSON(metadata)
			return nil
		}
	}
	return stores.ErrNotFound
}

func (t *memQueryTx) Commit() error {
	if t.ledger.commitErr != nil {
		return t.ledger.commitErr
	}
	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()
	for _, rec := range t.staged {
		t.ledger.records[rec.Id] = rec
	}
	t.staged = nil
	return nil
}

func (t *memQueryTx) Rollback() error {
	t.staged = nil
	return t.ledger.rollbackErr
}

// fakeResponder answers with a fixed function.
type fakeResponder struct {
	fn    func(ctx context.Context, req clients.AskRequest) (string, error)
	calls int
}

func (f *fakeResponder) Ask(ctx context.Context, req clients.AskRequest) (string, error) {
	f.calls++
	return f.fn(ctx, req)
}

// memUsers is an in-memory stores.CredentialStore.
type memUsers struct {
	mu    sync.Mutex
	users map[string]*models.User // by id
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]*models.User)}
}

func (m *memUsers) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.Id == "" {
		user.Id = uuid.NewString()
	}
	user.CreatedAt = time.Now()
	cp := *user
	m.users[user.Id] = &cp
	return nil
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, stores.ErrNotFound
}

func (m *memUsers) FindById(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, stores.ErrNotFound
}

func (m *memUsers) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[id]
	return ok, nil
}

func (m *memUsers) Taken(ctx context.Context, username, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// memSessions is an in-memory stores.SessionLedger with the same
// supersede-then-open behavior as the real one.
type memSessions struct {
	mu      sync.Mutex
	rows    []*models.Session
	openErr error
}

func newMemSessions() *memSessions {
	return &memSessions{}
}

func (m *memSessions) Open(ctx context.Context, userId, token, ipAddress, userAgent string) error {
	if m.openErr != nil {
		return m.openErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, s := range m.rows {
		if s.UserId == userId && s.ExpiresAt.After(now) {
			s.ExpiresAt = now
		}
	}
	m.rows = append(m.rows, &models.Session{
		UserId:       userId,
		SessionToken: token,
		IPAddress:    ipAddress,
		UserAgent:    userAgent,
		CreatedAt:    now,
		ExpiresAt:    now.Add(24 * time.Hour),
	})
	return nil
}

func (m *memSessions) Close(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, s := range m.rows {
		if s.SessionToken == token && s.ExpiresAt.After(now) {
			s.ExpiresAt = now
		}
	}
	return nil
}

func (m *memSessions) activeFor(userId string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	n := 0
	for _, s := range m.rows {
		if s.UserId == userId && s.ExpiresAt.After(now) {
			n++
		}
	}
	return n
}

func (m *memSessions) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}
