package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashicorp/go-memdb"

	"github.com/hmpps/incentives-ui/internal/domain"
)

const sessionsTable = "sessions"

var dbSchema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		sessionsTable: {
			Name: sessionsTable,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "Token"},
				},
			},
		},
	},
}

// MemoryStore keeps sessions in process memory. Sessions are lost on restart and
// are not shared between replicas.
type MemoryStore struct {
	db *memdb.MemDB
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() (*MemoryStore, error) {
	db, err := memdb.NewMemDB(dbSchema)
	if err != nil {
		return nil, err
	}
	return &MemoryStore{db: db}, nil
}

// Create stores a new session.
func (m *MemoryStore) Create(_ context.Context, s *Session) (string, error) {
	const op = "session.MemoryStore.Create"

	raw, hash, err := newToken()
	if err != nil {
		return "", domain.Internal(err, op, "failed to generate session token")
	}

	stored := *s
	stored.Token = hash

	txn := m.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert(sessionsTable, &stored); err != nil {
		return "", domain.Internal(err, op, "failed to store session")
	}
	txn.Commit()

	return raw, nil
}

// Get returns a copy of the stored session.
func (m *MemoryStore) Get(_ context.Context, rawToken string) (*Session, error) {
	const op = "session.MemoryStore.Get"
	if rawToken == "" {
		return nil, nil
	}

	txn := m.db.Txn(false)
	obj, err := txn.First(sessionsTable, "id", hashToken(rawToken))
	if err != nil {
		return nil, domain.Internal(err, op, "failed to read session")
	}
	if obj == nil {
		return nil, nil
	}

	s := *obj.(*Session)
	if s.Expired(time.Now()) {
		return nil, nil
	}
	return &s, nil
}

// Save replaces the stored session.
func (m *MemoryStore) Save(_ context.Context, rawToken string, s *Session) error {
	const op = "session.MemoryStore.Save"

	txn := m.db.Txn(true)
	defer txn.Abort()

	hash := hashToken(rawToken)
	existing, err := txn.First(sessionsTable, "id", hash)
	if err != nil {
		return domain.Internal(err, op, "failed to read session")
	}
	if existing == nil {
		return domain.NotFound(op, "session", "current")
	}

	stored := *s
	stored.Token = hash
	stored.Expires = existing.(*Session).Expires
	if err := txn.Insert(sessionsTable, &stored); err != nil {
		return domain.Internal(err, op, "failed to store session")
	}
	txn.Commit()
	return nil
}

// Delete removes a session. Deleting an unknown token is not an error.
func (m *MemoryStore) Delete(_ context.Context, rawToken string) error {
	const op = "session.MemoryStore.Delete"

	txn := m.db.Txn(true)
	defer txn.Abort()
	if _, err := txn.DeleteAll(sessionsTable, "id", hashToken(rawToken)); err != nil {
		return domain.Internal(err, op, "failed to delete session")
	}
	txn.Commit()
	return nil
}

// DeleteExpired removes every session that has ended and returns how many. The
// whole table is scanned: memdb int indexes do not iterate in numeric order.
func (m *MemoryStore) DeleteExpired(_ context.Context) (int, error) {
	const op = "session.MemoryStore.DeleteExpired"

	txn := m.db.Txn(true)
	defer txn.Abort()

	it, err := txn.Get(sessionsTable, "id")
	if err != nil {
		return 0, domain.Internal(err, op, "failed to scan sessions")
	}

	now := time.Now().Unix()
	var expired []*Session
	for obj := it.Next(); obj != nil; obj = it.Next() {
		if s := obj.(*Session); s.Expires <= now {
			expired = append(expired, s)
		}
	}
	for _, s := range expired {
		if err := txn.Delete(sessionsTable, s); err != nil {
			return 0, domain.Internal(err, op, "failed to delete session")
		}
	}

	txn.Commit()
	return len(expired), nil
}

// Sweep deletes expired sessions every interval until ctx is cancelled.
func (m *MemoryStore) Sweep(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.DeleteExpired(ctx)
			if err != nil {
				logger.Error("failed to sweep expired sessions", "error", err)
				continue
			}
			if n > 0 {
				logger.Debug("swept expired sessions", "count", n)
			}
		}
	}
}
