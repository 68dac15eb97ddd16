// components/contact/store.go
//
// Persistence for contact-form submissions.
//
// Context
// -------
// ContactFormWidget receives a Store through its `widget:"service"` field.
// With a database configured the component provides SQLStore (sqlx over
// the MySQL driver); otherwise MemoryStore keeps messages for the life of
// the process, which is enough for local development and tests.

package contact

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
)

// Message is one submission.
type Message struct {
	ID        int64     `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	Email     string    `db:"email"      json:"email"`
	Topic     string    `db:"topic"      json:"topic"`
	Body      string    `db:"body"       json:"body"`
	Subscribe bool      `db:"subscribe"  json:"subscribe"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Store saves and lists messages.
type Store interface {
	Save(ctx context.Context, m *Message) (int64, error)
	Recent(ctx context.Context, limit int) ([]Message, error)
}

// ErrInvalidLimit is returned by Recent for limit < 1.
var ErrInvalidLimit = errors.New("contact: limit must be positive")

// MaxRecent caps Recent regardless of the requested limit.
const MaxRecent = 50

//
// SQL store
//

const (
	insertMessage = `INSERT INTO contact_message
	    (name, email, topic, body, subscribe, created_at)
	    VALUES (:name, :email, :topic, :body, :subscribe, :created_at)`

	selectRecent = `SELECT id, name, email, topic, body, subscribe, created_at
	    FROM contact_message ORDER BY created_at DESC, id DESC LIMIT ?`
)

// SQLStore persists to the contact_message table.
type SQLStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLStore wraps db.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

// Save inserts m, filling ID and CreatedAt.
func (s *SQLStore) Save(ctx context.Context, m *Message) (int64, error) {
	m.CreatedAt = s.now().UTC()
	res, err := s.db.NamedExecContext(ctx, insertMessage, m)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	m.ID = id
	return id, nil
}

// Recent returns up to limit messages, newest first.
func (s *SQLStore) Recent(ctx context.Context, limit int) ([]Message, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	limit = min(limit, MaxRecent)
	var out []Message
	if err := s.db.SelectContext(ctx, &out, selectRecent, limit); err != nil {
		return nil, err
	}
	return out, nil
}

//
// memory store
//

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu   sync.Mutex
	msgs []Message
	now  func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{now: time.Now} }

func (s *MemoryStore) Save(ctx context.Context, m *Message) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = int64(len(s.msgs) + 1)
	m.CreatedAt = s.now().UTC()
	s.msgs = append(s.msgs, *m)
	return m.ID, nil
}

func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]Message, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	limit = min(limit, MaxRecent, len(s.msgs))
	out := make([]Message, 0, limit)
	for i := len(s.msgs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.msgs[i])
	}
	return out, nil
}
