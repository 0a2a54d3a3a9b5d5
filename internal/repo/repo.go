// Package repo defines the persisted records of the application and the
// store contracts the services depend on. Implementations live in
// repo/mongostore and repo/memstore.
package repo

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record violates a unique constraint")
	// ErrStale is returned by conditional updates when the stored revision no
	// longer matches the one the caller read.
	ErrStale = errors.New("record was modified concurrently")
)

func IsNotFound(err error) bool  { return errors.Is(err, ErrNotFound) }
func IsDuplicate(err error) bool { return errors.Is(err, ErrDuplicate) }

// ---------------------------------------------------------------------------
// Repositories
// ---------------------------------------------------------------------------

type ReportRepository interface {
	Create(ctx context.Context, r *Report) error
	Get(ctx context.Context, id string) (*Report, error)
	// List returns matching reports, newest first.
	List(ctx context.Context, f ReportFilter) ([]*Report, error)
	// Update replaces the stored report when its revision equals r.Revision and
	// advances r.Revision on success. A mismatch yields ErrStale.
	Update(ctx context.Context, r *Report) error
	// Delete removes the report when its revision still equals revision.
	// A mismatch yields ErrStale.
	Delete(ctx context.Context, id string, revision int64) error
	// NextSequence atomically increments and returns the counter under key.
	NextSequence(ctx context.Context, key string) (int64, error)
}

type TemplateRepository interface {
	Create(ctx context.Context, t *ReportTemplate) error
	Get(ctx context.Context, id string) (*ReportTemplate, error)
	List(ctx context.Context) ([]*ReportTemplate, error)
	Update(ctx context.Context, t *ReportTemplate) error
	Delete(ctx context.Context, id string) error

	// DefaultID returns the id the default pointer names, or "" if unset.
	DefaultID(ctx context.Context) (string, error)
	// SetDefault points the default at id in a single write.
	SetDefault(ctx context.Context, id string) error
	// ClearDefault unsets the pointer only if it currently names id.
	ClearDefault(ctx context.Context, id string) error
}

type ClientRepository interface {
	Create(ctx context.Context, c *Client) error
	Get(ctx context.Context, id string) (*Client, error)
}

type CaseRepository interface {
	Create(ctx context.Context, c *Case) error
	Get(ctx context.Context, id string) (*Case, error)
}

type DataCollectionRepository interface {
	Create(ctx context.Context, dc *DataCollection) error
	Get(ctx context.Context, id string) (*DataCollection, error)
	GetByCase(ctx context.Context, caseID string) (*DataCollection, error)
	Update(ctx context.Context, dc *DataCollection) error
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
}

// ---------------------------------------------------------------------------
// Store
// ---------------------------------------------------------------------------

// Store groups every repository behind one handle.
type Store struct {
	Reports         ReportRepository
	Templates       TemplateRepository
	Clients         ClientRepository
	Cases           CaseRepository
	DataCollections DataCollectionRepository
	Users           UserRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// StoreHooks carries the lifecycle callbacks of a backing implementation.
type StoreHooks struct {
	Ping  func(ctx context.Context) error
	Close func(ctx context.Context) error
}

func (s *Store) WithHooks(h StoreHooks) *Store {
	s.ping = h.Ping
	s.close = h.Close
	return s
}

func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}
