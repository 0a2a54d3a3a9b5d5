// Package memstore is an in-process implementation of the repo contracts.
// It enforces the same unique constraints as the MongoDB indexes and hands
// out copies so callers never alias stored records.
package memstore

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/sarahsindone/sbrp-application/internal/repo"
)

type db struct {
	mu sync.RWMutex

	reports         map[string]*repo.Report
	templates       map[string]*repo.ReportTemplate
	clients         map[string]*repo.Client
	cases           map[string]*repo.Case
	dataCollections map[string]*repo.DataCollection
	users           map[string]*repo.User
	counters        map[string]int64
	defaultTemplate string
}

// New returns an empty store.
func New() *repo.Store {
	d := &db{
		reports:         map[string]*repo.Report{},
		templates:       map[string]*repo.ReportTemplate{},
		clients:         map[string]*repo.Client{},
		cases:           map[string]*repo.Case{},
		dataCollections: map[string]*repo.DataCollection{},
		users:           map[string]*repo.User{},
		counters:        map[string]int64{},
	}
	return &repo.Store{
		Reports:         &reportRepo{d},
		Templates:       &templateRepo{d},
		Clients:         &clientRepo{d},
		Cases:           &caseRepo{d},
		DataCollections: &dataCollectionRepo{d},
		Users:           &userRepo{d},
	}
}

// ---------------------------------------------------------------------------
// Reports
// ---------------------------------------------------------------------------

type reportRepo struct{ d *db }

func (r *reportRepo) Create(_ context.Context, rep *repo.Report) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, exists := r.d.reports[rep.ID]; exists {
		return repo.ErrDuplicate
	}
	for _, other := range r.d.reports {
		if other.Metadata.ReportNumber == rep.Metadata.ReportNumber {
			return repo.ErrDuplicate
		}
	}
	r.d.reports[rep.ID] = rep.Clone()
	return nil
}

func (r *reportRepo) Get(_ context.Context, id string) (*repo.Report, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	rep, ok := r.d.reports[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return rep.Clone(), nil
}

func (r *reportRepo) List(_ context.Context, f repo.ReportFilter) ([]*repo.Report, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	out := make([]*repo.Report, 0)
	for _, rep := range r.d.reports {
		if f.Match(rep) {
			out = append(out, rep.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *repo.Report) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (r *reportRepo) Update(_ context.Context, rep *repo.Report) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	cur, ok := r.d.reports[rep.ID]
	if !ok {
		return repo.ErrNotFound
	}
	if cur.Revision != rep.Revision {
		return repo.ErrStale
	}
	rep.Revision++
	r.d.reports[rep.ID] = rep.Clone()
	return nil
}

func (r *reportRepo) Delete(_ context.Context, id string, revision int64) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	cur, ok := r.d.reports[id]
	if !ok {
		return repo.ErrNotFound
	}
	if cur.Revision != revision {
		return repo.ErrStale
	}
	delete(r.d.reports, id)
	return nil
}

func (r *reportRepo) NextSequence(_ context.Context, key string) (int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	r.d.counters[key]++
	return r.d.counters[key], nil
}

// ---------------------------------------------------------------------------
// Templates
// ---------------------------------------------------------------------------

type templateRepo struct{ d *db }

func (r *templateRepo) nameTaken(name, exceptID string) bool {
	for id, t := range r.d.templates {
		if id != exceptID && t.Name == name {
			return true
		}
	}
	return false
}

func (r *templateRepo) Create(_ context.Context, t *repo.ReportTemplate) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, exists := r.d.templates[t.ID]; exists || r.nameTaken(t.Name, "") {
		return repo.ErrDuplicate
	}
	stored := t.Clone()
	stored.IsDefault = false
	r.d.templates[t.ID] = stored
	return nil
}

func (r *templateRepo) Get(_ context.Context, id string) (*repo.ReportTemplate, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	t, ok := r.d.templates[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	out := t.Clone()
	out.IsDefault = id == r.d.defaultTemplate
	return out, nil
}

func (r *templateRepo) List(_ context.Context) ([]*repo.ReportTemplate, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	out := make([]*repo.ReportTemplate, 0, len(r.d.templates))
	for id, t := range r.d.templates {
		c := t.Clone()
		c.IsDefault = id == r.d.defaultTemplate
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *repo.ReportTemplate) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

func (r *templateRepo) Update(_ context.Context, t *repo.ReportTemplate) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, ok := r.d.templates[t.ID]; !ok {
		return repo.ErrNotFound
	}
	if r.nameTaken(t.Name, t.ID) {
		return repo.ErrDuplicate
	}
	stored := t.Clone()
	stored.IsDefault = false
	r.d.templates[t.ID] = stored
	return nil
}

func (r *templateRepo) Delete(_ context.Context, id string) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, ok := r.d.templates[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.d.templates, id)
	return nil
}

func (r *templateRepo) DefaultID(_ context.Context) (string, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	return r.d.defaultTemplate, nil
}

func (r *templateRepo) SetDefault(_ context.Context, id string) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, ok := r.d.templates[id]; !ok {
		return repo.ErrNotFound
	}
	r.d.defaultTemplate = id
	return nil
}

func (r *templateRepo) ClearDefault(_ context.Context, id string) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if r.d.defaultTemplate == id {
		r.d.defaultTemplate = ""
	}
	return nil
}

// ---------------------------------------------------------------------------
// Clients, cases, data collections, users
// ---------------------------------------------------------------------------

type clientRepo struct{ d *db }

func (r *clientRepo) Create(_ context.Context, c *repo.Client) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, exists := r.d.clients[c.ID]; exists {
		return repo.ErrDuplicate
	}
	cp := *c
	r.d.clients[c.ID] = &cp
	return nil
}

func (r *clientRepo) Get(_ context.Context, id string) (*repo.Client, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	c, ok := r.d.clients[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

type caseRepo struct{ d *db }

func (r *caseRepo) Create(_ context.Context, c *repo.Case) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, exists := r.d.cases[c.ID]; exists {
		return repo.ErrDuplicate
	}
	for _, other := range r.d.cases {
		if other.CaseNumber == c.CaseNumber {
			return repo.ErrDuplicate
		}
	}
	cp := *c
	r.d.cases[c.ID] = &cp
	return nil
}

func (r *caseRepo) Get(_ context.Context, id string) (*repo.Case, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	c, ok := r.d.cases[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

type dataCollectionRepo struct{ d *db }

func (r *dataCollectionRepo) Create(_ context.Context, dc *repo.DataCollection) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, exists := r.d.dataCollections[dc.ID]; exists {
		return repo.ErrDuplicate
	}
	for _, other := range r.d.dataCollections {
		if other.CaseID == dc.CaseID {
			return repo.ErrDuplicate
		}
	}
	cp := *dc
	r.d.dataCollections[dc.ID] = &cp
	return nil
}

func (r *dataCollectionRepo) Get(_ context.Context, id string) (*repo.DataCollection, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	dc, ok := r.d.dataCollections[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *dc
	return &cp, nil
}

func (r *dataCollectionRepo) GetByCase(_ context.Context, caseID string) (*repo.DataCollection, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	for _, dc := range r.d.dataCollections {
		if dc.CaseID == caseID {
			cp := *dc
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *dataCollectionRepo) Update(_ context.Context, dc *repo.DataCollection) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, ok := r.d.dataCollections[dc.ID]; !ok {
		return repo.ErrNotFound
	}
	cp := *dc
	r.d.dataCollections[dc.ID] = &cp
	return nil
}

type userRepo struct{ d *db }

func (r *userRepo) Create(_ context.Context, u *repo.User) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, exists := r.d.users[u.ID]; exists {
		return repo.ErrDuplicate
	}
	for _, other := range r.d.users {
		if strings.EqualFold(other.Email, u.Email) {
			return repo.ErrDuplicate
		}
	}
	cp := *u
	r.d.users[u.ID] = &cp
	return nil
}

func (r *userRepo) Get(_ context.Context, id string) (*repo.User, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	u, ok := r.d.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*repo.User, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	for _, u := range r.d.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *userRepo) Update(_ context.Context, u *repo.User) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, ok := r.d.users[u.ID]; !ok {
		return repo.ErrNotFound
	}
	cp := *u
	r.d.users[u.ID] = &cp
	return nil
}
