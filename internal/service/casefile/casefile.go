// Package casefile manages the clients, cases and data-collection records
// that report generation depends on.
package casefile

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sarahsindone/sbrp-application/internal/repo"
)

var (
	reACN = regexp.MustCompile(`^\d{9}$`)
	reABN = regexp.MustCompile(`^\d{11}$`)
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateClientRequest struct {
	CompanyName          string
	TradingName          string
	ACN                  string // spaces are ignored
	ABN                  string
	BusinessType         string
	AssignedPractitioner string
	CreatedBy            string
}

type CreateCaseRequest struct {
	CaseNumber      string
	ClientID        string
	CaseType        string
	AppointmentDate *time.Time
	Status          string
	PrimaryContact  repo.Contact
	Notes           string
	CreatedBy       string
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	CreateClient(ctx context.Context, req CreateClientRequest) (*repo.Client, error)
	GetClient(ctx context.Context, id string) (*repo.Client, error)

	CreateCase(ctx context.Context, req CreateCaseRequest) (*repo.Case, error)
	GetCase(ctx context.Context, id string) (*repo.Case, error)

	CreateDataCollection(ctx context.Context, caller, caseID string) (*repo.DataCollection, error)
	GetDataCollectionByCase(ctx context.Context, caseID string) (*repo.DataCollection, error)
	MarkSectionComplete(ctx context.Context, caller, id, section string) (*repo.DataCollection, error)
	CompleteDataCollection(ctx context.Context, caller, id string) (*repo.DataCollection, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type casefileService struct {
	store *repo.Store
	now   func() time.Time
}

func New(store *repo.Store) Service {
	return &casefileService{store: store, now: time.Now}
}

// ---------------------------------------------------------------------------
// Clients
// ---------------------------------------------------------------------------

func (s *casefileService) CreateClient(ctx context.Context, req CreateClientRequest) (*repo.Client, error) {
	name := strings.TrimSpace(req.CompanyName)
	if name == "" {
		return nil, ErrCompanyNameRequired
	}
	acn := stripSpaces(req.ACN)
	if acn != "" && !reACN.MatchString(acn) {
		return nil, ErrInvalidACN
	}
	abn := stripSpaces(req.ABN)
	if abn != "" && !reABN.MatchString(abn) {
		return nil, ErrInvalidABN
	}

	now := s.now()
	c := &repo.Client{
		ID:                   uuid.Must(uuid.NewV7()).String(),
		CompanyName:          name,
		TradingName:          strings.TrimSpace(req.TradingName),
		ACN:                  acn,
		ABN:                  abn,
		BusinessType:         req.BusinessType,
		Status:               repo.ClientStatusActive,
		AssignedPractitioner: req.AssignedPractitioner,
		CreatedBy:            req.CreatedBy,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.store.Clients.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return c, nil
}

func (s *casefileService) GetClient(ctx context.Context, id string) (*repo.Client, error) {
	c, err := s.store.Clients.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

// ---------------------------------------------------------------------------
// Cases
// ---------------------------------------------------------------------------

func (s *casefileService) CreateCase(ctx context.Context, req CreateCaseRequest) (*repo.Case, error) {
	number := strings.TrimSpace(req.CaseNumber)
	if number == "" {
		return nil, ErrCaseNumberRequired
	}

	status := repo.CaseStatusDataCollection
	if req.Status != "" {
		status = repo.CaseStatus(req.Status)
		if !status.Valid() {
			return nil, ErrInvalidCaseStatus
		}
	}

	if _, err := s.GetClient(ctx, req.ClientID); err != nil {
		return nil, err
	}

	caseType := req.CaseType
	if caseType == "" {
		caseType = "SBRP"
	}

	now := s.now()
	c := &repo.Case{
		ID:              uuid.Must(uuid.NewV7()).String(),
		CaseNumber:      number,
		ClientID:        req.ClientID,
		CaseType:        caseType,
		AppointmentDate: req.AppointmentDate,
		Status:          status,
		PrimaryContact:  req.PrimaryContact,
		Notes:           req.Notes,
		CreatedBy:       req.CreatedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Cases.Create(ctx, c); err != nil {
		if repo.IsDuplicate(err) {
			return nil, ErrCaseNumberTaken
		}
		return nil, fmt.Errorf("create case: %w", err)
	}
	return c, nil
}

func (s *casefileService) GetCase(ctx context.Context, id string) (*repo.Case, error) {
	c, err := s.store.Cases.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("get case: %w", err)
	}
	return c, nil
}

// ---------------------------------------------------------------------------
// Data collection
// ---------------------------------------------------------------------------

func (s *casefileService) CreateDataCollection(ctx context.Context, caller, caseID string) (*repo.DataCollection, error) {
	c, err := s.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	dc := &repo.DataCollection{
		ID:            uuid.Must(uuid.NewV7()).String(),
		CaseID:        c.ID,
		ClientID:      c.ClientID,
		Status:        repo.DataCollectionStatusDraft,
		LastUpdatedBy: caller,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.DataCollections.Create(ctx, dc); err != nil {
		if repo.IsDuplicate(err) {
			return nil, ErrDataCollectionExists
		}
		return nil, fmt.Errorf("create data collection: %w", err)
	}
	return dc, nil
}

func (s *casefileService) GetDataCollectionByCase(ctx context.Context, caseID string) (*repo.DataCollection, error) {
	dc, err := s.store.DataCollections.GetByCase(ctx, caseID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrDataCollectionNotFound
		}
		return nil, fmt.Errorf("get data collection: %w", err)
	}
	return dc, nil
}

func (s *casefileService) MarkSectionComplete(ctx context.Context, caller, id, section string) (*repo.DataCollection, error) {
	dc, err := s.getDataCollection(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := dc.CompletedSections.Mark(section); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	dc.LastUpdatedBy = caller
	dc.UpdatedAt = s.now()

	if err := s.saveDataCollection(ctx, dc); err != nil {
		return nil, err
	}
	return dc, nil
}

// CompleteDataCollection marks the record complete. Every section must have
// been marked first.
func (s *casefileService) CompleteDataCollection(ctx context.Context, caller, id string) (*repo.DataCollection, error) {
	dc, err := s.getDataCollection(ctx, id)
	if err != nil {
		return nil, err
	}
	if dc.Status == repo.DataCollectionStatusComplete {
		return dc, nil
	}
	if missing := dc.CompletedSections.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrSectionsIncomplete, strings.Join(missing, ", "))
	}

	now := s.now()
	dc.Status = repo.DataCollectionStatusComplete
	dc.CompletedAt = &now
	dc.LastUpdatedBy = caller
	dc.UpdatedAt = now

	if err := s.saveDataCollection(ctx, dc); err != nil {
		return nil, err
	}
	slog.Info("data collection completed", "data_collection_id", dc.ID, "case_id", dc.CaseID)
	return dc, nil
}

func (s *casefileService) getDataCollection(ctx context.Context, id string) (*repo.DataCollection, error) {
	dc, err := s.store.DataCollections.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrDataCollectionNotFound
		}
		return nil, fmt.Errorf("get data collection: %w", err)
	}
	return dc, nil
}

func (s *casefileService) saveDataCollection(ctx context.Context, dc *repo.DataCollection) error {
	if err := s.store.DataCollections.Update(ctx, dc); err != nil {
		if repo.IsNotFound(err) {
			return ErrDataCollectionNotFound
		}
		return fmt.Errorf("update data collection: %w", err)
	}
	return nil
}

func stripSpaces(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), " ", "")
}
