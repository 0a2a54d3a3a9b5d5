package template

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sarahsindone/sbrp-application/internal/repo"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	Name           string
	Description    string
	Sections       []repo.SectionDefinition
	HeaderTemplate string
	FooterTemplate string
	IsDefault      bool
	CreatedBy      string
}

// UpdateRequest is a patch; nil fields are left unchanged.
type UpdateRequest struct {
	Name           *string
	Description    *string
	Sections       []repo.SectionDefinition
	HeaderTemplate *string
	FooterTemplate *string
	IsDefault      *bool
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*repo.ReportTemplate, error)
	Get(ctx context.Context, id string) (*repo.ReportTemplate, error)
	List(ctx context.Context) ([]*repo.ReportTemplate, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*repo.ReportTemplate, error)
	Delete(ctx context.Context, id string) error
	// Default returns the current default template.
	Default(ctx context.Context) (*repo.ReportTemplate, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type templateService struct {
	store *repo.Store
	now   func() time.Time
}

func New(store *repo.Store) Service {
	return &templateService{store: store, now: time.Now}
}

func (s *templateService) Create(ctx context.Context, req CreateRequest) (*repo.ReportTemplate, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if err := validateSections(req.Sections); err != nil {
		return nil, err
	}

	now := s.now()
	t := &repo.ReportTemplate{
		ID:             uuid.Must(uuid.NewV7()).String(),
		Name:           name,
		Description:    req.Description,
		Sections:       req.Sections,
		HeaderTemplate: req.HeaderTemplate,
		FooterTemplate: req.FooterTemplate,
		CreatedBy:      req.CreatedBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if t.Sections == nil {
		t.Sections = []repo.SectionDefinition{}
	}

	if err := s.store.Templates.Create(ctx, t); err != nil {
		if repo.IsDuplicate(err) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("create template: %w", err)
	}

	if req.IsDefault {
		if err := s.store.Templates.SetDefault(ctx, t.ID); err != nil {
			// Roll back so a retry with the same name is not rejected.
			if derr := s.store.Templates.Delete(ctx, t.ID); derr != nil {
				slog.ErrorContext(ctx, "rollback of template create failed", "template_id", t.ID, "error", derr)
			}
			return nil, fmt.Errorf("set default template: %w", err)
		}
		t.IsDefault = true
		slog.Info("default report template changed", "template_id", t.ID)
	}
	return t, nil
}

func (s *templateService) Get(ctx context.Context, id string) (*repo.ReportTemplate, error) {
	t, err := s.store.Templates.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

func (s *templateService) List(ctx context.Context) ([]*repo.ReportTemplate, error) {
	out, err := s.store.Templates.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return out, nil
}

func (s *templateService) Update(ctx context.Context, id string, req UpdateRequest) (*repo.ReportTemplate, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		t.Name = name
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Sections != nil {
		if err := validateSections(req.Sections); err != nil {
			return nil, err
		}
		t.Sections = req.Sections
	}
	if req.HeaderTemplate != nil {
		t.HeaderTemplate = *req.HeaderTemplate
	}
	if req.FooterTemplate != nil {
		t.FooterTemplate = *req.FooterTemplate
	}
	t.UpdatedAt = s.now()

	if err := s.store.Templates.Update(ctx, t); err != nil {
		switch {
		case repo.IsDuplicate(err):
			return nil, ErrNameTaken
		case repo.IsNotFound(err):
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update template: %w", err)
	}

	if req.IsDefault != nil {
		if *req.IsDefault {
			err = s.store.Templates.SetDefault(ctx, t.ID)
		} else {
			err = s.store.Templates.ClearDefault(ctx, t.ID)
		}
		if err != nil {
			return nil, fmt.Errorf("update default template: %w", err)
		}
		t.IsDefault = *req.IsDefault
	}
	return t, nil
}

// Delete removes the template. Reports generated from it keep their copies.
func (s *templateService) Delete(ctx context.Context, id string) error {
	if err := s.store.Templates.Delete(ctx, id); err != nil {
		if repo.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete template: %w", err)
	}
	if err := s.store.Templates.ClearDefault(ctx, id); err != nil {
		return fmt.Errorf("clear default template: %w", err)
	}
	return nil
}

func (s *templateService) Default(ctx context.Context) (*repo.ReportTemplate, error) {
	id, err := s.store.Templates.DefaultID(ctx)
	if err != nil {
		return nil, fmt.Errorf("get default template: %w", err)
	}
	if id == "" {
		return nil, ErrNoDefault
	}
	t, err := s.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNoDefault
	}
	return t, err
}

func validateSections(secs []repo.SectionDefinition) error {
	for i, sec := range secs {
		if strings.TrimSpace(sec.Title) == "" {
			return fmt.Errorf("%w: section %d", ErrSectionTitleRequired, i)
		}
	}
	return nil
}
