package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/sarahsindone/sbrp-application/internal/repo"
	"github.com/sarahsindone/sbrp-application/pkg/constants"
)

// transitions lists the allowed edges of the report state machine.
// published -> published is a re-publish that only replaces the artifact URL.
var transitions = map[repo.ReportStatus][]repo.ReportStatus{
	repo.ReportStatusDraft:     {repo.ReportStatusReview},
	repo.ReportStatusReview:    {repo.ReportStatusFinal},
	repo.ReportStatusFinal:     {repo.ReportStatusPublished},
	repo.ReportStatusPublished: {repo.ReportStatusPublished},
}

// CanTransition reports whether a report in status from may move to to.
func CanTransition(from, to repo.ReportStatus) bool {
	return slices.Contains(transitions[from], to)
}

var transitionSubjects = map[repo.ReportStatus]string{
	repo.ReportStatusReview:    constants.SubjectReportReview,
	repo.ReportStatusFinal:     constants.SubjectReportFinalized,
	repo.ReportStatusPublished: constants.SubjectReportPublished,
}

// ---------------------------------------------------------------------------
// Transitions
// ---------------------------------------------------------------------------

func (s *reportService) SubmitForReview(ctx context.Context, caller, id string) (*repo.Report, error) {
	return s.transition(ctx, caller, id, repo.ReportStatusReview)
}

func (s *reportService) Finalize(ctx context.Context, caller, id string) (*repo.Report, error) {
	return s.transition(ctx, caller, id, repo.ReportStatusFinal)
}

func (s *reportService) Publish(ctx context.Context, caller, id string, artifactURL *string) (*repo.Report, error) {
	if caller == "" {
		return nil, ErrCallerRequired
	}

	var from repo.ReportStatus
	var changed bool
	r, err := s.mutate(ctx, id, func(r *repo.Report) (bool, error) {
		from = r.Status
		if r.Status == repo.ReportStatusPublished {
			if artifactURL == nil || *artifactURL == r.GeneratedPdfURL {
				return false, nil
			}
			r.GeneratedPdfURL = *artifactURL
			changed = true
			return true, nil
		}
		if err := s.applyStatus(r, caller, repo.ReportStatusPublished); err != nil {
			return false, err
		}
		if artifactURL != nil {
			r.GeneratedPdfURL = *artifactURL
		}
		changed = true
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return r, nil
	}

	if from != repo.ReportStatusPublished {
		s.recordTransition(ctx, from, repo.ReportStatusPublished)
	}
	s.emit(constants.SubjectReportPublished, r.ID)
	return r, nil
}

func (s *reportService) transition(ctx context.Context, caller, id string, to repo.ReportStatus) (*repo.Report, error) {
	if caller == "" {
		return nil, ErrCallerRequired
	}

	var from repo.ReportStatus
	r, err := s.mutate(ctx, id, func(r *repo.Report) (bool, error) {
		from = r.Status
		return true, s.applyStatus(r, caller, to)
	})
	if err != nil {
		return nil, err
	}

	s.recordTransition(ctx, from, to)
	s.emit(transitionSubjects[to], r.ID)
	return r, nil
}

// applyStatus moves r to status to and stamps the fields that go with it.
func (s *reportService) applyStatus(r *repo.Report, caller string, to repo.ReportStatus) error {
	if !CanTransition(r.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, to)
	}

	switch to {
	case repo.ReportStatusReview:
		r.Metadata.ReviewedBy = caller
	case repo.ReportStatusFinal:
		r.Metadata.ApprovedBy = caller
	case repo.ReportStatusPublished:
		if r.Status != repo.ReportStatusPublished {
			now := s.now()
			r.PublishedDate = &now
		}
	}
	r.Status = to
	r.LastEditedBy = caller
	return nil
}

func (s *reportService) recordTransition(ctx context.Context, from, to repo.ReportStatus) {
	s.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", string(from)),
		attribute.String("to", string(to)),
	))
	slog.Debug("report transition", "from", from, "to", to)
}

// ---------------------------------------------------------------------------
// Edits
// ---------------------------------------------------------------------------

func (s *reportService) UpdateSection(ctx context.Context, caller, id string, index int, patch SectionPatch) (*repo.Report, error) {
	if caller == "" {
		return nil, ErrCallerRequired
	}

	return s.mutate(ctx, id, func(r *repo.Report) (bool, error) {
		if r.Status == repo.ReportStatusPublished {
			return false, ErrReportPublished
		}
		if index < 0 || index >= len(r.Sections) {
			return false, fmt.Errorf("%w: %d not in [0,%d)", ErrSectionOutOfRange, index, len(r.Sections))
		}
		now := s.now()
		applySectionPatch(&r.Sections[index], patch, now)
		r.Sections[index].LastEdited = now
		r.LastEditedBy = caller
		return true, nil
	})
}

func (s *reportService) UpdateReport(ctx context.Context, caller, id string, req UpdateRequest) (*repo.Report, error) {
	if caller == "" {
		return nil, ErrCallerRequired
	}

	var to, from repo.ReportStatus
	if req.Status != nil {
		to = repo.ReportStatus(*req.Status)
		if !to.Valid() {
			return nil, ErrInvalidStatus
		}
	}

	r, err := s.mutate(ctx, id, func(r *repo.Report) (bool, error) {
		if r.Status == repo.ReportStatusPublished {
			return false, ErrReportPublished
		}
		if req.Sections != nil && len(req.Sections) != len(r.Sections) {
			return false, fmt.Errorf("%w: got %d, report has %d", ErrSectionCountMismatch, len(req.Sections), len(r.Sections))
		}

		from = r.Status
		if to != "" && to != r.Status {
			if err := s.applyStatus(r, caller, to); err != nil {
				return false, err
			}
		}
		if req.Title != nil {
			r.Title = *req.Title
		}
		now := s.now()
		for i, p := range req.Sections {
			applySectionPatch(&r.Sections[i], p, now)
		}
		r.LastEditedBy = caller
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if to != "" && to != from {
		s.recordTransition(ctx, from, to)
		s.emit(transitionSubjects[to], r.ID)
	}
	return r, nil
}

// applySectionPatch sets the provided fields and stamps LastEdited only when
// something actually changed.
func applySectionPatch(sec *repo.ReportSection, p SectionPatch, now time.Time) {
	changed := false
	if p.Title != nil && *p.Title != sec.Title {
		sec.Title = *p.Title
		changed = true
	}
	if p.Content != nil && *p.Content != sec.Content {
		sec.Content = *p.Content
		changed = true
	}
	if changed {
		sec.LastEdited = now
	}
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

// Delete removes a report. Published reports need force.
func (s *reportService) Delete(ctx context.Context, id string, force bool) error {
	r, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if r.Status == repo.ReportStatusPublished && !force {
		return ErrReportPublished
	}

	if err := s.store.Reports.Delete(ctx, id, r.Revision); err != nil {
		switch {
		case errors.Is(err, repo.ErrStale):
			return ErrConcurrentUpdate
		case repo.IsNotFound(err):
			return ErrNotFound
		}
		return fmt.Errorf("delete report: %w", err)
	}

	slog.Info("report deleted", "report_id", id, "status", r.Status, "forced", force)
	s.emit(constants.SubjectReportDeleted, id)
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// mutate loads a report, lets fn change it and writes it back guarded by the
// revision that was read. fn returning false skips the write.
func (s *reportService) mutate(ctx context.Context, id string, fn func(r *repo.Report) (bool, error)) (*repo.Report, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	write, err := fn(r)
	if err != nil {
		return nil, err
	}
	if !write {
		return r, nil
	}

	r.UpdatedAt = s.now()
	if err := s.store.Reports.Update(ctx, r); err != nil {
		switch {
		case errors.Is(err, repo.ErrStale):
			return nil, ErrConcurrentUpdate
		case repo.IsNotFound(err):
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update report: %w", err)
	}
	return r, nil
}
