package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/sarahsindone/sbrp-application/internal/repo"
	"github.com/sarahsindone/sbrp-application/pkg/constants"
)

// Generate builds a draft report for a case from an explicit template or the
// default one. Nothing is persisted unless every check passes.
func (s *reportService) Generate(ctx context.Context, caller string, req GenerateRequest) (*repo.Report, error) {
	if caller == "" {
		return nil, ErrCallerRequired
	}

	c, err := s.store.Cases.Get(ctx, req.CaseID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("get case: %w", err)
	}

	client, err := s.store.Clients.Get(ctx, c.ClientID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("get client: %w", err)
	}

	dc, err := s.store.DataCollections.GetByCase(ctx, c.ID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrDataCollectionNotFound
		}
		return nil, fmt.Errorf("get data collection: %w", err)
	}
	if dc.Status != repo.DataCollectionStatusComplete {
		return nil, ErrDataCollectionIncomplete
	}

	tmpl, err := s.resolveTemplate(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	vars := map[string]string{
		"case_number":  c.CaseNumber,
		"company_name": client.CompanyName,
		"trading_name": client.TradingName,
		"report_date":  now.Format(time.DateOnly),
	}

	defs := slices.Clone(tmpl.Sections)
	slices.SortStableFunc(defs, func(a, b repo.SectionDefinition) int { return a.Order - b.Order })

	sections := make([]repo.ReportSection, 0, len(defs))
	for _, d := range defs {
		content, err := s.render(d.Content, vars)
		if err != nil {
			return nil, fmt.Errorf("render section %q: %w", d.Title, err)
		}
		sections = append(sections, repo.ReportSection{
			Title:      d.Title,
			Content:    content,
			Order:      d.Order,
			LastEdited: now,
		})
	}

	base := reportNumberBase(s.numberPrefix, c.CaseNumber, now.Year())
	seq, err := s.store.Reports.NextSequence(ctx, sequenceKey(base))
	if err != nil {
		return nil, fmt.Errorf("next report sequence: %w", err)
	}

	title := req.Title
	if title == "" {
		title = fmt.Sprintf(s.titleFormat, client.CompanyName)
	}

	templateID := tmpl.ID
	r := &repo.Report{
		ID:               uuid.Must(uuid.NewV7()).String(),
		CaseID:           c.ID,
		ClientID:         client.ID,
		DataCollectionID: dc.ID,
		TemplateID:       &templateID,
		Title:            title,
		Status:           repo.ReportStatusDraft,
		Sections:         sections,
		Metadata: repo.ReportMetadata{
			ReportDate:   now,
			ReportNumber: reportNumber(base, seq),
			Version:      1,
			Author:       caller,
		},
		LastEditedBy: caller,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Reports.Create(ctx, r); err != nil {
		if repo.IsDuplicate(err) {
			return nil, ErrReportNumberConflict
		}
		return nil, fmt.Errorf("create report: %w", err)
	}

	slog.Info("report generated",
		"report_id", r.ID,
		"case_id", c.ID,
		"template_id", tmpl.ID,
		"report_number", r.Metadata.ReportNumber,
	)
	s.emit(constants.SubjectReportGenerated, r.ID)
	return r, nil
}

func (s *reportService) resolveTemplate(ctx context.Context, id string) (*repo.ReportTemplate, error) {
	if id != "" {
		t, err := s.store.Templates.Get(ctx, id)
		if err != nil {
			if repo.IsNotFound(err) {
				return nil, ErrTemplateNotFound
			}
			return nil, fmt.Errorf("get template: %w", err)
		}
		return t, nil
	}

	defID, err := s.store.Templates.DefaultID(ctx)
	if err != nil {
		return nil, fmt.Errorf("get default template: %w", err)
	}
	if defID == "" {
		return nil, ErrNoDefaultTemplate
	}
	t, err := s.store.Templates.Get(ctx, defID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNoDefaultTemplate
	}
	if err != nil {
		return nil, fmt.Errorf("get default template: %w", err)
	}
	return t, nil
}
