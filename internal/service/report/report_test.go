package report

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sarahsindone/sbrp-application/internal/repo"
	"github.com/sarahsindone/sbrp-application/internal/repo/memstore"
)

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *recordingPublisher) Publish(subject string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

type fixture struct {
	store *repo.Store
	svc   Service
	clk   *clock
	pub   *recordingPublisher

	caseID     string
	templateID string
}

const practitioner = "user-practitioner"

func newFixture(t *testing.T, dcStatus repo.DataCollectionStatus) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		store: memstore.New(),
		clk:   &clock{t: time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)},
		pub:   &recordingPublisher{},
	}
	f.svc = New(f.store, WithClock(f.clk.now), WithPublisher(f.pub))

	f.caseID = seedCase(t, f.store, "case-1", "SBRP-2024-001", "Acme Pty Ltd", dcStatus)

	tmpl := &repo.ReportTemplate{
		ID:   "tmpl-default",
		Name: "Standard SBRP",
		Sections: []repo.SectionDefinition{
			{Title: "Executive Summary", Content: "Summary for {{company_name}}", Order: 1},
			{Title: "Restructuring Plan", Content: "Plan details", Order: 2},
		},
	}
	require.NoError(t, f.store.Templates.Create(ctx, tmpl))
	require.NoError(t, f.store.Templates.SetDefault(ctx, tmpl.ID))
	f.templateID = tmpl.ID

	return f
}

func seedCase(t *testing.T, s *repo.Store, caseID, caseNumber, company string, dcStatus repo.DataCollectionStatus) string {
	t.Helper()
	ctx := context.Background()

	clientID := "client-" + caseID
	require.NoError(t, s.Clients.Create(ctx, &repo.Client{ID: clientID, CompanyName: company, Status: repo.ClientStatusActive}))
	require.NoError(t, s.Cases.Create(ctx, &repo.Case{ID: caseID, CaseNumber: caseNumber, ClientID: clientID, CaseType: "SBRP"}))
	require.NoError(t, s.DataCollections.Create(ctx, &repo.DataCollection{
		ID:       "dc-" + caseID,
		CaseID:   caseID,
		ClientID: clientID,
		Status:   dcStatus,
	}))
	return caseID
}

func (f *fixture) generate(t *testing.T) *repo.Report {
	t.Helper()
	r, err := f.svc.Generate(context.Background(), practitioner, GenerateRequest{CaseID: f.caseID})
	require.NoError(t, err)
	return r
}

func strPtr(s string) *string { return &s }

// ---------------------------------------------------------------------------
// Generate
// ---------------------------------------------------------------------------

func TestGenerate_UsesDefaultTemplate(t *testing.T) {
	f := newFixture(t, repo.DataCollectionStatusComplete)
	genAt := f.clk.now()

	r := f.generate(t)

	require.Equal(t, repo.ReportStatusDraft, r.Status)
	require.Equal(t, "Restructuring Proposal for Acme Pty Ltd", r.Title)
	require.Equal(t, practitioner, r.Metadata.Author)
	require.Equal(t, practitioner, r.LastEditedBy)
	require.Equal(t, genAt, r.Metadata.ReportDate)
	require.Equal(t, 1, r.Metadata.Version)
	require.NotNil(t, r.TemplateID)
	require.Equal(t, f.templateID, *r.TemplateID)
	require.Equal(t, "dc-case-1", r.DataCollectionID)

	tmpl, err := f.store.Templates.Get(context.Background(), f.templateID)
	require.NoError(t, err)
	require.Len(t, r.Sections, len(tmpl.Sections))
	for i, sec := range r.Sections {
		require.Equal(t, tmpl.Sections[i].Title, sec.Title)
		require.Equal(t, tmpl.Sections[i].Content, sec.Content)
		require.Equal(t, tmpl.Sections[i].Order, sec.Order)
		require.Equal(t, genAt, sec.LastEdited)
	}

	stored, err := f.svc.Get(context.Background(), r.ID)
	require.NoError(t, err)
	require.Equal(t, r.Metadata.ReportNumber, stored.Metadata.ReportNumber)
	require.Equal(t, []string{"sbrp.report.generated." + r.ID}, f.pub.subjects)
}

func TestGenerate_ExplicitTemplateAndTitle(t *testing.T) {
	f := newFixture(t, repo.DataCollectionStatusComplete)
	ctx := context.Background()

	other := &repo.ReportTemplate{
		ID:   "tmpl-short",
		Name: "Short form",
		Sections: []repo.SectionDefinition{
			{Title: "Third", Order: 3},
			{Title: "First", Order: 1},
			{Title: "Also first", Order: 1},
		},
	}
	require.NoError(t, f.store.Templates.Create(ctx, other))

	r, err := f.svc.Generate(ctx, practitioner, GenerateRequest{
		CaseID:     f.caseID,
		TemplateID: other.ID,
		Title:      "Custom title",
	})
	require.NoError(t, err)
	require.Equal(t, "Custom title", r.Title)
	require.Equal(t, other.ID, *r.TemplateID)

	titles := make([]string, len(r.Sections))
	for i, s := range r.Sections {
		titles[i] = s.Title
	}
	require.Equal(t, []string{"First", "Also first", "Third"}, titles)
}

func TestGenerate_Renderer(t *testing.T) {
	f := newFixture(t, repo.DataCollectionStatusComplete)

	render := func(content string, vars map[string]string) (string, error) {
		return strings.ReplaceAll(content, "{{company_name}}", vars["company_name"]), nil
	}
	svc := New(f.store, WithClock(f.clk.now), WithRenderer(render))

	r, err := svc.Generate(context.Background(), practitioner, GenerateRequest{CaseID: f.caseID})
	require.NoError(t, err)
	require.Equal(t, "Summary for Acme Pty Ltd", r.Sections[0].Content)

	failing := func(string, map[string]string) (string, error) { return "", errors.New("boom") }
	svc = New(f.store, WithClock(f.clk.now), WithRenderer(failing))
	_, err = svc.Generate(context.Background(), practitioner, GenerateRequest{CaseID: f.caseID})
	require.Error(t, err)

	reports, err := f.svc.List(context.Background(), ListRequest{CaseID: f.caseID})
	require.NoError(t, err)
	require.Len(t, reports, 1)
}

func TestGenerate_Preconditions(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, f *fixture) GenerateRequest
		want  error
	}{
		{
			name: "unknown case",
			setup: func(t *testing.T, f *fixture) GenerateRequest {
				return GenerateRequest{CaseID: "missing"}
			},
			want: ErrCaseNotFound,
		},
		{
			name: "case without client",
			setup: func(t *testing.T, f *fixture) GenerateRequest {
				require.NoError(t, f.store.Cases.Create(context.Background(), &repo.Case{ID: "orphan", CaseNumber: "SBRP-9", ClientID: "gone"}))
				return GenerateRequest{CaseID: "orphan"}
			},
			want: ErrClientNotFound,
		},
		{
			name: "no data collection",
			setup: func(t *testing.T, f *fixture) GenerateRequest {
				ctx := context.Background()
				require.NoError(t, f.store.Clients.Create(ctx, &repo.Client{ID: "c2", CompanyName: "Beta"}))
				require.NoError(t, f.store.Cases.Create(ctx, &repo.Case{ID: "case-2", CaseNumber: "SBRP-2", ClientID: "c2"}))
				return GenerateRequest{CaseID: "case-2"}
			},
			want: ErrDataCollectionNotFound,
		},
		{
			name: "data collection in draft",
			setup: func(t *testing.T, f *fixture) GenerateRequest {
				seedCase(t, f.store, "case-draft", "SBRP-3", "Gamma", repo.DataCollectionStatusDraft)
				return GenerateRequest{CaseID: "case-draft"}
			},
			want: ErrDataCollectionIncomplete,
		},
		{
			name: "unknown template",
			setup: func(t *testing.T, f *fixture) GenerateRequest {
				return GenerateRequest{CaseID: f.caseID, TemplateID: "nope"}
			},
			want: ErrTemplateNotFound,
		},
		{
			name: "no default template",
			setup: func(t *testing.T, f *fixture) GenerateRequest {
				require.NoError(t, f.store.Templates.ClearDefault(context.Background(), f.templateID))
				return GenerateRequest{CaseID: f.caseID}
			},
			want: ErrNoDefaultTemplate,
		},
		{
			name: "default pointer names a deleted template",
			setup: func(t *testing.T, f *fixture) GenerateRequest {
				require.NoError(t, f.store.Templates.Delete(context.Background(), f.templateID))
				return GenerateRequest{CaseID: f.caseID}
			},
			want: ErrNoDefaultTemplate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, repo.DataCollectionStatusComplete)
			req := tt.setup(t, f)

			r, err := f.svc.Generate(context.Background(), practitioner, req)
			require.ErrorIs(t, err, tt.want)
			require.Nil(t, r)

			all, err := f.svc.List(context.Background(), ListRequest{})
			require.NoError(t, err)
			require.Empty(t, all)
			require.Empty(t, f.pub.subjects)
		})
	}
}

func TestGenerate_IncompleteDataCollectionPersistsNothing(t *testing.T) {
	f := newFixture(t, repo.DataCollectionStatusDraft)

	_, err := f.svc.Generate(context.Background(), practitioner, GenerateRequest{CaseID: f.caseID})
	require.ErrorIs(t, err, ErrDataCollectionIncomplete)

	reports, err := f.svc.List(context.Background(), ListRequest{CaseID: f.caseID})
	require.NoError(t, err)
	require.Empty(t, reports)
}

func TestGenerate_RequiresCaller(t *testing.T) {
	f := newFixture(t, repo.DataCollectionStatusComplete)
	_, err := f.svc.Generate(context.Background(), "", GenerateRequest{CaseID: f.caseID})
	require.ErrorIs(t, err, ErrCallerRequired)
}

func TestGenerate_ReportNumbers(t *testing.T) {
	f := newFixture(t, repo.DataCollectionStatusComplete)
	ctx := context.Background()
	second := seedCase(t, f.store, "case-2", "SBRP-2024-002", "Beta Pty Ltd", repo.DataCollectionStatusComplete)

	a := f.generate(t)
	b, err := f.svc.Generate(ctx, practitioner, GenerateRequest{CaseID: second})
	require.NoError(t, err)

	require.NotEqual(t, a.Metadata.ReportNumber, b.Metadata.ReportNumber)
	require.Equal(t, "SBRP-2024-001-2026-01", a.Metadata.ReportNumber)
	require.Equal(t, "SBRP-2024-002-2026-01", b.Metadata.ReportNumber)

	again := f.generate(t)
	require.Equal(t, "SBRP-2024-001-2026-02", again.Metadata.ReportNumber)
}

func TestReportNumber(t *testing.T) {
	tests := []struct {
		prefix, caseNumber string
		year               int
		seq                int64
		want               string
	}{
		{"SBRP", "SBRP-2024-001", 2026, 1, "SBRP-2024-001-2026-01"},
		{"SBRP", "2024-017", 2025, 12, "SBRP-2024-017-2025-12"},
		{"SBRP", "SBRP-7", 2026, 123, "SBRP-7-2026-123"},
		{"RPT", "SBRP-7", 2026, 3, "RPT-SBRP-7-2026-03"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := reportNumber(reportNumberBase(tt.prefix, tt.caseNumber, tt.year), tt.seq)
			if got != tt.want {
				t.Errorf("reportNumber() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerate_CaseNumbersWithSameBaseShareSequence(t *testing.T) {
	f := newFixture(t, repo.DataCollectionStatusComplete)
	ctx := context.Background()
	bare := seedCase(t, f.store, "case-bare", "2024-001", "Acme Holdings", repo.DataCollectionStatusComplete)

	prefixed := f.generate(t)
	require.Equal(t, "SBRP-2024-001-2026-01", prefixed.Metadata.ReportNumber)

	r, err := f.svc.Generate(ctx, practitioner, GenerateRequest{CaseID: bare})
	require.NoError(t, err)
	require.Equal(t, "SBRP-2024-001-2026-02", r.Metadata.ReportNumber)

	again := f.generate(t)
	require.Equal(t, "SBRP-2024-001-2026-03", again.Metadata.ReportNumber)
}

// ---------------------------------------------------------------------------
// Sections
// ---------------------------------------------------------------------------

func TestUpdateSection_OnlyTouchesTargetSection(t *testing.T) {
	f := newFixture(t, repo.DataCollectionStatusComplete)
	ctx := context.Background()
	orig := f.generate(t)

	f.clk.advance(time.Hour)
	editor := "user-editor"
	r, err := f.svc.UpdateSection(ctx, editor, orig.ID, 1, SectionPatch{Content: strPtr("Revised plan")})
	require.NoError(t, err)

	require.Len(t, r.Sections, len(orig.Sections))
	require.Equal(t, orig.Sections[0], r.Sections[0])
	require.Equal(t, orig.Sections[1].Title, r.Sections[1].Title)
	require.Equal(t, "Revised plan", r.Sections[1].Content)
	require.Equal(t, f.clk.now(), r.Sections[1].LastEdited)
	require.Equal(t, editor, r.LastEditedBy)
}

func TestUpdateSection_OutOfRange(t *testing.T) {
	f := newFixture(t, repo.DataCollectionStatusComplete)
	ctx := context.Background()
	orig := f.generate(t)

	for _, idx := range []int{-1, 2, 5} {
		_, err := f.svc.UpdateSection(ctx, practitioner, orig.ID, idx, SectionPatch{Title: strPtr("x")})
		require.ErrorIs(t, err, ErrSectionOutOfRange)
	}

	got, err := f.svc.Get(ctx, orig.ID)
	require.NoError(t, err)
	require.Equal(t, orig.Sections, got.Sections)
	require.Equal(t, orig.Revision, got.Revision)
}

func TestUpdateSection_UnknownReport(t *testing.T) {
	f := newFixture(t, repo.DataCollectionStatusComplete)
	_, err := f.svc.UpdateSection(context.Background(), practitioner, "missing", 0, SectionPatch{})
	require.ErrorIs(t, err, ErrNotFound)
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func TestLifecycle_HappyPath(t *testing.T) {
	f := newFixture(t, repo.DataCollectionStatusComplete)
	ctx := context.Background()
	r := f.generate(t)

	r, err := f.svc.SubmitForReview(ctx, "reviewer", r.ID)
	require.NoError(t, err)
	require.Equal(t, repo.ReportStatusReview, r.Status)
	require.Equal(t, "reviewer", r.Metadata.ReviewedBy)

	r, err = f.svc.Finalize(ctx, "approver", r.ID)
	require.NoError(t, err)
	require.Equal(t, repo.ReportStatusFinal, r.Status)
	require.Equal(t, "approver", r.Metadata.ApprovedBy)
	require.Equal(t, "approver", r.LastEditedBy)

	f.clk.advance(time.Minute)
	r, err = f.svc.Publish(ctx, "publisher", r.ID, strPtr("s3://bucket/a.pdf"))
	require.NoError(t, err)
	require.Equal(t, repo.ReportStatusPublished, r.Status)
	require.NotNil(t, r.PublishedDate)
	require.Equal(t, f.clk.now(), *r.PublishedDate)
	require.Equal(t, "s3://bucket/a.pdf", r.GeneratedPdfURL)

	require.Equal(t, []string{
		"sbrp.report.generated." + r.ID,
		"sbrp.report.review." + r.ID,
		"sbrp.report.finalized." + r.ID,
		"sbrp.report.published." + r.ID,
	}, f.pub.subjects)
}

func TestLifecycle_RejectsInvalidEdges(t *testing.T) {
	type op func(s Service, id string) (*repo.Report, error)
	review := func(s Service, id string) (*repo.Report, error) {
		return s.SubmitForReview(context.Background(), practitioner, id)
	}
	finalize := func(s Service, id string) (*repo.Report, error) {
		return s.Finalize(context.Background(), practitioner, id)
	}
	publish := func(s Service, id string) (*repo.Report, error) {
		return s.Publish(context.Background(), practitioner, id, nil)
	}

	tests := []struct {
		name    string
		prepare []op
		attempt op
		status  repo.ReportStatus
	}{
		{"finalize draft", nil, finalize, repo.ReportStatusDraft},
		{"publish draft", nil, publish, repo.ReportStatusDraft},
		{"review twice", []op{review}, review, repo.ReportStatusReview},
		{"publish review", []op{review}, publish, repo.ReportStatusReview},
		{"review final", []op{review, finalize}, review, repo.ReportStatusFinal},
		{"finalize final", []op{review, finalize}, finalize, repo.ReportStatusFinal},
		{"review published", []op{review, finalize, publish}, review, repo.ReportStatusPublished},
		{"finalize published", []op{review, finalize, publish}, finalize, repo.ReportStatusPublished},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, repo.DataCollectionStatusComplete)
			r := f.generate(t)
			for _, p := range tt.prepare {
				_, err := p(f.svc, r.ID)
				require.NoError(t, err)
			}

			_, err := tt.attempt(f.svc, r.ID)
			require.ErrorIs(t, err, ErrInvalidTransition)

			got, err := f.svc.Get(context.Background(), r.ID)
			require.NoError(t, err)
			require.Equal(t, tt.status, got.Status)
		})
	}
}

func TestCanTransition(t *testing.T) {
	statuses := []repo.ReportStatus{
		repo.ReportStatusDraft, repo.ReportStatusReview, repo.ReportStatusFinal, repo.ReportStatusPublished,
	}
	allowed := map[[2]repo.ReportStatus]bool{
		{repo.ReportStatusDraft, repo.ReportStatusReview}:         true,
		{repo.ReportStatusReview, repo.ReportStatusFinal}:         true,
		{repo.ReportStatusFinal, repo.ReportStatusPublished}:      true,
		{repo.ReportStatusPublished, repo.ReportStatusPublished}: true,
	}
	for _, from := range statuses {
		for _, to := range statuses {
			if got, want := CanTransition(from, to), allowed[[2]repo.ReportStatus{from, to}]; got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestPublish_RepublishOnlyChangesURL(t *testing.T) {
	f := newFixture(t, repo.DataCollectionStatusComplete)
	ctx := context.Background()
	r := f.generate(t)
	_, err := f.svc.SubmitForReview(ctx, practitioner, r.ID)
	require.NoError(t, err)
	_, err = f.svc.Finalize(ctx, practitioner, r.ID)
	require.NoError(t, err)
	first, err := f.svc.Publish(ctx, practitioner, r.ID, strPtr("s3://bucket/v1.pdf"))
	require.NoError(t, err)

	f.clk.advance(24 * time.Hour)
	second, err := f.svc.Publish(ctx, "someone-else", r.ID, strPtr("s3://bucket/v2.pdf"))
	require.NoError(t, err)

	require.Equal(t, "s3://bucket/v2.pdf", second.GeneratedPdfURL)
	require.Equal(t, *first.PublishedDate, *second.PublishedDate)
	require.Equal(t, first.LastEditedBy, second.LastEditedBy)
	require.Equal(t, first.Metadata, second.Metadata)
	require.Equal(t, repo.ReportStatusPublished, second.Status)

	third, err := f.svc.Publish(ctx, practitioner, r.ID, nil)
	require.NoError(t, err)
	require.Equal(t, "s3://bucket/v2.pdf", third.GeneratedPdfURL)
	require.Equal(t, second.Revision, third.Revision)
}

func TestPublish_KeepsPriorURLWhenNoneGiven(t *testing.T) {
	f := newFixture(t, repo.DataCollectionStatusComplete)
	ctx := context.Background()
	r := f.generate(t)

	_, err := f.svc.UpdateReport(ctx, practitioner, r.ID, UpdateRequest{Status: strPtr("review")})
	require.NoError(t, err)
	_, err = f.svc.Finalize(ctx, practitioner, r.ID)
	require.NoError(t, err)

	stored, err := f.store.Reports.Get(ctx, r.ID)
	require.NoError(t, err)
	stored.GeneratedPdfURL = "s3://bucket/draft.pdf"
	require.NoError(t, f.store.Reports.Update(ctx, stored))

	got, err := f.svc.Publish(ctx, practitioner, r.ID, nil)
	require.NoError(t, err)
	require.Equal(t, "s3://bucket/draft.pdf", got.GeneratedPdfURL)
}

// ---------------------------------------------------------------------------
// UpdateReport
// ---------------------------------------------------------------------------

func TestUpdateReport(t *testing.T) {
	f := newFixture(t, repo.DataCollectionStatusComplete)
	ctx := context.Background()
	orig := f.generate(t)
	f.clk.advance(time.Hour)

	t.Run("section count must match", func(t *testing.T) {
		_, err := f.svc.UpdateReport(ctx, practitioner, orig.ID, UpdateRequest{
			Sections: []SectionPatch{{Title: strPtr("only one")}},
		})
		require.ErrorIs(t, err, ErrSectionCountMismatch)
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := f.svc.UpdateReport(ctx, practitioner, orig.ID, UpdateRequest{Status: strPtr("archived")})
		require.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("invalid edge", func(t *testing.T) {
		_, err := f.svc.UpdateReport(ctx, practitioner, orig.ID, UpdateRequest{
			Title:  strPtr("ignored"),
			Status: strPtr("published"),
		})
		require.ErrorIs(t, err, ErrInvalidTransition)

		got, err := f.svc.Get(ctx, orig.ID)
		require.NoError(t, err)
		require.Equal(t, orig.Title, got.Title)
	})

	t.Run("title and changed sections", func(t *testing.T) {
		r, err := f.svc.UpdateReport(ctx, "editor", orig.ID, UpdateRequest{
			Title:    strPtr("New title"),
			Sections: []SectionPatch{{}, {Content: strPtr("new plan")}},
		})
		require.NoError(t, err)
		require.Equal(t, "New title", r.Title)
		require.Equal(t, orig.Sections[0], r.Sections[0])
		require.Equal(t, "new plan", r.Sections[1].Content)
		require.Equal(t, f.clk.now(), r.Sections[1].LastEdited)
		require.Equal(t, "editor", r.LastEditedBy)
	})

	t.Run("status to published stamps date", func(t *testing.T) {
		for _, st := range []string{"review", "final", "published"} {
			_, err := f.svc.UpdateReport(ctx, practitioner, orig.ID, UpdateRequest{Status: strPtr(st)})
			require.NoError(t, err)
		}
		got, err := f.svc.Get(ctx, orig.ID)
		require.NoError(t, err)
		require.Equal(t, repo.ReportStatusPublished, got.Status)
		require.NotNil(t, got.PublishedDate)
		require.Equal(t, f.clk.now(), *got.PublishedDate)
	})

	t.Run("published reports are read only", func(t *testing.T) {
		_, err := f.svc.UpdateReport(ctx, practitioner, orig.ID, UpdateRequest{Title: strPtr("late edit")})
		require.ErrorIs(t, err, ErrReportPublished)

		_, err = f.svc.UpdateSection(ctx, practitioner, orig.ID, 0, SectionPatch{Content: strPtr("late edit")})
		require.ErrorIs(t, err, ErrReportPublished)
	})
}

// racingReports bumps the stored revision between every read and write,
// simulating another request committing first.
type racingReports struct {
	repo.ReportRepository
}

func (r racingReports) Get(ctx context.Context, id string) (*repo.Report, error) {
	got, err := r.ReportRepository.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	other := got.Clone()
	other.Title = "changed elsewhere"
	if err := r.ReportRepository.Update(ctx, other); err != nil {
		return nil, err
	}
	return got, nil
}

func TestConcurrentUpdateIsRejected(t *testing.T) {
	f := newFixture(t, repo.DataCollectionStatusComplete)
	ctx := context.Background()
	r := f.generate(t)

	f.store.Reports = racingReports{ReportRepository: f.store.Reports}

	_, err := f.svc.UpdateSection(ctx, practitioner, r.ID, 0, SectionPatch{Content: strPtr("mine")})
	require.ErrorIs(t, err, ErrConcurrentUpdate)

	_, err = f.svc.SubmitForReview(ctx, practitioner, r.ID)
	require.ErrorIs(t, err, ErrConcurrentUpdate)
}

// ---------------------------------------------------------------------------
// Delete & List
// ---------------------------------------------------------------------------

func TestDelete(t *testing.T) {
	f := newFixture(t, repo.DataCollectionStatusComplete)
	ctx := context.Background()

	draft := f.generate(t)
	require.NoError(t, f.svc.Delete(ctx, draft.ID, false))
	_, err := f.svc.Get(ctx, draft.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, f.svc.Delete(ctx, draft.ID, false), ErrNotFound)

	pub := f.generate(t)
	for _, st := range []string{"review", "final", "published"} {
		_, err := f.svc.UpdateReport(ctx, practitioner, pub.ID, UpdateRequest{Status: strPtr(st)})
		require.NoError(t, err)
	}
	require.ErrorIs(t, f.svc.Delete(ctx, pub.ID, false), ErrReportPublished)
	require.NoError(t, f.svc.Delete(ctx, pub.ID, true))
	require.Contains(t, f.pub.subjects, "sbrp.report.deleted."+pub.ID)
}

// publishingReports publishes the report between the service's read and its
// delete.
type publishingReports struct {
	repo.ReportRepository
}

func (r publishingReports) Get(ctx context.Context, id string) (*repo.Report, error) {
	got, err := r.ReportRepository.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	other := got.Clone()
	other.Status = repo.ReportStatusPublished
	if err := r.ReportRepository.Update(ctx, other); err != nil {
		return nil, err
	}
	return got, nil
}

func TestDelete_ConcurrentPublishIsRejected(t *testing.T) {
	f := newFixture(t, repo.DataCollectionStatusComplete)
	ctx := context.Background()
	r := f.generate(t)

	inner := f.store.Reports
	f.store.Reports = publishingReports{ReportRepository: inner}
	require.ErrorIs(t, f.svc.Delete(ctx, r.ID, false), ErrConcurrentUpdate)

	f.store.Reports = inner
	got, err := f.svc.Get(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, repo.ReportStatusPublished, got.Status)
	require.NotContains(t, f.pub.subjects, "sbrp.report.deleted."+r.ID)
}

func TestList(t *testing.T) {
	f := newFixture(t, repo.DataCollectionStatusComplete)
	ctx := context.Background()
	other := seedCase(t, f.store, "case-2", "SBRP-2024-002", "Beta", repo.DataCollectionStatusComplete)

	first := f.generate(t)
	f.clk.advance(time.Second)
	second := f.generate(t)
	f.clk.advance(time.Second)
	third, err := f.svc.Generate(ctx, practitioner, GenerateRequest{CaseID: other})
	require.NoError(t, err)
	_, err = f.svc.SubmitForReview(ctx, practitioner, second.ID)
	require.NoError(t, err)

	ids := func(rs []*repo.Report) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.ID
		}
		return out
	}

	all, err := f.svc.List(ctx, ListRequest{})
	require.NoError(t, err)
	require.Equal(t, []string{third.ID, second.ID, first.ID}, ids(all))

	byCase, err := f.svc.List(ctx, ListRequest{CaseID: f.caseID})
	require.NoError(t, err)
	require.Equal(t, []string{second.ID, first.ID}, ids(byCase))

	byClient, err := f.svc.List(ctx, ListRequest{ClientID: third.ClientID})
	require.NoError(t, err)
	require.Equal(t, []string{third.ID}, ids(byClient))

	combined, err := f.svc.List(ctx, ListRequest{CaseID: f.caseID, Status: "draft"})
	require.NoError(t, err)
	require.Equal(t, []string{first.ID}, ids(combined))

	_, err = f.svc.List(ctx, ListRequest{Status: "bogus"})
	require.ErrorIs(t, err, ErrInvalidStatus)
}
