// Package report generates restructuring reports from templates and drives
// them through the draft, review, final and published states.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/sarahsindone/sbrp-application/internal/repo"
)

const meterName = "github.com/sarahsindone/sbrp-application/internal/service/report"

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type GenerateRequest struct {
	CaseID     string
	TemplateID string // empty selects the default template
	Title      string
}

type ListRequest struct {
	CaseID   string
	ClientID string
	Status   string
}

// SectionPatch changes only the fields that are set.
type SectionPatch struct {
	Title   *string
	Content *string
}

type UpdateRequest struct {
	Title    *string
	Sections []SectionPatch // nil leaves sections untouched
	Status   *string
}

// Publisher emits lifecycle events. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Renderer turns template section content into report content using the
// variables derived from the case and client.
type Renderer func(content string, vars map[string]string) (string, error)

// Verbatim is the default Renderer. It returns content unchanged.
func Verbatim(content string, _ map[string]string) (string, error) {
	return content, nil
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Generate(ctx context.Context, caller string, req GenerateRequest) (*repo.Report, error)
	Get(ctx context.Context, id string) (*repo.Report, error)
	List(ctx context.Context, req ListRequest) ([]*repo.Report, error)

	UpdateReport(ctx context.Context, caller, id string, req UpdateRequest) (*repo.Report, error)
	UpdateSection(ctx context.Context, caller, id string, index int, patch SectionPatch) (*repo.Report, error)
	SubmitForReview(ctx context.Context, caller, id string) (*repo.Report, error)
	Finalize(ctx context.Context, caller, id string) (*repo.Report, error)
	Publish(ctx context.Context, caller, id string, artifactURL *string) (*repo.Report, error)
	Delete(ctx context.Context, id string, force bool) error
}

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

type Option func(*reportService)

func WithClock(now func() time.Time) Option {
	return func(s *reportService) { s.now = now }
}

func WithRenderer(r Renderer) Option {
	return func(s *reportService) { s.render = r }
}

// WithPublisher enables lifecycle events. A nil publisher disables them.
func WithPublisher(p Publisher) Option {
	return func(s *reportService) { s.pub = p }
}

func WithNumberPrefix(prefix string) Option {
	return func(s *reportService) {
		if prefix != "" {
			s.numberPrefix = prefix
		}
	}
}

// WithTitleFormat sets the fmt format of the default title. It receives the
// client's company name.
func WithTitleFormat(format string) Option {
	return func(s *reportService) {
		if format != "" {
			s.titleFormat = format
		}
	}
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type reportService struct {
	store        *repo.Store
	pub          Publisher
	render       Renderer
	now          func() time.Time
	numberPrefix string
	titleFormat  string

	transitions metric.Int64Counter
}

func New(store *repo.Store, opts ...Option) Service {
	s := &reportService{
		store:        store,
		render:       Verbatim,
		now:          time.Now,
		numberPrefix: "SBRP",
		titleFormat:  "Restructuring Proposal for %s",
	}
	for _, opt := range opts {
		opt(s)
	}

	s.transitions, _ = otel.Meter(meterName).Int64Counter(
		"reports_transitions_total",
		metric.WithDescription("Report status transitions"),
		metric.WithUnit("{transition}"),
	)
	return s
}

func (s *reportService) Get(ctx context.Context, id string) (*repo.Report, error) {
	r, err := s.store.Reports.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get report: %w", err)
	}
	return r, nil
}

func (s *reportService) List(ctx context.Context, req ListRequest) ([]*repo.Report, error) {
	f := repo.ReportFilter{
		CaseID:   req.CaseID,
		ClientID: req.ClientID,
	}
	if req.Status != "" {
		st := repo.ReportStatus(req.Status)
		if !st.Valid() {
			return nil, ErrInvalidStatus
		}
		f.Status = st
	}

	reports, err := s.store.Reports.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// emit publishes subject.<id>. Failures are logged and never fail the caller.
func (s *reportService) emit(subject, id string) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(subject+"."+id, []byte(id)); err != nil {
		slog.Warn("report: publish event failed", "subject", subject, "report_id", id, "error", err)
	}
}
