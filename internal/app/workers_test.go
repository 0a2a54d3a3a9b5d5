package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sarahsindone/sbrp-application/internal/repo"
	"github.com/sarahsindone/sbrp-application/internal/repo/memstore"
	"github.com/sarahsindone/sbrp-application/pkg/constants"
	"github.com/sarahsindone/sbrp-application/pkg/email"
)

type captureMailer struct {
	sent []email.Message
	err  error
}

func (m *captureMailer) Send(_ context.Context, msg email.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func seedPublished(t *testing.T, store *repo.Store, status repo.ReportStatus) {
	t.Helper()
	ctx := context.Background()
	published := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.Users.Create(ctx, &repo.User{
		ID: "u1", Email: "author@firm.test", FirstName: "Sam", LastName: "Lee",
		Role: repo.UserRolePractitioner, IsActive: true,
	}))
	require.NoError(t, store.Clients.Create(ctx, &repo.Client{
		ID: "c1", CompanyName: "Acme Pty Ltd", Status: repo.ClientStatusActive,
	}))
	require.NoError(t, store.Reports.Create(ctx, &repo.Report{
		ID:            "r1",
		ClientID:      "c1",
		Title:         "Restructuring Proposal for Acme Pty Ltd",
		Status:        status,
		PublishedDate: &published,
		Metadata:      repo.ReportMetadata{Author: "u1", ReportNumber: "SBRP-001-2025-01"},
	}))
}

func TestPublishNotifier(t *testing.T) {
	store := memstore.New()
	seedPublished(t, store, repo.ReportStatusPublished)
	mailer := &captureMailer{}
	n := &publishNotifier{store: store, mailer: mailer, appName: "SBRP", baseURL: "https://app.sbrp.test/"}

	require.NoError(t, n.handle(context.Background(), "r1"))
	require.Len(t, mailer.sent, 1)
	m := mailer.sent[0]
	require.Equal(t, []string{"author@firm.test"}, m.To)
	require.Contains(t, m.TextBody, "Sam Lee")
	require.Contains(t, m.TextBody, "Acme Pty Ltd")
	require.Contains(t, m.TextBody, "https://app.sbrp.test/reports/r1")

	// unknown reports are skipped
	require.NoError(t, n.handle(context.Background(), "missing"))
	require.Len(t, mailer.sent, 1)
}

func TestPublishNotifier_SkipsUnpublishedAndDisabled(t *testing.T) {
	store := memstore.New()
	seedPublished(t, store, repo.ReportStatusFinal)
	mailer := &captureMailer{}
	n := &publishNotifier{store: store, mailer: mailer}

	require.NoError(t, n.handle(context.Background(), "r1"))
	require.Empty(t, mailer.sent)

	store = memstore.New()
	seedPublished(t, store, repo.ReportStatusPublished)
	n = &publishNotifier{store: store, mailer: &captureMailer{err: email.ErrDisabled{}}}
	require.NoError(t, n.handle(context.Background(), "r1"))
}

func TestReportIDFromSubject(t *testing.T) {
	tests := []struct {
		subject string
		want    string
		ok      bool
	}{
		{constants.SubjectReportPublished + ".abc", "abc", true},
		{constants.SubjectReportPublished + ".", "", false},
		{constants.SubjectReportPublished + ".a.b", "", false},
		{constants.SubjectReportDeleted + ".abc", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			got, ok := reportIDFromSubject(tt.subject, constants.SubjectReportPublished)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}
