package artifact

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarahsindone/sbrp-application/internal/repo"
	"github.com/sarahsindone/sbrp-application/internal/repo/memstore"
)

type memObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemObjects() *memObjects { return &memObjects{objects: map[string][]byte{}} }

func (m *memObjects) URL(key string) string { return "s3://test-bucket/" + key }

func (m *memObjects) KeyFromURL(u string) (string, bool) {
	k, ok := strings.CutPrefix(u, "s3://test-bucket/")
	return k, ok
}

func (m *memObjects) Upload(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = b
	return nil
}

func (m *memObjects) PresignDownload(_ context.Context, key string) (string, error) {
	return "https://signed.example.com/" + key + "?sig=1", nil
}

func seedReport(t *testing.T, store *repo.Store, id, url string) {
	t.Helper()
	require.NoError(t, store.Reports.Create(context.Background(), &repo.Report{
		ID:              id,
		Status:          repo.ReportStatusFinal,
		Metadata:        repo.ReportMetadata{ReportNumber: "RPT-" + id},
		GeneratedPdfURL: url,
	}))
}

func pdf(body string) []byte { return []byte("%PDF-1.7\n" + body) }

func TestUpload(t *testing.T) {
	store := memstore.New()
	objects := newMemObjects()
	svc := New(store, objects, 1)
	ctx := context.Background()
	seedReport(t, store, "r1", "")

	doc := pdf("body")
	a, err := svc.Upload(ctx, UploadRequest{
		ReportID:    "r1",
		Filename:    "proposal.PDF",
		ContentType: "application/pdf",
		Size:        int64(len(doc)),
		Body:        bytes.NewReader(doc),
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(a.Key, "reports/r1/"))
	require.True(t, strings.HasSuffix(a.Key, ".pdf"))
	require.Equal(t, "s3://test-bucket/"+a.Key, a.URL)
	require.Equal(t, doc, objects.objects[a.Key], "stored bytes must include the sniffed header")

	tests := []struct {
		name string
		req  UploadRequest
		want error
	}{
		{"unknown report", UploadRequest{ReportID: "missing", Size: 10, Body: bytes.NewReader(doc)}, ErrReportNotFound},
		{"empty", UploadRequest{ReportID: "r1", Size: 0, Body: bytes.NewReader(nil)}, ErrEmpty},
		{"too large", UploadRequest{ReportID: "r1", Size: 2 << 20, Body: bytes.NewReader(doc)}, ErrTooLarge},
		{"wrong extension", UploadRequest{ReportID: "r1", Filename: "a.docx", Size: int64(len(doc)), Body: bytes.NewReader(doc)}, ErrNotPDF},
		{"wrong content type", UploadRequest{ReportID: "r1", ContentType: "image/png", Size: int64(len(doc)), Body: bytes.NewReader(doc)}, ErrNotPDF},
		{"not a pdf inside", UploadRequest{ReportID: "r1", Filename: "a.pdf", Size: 5, Body: strings.NewReader("hello")}, ErrNotPDF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(ctx, tt.req)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpload_StorageDisabled(t *testing.T) {
	store := memstore.New()
	seedReport(t, store, "r1", "")
	_, err := New(store, nil, 10).Upload(context.Background(), UploadRequest{ReportID: "r1"})
	require.ErrorIs(t, err, ErrStorageOff)
}

func TestDownloadURL(t *testing.T) {
	store := memstore.New()
	seedReport(t, store, "stored", "s3://test-bucket/reports/stored/x.pdf")
	seedReport(t, store, "external", "https://files.example.com/x.pdf")
	seedReport(t, store, "none", "")
	ctx := context.Background()

	tests := []struct {
		name    string
		objects ObjectStore
		id      string
		want    string
		wantErr error
	}{
		{"presigns bucket objects", newMemObjects(), "stored", "https://signed.example.com/reports/stored/x.pdf?sig=1", nil},
		{"external url unchanged", newMemObjects(), "external", "https://files.example.com/x.pdf", nil},
		{"storage disabled returns stored url", nil, "stored", "s3://test-bucket/reports/stored/x.pdf", nil},
		{"no artifact", newMemObjects(), "none", "", ErrNoArtifact},
		{"unknown report", newMemObjects(), "missing", "", ErrReportNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var objects ObjectStore
			if tt.objects != nil {
				objects = tt.objects
			}
			got, err := New(store, objects, 10).DownloadURL(ctx, tt.id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
