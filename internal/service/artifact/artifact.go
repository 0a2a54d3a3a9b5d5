// Package artifact stores generated report documents in object storage and
// resolves download links for them.
package artifact

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/sarahsindone/sbrp-application/internal/repo"
)

var pdfMagic = []byte("%PDF-")

// ObjectStore is the subset of *s3.Client the service needs.
type ObjectStore interface {
	URL(key string) string
	KeyFromURL(u string) (string, bool)
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	PresignDownload(ctx context.Context, key string) (string, error)
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type UploadRequest struct {
	ReportID    string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Artifact struct {
	ReportID string `json:"report_id"`
	Key      string `json:"key"`
	URL      string `json:"url"` // pass to publish as pdf_url
	Size     int64  `json:"size"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Upload(ctx context.Context, req UploadRequest) (*Artifact, error)
	DownloadURL(ctx context.Context, reportID string) (string, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type artifactService struct {
	store   *repo.Store
	objects ObjectStore
	maxSize int64
}

// New returns the artifact service. objects may be nil when S3 is disabled;
// uploads then fail with ErrStorageOff while links to external documents
// still resolve.
func New(store *repo.Store, objects ObjectStore, maxSizeMB int) Service {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &artifactService{
		store:   store,
		objects: objects,
		maxSize: int64(maxSizeMB) << 20,
	}
}

func (s *artifactService) Upload(ctx context.Context, req UploadRequest) (*Artifact, error) {
	if s.objects == nil {
		return nil, ErrStorageOff
	}
	if _, err := s.report(ctx, req.ReportID); err != nil {
		return nil, err
	}

	switch {
	case req.Size <= 0:
		return nil, ErrEmpty
	case req.Size > s.maxSize:
		return nil, fmt.Errorf("%w (%d MiB)", ErrTooLarge, s.maxSize>>20)
	}
	if ext := strings.ToLower(filepath.Ext(req.Filename)); ext != "" && ext != ".pdf" {
		return nil, ErrNotPDF
	}
	if ct := req.ContentType; ct != "" && !strings.HasPrefix(ct, "application/pdf") && ct != "application/octet-stream" {
		return nil, ErrNotPDF
	}

	// The declared type is advisory; the content must start like a PDF.
	br := bufio.NewReaderSize(req.Body, 512)
	head, err := br.Peek(len(pdfMagic))
	if err != nil || !bytes.Equal(head, pdfMagic) {
		return nil, ErrNotPDF
	}

	key := fmt.Sprintf("reports/%s/%s.pdf", req.ReportID, uuid.Must(uuid.NewV7()))
	if err := s.objects.Upload(ctx, key, "application/pdf", br, req.Size); err != nil {
		return nil, fmt.Errorf("upload artifact: %w", err)
	}

	slog.Info("report artifact uploaded", "report_id", req.ReportID, "key", key, "size", req.Size)
	return &Artifact{
		ReportID: req.ReportID,
		Key:      key,
		URL:      s.objects.URL(key),
		Size:     req.Size,
	}, nil
}

// DownloadURL presigns stored artifacts. URLs that do not point into the
// bucket are returned unchanged.
func (s *artifactService) DownloadURL(ctx context.Context, reportID string) (string, error) {
	r, err := s.report(ctx, reportID)
	if err != nil {
		return "", err
	}
	if r.GeneratedPdfURL == "" {
		return "", ErrNoArtifact
	}
	if s.objects == nil {
		return r.GeneratedPdfURL, nil
	}

	key, ok := s.objects.KeyFromURL(r.GeneratedPdfURL)
	if !ok {
		return r.GeneratedPdfURL, nil
	}
	u, err := s.objects.PresignDownload(ctx, key)
	if err != nil {
		return "", fmt.Errorf("presign artifact: %w", err)
	}
	return u, nil
}

func (s *artifactService) report(ctx context.Context, id string) (*repo.Report, error) {
	r, err := s.store.Reports.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("get report: %w", err)
	}
	return r, nil
}
