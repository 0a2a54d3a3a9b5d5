package artifact

import "errors"

var (
	ErrReportNotFound = errors.New("report not found")
	ErrNoArtifact     = errors.New("report has no generated document")
	ErrNotPDF         = errors.New("only PDF documents are accepted")
	ErrTooLarge       = errors.New("document exceeds the upload size limit")
	ErrEmpty          = errors.New("document is empty")
	ErrStorageOff     = errors.New("artifact storage is not configured")
)
