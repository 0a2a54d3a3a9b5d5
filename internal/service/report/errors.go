package report

import "errors"

var (
	ErrNotFound                 = errors.New("report not found")
	ErrCaseNotFound             = errors.New("case not found")
	ErrClientNotFound           = errors.New("client not found")
	ErrDataCollectionNotFound   = errors.New("data collection not found for case")
	ErrDataCollectionIncomplete = errors.New("data collection must be complete before generating a report")
	ErrTemplateNotFound         = errors.New("report template not found")
	ErrNoDefaultTemplate        = errors.New("no template given and no default template is set")
	ErrInvalidTransition        = errors.New("status transition is not allowed")
	ErrReportPublished          = errors.New("report is published")
	ErrSectionOutOfRange        = errors.New("section index out of range")
	ErrSectionCountMismatch     = errors.New("sections must keep the same length")
	ErrConcurrentUpdate         = errors.New("report was modified by another request")
	ErrReportNumberConflict     = errors.New("report number already exists")
	ErrInvalidStatus            = errors.New("unknown report status")
	ErrCallerRequired           = errors.New("caller identity is required")
)
