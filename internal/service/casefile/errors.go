package casefile

import "errors"

var (
	ErrClientNotFound         = errors.New("client not found")
	ErrCaseNotFound           = errors.New("case not found")
	ErrDataCollectionNotFound = errors.New("data collection not found")

	ErrCompanyNameRequired = errors.New("company name is required")
	ErrInvalidACN          = errors.New("ACN must be 9 digits")
	ErrInvalidABN          = errors.New("ABN must be 11 digits")
	ErrCaseNumberRequired  = errors.New("case number is required")
	ErrInvalidCaseStatus   = errors.New("unknown case status")
	ErrUnknownSection      = errors.New("unknown data collection section")

	ErrCaseNumberTaken      = errors.New("case number already exists")
	ErrDataCollectionExists = errors.New("case already has a data collection")
	ErrSectionsIncomplete   = errors.New("all data collection sections must be complete")
)
