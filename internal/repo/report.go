package repo

import (
	"slices"
	"time"
)

type ReportStatus string

const (
	ReportStatusDraft     ReportStatus = "draft"
	ReportStatusReview    ReportStatus = "review"
	ReportStatusFinal     ReportStatus = "final"
	ReportStatusPublished ReportStatus = "published"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusDraft, ReportStatusReview, ReportStatusFinal, ReportStatusPublished:
		return true
	}
	return false
}

type ReportSection struct {
	Title      string    `json:"title" bson:"title"`
	Content    string    `json:"content" bson:"content"`
	Order      int       `json:"order" bson:"order"`
	LastEdited time.Time `json:"last_edited" bson:"last_edited"`
}

type ReportMetadata struct {
	ReportDate   time.Time `json:"report_date" bson:"report_date"`
	ReportNumber string    `json:"report_number" bson:"report_number"`
	Version      int       `json:"version" bson:"version"`
	Author       string    `json:"author" bson:"author"`
	ReviewedBy   string    `json:"reviewed_by,omitempty" bson:"reviewed_by,omitempty"`
	ApprovedBy   string    `json:"approved_by,omitempty" bson:"approved_by,omitempty"`
}

// Report is a generated restructuring document. Sections are copies of the
// originating template's sections; TemplateID is kept for provenance only.
type Report struct {
	ID               string          `json:"id" bson:"_id"`
	CaseID           string          `json:"case_id" bson:"case_id"`
	ClientID         string          `json:"client_id" bson:"client_id"`
	DataCollectionID string          `json:"data_collection_id" bson:"data_collection_id"`
	TemplateID       *string         `json:"template_id" bson:"template_id"`
	Title            string          `json:"title" bson:"title"`
	Status           ReportStatus    `json:"status" bson:"status"`
	Sections         []ReportSection `json:"sections" bson:"sections"`
	Metadata         ReportMetadata  `json:"metadata" bson:"metadata"`
	GeneratedPdfURL  string          `json:"generated_pdf_url,omitempty" bson:"generated_pdf_url,omitempty"`
	PublishedDate    *time.Time      `json:"published_date,omitempty" bson:"published_date,omitempty"`
	LastEditedBy     string          `json:"last_edited_by" bson:"last_edited_by"`
	Revision         int64           `json:"revision" bson:"revision"`
	CreatedAt        time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" bson:"updated_at"`
}

// Clone returns a deep copy of r.
func (r *Report) Clone() *Report {
	if r == nil {
		return nil
	}
	out := *r
	out.Sections = slices.Clone(r.Sections)
	if r.TemplateID != nil {
		id := *r.TemplateID
		out.TemplateID = &id
	}
	if r.PublishedDate != nil {
		t := *r.PublishedDate
		out.PublishedDate = &t
	}
	return &out
}

// ReportFilter narrows List results. Empty fields are ignored.
type ReportFilter struct {
	CaseID   string
	ClientID string
	Status   ReportStatus
}

func (f ReportFilter) Match(r *Report) bool {
	if f.CaseID != "" && r.CaseID != f.CaseID {
		return false
	}
	if f.ClientID != "" && r.ClientID != f.ClientID {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return true
}
