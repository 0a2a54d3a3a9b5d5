package repo

import (
	"fmt"
	"time"
)

// ---------------------------------------------------------------------------
// Client
// ---------------------------------------------------------------------------

type ClientStatus string

const (
	ClientStatusActive    ClientStatus = "active"
	ClientStatusCompleted ClientStatus = "completed"
	ClientStatusArchived  ClientStatus = "archived"
)

// Client is the business under restructuring.
type Client struct {
	ID                   string       `json:"id" bson:"_id"`
	CompanyName          string       `json:"company_name" bson:"company_name"`
	TradingName          string       `json:"trading_name,omitempty" bson:"trading_name,omitempty"`
	ACN                  string       `json:"acn,omitempty" bson:"acn,omitempty"`
	ABN                  string       `json:"abn,omitempty" bson:"abn,omitempty"`
	BusinessType         string       `json:"business_type,omitempty" bson:"business_type,omitempty"`
	Status               ClientStatus `json:"status" bson:"status"`
	AssignedPractitioner string       `json:"assigned_practitioner,omitempty" bson:"assigned_practitioner,omitempty"`
	CreatedBy            string       `json:"created_by" bson:"created_by"`
	CreatedAt            time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at" bson:"updated_at"`
}

// ---------------------------------------------------------------------------
// Case
// ---------------------------------------------------------------------------

type CaseStatus string

const (
	CaseStatusDataCollection   CaseStatus = "data-collection"
	CaseStatusAnalysis         CaseStatus = "analysis"
	CaseStatusPlanDevelopment  CaseStatus = "plan-development"
	CaseStatusReportGeneration CaseStatus = "report-generation"
	CaseStatusCreditorVoting   CaseStatus = "creditor-voting"
	CaseStatusImplementation   CaseStatus = "implementation"
	CaseStatusCompleted        CaseStatus = "completed"
)

func (s CaseStatus) Valid() bool {
	switch s {
	case CaseStatusDataCollection, CaseStatusAnalysis, CaseStatusPlanDevelopment,
		CaseStatusReportGeneration, CaseStatusCreditorVoting, CaseStatusImplementation,
		CaseStatusCompleted:
		return true
	}
	return false
}

type Contact struct {
	Name  string `json:"name,omitempty" bson:"name,omitempty"`
	Email string `json:"email,omitempty" bson:"email,omitempty"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty"`
}

type Case struct {
	ID              string     `json:"id" bson:"_id"`
	CaseNumber      string     `json:"case_number" bson:"case_number"`
	ClientID        string     `json:"client_id" bson:"client_id"`
	CaseType        string     `json:"case_type" bson:"case_type"`
	AppointmentDate *time.Time `json:"appointment_date,omitempty" bson:"appointment_date,omitempty"`
	Status          CaseStatus `json:"status" bson:"status"`
	PrimaryContact  Contact    `json:"primary_contact" bson:"primary_contact"`
	Notes           string     `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedBy       string     `json:"created_by" bson:"created_by"`
	CreatedAt       time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" bson:"updated_at"`
}

// ---------------------------------------------------------------------------
// DataCollection
// ---------------------------------------------------------------------------

type DataCollectionStatus string

const (
	DataCollectionStatusDraft    DataCollectionStatus = "draft"
	DataCollectionStatusComplete DataCollectionStatus = "complete"
)

// Data collection section names.
const (
	SectionCompanyInformation  = "company_information"
	SectionFinancialDetails    = "financial_details"
	SectionBusinessOperations  = "business_operations"
	SectionCreditorInformation = "creditor_information"
	SectionDocuments           = "documents"
)

var DataCollectionSections = []string{
	SectionCompanyInformation,
	SectionFinancialDetails,
	SectionBusinessOperations,
	SectionCreditorInformation,
	SectionDocuments,
}

type CompletedSections struct {
	CompanyInformation  bool `json:"company_information" bson:"company_information"`
	FinancialDetails    bool `json:"financial_details" bson:"financial_details"`
	BusinessOperations  bool `json:"business_operations" bson:"business_operations"`
	CreditorInformation bool `json:"creditor_information" bson:"creditor_information"`
	Documents           bool `json:"documents" bson:"documents"`
}

func (s *CompletedSections) Mark(name string) error {
	switch name {
	case SectionCompanyInformation:
		s.CompanyInformation = true
	case SectionFinancialDetails:
		s.FinancialDetails = true
	case SectionBusinessOperations:
		s.BusinessOperations = true
	case SectionCreditorInformation:
		s.CreditorInformation = true
	case SectionDocuments:
		s.Documents = true
	default:
		return fmt.Errorf("unknown data collection section %q", name)
	}
	return nil
}

// Missing lists the sections not yet marked complete, in canonical order.
func (s CompletedSections) Missing() []string {
	done := map[string]bool{
		SectionCompanyInformation:  s.CompanyInformation,
		SectionFinancialDetails:    s.FinancialDetails,
		SectionBusinessOperations:  s.BusinessOperations,
		SectionCreditorInformation: s.CreditorInformation,
		SectionDocuments:           s.Documents,
	}
	var out []string
	for _, name := range DataCollectionSections {
		if !done[name] {
			out = append(out, name)
		}
	}
	return out
}

type DataCollection struct {
	ID                string               `json:"id" bson:"_id"`
	CaseID            string               `json:"case_id" bson:"case_id"`
	ClientID          string               `json:"client_id" bson:"client_id"`
	Status            DataCollectionStatus `json:"status" bson:"status"`
	CompletedSections CompletedSections    `json:"completed_sections" bson:"completed_sections"`
	LastUpdatedBy     string               `json:"last_updated_by" bson:"last_updated_by"`
	CompletedAt       *time.Time           `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	CreatedAt         time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at" bson:"updated_at"`
}

// ---------------------------------------------------------------------------
// User
// ---------------------------------------------------------------------------

type UserRole string

const (
	UserRoleAdmin        UserRole = "admin"
	UserRolePractitioner UserRole = "practitioner"
)

type User struct {
	ID           string     `json:"id" bson:"_id"`
	Email        string     `json:"email" bson:"email"`
	FirstName    string     `json:"first_name" bson:"first_name"`
	LastName     string     `json:"last_name" bson:"last_name"`
	PasswordHash string     `json:"-" bson:"password_hash"`
	Role         UserRole   `json:"role" bson:"role"`
	IsActive     bool       `json:"is_active" bson:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" bson:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" bson:"updated_at"`
}
