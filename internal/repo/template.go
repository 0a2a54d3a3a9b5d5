package repo

import (
	"slices"
	"time"
)

type SectionDefinition struct {
	Title      string   `json:"title" bson:"title"`
	Content    string   `json:"content" bson:"content"`
	Order      int      `json:"order" bson:"order"`
	IsRequired bool     `json:"is_required" bson:"is_required"`
	Variables  []string `json:"variables,omitempty" bson:"variables,omitempty"`
}

// ReportTemplate is a reusable ordered set of section definitions.
// IsDefault is not persisted on the template; stores resolve it from the
// single default-template pointer.
type ReportTemplate struct {
	ID             string              `json:"id" bson:"_id"`
	Name           string              `json:"name" bson:"name"`
	Description    string              `json:"description" bson:"description"`
	Sections       []SectionDefinition `json:"sections" bson:"sections"`
	HeaderTemplate string              `json:"header_template" bson:"header_template"`
	FooterTemplate string              `json:"footer_template" bson:"footer_template"`
	CreatedBy      string              `json:"created_by" bson:"created_by"`
	IsDefault      bool                `json:"is_default" bson:"-"`
	CreatedAt      time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at" bson:"updated_at"`
}

func (t *ReportTemplate) Clone() *ReportTemplate {
	if t == nil {
		return nil
	}
	out := *t
	out.Sections = make([]SectionDefinition, len(t.Sections))
	for i, s := range t.Sections {
		s.Variables = slices.Clone(s.Variables)
		out.Sections[i] = s
	}
	return &out
}
