package template

import "errors"

var (
	ErrNotFound             = errors.New("report template not found")
	ErrNameRequired         = errors.New("template name is required")
	ErrNameTaken            = errors.New("a template with this name already exists")
	ErrNoDefault            = errors.New("no default template is set")
	ErrSectionTitleRequired = errors.New("every template section needs a title")
)
