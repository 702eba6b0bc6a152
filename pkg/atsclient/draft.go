package atsclient

import (
	"sync"

	"go-ats-backend/pkg/apperror"
	"go-ats-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// Draft is a candidate as entered in the recruiter form. Validate checks the
// form's required fields before anything is sent; the server applies the
// full rules again.
type Draft struct {
	FirstName  string            `json:"firstName" validate:"required"`
	LastName   string            `json:"lastName" validate:"required"`
	Email      string            `json:"email" validate:"required,email"`
	Phone      string            `json:"phone" validate:"required"`
	Street     string            `json:"street" validate:"required"`
	City       string            `json:"city" validate:"required"`
	State      string            `json:"state" validate:"required"`
	PostalCode string            `json:"postalCode" validate:"required"`
	Country    string            `json:"country" validate:"required"`
	Status     string            `json:"status"`
	Tags       []string          `json:"tags" validate:"dive,required"`
	Education  []EducationDraft  `json:"education" validate:"required,min=1,dive"`
	Experience []ExperienceDraft `json:"experience" validate:"required,min=1,dive"`
}

type EducationDraft struct {
	Institution  string `json:"institution" validate:"required"`
	Title        string `json:"title" validate:"required"`
	StartDate    string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate      string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Degree       string `json:"degree,omitempty"`
	FieldOfStudy string `json:"fieldOfStudy,omitempty"`
	Description  string `json:"description,omitempty"`
}

type ExperienceDraft struct {
	Company      string   `json:"company" validate:"required"`
	Position     string   `json:"position" validate:"required"`
	StartDate    string   `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate      string   `json:"endDate" validate:"required,datetime=2006-01-02"`
	Description  string   `json:"description" validate:"required"`
	Location     string   `json:"location,omitempty"`
	CurrentJob   bool     `json:"currentJob"`
	Achievements []string `json:"achievements" validate:"dive,required"`
	Skills       []string `json:"skills" validate:"dive,required"`
}

// DefaultStatus is applied to drafts without a status.
const DefaultStatus = "Nuevo"

var (
	draftValidator     *validator.Validate
	draftValidatorOnce sync.Once
)

// Validate returns the missing or malformed fields, or nil.
func (d Draft) Validate() []apperror.FieldError {
	draftValidatorOnce.Do(func() {
		draftValidator = validation.New()
	})
	if err := draftValidator.Struct(d); err != nil {
		return validation.FormatValidationErrors(err)
	}
	return nil
}

func (d Draft) withDefaults() Draft {
	if d.Status == "" {
		d.Status = DefaultStatus
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
	for i := range d.Experience {
		if d.Experience[i].Achievements == nil {
			d.Experience[i].Achievements = []string{}
		}
		if d.Experience[i].Skills == nil {
			d.Experience[i].Skills = []string{}
		}
	}
	return d
}
