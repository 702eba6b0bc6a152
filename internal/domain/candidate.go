package domain

import (
	"context"
	"time"
)

// Candidate is a person tracked by the ATS, with their education and work
// history.
type Candidate struct {
	ID                string             `json:"id"`
	FirstName         string             `json:"firstName"`
	LastName          string             `json:"lastName"`
	Email             string             `json:"email"`
	Phone             string             `json:"phone"`
	Street            *string            `json:"street"`
	City              *string            `json:"city"`
	State             *string            `json:"state"`
	PostalCode        *string            `json:"postalCode"`
	Country           *string            `json:"country"`
	CVFilePath        *string            `json:"cvFilePath"`
	Status            *string            `json:"status"`
	Tags              []string           `json:"tags"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
	Education         []Education        `json:"education"`
	Experience        []Experience       `json:"experience"`
	RecruitmentStages []RecruitmentStage `json:"recruitmentStages,omitempty"`
}

type Education struct {
	ID           string    `json:"id"`
	CandidateID  string    `json:"candidateId"`
	Institution  string    `json:"institution"`
	Title        string    `json:"title"`
	Degree       *string   `json:"degree"`
	FieldOfStudy *string   `json:"fieldOfStudy"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	Description  *string   `json:"description"`
}

type Experience struct {
	ID           string    `json:"id"`
	CandidateID  string    `json:"candidateId"`
	Company      string    `json:"company"`
	Position     string    `json:"position"`
	Location     *string   `json:"location"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	CurrentJob   bool      `json:"currentJob"`
	Description  string    `json:"description"`
	Achievements []string  `json:"achievements"`
	Skills       []string  `json:"skills"`
}

// RecruitmentStage is read-only here. Rows are written by other parts of the
// ATS and displayed with the candidate.
type RecruitmentStage struct {
	ID          string    `json:"id"`
	CandidateID string    `json:"candidateId"`
	StageName   string    `json:"stageName"`
	Notes       *string   `json:"notes"`
	Date        time.Time `json:"date"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Payload is a decoded request body before normalization. Values come from
// JSON bodies or multipart form fields.
type Payload map[string]any

// CandidateInput is the normalized create request.
type CandidateInput struct {
	FirstName  string            `json:"firstName" validate:"required,min=2,max=50"`
	LastName   string            `json:"lastName" validate:"required,min=2,max=50"`
	Email      string            `json:"email" validate:"required,email"`
	Phone      string            `json:"phone" validate:"required,valid_phone"`
	Street     *string           `json:"street" validate:"omitempty,min=2,max=150"`
	City       *string           `json:"city" validate:"omitempty,min=2,max=100"`
	State      *string           `json:"state" validate:"omitempty,min=2,max=100"`
	PostalCode *string           `json:"postalCode" validate:"omitempty,min=3,max=20"`
	Country    *string           `json:"country" validate:"omitempty,min=2,max=100"`
	Status     *string           `json:"status"`
	Tags       []string          `json:"tags"`
	Education  []EducationInput  `json:"education" validate:"dive"`
	Experience []ExperienceInput `json:"experience" validate:"dive"`
}

type EducationInput struct {
	Institution  string  `json:"institution" validate:"required,min=2,max=100"`
	Title        string  `json:"title" validate:"required,min=2,max=100"`
	Degree       *string `json:"degree"`
	FieldOfStudy *string `json:"fieldOfStudy"`
	StartDate    string  `json:"startDate" validate:"required,iso8601"`
	EndDate      string  `json:"endDate" validate:"required,iso8601"`
	Description  *string `json:"description" validate:"omitempty,min=5,max=500"`
}

type ExperienceInput struct {
	Company      string   `json:"company" validate:"required,min=2,max=100"`
	Position     string   `json:"position" validate:"required,min=2,max=100"`
	Location     *string  `json:"location"`
	StartDate    string   `json:"startDate" validate:"required,iso8601"`
	EndDate      string   `json:"endDate" validate:"required,iso8601"`
	Description  string   `json:"description" validate:"required,min=10,max=1000"`
	CurrentJob   bool     `json:"currentJob"`
	Achievements []string `json:"achievements"`
	Skills       []string `json:"skills"`
}

// CandidatePatch carries only the fields a client supplied on update. A nil
// pointer leaves the column untouched. For the optional address and status
// fields a pointer to "" clears the value; their length rules are checked by
// the usecase on non-empty values only. Tags distinguishes omitted (nil) from
// an explicit empty list.
type CandidatePatch struct {
	FirstName  *string   `json:"firstName" validate:"omitnil,required,min=2,max=50"`
	LastName   *string   `json:"lastName" validate:"omitnil,required,min=2,max=50"`
	Email      *string   `json:"email" validate:"omitnil,required,email"`
	Phone      *string   `json:"phone" validate:"omitnil,required,valid_phone"`
	Street     *string   `json:"street"`
	City       *string   `json:"city"`
	State      *string   `json:"state"`
	PostalCode *string   `json:"postalCode"`
	Country    *string   `json:"country"`
	Status     *string   `json:"status"`
	Tags       *[]string `json:"tags"`
	CVFilePath *string   `json:"-"`
}

// IsEmpty reports whether the patch changes nothing.
func (p CandidatePatch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil && p.Phone == nil &&
		p.Street == nil && p.City == nil && p.State == nil && p.PostalCode == nil &&
		p.Country == nil && p.Status == nil && p.Tags == nil && p.CVFilePath == nil
}

type CandidateRepository interface {
	// Create inserts the candidate and its nested rows in one transaction,
	// filling IDs and timestamps in place.
	Create(ctx context.Context, c *Candidate) error
	List(ctx context.Context) ([]Candidate, error)
	GetByID(ctx context.Context, id string) (*Candidate, error)
	Exists(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, id string, patch CandidatePatch) error
	Delete(ctx context.Context, id string) error
}

type CandidateUsecase interface {
	CreateCandidate(ctx context.Context, payload Payload, cvFilePath *string) (*Candidate, error)
	ListCandidates(ctx context.Context) ([]Candidate, error)
	GetCandidate(ctx context.Context, id string) (*Candidate, error)
	UpdateCandidate(ctx context.Context, id string, payload Payload, cvFilePath *string) (*Candidate, error)
	DeleteCandidate(ctx context.Context, id string) error
}

// FileRemover deletes stored CV files by their public path.
type FileRemover interface {
	Delete(ctx context.Context, path string) error
}
