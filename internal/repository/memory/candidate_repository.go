// Package memory is an in-process CandidateRepository for local runs and
// tests. It enforces the same uniqueness and cascade rules as the Postgres
// schema.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-ats-backend/internal/domain"
)

type CandidateRepository struct {
	mu         sync.RWMutex
	candidates map[string]*domain.Candidate
	stages     map[string][]domain.RecruitmentStage
	now        func() time.Time
}

func NewCandidateRepository() *CandidateRepository {
	return &CandidateRepository{
		candidates: make(map[string]*domain.Candidate),
		stages:     make(map[string][]domain.RecruitmentStage),
		now:        time.Now,
	}
}

// AddStage attaches a recruitment stage to a candidate. Stages are managed
// outside the candidate API, so this is only used to seed data.
func (r *CandidateRepository) AddStage(candidateID string, stage domain.RecruitmentStage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.candidates[candidateID]; !ok {
		return domain.ErrNotFound
	}
	stage.CandidateID = candidateID
	r.stages[candidateID] = append(r.stages[candidateID], stage)
	return nil
}

// Counts returns the number of candidates and the number of nested education
// and experience rows held.
func (r *CandidateRepository) Counts() (candidates, education, experience int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.candidates {
		education += len(c.Education)
		experience += len(c.Experience)
	}
	return len(r.candidates), education, experience
}

func (r *CandidateRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *CandidateRepository) Create(ctx context.Context, c *domain.Candidate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(c.Email, "") {
		return &domain.ConflictError{Field: "email"}
	}

	// Keep creation order strictly increasing for List.
	now := r.now()
	for _, existing := range r.candidates {
		if !now.After(existing.CreatedAt) {
			now = existing.CreatedAt.Add(time.Microsecond)
		}
	}
	c.CreatedAt, c.UpdatedAt = now, now
	c.Tags = nonNil(c.Tags)
	for i := range c.Education {
		c.Education[i].CandidateID = c.ID
	}
	for i := range c.Experience {
		c.Experience[i].CandidateID = c.ID
		c.Experience[i].Achievements = nonNil(c.Experience[i].Achievements)
		c.Experience[i].Skills = nonNil(c.Experience[i].Skills)
	}

	r.candidates[c.ID] = clone(c)
	return nil
}

func (r *CandidateRepository) List(ctx context.Context) ([]domain.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Candidate, 0, len(r.candidates))
	for _, c := range r.candidates {
		cp := clone(c)
		cp.RecruitmentStages = nil
		out = append(out, *cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *CandidateRepository) GetByID(ctx context.Context, id string) (*domain.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.candidates[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := clone(c)
	if stages := r.stages[id]; len(stages) > 0 {
		cp.RecruitmentStages = append([]domain.RecruitmentStage(nil), stages...)
	}
	return cp, nil
}

func (r *CandidateRepository) Exists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.candidates[id]
	return ok, nil
}

func (r *CandidateRepository) Update(ctx context.Context, id string, p domain.CandidatePatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.candidates[id]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Email != nil && r.emailTaken(*p.Email, id) {
		return &domain.ConflictError{Field: "email"}
	}

	if p.FirstName != nil {
		c.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		c.LastName = *p.LastName
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	applyOptional(&c.Street, p.Street)
	applyOptional(&c.City, p.City)
	applyOptional(&c.State, p.State)
	applyOptional(&c.PostalCode, p.PostalCode)
	applyOptional(&c.Country, p.Country)
	applyOptional(&c.Status, p.Status)
	if p.Tags != nil {
		c.Tags = append([]string{}, *p.Tags...)
	}
	if p.CVFilePath != nil {
		path := *p.CVFilePath
		c.CVFilePath = &path
	}
	c.UpdatedAt = r.now()
	return nil
}

func (r *CandidateRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.candidates[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.candidates, id)
	delete(r.stages, id)
	return nil
}

// emailTaken must be called with the lock held.
func (r *CandidateRepository) emailTaken(email, exceptID string) bool {
	for id, c := range r.candidates {
		if id != exceptID && c.Email == email {
			return true
		}
	}
	return false
}

func applyOptional(dst **string, v *string) {
	if v == nil {
		return
	}
	if *v == "" {
		*dst = nil
		return
	}
	s := *v
	*dst = &s
}

func clone(c *domain.Candidate) *domain.Candidate {
	cp := *c
	cp.Street = cloneStr(c.Street)
	cp.City = cloneStr(c.City)
	cp.State = cloneStr(c.State)
	cp.PostalCode = cloneStr(c.PostalCode)
	cp.Country = cloneStr(c.Country)
	cp.CVFilePath = cloneStr(c.CVFilePath)
	cp.Status = cloneStr(c.Status)
	cp.Tags = append([]string{}, c.Tags...)

	cp.Education = make([]domain.Education, len(c.Education))
	for i, e := range c.Education {
		e.Degree = cloneStr(e.Degree)
		e.FieldOfStudy = cloneStr(e.FieldOfStudy)
		e.Description = cloneStr(e.Description)
		cp.Education[i] = e
	}
	cp.Experience = make([]domain.Experience, len(c.Experience))
	for i, x := range c.Experience {
		x.Location = cloneStr(x.Location)
		x.Achievements = append([]string{}, x.Achievements...)
		x.Skills = append([]string{}, x.Skills...)
		cp.Experience[i] = x
	}
	cp.RecruitmentStages = nil
	return &cp
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
