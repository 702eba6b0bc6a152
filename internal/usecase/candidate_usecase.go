package usecase

import (
	"context"
	"errors"
	"fmt"

	"go-ats-backend/internal/domain"
	"go-ats-backend/pkg/apperror"
	"go-ats-backend/pkg/logger"
	"go-ats-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type candidateUsecase struct {
	repo     domain.CandidateRepository
	files    domain.FileRemover
	validate *validator.Validate
}

// NewCandidateUsecase wires the candidate lifecycle. files may be nil, in
// which case stored CVs are left in place on delete.
func NewCandidateUsecase(repo domain.CandidateRepository, files domain.FileRemover, validate *validator.Validate) domain.CandidateUsecase {
	if validate == nil {
		validate = validation.New()
	}
	return &candidateUsecase{
		repo:     repo,
		files:    files,
		validate: validate,
	}
}

func (u *candidateUsecase) CreateCandidate(ctx context.Context, payload domain.Payload, cvFilePath *string) (*domain.Candidate, error) {
	in, errs := decodeCandidateInput(payload)
	if err := u.validate.Struct(in); err != nil {
		errs = validation.Merge(errs, validation.FormatValidationErrors(err))
	}
	if len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}

	candidate := toCandidate(in, cvFilePath)
	candidate.ID = uuid.NewString()
	for i := range candidate.Education {
		candidate.Education[i].ID = uuid.NewString()
	}
	for i := range candidate.Experience {
		candidate.Experience[i].ID = uuid.NewString()
	}

	if err := u.repo.Create(ctx, candidate); err != nil {
		return nil, storeError(err)
	}
	return candidate, nil
}

func (u *candidateUsecase) ListCandidates(ctx context.Context) ([]domain.Candidate, error) {
	candidates, err := u.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if candidates == nil {
		candidates = []domain.Candidate{}
	}
	return candidates, nil
}

func (u *candidateUsecase) GetCandidate(ctx context.Context, id string) (*domain.Candidate, error) {
	candidate, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return candidate, nil
}

func (u *candidateUsecase) UpdateCandidate(ctx context.Context, id string, payload domain.Payload, cvFilePath *string) (*domain.Candidate, error) {
	exists, err := u.repo.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errCandidateNotFound()
	}

	patch, errs := decodeCandidatePatch(payload)
	if err := u.validate.Struct(patch); err != nil {
		errs = validation.Merge(errs, validation.FormatValidationErrors(err))
	}
	if err := u.validate.Struct(addressRulesOf(patch)); err != nil {
		errs = validation.Merge(errs, validation.FormatValidationErrors(err))
	}
	if len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}
	patch.CVFilePath = cvFilePath

	if !patch.IsEmpty() {
		if err := u.repo.Update(ctx, id, patch); err != nil {
			return nil, storeError(err)
		}
	}

	return u.GetCandidate(ctx, id)
}

func (u *candidateUsecase) DeleteCandidate(ctx context.Context, id string) error {
	candidate, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return storeError(err)
	}

	if err := u.repo.Delete(ctx, id); err != nil {
		return storeError(err)
	}

	if u.files != nil && candidate.CVFilePath != nil {
		if err := u.files.Delete(ctx, *candidate.CVFilePath); err != nil {
			logger.Log.Warn("failed to remove CV of deleted candidate",
				"candidate_id", id, "path", *candidate.CVFilePath, "error", err)
		}
	}
	return nil
}

// addressRules holds the optional address values of a patch as plain strings,
// so omitempty skips the "" that clears a column.
type addressRules struct {
	Street     string `json:"street" validate:"omitempty,min=2,max=150"`
	City       string `json:"city" validate:"omitempty,min=2,max=100"`
	State      string `json:"state" validate:"omitempty,min=2,max=100"`
	PostalCode string `json:"postalCode" validate:"omitempty,min=3,max=20"`
	Country    string `json:"country" validate:"omitempty,min=2,max=100"`
}

func addressRulesOf(p domain.CandidatePatch) addressRules {
	return addressRules{
		Street:     deref(p.Street),
		City:       deref(p.City),
		State:      deref(p.State),
		PostalCode: deref(p.PostalCode),
		Country:    deref(p.Country),
	}
}

func errCandidateNotFound() *apperror.AppError {
	return apperror.NotFound("Candidate not found")
}

// storeError translates repository errors into client-facing ones. Anything
// unrecognized is returned as is so the error handler reports a 500.
func storeError(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return errCandidateNotFound()
	}
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		msg := "A record with these values already exists"
		if conflict.Field != "" {
			msg = fmt.Sprintf("A record with this %s already exists", conflict.Field)
		}
		appErr := apperror.Conflict(msg, conflict.Field)
		appErr.Err = err
		return appErr
	}
	return err
}
