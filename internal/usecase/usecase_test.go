package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"go-ats-backend/internal/domain"
	"go-ats-backend/internal/usecase"
	"go-ats-backend/pkg/apperror"
	"go-ats-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock Repositories
type MockCandidateRepo struct {
	mock.Mock
}

func (m *MockCandidateRepo) Create(ctx context.Context, c *domain.Candidate) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCandidateRepo) List(ctx context.Context) ([]domain.Candidate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Candidate), args.Error(1)
}

func (m *MockCandidateRepo) GetByID(ctx context.Context, id string) (*domain.Candidate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Candidate), args.Error(1)
}

func (m *MockCandidateRepo) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCandidateRepo) Update(ctx context.Context, id string, patch domain.CandidatePatch) error {
	return m.Called(ctx, id, patch).Error(0)
}

func (m *MockCandidateRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockFileRemover struct {
	mock.Mock
}

func (m *MockFileRemover) Delete(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func appErr(t *testing.T, err error) *apperror.AppError {
	t.Helper()
	var ae *apperror.AppError
	require.True(t, errors.As(err, &ae), "expected *apperror.AppError, got %T: %v", err, err)
	return ae
}

func strPtr(s string) *string { return &s }

func TestCreateCandidate_ValidationStopsBeforeStore(t *testing.T) {
	mockRepo := new(MockCandidateRepo)
	uc := usecase.NewCandidateUsecase(mockRepo, nil, validation.New())

	_, err := uc.CreateCandidate(context.Background(), domain.Payload{
		"firstName": "",
		"lastName":  "Doe",
		"email":     "not-an-email",
	}, nil)

	ae := appErr(t, err)
	assert.Equal(t, http.StatusBadRequest, ae.Code)
	assert.True(t, hasField(ae.Errors, "firstName"))
	assert.True(t, hasField(ae.Errors, "email"))
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateCandidate_ConflictNamesField(t *testing.T) {
	mockRepo := new(MockCandidateRepo)
	uc := usecase.NewCandidateUsecase(mockRepo, nil, nil)

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Candidate")).
		Return(&domain.ConflictError{Field: "email"})

	_, err := uc.CreateCandidate(context.Background(), validPayload("dup@example.com"), nil)

	ae := appErr(t, err)
	assert.Equal(t, http.StatusConflict, ae.Code)
	assert.Equal(t, "A record with this email already exists", ae.Message)
	require.Len(t, ae.Errors, 1)
	assert.Equal(t, "email", ae.Errors[0].Field)
	mockRepo.AssertExpectations(t)
}

func TestCreateCandidate_StoreFaultPassesThrough(t *testing.T) {
	mockRepo := new(MockCandidateRepo)
	uc := usecase.NewCandidateUsecase(mockRepo, nil, nil)

	boom := errors.New("connection reset")
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(boom)

	_, err := uc.CreateCandidate(context.Background(), validPayload("a@b.com"), nil)
	assert.ErrorIs(t, err, boom)

	var ae *apperror.AppError
	assert.False(t, errors.As(err, &ae))
}

func TestCreateCandidate_AssignsIDsAndCVPath(t *testing.T) {
	mockRepo := new(MockCandidateRepo)
	uc := usecase.NewCandidateUsecase(mockRepo, nil, nil)

	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Candidate) bool {
		return c.ID != "" && len(c.Education) == 1 && c.Education[0].ID != "" &&
			len(c.Experience) == 1 && c.Experience[0].ID != "" &&
			c.CVFilePath != nil && *c.CVFilePath == "uploads/cv/1-2.pdf"
	})).Return(nil)

	c, err := uc.CreateCandidate(context.Background(), validPayload("a@b.com"), strPtr("uploads/cv/1-2.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "Ana", c.FirstName)
	mockRepo.AssertExpectations(t)
}

func TestGetCandidate_NotFound(t *testing.T) {
	mockRepo := new(MockCandidateRepo)
	uc := usecase.NewCandidateUsecase(mockRepo, nil, nil)

	mockRepo.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrNotFound)

	_, err := uc.GetCandidate(context.Background(), "missing")
	ae := appErr(t, err)
	assert.Equal(t, http.StatusNotFound, ae.Code)
	assert.Equal(t, "Candidate not found", ae.Message)
}

func TestListCandidates_NeverNil(t *testing.T) {
	mockRepo := new(MockCandidateRepo)
	uc := usecase.NewCandidateUsecase(mockRepo, nil, nil)

	mockRepo.On("List", mock.Anything).Return(nil, nil)

	list, err := uc.ListCandidates(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestUpdateCandidate_ExistenceCheckedFirst(t *testing.T) {
	mockRepo := new(MockCandidateRepo)
	uc := usecase.NewCandidateUsecase(mockRepo, nil, nil)

	mockRepo.On("Exists", mock.Anything, "nope").Return(false, nil)

	// Invalid payload, but the missing candidate wins.
	_, err := uc.UpdateCandidate(context.Background(), "nope", domain.Payload{"email": "bad"}, nil)
	ae := appErr(t, err)
	assert.Equal(t, http.StatusNotFound, ae.Code)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateCandidate_OnlyProvidedFields(t *testing.T) {
	mockRepo := new(MockCandidateRepo)
	uc := usecase.NewCandidateUsecase(mockRepo, nil, nil)

	mockRepo.On("Exists", mock.Anything, "c1").Return(true, nil)
	mockRepo.On("Update", mock.Anything, "c1", mock.MatchedBy(func(p domain.CandidatePatch) bool {
		return p.FirstName == nil && p.Email == nil &&
			p.City != nil && *p.City == "Madrid" &&
			p.Tags != nil && len(*p.Tags) == 0 &&
			p.CVFilePath == nil
	})).Return(nil)
	mockRepo.On("GetByID", mock.Anything, "c1").Return(&domain.Candidate{ID: "c1"}, nil)

	_, err := uc.UpdateCandidate(context.Background(), "c1", domain.Payload{
		"city":      " Madrid ",
		"tags":      "[]",
		"education": "this is ignored on update",
	}, nil)
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestUpdateCandidate_EmptyPatchSkipsWrite(t *testing.T) {
	mockRepo := new(MockCandidateRepo)
	uc := usecase.NewCandidateUsecase(mockRepo, nil, nil)

	mockRepo.On("Exists", mock.Anything, "c1").Return(true, nil)
	mockRepo.On("GetByID", mock.Anything, "c1").Return(&domain.Candidate{ID: "c1"}, nil)

	_, err := uc.UpdateCandidate(context.Background(), "c1", domain.Payload{}, nil)
	require.NoError(t, err)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateCandidate_ValidatesProvidedFields(t *testing.T) {
	mockRepo := new(MockCandidateRepo)
	uc := usecase.NewCandidateUsecase(mockRepo, nil, nil)

	mockRepo.On("Exists", mock.Anything, "c1").Return(true, nil)

	_, err := uc.UpdateCandidate(context.Background(), "c1", domain.Payload{
		"firstName":  "",
		"email":      "nope",
		"postalCode": "1",
		"tags":       "[oops",
	}, nil)

	ae := appErr(t, err)
	assert.Equal(t, http.StatusBadRequest, ae.Code)
	for _, f := range []string{"firstName", "email", "postalCode", "tags"} {
		assert.True(t, hasField(ae.Errors, f), f)
	}
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateCandidate_NewCVRecorded(t *testing.T) {
	mockRepo := new(MockCandidateRepo)
	uc := usecase.NewCandidateUsecase(mockRepo, nil, nil)

	mockRepo.On("Exists", mock.Anything, "c1").Return(true, nil)
	mockRepo.On("Update", mock.Anything, "c1", mock.MatchedBy(func(p domain.CandidatePatch) bool {
		return p.CVFilePath != nil && *p.CVFilePath == "uploads/cv/new.pdf"
	})).Return(nil)
	mockRepo.On("GetByID", mock.Anything, "c1").Return(&domain.Candidate{ID: "c1", CVFilePath: strPtr("uploads/cv/new.pdf")}, nil)

	c, err := uc.UpdateCandidate(context.Background(), "c1", domain.Payload{}, strPtr("uploads/cv/new.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "uploads/cv/new.pdf", *c.CVFilePath)
}

func TestDeleteCandidate_RemovesStoredCV(t *testing.T) {
	mockRepo := new(MockCandidateRepo)
	files := new(MockFileRemover)
	uc := usecase.NewCandidateUsecase(mockRepo, files, nil)

	mockRepo.On("GetByID", mock.Anything, "c1").Return(&domain.Candidate{ID: "c1", CVFilePath: strPtr("uploads/cv/x.pdf")}, nil)
	mockRepo.On("Delete", mock.Anything, "c1").Return(nil)
	files.On("Delete", mock.Anything, "uploads/cv/x.pdf").Return(errors.New("already gone"))

	// File removal is best-effort.
	require.NoError(t, uc.DeleteCandidate(context.Background(), "c1"))
	mockRepo.AssertExpectations(t)
	files.AssertExpectations(t)
}

func TestDeleteCandidate_NotFound(t *testing.T) {
	mockRepo := new(MockCandidateRepo)
	files := new(MockFileRemover)
	uc := usecase.NewCandidateUsecase(mockRepo, files, nil)

	mockRepo.On("GetByID", mock.Anything, "c1").Return(nil, domain.ErrNotFound)

	err := uc.DeleteCandidate(context.Background(), "c1")
	assert.Equal(t, http.StatusNotFound, appErr(t, err).Code)
	mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	files.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func hasField(errs []apperror.FieldError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

// validPayload is a complete create request with one education and one
// experience entry, as a JSON client would send it.
func validPayload(email string) domain.Payload {
	return domain.Payload{
		"firstName":  "Ana",
		"lastName":   "García",
		"email":      email,
		"phone":      "+34 600 123 456",
		"street":     "Calle Mayor 1",
		"city":       "Madrid",
		"state":      "Madrid",
		"postalCode": "28013",
		"country":    "España",
		"status":     "Nuevo",
		"tags":       []any{"backend", "go"},
		"education": []any{
			map[string]any{
				"institution":  "Universidad Complutense",
				"title":        "Ingeniería Informática",
				"degree":       "Grado",
				"fieldOfStudy": "Computación",
				"startDate":    "2012-09-01",
				"endDate":      "2016-06-30",
				"description":  "Especialidad en sistemas",
			},
		},
		"experience": []any{
			map[string]any{
				"company":      "Acme",
				"position":     "Backend Developer",
				"location":     "Remote",
				"startDate":    "2016-09-01",
				"endDate":      "2020-12-31",
				"currentJob":   false,
				"description":  "Built and operated payment APIs.",
				"achievements": []any{"Cut p99 latency by half"},
				"skills":       []any{"Go", "PostgreSQL"},
			},
		},
	}
}
