package usecase_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"go-ats-backend/internal/domain"
	"go-ats-backend/internal/repository/memory"
	"go-ats-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryUsecase() (domain.CandidateUsecase, *memory.CandidateRepository) {
	repo := memory.NewCandidateRepository()
	return usecase.NewCandidateUsecase(repo, nil, nil), repo
}

func TestCreateThenGet_RoundTrips(t *testing.T) {
	uc, _ := newMemoryUsecase()
	ctx := context.Background()

	created, err := uc.CreateCandidate(ctx, validPayload("ana@example.com"), nil)
	require.NoError(t, err)

	got, err := uc.GetCandidate(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, "Ana", got.FirstName)
	assert.Equal(t, "García", got.LastName)
	assert.Equal(t, "ana@example.com", got.Email)
	assert.Equal(t, "+34 600 123 456", got.Phone)
	assert.Equal(t, "Madrid", *got.City)
	assert.Equal(t, "Nuevo", *got.Status)
	assert.Equal(t, []string{"backend", "go"}, got.Tags)
	assert.Nil(t, got.CVFilePath)

	require.Len(t, got.Education, 1)
	assert.Equal(t, created.ID, got.Education[0].CandidateID)
	assert.Equal(t, "Universidad Complutense", got.Education[0].Institution)
	assert.Equal(t, 2012, got.Education[0].StartDate.Year())

	require.Len(t, got.Experience, 1)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, got.Experience[0].Skills)
	assert.False(t, got.Experience[0].CurrentJob)
}

func TestCreate_JSONStringsEqualNativeArrays(t *testing.T) {
	uc, _ := newMemoryUsecase()
	ctx := context.Background()

	native := validPayload("native@example.com")

	stringified := validPayload("stringified@example.com")
	for _, key := range []string{"tags", "education", "experience"} {
		encoded, err := json.Marshal(stringified[key])
		require.NoError(t, err)
		stringified[key] = string(encoded)
	}

	a, err := uc.CreateCandidate(ctx, native, nil)
	require.NoError(t, err)
	b, err := uc.CreateCandidate(ctx, stringified, nil)
	require.NoError(t, err)

	assert.Equal(t, a.Tags, b.Tags)
	require.Len(t, b.Education, len(a.Education))
	require.Len(t, b.Experience, len(a.Experience))

	stripIDs := func(c *domain.Candidate) {
		for i := range c.Education {
			c.Education[i].ID, c.Education[i].CandidateID = "", ""
		}
		for i := range c.Experience {
			c.Experience[i].ID, c.Experience[i].CandidateID = "", ""
		}
	}
	stripIDs(a)
	stripIDs(b)
	assert.Equal(t, a.Education, b.Education)
	assert.Equal(t, a.Experience, b.Experience)
}

func TestCreate_DuplicateEmailConflicts(t *testing.T) {
	uc, repo := newMemoryUsecase()
	ctx := context.Background()

	_, err := uc.CreateCandidate(ctx, validPayload("a@b.com"), nil)
	require.NoError(t, err)

	_, err = uc.CreateCandidate(ctx, validPayload("a@b.com"), nil)
	ae := appErr(t, err)
	assert.Equal(t, http.StatusConflict, ae.Code)
	assert.True(t, hasField(ae.Errors, "email"))

	candidates, _, _ := repo.Counts()
	assert.Equal(t, 1, candidates)
}

func TestDelete_CascadesNestedRows(t *testing.T) {
	uc, repo := newMemoryUsecase()
	ctx := context.Background()

	created, err := uc.CreateCandidate(ctx, validPayload("a@b.com"), nil)
	require.NoError(t, err)

	_, education, experience := repo.Counts()
	assert.Equal(t, 1, education)
	assert.Equal(t, 1, experience)

	require.NoError(t, uc.DeleteCandidate(ctx, created.ID))

	candidates, education, experience := repo.Counts()
	assert.Zero(t, candidates)
	assert.Zero(t, education)
	assert.Zero(t, experience)

	_, err = uc.GetCandidate(ctx, created.ID)
	assert.Equal(t, http.StatusNotFound, appErr(t, err).Code)
}

func TestUpdate_NeverTouchesNestedCollections(t *testing.T) {
	uc, _ := newMemoryUsecase()
	ctx := context.Background()

	created, err := uc.CreateCandidate(ctx, validPayload("a@b.com"), nil)
	require.NoError(t, err)

	updated, err := uc.UpdateCandidate(ctx, created.ID, domain.Payload{
		"firstName":  "Lucía",
		"education":  []any{},
		"experience": `[{"company":"Other","position":"CTO"}]`,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Lucía", updated.FirstName)
	assert.Equal(t, created.Education, updated.Education)
	assert.Equal(t, created.Experience, updated.Experience)
}

func TestUpdate_TagsOmittedVersusEmpty(t *testing.T) {
	uc, _ := newMemoryUsecase()
	ctx := context.Background()

	created, err := uc.CreateCandidate(ctx, validPayload("a@b.com"), nil)
	require.NoError(t, err)

	kept, err := uc.UpdateCandidate(ctx, created.ID, domain.Payload{"status": "Contactado"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"backend", "go"}, kept.Tags)
	assert.Equal(t, "Contactado", *kept.Status)

	cleared, err := uc.UpdateCandidate(ctx, created.ID, domain.Payload{"tags": []any{}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{}, cleared.Tags)
}

func TestUpdate_EmptyOptionalFieldClears(t *testing.T) {
	uc, _ := newMemoryUsecase()
	ctx := context.Background()

	created, err := uc.CreateCandidate(ctx, validPayload("a@b.com"), nil)
	require.NoError(t, err)

	updated, err := uc.UpdateCandidate(ctx, created.ID, domain.Payload{"city": ""}, nil)
	require.NoError(t, err)
	assert.Nil(t, updated.City)
	assert.Equal(t, "Madrid", *updated.State)
}

func TestUpdate_EmptyAddressFieldsAccepted(t *testing.T) {
	tests := []struct {
		field string
		value func(*domain.Candidate) *string
	}{
		{"street", func(c *domain.Candidate) *string { return c.Street }},
		{"city", func(c *domain.Candidate) *string { return c.City }},
		{"state", func(c *domain.Candidate) *string { return c.State }},
		{"postalCode", func(c *domain.Candidate) *string { return c.PostalCode }},
		{"country", func(c *domain.Candidate) *string { return c.Country }},
		{"status", func(c *domain.Candidate) *string { return c.Status }},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			uc, _ := newMemoryUsecase()
			ctx := context.Background()

			created, err := uc.CreateCandidate(ctx, validPayload("a@b.com"), nil)
			require.NoError(t, err)

			updated, err := uc.UpdateCandidate(ctx, created.ID, domain.Payload{tt.field: ""}, nil)
			require.NoError(t, err)
			assert.Nil(t, tt.value(updated))
		})
	}
}

func TestUpdate_ShortAddressFieldsRejected(t *testing.T) {
	uc, _ := newMemoryUsecase()
	ctx := context.Background()

	created, err := uc.CreateCandidate(ctx, validPayload("a@b.com"), nil)
	require.NoError(t, err)

	_, err = uc.UpdateCandidate(ctx, created.ID, domain.Payload{
		"street":     "x",
		"city":       "y",
		"postalCode": "12",
		"country":    "",
	}, nil)
	ae := appErr(t, err)
	assert.Equal(t, http.StatusBadRequest, ae.Code)
	assert.Len(t, ae.Errors, 3)
	for _, f := range []string{"street", "city", "postalCode"} {
		assert.True(t, hasField(ae.Errors, f), f)
	}
}

func TestUpdate_DuplicateEmailConflicts(t *testing.T) {
	uc, _ := newMemoryUsecase()
	ctx := context.Background()

	_, err := uc.CreateCandidate(ctx, validPayload("first@example.com"), nil)
	require.NoError(t, err)
	second, err := uc.CreateCandidate(ctx, validPayload("second@example.com"), nil)
	require.NoError(t, err)

	_, err = uc.UpdateCandidate(ctx, second.ID, domain.Payload{"email": "first@example.com"}, nil)
	assert.Equal(t, http.StatusConflict, appErr(t, err).Code)
}

func TestCreate_CurrentJobCoercion(t *testing.T) {
	tests := []struct {
		raw  any
		want bool
	}{
		{true, true},
		{false, false},
		{"true", true},
		{"false", false},
		{"TRUE", true},
	}

	for _, tt := range tests {
		uc, _ := newMemoryUsecase()
		p := validPayload("a@b.com")
		p["experience"].([]any)[0].(map[string]any)["currentJob"] = tt.raw

		c, err := uc.CreateCandidate(context.Background(), p, nil)
		require.NoError(t, err, "%v", tt.raw)
		assert.Equal(t, tt.want, c.Experience[0].CurrentJob, "%v", tt.raw)
	}

	uc, repo := newMemoryUsecase()
	p := validPayload("a@b.com")
	p["experience"].([]any)[0].(map[string]any)["currentJob"] = "yes"

	_, err := uc.CreateCandidate(context.Background(), p, nil)
	ae := appErr(t, err)
	assert.True(t, hasField(ae.Errors, "experience[0].currentJob"))
	candidates, _, _ := repo.Counts()
	assert.Zero(t, candidates)
}

func TestCreate_InvalidJSONStringIsValidationError(t *testing.T) {
	uc, _ := newMemoryUsecase()

	p := validPayload("a@b.com")
	p["education"] = `[{"institution": "Broken"`

	_, err := uc.CreateCandidate(context.Background(), p, nil)
	ae := appErr(t, err)
	assert.Equal(t, http.StatusBadRequest, ae.Code)
	require.True(t, hasField(ae.Errors, "education"))
	for _, e := range ae.Errors {
		if e.Field == "education" {
			assert.Contains(t, e.Message, "JSON-encoded array")
		}
	}
}

func TestCreate_NestedErrorsCarryIndexedPaths(t *testing.T) {
	uc, _ := newMemoryUsecase()

	p := validPayload("a@b.com")
	p["education"] = []any{
		map[string]any{"institution": "X", "title": "Ok title", "startDate": "2020-01-01", "endDate": "soon"},
	}
	p["experience"] = []any{
		map[string]any{"company": "Acme", "position": "Dev", "startDate": "2020-01-01", "endDate": "2021-01-01", "description": "short", "skills": "[1]"},
	}

	_, err := uc.CreateCandidate(context.Background(), p, nil)
	ae := appErr(t, err)
	for _, f := range []string{
		"education[0].institution",
		"education[0].endDate",
		"experience[0].description",
		"experience[0].skills[0]",
	} {
		assert.True(t, hasField(ae.Errors, f), f)
	}
}

func TestCreate_MissingNestedArraysRejected(t *testing.T) {
	uc, _ := newMemoryUsecase()

	p := validPayload("a@b.com")
	delete(p, "education")
	delete(p, "experience")

	_, err := uc.CreateCandidate(context.Background(), p, nil)
	ae := appErr(t, err)
	assert.True(t, hasField(ae.Errors, "education"))
	assert.True(t, hasField(ae.Errors, "experience"))
}

func TestCreate_EmptyNestedArraysAllowed(t *testing.T) {
	uc, _ := newMemoryUsecase()

	p := validPayload("a@b.com")
	p["education"] = "[]"
	p["experience"] = []any{}
	delete(p, "tags")

	c, err := uc.CreateCandidate(context.Background(), p, nil)
	require.NoError(t, err)
	assert.Empty(t, c.Education)
	assert.Empty(t, c.Experience)
	assert.Equal(t, []string{}, c.Tags)
}

func TestCreate_ExampleScenario(t *testing.T) {
	uc, repo := newMemoryUsecase()

	_, err := uc.CreateCandidate(context.Background(), domain.Payload{
		"firstName": "",
		"lastName":  "Doe",
		"email":     "not-an-email",
	}, nil)

	ae := appErr(t, err)
	assert.Equal(t, http.StatusBadRequest, ae.Code)

	var firstNameRequired, emailInvalid bool
	for _, e := range ae.Errors {
		if e.Field == "firstName" && e.Message == "firstName is required" {
			firstNameRequired = true
		}
		if e.Field == "email" && e.Message == "email must be a valid email" {
			emailInvalid = true
		}
	}
	assert.True(t, firstNameRequired)
	assert.True(t, emailInvalid)

	candidates, _, _ := repo.Counts()
	assert.Zero(t, candidates)
}

func TestCreate_RecruitmentStagesShownOnGet(t *testing.T) {
	uc, repo := newMemoryUsecase()
	ctx := context.Background()

	c, err := uc.CreateCandidate(ctx, validPayload("a@b.com"), nil)
	require.NoError(t, err)
	require.NoError(t, repo.AddStage(c.ID, domain.RecruitmentStage{ID: "s1", StageName: "Screening", Status: "done"}))

	got, err := uc.GetCandidate(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got.RecruitmentStages, 1)
	assert.Equal(t, "Screening", got.RecruitmentStages[0].StageName)

	list, err := uc.ListCandidates(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].RecruitmentStages)
}
