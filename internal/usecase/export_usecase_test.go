package usecase_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"strings"
	"testing"

	"go-ats-backend/internal/repository/memory"
	"go-ats-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func seededExport(t *testing.T) usecase.ExportUsecase {
	t.Helper()
	repo := memory.NewCandidateRepository()
	uc := usecase.NewCandidateUsecase(repo, nil, nil)
	_, err := uc.CreateCandidate(context.Background(), validPayload("ana@example.com"), strPtr("uploads/cv/1-2.pdf"))
	require.NoError(t, err)
	return usecase.NewExportUsecase(repo)
}

func TestExportCandidates_CSV(t *testing.T) {
	file, err := seededExport(t).ExportCandidates(context.Background(), "")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)

	records, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "id", records[0][0])
	assert.Equal(t, "createdAt", records[0][len(records[0])-1])

	row := records[1]
	assert.Equal(t, "Ana", row[1])
	assert.Equal(t, "ana@example.com", row[3])
	assert.Equal(t, "backend; go", row[11])
	assert.Equal(t, "uploads/cv/1-2.pdf", row[12])
	assert.Equal(t, "1", row[13])
	assert.Equal(t, "1", row[14])
}

func TestExportCandidates_XLSX(t *testing.T) {
	file, err := seededExport(t).ExportCandidates(context.Background(), "XLSX")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(file.Filename, ".xlsx"))

	f, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Candidates")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "firstName", rows[0][1])
	assert.Equal(t, "García", rows[1][2])
}

func TestExportCandidates_UnknownFormat(t *testing.T) {
	_, err := seededExport(t).ExportCandidates(context.Background(), "pdf")
	assert.Equal(t, http.StatusBadRequest, appErr(t, err).Code)
}

func TestExportCandidates_StoreFailure(t *testing.T) {
	mockRepo := new(MockCandidateRepo)
	mockRepo.On("List", mock.Anything).Return(nil, errors.New("boom"))

	_, err := usecase.NewExportUsecase(mockRepo).ExportCandidates(context.Background(), "csv")
	assert.EqualError(t, err, "boom")
}

func TestExportCandidates_EmptyStoreHasHeaderOnly(t *testing.T) {
	file, err := usecase.NewExportUsecase(memory.NewCandidateRepository()).ExportCandidates(context.Background(), "csv")
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
