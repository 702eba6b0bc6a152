package postgres

import (
	"errors"
	"testing"

	"go-ats-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConflictField(t *testing.T) {
	tests := []struct {
		table, constraint, want string
	}{
		{"candidates", "candidates_email_key", "email"},
		{"", "candidates_email_key", "email"},
		{"candidates", "candidates_postal_code_key", "postalCode"},
		{"candidates", "candidates_pkey", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, conflictField(tt.table, tt.constraint), tt.constraint)
	}
}

func TestSnakeToCamel(t *testing.T) {
	assert.Equal(t, "email", snakeToCamel("email"))
	assert.Equal(t, "cvFilePath", snakeToCamel("cv_file_path"))
}

func TestWriteError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", TableName: "candidates", ConstraintName: "candidates_email_key"}

	var conflict *domain.ConflictError
	require.True(t, errors.As(writeError("create candidate", pgErr), &conflict))
	assert.Equal(t, "email", conflict.Field)
	assert.ErrorIs(t, conflict, pgErr)

	other := writeError("create candidate", errors.New("connection reset"))
	assert.EqualError(t, other, "create candidate: connection reset")
	assert.False(t, errors.As(other, &conflict))
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	assert.Equal(t, "Madrid", *nullIfEmpty("Madrid"))
}

func TestBuildUpdateQuery(t *testing.T) {
	str := func(s string) *string { return &s }
	const id = "0b6c6c1e-3f1a-4a56-9a55-3c8b1f8c4d21"

	tests := []struct {
		name      string
		patch     domain.CandidatePatch
		wantQuery string
		wantArgs  []any
	}{
		{
			name:      "only timestamp",
			patch:     domain.CandidatePatch{},
			wantQuery: "UPDATE candidates SET updated_at = NOW() WHERE id = $1",
			wantArgs:  []any{id},
		},
		{
			name:      "required fields keep their values",
			patch:     domain.CandidatePatch{FirstName: str("Ana"), Email: str("ana@example.com")},
			wantQuery: "UPDATE candidates SET first_name = $1, email = $2, updated_at = NOW() WHERE id = $3",
			wantArgs:  []any{"Ana", "ana@example.com", id},
		},
		{
			name:      "empty optional values become NULL",
			patch:     domain.CandidatePatch{City: str(""), Country: str("Spain"), Status: str("")},
			wantQuery: "UPDATE candidates SET city = $1, country = $2, status = $3, updated_at = NOW() WHERE id = $4",
			wantArgs:  []any{(*string)(nil), str("Spain"), (*string)(nil), id},
		},
		{
			name: "tags and cv path",
			patch: domain.CandidatePatch{
				Phone:      str("+34 600 000 000"),
				Tags:       &[]string{},
				CVFilePath: str("uploads/cv/1-2.pdf"),
			},
			wantQuery: "UPDATE candidates SET phone = $1, tags = $2, cv_file_path = $3, updated_at = NOW() WHERE id = $4",
			wantArgs:  []any{"+34 600 000 000", pq.Array([]string{}), "uploads/cv/1-2.pdf", id},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildUpdateQuery(id, tt.patch)
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
