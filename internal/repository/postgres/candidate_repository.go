package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-ats-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

type candidateRepository struct {
	db *pgxpool.Pool
}

func NewCandidateRepository(db *pgxpool.Pool) domain.CandidateRepository {
	return &candidateRepository{db: db}
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const candidateColumns = `
	id::text, first_name, last_name, email, phone,
	street, city, state, postal_code, country,
	cv_file_path, status, tags, created_at, updated_at`

func scanCandidate(row rowScanner) (*domain.Candidate, error) {
	var c domain.Candidate
	var tags []string
	err := row.Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.Street, &c.City, &c.State, &c.PostalCode, &c.Country,
		&c.CVFilePath, &c.Status, pq.Array(&tags), &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Tags = nonNil(tags)
	c.Education = []domain.Education{}
	c.Experience = []domain.Experience{}
	return &c, nil
}

func (r *candidateRepository) Create(ctx context.Context, c *domain.Candidate) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO candidates (
			id, first_name, last_name, email, phone,
			street, city, state, postal_code, country,
			cv_file_path, status, tags, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING created_at, updated_at`

	err = tx.QueryRow(ctx, query,
		c.ID, c.FirstName, c.LastName, c.Email, c.Phone,
		c.Street, c.City, c.State, c.PostalCode, c.Country,
		c.CVFilePath, c.Status, pq.Array(nonNil(c.Tags)),
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return writeError("insert candidate", err)
	}

	for i := range c.Education {
		e := &c.Education[i]
		e.CandidateID = c.ID
		_, err := tx.Exec(ctx, `
			INSERT INTO educations (
				id, candidate_id, institution, title, degree, field_of_study,
				start_date, end_date, description
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			e.ID, e.CandidateID, e.Institution, e.Title, e.Degree, e.FieldOfStudy,
			e.StartDate, e.EndDate, e.Description,
		)
		if err != nil {
			return writeError("insert education", err)
		}
	}

	for i := range c.Experience {
		x := &c.Experience[i]
		x.CandidateID = c.ID
		x.Achievements = nonNil(x.Achievements)
		x.Skills = nonNil(x.Skills)
		_, err := tx.Exec(ctx, `
			INSERT INTO experiences (
				id, candidate_id, company, position, location,
				start_date, end_date, current_job, description, achievements, skills
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			x.ID, x.CandidateID, x.Company, x.Position, x.Location,
			x.StartDate, x.EndDate, x.CurrentJob, x.Description,
			pq.Array(x.Achievements), pq.Array(x.Skills),
		)
		if err != nil {
			return writeError("insert experience", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return writeError("commit candidate", err)
	}
	return nil
}

func (r *candidateRepository) List(ctx context.Context) ([]domain.Candidate, error) {
	rows, err := r.db.Query(ctx, `SELECT `+candidateColumns+` FROM candidates ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	candidates := []domain.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		candidates = append(candidates, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	if len(candidates) == 0 {
		return candidates, nil
	}

	ids := make([]string, len(candidates))
	for i := range candidates {
		ids[i] = candidates[i].ID
	}
	education, err := r.educationByCandidate(ctx, ids)
	if err != nil {
		return nil, err
	}
	experience, err := r.experienceByCandidate(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		if e, ok := education[candidates[i].ID]; ok {
			candidates[i].Education = e
		}
		if x, ok := experience[candidates[i].ID]; ok {
			candidates[i].Experience = x
		}
	}
	return candidates, nil
}

func (r *candidateRepository) GetByID(ctx context.Context, id string) (*domain.Candidate, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}

	c, err := scanCandidate(r.db.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get candidate: %w", err)
	}

	ids := []string{c.ID}
	education, err := r.educationByCandidate(ctx, ids)
	if err != nil {
		return nil, err
	}
	experience, err := r.experienceByCandidate(ctx, ids)
	if err != nil {
		return nil, err
	}
	stages, err := r.stagesByCandidate(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if e, ok := education[c.ID]; ok {
		c.Education = e
	}
	if x, ok := experience[c.ID]; ok {
		c.Experience = x
	}
	c.RecruitmentStages = stages
	return c, nil
}

func (r *candidateRepository) Exists(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM candidates WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check candidate: %w", err)
	}
	return exists, nil
}

func (r *candidateRepository) Update(ctx context.Context, id string, p domain.CandidatePatch) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}

	query, args := buildUpdateQuery(id, p)
	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return writeError("update candidate", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// buildUpdateQuery renders an UPDATE touching only the columns present in the
// patch. Empty optional values are written as NULL. The id is always the last
// argument.
func buildUpdateQuery(id string, p domain.CandidatePatch) (string, []any) {
	var sets []string
	var args []any
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if p.FirstName != nil {
		set("first_name", *p.FirstName)
	}
	if p.LastName != nil {
		set("last_name", *p.LastName)
	}
	if p.Email != nil {
		set("email", *p.Email)
	}
	if p.Phone != nil {
		set("phone", *p.Phone)
	}
	if p.Street != nil {
		set("street", nullIfEmpty(*p.Street))
	}
	if p.City != nil {
		set("city", nullIfEmpty(*p.City))
	}
	if p.State != nil {
		set("state", nullIfEmpty(*p.State))
	}
	if p.PostalCode != nil {
		set("postal_code", nullIfEmpty(*p.PostalCode))
	}
	if p.Country != nil {
		set("country", nullIfEmpty(*p.Country))
	}
	if p.Status != nil {
		set("status", nullIfEmpty(*p.Status))
	}
	if p.Tags != nil {
		set("tags", pq.Array(nonNil(*p.Tags)))
	}
	if p.CVFilePath != nil {
		set("cv_file_path", *p.CVFilePath)
	}
	sets = append(sets, "updated_at = NOW()")

	args = append(args, id)
	return fmt.Sprintf("UPDATE candidates SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args)), args
}

func (r *candidateRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	// educations, experiences and recruitment_stages go with it (ON DELETE CASCADE)
	result, err := r.db.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete candidate: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *candidateRepository) educationByCandidate(ctx context.Context, ids []string) (map[string][]domain.Education, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id::text, candidate_id::text, institution, title, degree, field_of_study,
			start_date, end_date, description
		FROM educations
		WHERE candidate_id = ANY($1::uuid[])
		ORDER BY start_date ASC, id ASC`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("load education: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.Education)
	for rows.Next() {
		var e domain.Education
		if err := rows.Scan(
			&e.ID, &e.CandidateID, &e.Institution, &e.Title, &e.Degree, &e.FieldOfStudy,
			&e.StartDate, &e.EndDate, &e.Description,
		); err != nil {
			return nil, fmt.Errorf("scan education: %w", err)
		}
		out[e.CandidateID] = append(out[e.CandidateID], e)
	}
	return out, rows.Err()
}

func (r *candidateRepository) experienceByCandidate(ctx context.Context, ids []string) (map[string][]domain.Experience, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id::text, candidate_id::text, company, position, location,
			start_date, end_date, current_job, description, achievements, skills
		FROM experiences
		WHERE candidate_id = ANY($1::uuid[])
		ORDER BY start_date ASC, id ASC`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("load experience: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.Experience)
	for rows.Next() {
		var x domain.Experience
		var achievements, skills []string
		if err := rows.Scan(
			&x.ID, &x.CandidateID, &x.Company, &x.Position, &x.Location,
			&x.StartDate, &x.EndDate, &x.CurrentJob, &x.Description,
			pq.Array(&achievements), pq.Array(&skills),
		); err != nil {
			return nil, fmt.Errorf("scan experience: %w", err)
		}
		x.Achievements = nonNil(achievements)
		x.Skills = nonNil(skills)
		out[x.CandidateID] = append(out[x.CandidateID], x)
	}
	return out, rows.Err()
}

func (r *candidateRepository) stagesByCandidate(ctx context.Context, id string) ([]domain.RecruitmentStage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id::text, candidate_id::text, stage_name, notes, date, status, created_at, updated_at
		FROM recruitment_stages
		WHERE candidate_id = $1
		ORDER BY date ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("load recruitment stages: %w", err)
	}
	defer rows.Close()

	var stages []domain.RecruitmentStage
	for rows.Next() {
		var s domain.RecruitmentStage
		if err := rows.Scan(
			&s.ID, &s.CandidateID, &s.StageName, &s.Notes, &s.Date, &s.Status, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan recruitment stage: %w", err)
		}
		stages = append(stages, s)
	}
	return stages, rows.Err()
}

// writeError turns unique violations into domain.ConflictError and wraps
// everything else.
func writeError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &domain.ConflictError{Field: conflictField(pgErr.TableName, pgErr.ConstraintName), Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// conflictField derives the JSON field name from a constraint named
// <table>_<column>_key, e.g. candidates_email_key -> email.
func conflictField(table, constraint string) string {
	name := strings.TrimSuffix(constraint, "_key")
	if name == constraint {
		return ""
	}
	if table == "" {
		table = "candidates"
	}
	name = strings.TrimPrefix(name, table+"_")
	return snakeToCamel(name)
}

func snakeToCamel(s string) string {
	parts := strings.Split(s, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
