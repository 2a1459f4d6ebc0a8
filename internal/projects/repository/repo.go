package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/argentech/argentech-backend/internal/projects/domain"
)

// Postgres error codes the repository reacts to.
const (
	codeForeignKeyViolation = "23503"
	codeNotNullViolation    = "23502"
)

// ProjectRepository provides persistence operations for projects and founders.
// It works with either the lib/pq or the pgx database/sql driver.
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const insertProjectQuery = `
INSERT INTO projects (name, description, industry, province, project_link)
VALUES ($1, nullif($2, ''), nullif($3, ''), $4, nullif($5, ''))
RETURNING id;
`

// InsertProject stores the project and returns the id assigned by the database.
func (r *ProjectRepository) InsertProject(ctx context.Context, d domain.ProjectDraft) (domain.ProjectID, error) {
	return insertProject(ctx, r.db, d)
}

func insertProject(ctx context.Context, q querier, d domain.ProjectDraft) (domain.ProjectID, error) {
	var id string
	err := q.QueryRowContext(ctx, insertProjectQuery,
		d.Name, d.Description, d.Industry, d.Province, d.ProjectLink,
	).Scan(&id)
	if err != nil {
		return "", describe(err)
	}
	return domain.ProjectID(id), nil
}

// InsertFounders stores all founders with one multi-row statement.
// Every founder must already carry its ProjectID.
func (r *ProjectRepository) InsertFounders(ctx context.Context, founders []domain.FounderDraft) error {
	return insertFounders(ctx, r.db, founders)
}

func insertFounders(ctx context.Context, q querier, founders []domain.FounderDraft) error {
	if len(founders) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO founders (project_id, name, contact, province) VALUES ")
	args := make([]any, 0, len(founders)*4)
	for i, f := range founders {
		if f.ProjectID == "" {
			return fmt.Errorf("founder %d has no project id", i)
		}
		if i > 0 {
			b.WriteString(", ")
		}
		n := i * 4
		fmt.Fprintf(&b, "($%d, $%d, nullif($%d, ''), nullif($%d, ''))", n+1, n+2, n+3, n+4)
		args = append(args, string(f.ProjectID), f.Name, f.Contact, f.Province)
	}
	b.WriteString(";")

	if _, err := q.ExecContext(ctx, b.String(), args...); err != nil {
		return describe(err)
	}
	return nil
}

// SubmitTx writes the project and its founders in one transaction. A founders
// failure rolls the project back, so no orphan is left behind.
func (r *ProjectRepository) SubmitTx(ctx context.Context, d domain.ProjectDraft, founders []domain.FounderDraft) (domain.ProjectID, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", &domain.PersistenceError{Phase: domain.PhaseProject, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	id, err := insertProject(ctx, tx, d)
	if err != nil {
		return "", &domain.PersistenceError{Phase: domain.PhaseProject, Err: err}
	}

	linked := make([]domain.FounderDraft, len(founders))
	for i, f := range founders {
		f.ProjectID = id
		linked[i] = f
	}
	if err := insertFounders(ctx, tx, linked); err != nil {
		return "", &domain.PersistenceError{Phase: domain.PhaseFounders, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return "", &domain.PersistenceError{Phase: domain.PhaseFounders, Err: err}
	}
	return id, nil
}

const listQuery = `
SELECT p.id, p.name, coalesce(p.description, ''), coalesce(p.industry, ''),
       p.province, coalesce(p.project_link, ''), p.created_at,
       f.name, coalesce(f.province, '')
FROM projects p
LEFT JOIN founders f ON f.project_id = p.id
ORDER BY p.created_at, p.id, f.id;
`

// ListWithFounders returns every project with the name and province of its
// founders, oldest first. Founder contacts are never read here.
func (r *ProjectRepository) ListWithFounders(ctx context.Context) ([]domain.Project, error) {
	rows, err := r.db.QueryContext(ctx, listQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 64)
	index := make(map[string]int)
	for rows.Next() {
		var (
			p           domain.Project
			id          string
			founderName sql.NullString
			founderProv string
		)
		if err := rows.Scan(&id, &p.Name, &p.Description, &p.Industry,
			&p.Province, &p.ProjectLink, &p.CreatedAt,
			&founderName, &founderProv); err != nil {
			return nil, err
		}

		i, seen := index[id]
		if !seen {
			p.ID = domain.ProjectID(id)
			p.Founders = []domain.Founder{}
			out = append(out, p)
			i = len(out) - 1
			index[id] = i
		}
		if founderName.Valid {
			out[i].Founders = append(out[i].Founders, domain.Founder{
				Name:     founderName.String,
				Province: founderProv,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

const listOrphansQuery = `
SELECT p.id, p.name, p.created_at
FROM projects p
WHERE p.created_at < $1
  AND NOT EXISTS (SELECT 1 FROM founders f WHERE f.project_id = p.id)
ORDER BY p.created_at;
`

// ListOrphans returns projects created before the cutoff that have no founders.
func (r *ProjectRepository) ListOrphans(ctx context.Context, createdBefore time.Time) ([]domain.OrphanProject, error) {
	rows, err := r.db.QueryContext(ctx, listOrphansQuery, createdBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OrphanProject
	for rows.Next() {
		var o domain.OrphanProject
		var id string
		if err := rows.Scan(&id, &o.Name, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.ID = domain.ProjectID(id)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteOrphan removes a project only while it still has no founders.
func (r *ProjectRepository) DeleteOrphan(ctx context.Context, id domain.ProjectID) (bool, error) {
	const q = `
DELETE FROM projects p
WHERE p.id = $1
  AND NOT EXISTS (SELECT 1 FROM founders f WHERE f.project_id = p.id);
`
	result, err := r.db.ExecContext(ctx, q, string(id))
	if err != nil {
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

// describe adds context to constraint violations from either driver.
func describe(err error) error {
	switch pgCode(err) {
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	case codeNotNullViolation:
		return fmt.Errorf("required column missing: %w", err)
	}
	return err
}

func pgCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
