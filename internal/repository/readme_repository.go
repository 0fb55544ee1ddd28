package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/locvowork/ltxbench/internal/domain"
	"github.com/locvowork/ltxbench/internal/repository/builder"
)

var readmeColumns = []string{
	"id", "title", "readme_text", "score_type", "eval_type", "pre_eval_context",
	"content_type", "status_ind", "default_ind", "custom_ind", "created_at", "modified_at",
}

type readmeRepository struct {
	db *sql.DB
}

// NewReadmeRepository creates a new instance of ReadmeRepository
func NewReadmeRepository(db *sql.DB) domain.ReadmeRepository {
	return &readmeRepository{db: db}
}

func (r *readmeRepository) Create(ctx context.Context, ri *domain.ReadmeInstruction) error {
	if ri.Status == "" {
		ri.Status = domain.StatusActive
	}
	query, args := builder.NewSQLBuilder().
		Insert("readme_instruction", "title", "readme_text", "score_type", "eval_type",
			"pre_eval_context", "content_type", "status_ind", "default_ind", "custom_ind").
		Values(ri.Title, ri.Text, ri.ScoreType, ri.EvalType,
			ri.PreEvalContext, ri.ContentType, ri.Status, ri.DefaultInd, ri.CustomInd).
		Returning("id", "created_at", "modified_at").
		Build()

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&ri.ID, &ri.CreatedAt, &ri.ModifiedAt); err != nil {
		return fmt.Errorf("failed to create readme: %w", err)
	}
	return nil
}

func (r *readmeRepository) GetByID(ctx context.Context, id int64) (*domain.ReadmeInstruction, error) {
	query, args := builder.NewSQLBuilder().
		Select(readmeColumns...).
		From("readme_instruction").
		Where("id = ?", id).
		Build()

	ri, err := scanReadme(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get readme %d: %w", id, err)
	}
	return ri, nil
}

func (r *readmeRepository) Update(ctx context.Context, ri *domain.ReadmeInstruction) error {
	query, args := builder.NewSQLBuilder().
		Update("readme_instruction").
		Set("title", ri.Title).
		Set("readme_text", ri.Text).
		Set("score_type", ri.ScoreType).
		Set("eval_type", ri.EvalType).
		Set("pre_eval_context", ri.PreEvalContext).
		Set("content_type", ri.ContentType).
		Set("status_ind", ri.Status).
		Set("modified_at", time.Now().UTC()).
		Where("id = ?", ri.ID).
		Returning("modified_at").
		Build()

	err := r.db.QueryRowContext(ctx, query, args...).Scan(&ri.ModifiedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update readme %d: %w", ri.ID, err)
	}
	return nil
}

func (r *readmeRepository) Delete(ctx context.Context, id int64) error {
	query, args := builder.NewSQLBuilder().
		Delete("readme_instruction").
		Where("id = ?", id).
		Build()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete readme %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *readmeRepository) List(ctx context.Context, filter domain.ReadmeFilter) ([]domain.ReadmeInstruction, error) {
	b := builder.NewSQLBuilder()
	b.Select(readmeColumns...).
		From("readme_instruction").
		OrderBy("default_ind DESC").
		OrderBy("title ASC")

	if filter.ActiveOnly {
		b.Where("status_ind = ?", domain.StatusActive)
	}
	if filter.Limit > 0 {
		b.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		b.Offset(filter.Offset)
	}

	query, args := b.Build()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readmes []domain.ReadmeInstruction
	for rows.Next() {
		ri, err := scanReadme(rows)
		if err != nil {
			return nil, err
		}
		readmes = append(readmes, *ri)
	}
	return readmes, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReadme(row rowScanner) (*domain.ReadmeInstruction, error) {
	var ri domain.ReadmeInstruction
	err := row.Scan(&ri.ID, &ri.Title, &ri.Text, &ri.ScoreType, &ri.EvalType, &ri.PreEvalContext,
		&ri.ContentType, &ri.Status, &ri.DefaultInd, &ri.CustomInd, &ri.CreatedAt, &ri.ModifiedAt)
	if err != nil {
		return nil, err
	}
	return &ri, nil
}
