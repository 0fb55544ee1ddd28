package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/locvowork/ltxbench/internal/domain"
	"github.com/locvowork/ltxbench/internal/repository/builder"
)

type projectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new instance of ProjectRepository
func NewProjectRepository(db *sql.DB) domain.ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) CreateOrganization(ctx context.Context, o *domain.Organization) error {
	query, args := builder.NewSQLBuilder().
		Insert("organization", "name").
		Values(o.Name).
		Returning("id", "created_at").
		Build()

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&o.ID, &o.CreatedAt); err != nil {
		return fmt.Errorf("failed to create organization %q: %w", o.Name, err)
	}
	return nil
}

func (r *projectRepository) ListOrganizations(ctx context.Context) ([]domain.Organization, error) {
	query, args := builder.NewSQLBuilder().
		Select("id", "name", "created_at").
		From("organization").
		OrderBy("name ASC").
		Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []domain.Organization
	for rows.Next() {
		var o domain.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.CreatedAt); err != nil {
			return nil, err
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}

func (r *projectRepository) CreateProject(ctx context.Context, p *domain.Project) error {
	query, args := builder.NewSQLBuilder().
		Insert("project", "name", "description", "organization_id").
		Values(p.Name, p.Description, p.OrganizationID).
		Returning("id", "created_at", "updated_at").
		Build()

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create project %q: %w", p.Name, err)
	}
	return nil
}

func (r *projectRepository) GetProject(ctx context.Context, id int64) (*domain.Project, error) {
	query, args := builder.NewSQLBuilder().
		Select("id", "name", "description", "organization_id", "created_at", "updated_at").
		From("project").
		Where("id = ?", id).
		Build()

	var p domain.Project
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&p.ID, &p.Name, &p.Description, &p.OrganizationID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project %d: %w", id, err)
	}
	return &p, nil
}

func (r *projectRepository) ListProjects(ctx context.Context, organizationID int64) ([]domain.Project, error) {
	query, args := builder.NewSQLBuilder().
		Select("id", "name", "description", "organization_id", "created_at", "updated_at").
		From("project").
		Where("organization_id = ?", organizationID).
		OrderBy("updated_at DESC").
		Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.OrganizationID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
