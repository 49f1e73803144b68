package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// RoleRepository stores explicit role assignments.
type RoleRepository interface {
	Create(ctx context.Context, assignment *domain.RoleAssignment) error
	// EarliestByUser returns the earliest-created assignment for the user,
	// or pgx.ErrNoRows when none exists.
	EarliestByUser(ctx context.Context, userID string) (*domain.RoleAssignment, error)
	ListAll(ctx context.Context) ([]domain.RoleAssignment, error)
	// DeleteByUser removes all assignments for the user. Reassignment is
	// delete-then-create so the earliest-wins lookup sees the new role.
	DeleteByUser(ctx context.Context, userID string) error
}

type roleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository builds repository.
func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &roleRepository{pool: pool}
}

func (r *roleRepository) Create(ctx context.Context, assignment *domain.RoleAssignment) error {
	const query = `
        INSERT INTO user_roles (user_id, role)
        VALUES ($1,$2)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		assignment.UserID,
		assignment.Role,
	).Scan(&assignment.ID, &assignment.CreatedAt)
}

func (r *roleRepository) EarliestByUser(ctx context.Context, userID string) (*domain.RoleAssignment, error) {
	const query = `
        SELECT id, user_id, role, created_at
        FROM user_roles WHERE user_id=$1
        ORDER BY created_at ASC LIMIT 1`
	var assignment domain.RoleAssignment
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&assignment.ID,
		&assignment.UserID,
		&assignment.Role,
		&assignment.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *roleRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_roles WHERE user_id=$1`, userID)
	return err
}

func (r *roleRepository) ListAll(ctx context.Context) ([]domain.RoleAssignment, error) {
	const query = `
        SELECT id, user_id, role, created_at
        FROM user_roles ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RoleAssignment
	for rows.Next() {
		var assignment domain.RoleAssignment
		if err := rows.Scan(
			&assignment.ID,
			&assignment.UserID,
			&assignment.Role,
			&assignment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, assignment)
	}
	return result, rows.Err()
}
