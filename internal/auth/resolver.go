package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

// RoleResolver maps a principal to exactly one role. Absence of an explicit
// assignment means least privilege: the default role is `user`. This is a
// pure fallback, not cached state; a reassignment takes effect on the next
// lookup.
type RoleResolver struct {
	roles repository.RoleRepository
}

// NewRoleResolver constructs the resolver.
func NewRoleResolver(roles repository.RoleRepository) *RoleResolver {
	return &RoleResolver{roles: roles}
}

// Resolve returns the earliest-created role assignment for the user, or
// RoleUser when none exists. A store failure is surfaced as retryable; it
// never degrades to the default role.
func (r *RoleResolver) Resolve(ctx context.Context, userID string) (domain.Role, error) {
	assignment, err := r.roles.EarliestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.RoleUser, nil
		}
		return "", apperrors.NewStoreFailure(err)
	}
	if !domain.ValidRole(assignment.Role) {
		return domain.RoleUser, nil
	}
	return assignment.Role, nil
}
