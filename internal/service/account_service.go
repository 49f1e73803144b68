package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-tracker/internal/auth"
	"github.com/spec-kit/ticket-tracker/internal/config"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/permission"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

// AccountService coordinates registration, login, profile updates, and
// admin user management.
type AccountService struct {
	profiles   repository.ProfileRepository
	roles      repository.RoleRepository
	resolver   *auth.RoleResolver
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AccountDependencies encapsulates repo requirements for the account service.
type AccountDependencies struct {
	ProfileRepo repository.ProfileRepository
	RoleRepo    repository.RoleRepository
	Resolver    *auth.RoleResolver
}

// NewAccountService builds the service.
func NewAccountService(cfg config.Config, deps AccountDependencies) *AccountService {
	return &AccountService{
		profiles:   deps.ProfileRepo,
		roles:      deps.RoleRepo,
		resolver:   deps.Resolver,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// UserWithRole pairs a profile with its resolved role for directory views.
type UserWithRole struct {
	Profile domain.Profile
	Role    domain.Role
}

// Register creates a new account. New accounts carry no role assignment
// and therefore resolve to the default `user` role.
func (s *AccountService) Register(ctx context.Context, name, email, password string) (*domain.Profile, string, time.Time, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" || email == "" || password == "" {
		return nil, "", time.Time{}, apperrors.NewInvalidInput("name, email, password required", nil)
	}

	if _, err := s.profiles.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, apperrors.NewStoreFailure(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	profile := &domain.Profile{Name: name, Email: email, PasswordHash: hash}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, "", time.Time{}, apperrors.NewStoreFailure(err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(profile.ID, profile.Email, profile.Name)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return profile, token, exp, nil
}

// Login authenticates an account.
func (s *AccountService) Login(ctx context.Context, email, password string) (*domain.Profile, string, time.Time, error) {
	profile, err := s.profiles.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.NewStoreFailure(err)
	}
	if err := auth.ComparePassword(profile.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(profile.ID, profile.Email, profile.Name)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return profile, token, exp, nil
}

// UpdateProfileInput carries optional self-service updates.
type UpdateProfileInput struct {
	DisplayName *string
	Password    *string
}

// UpdateProfile updates the caller's own display name and/or password.
func (s *AccountService) UpdateProfile(ctx context.Context, actorID string, input UpdateProfileInput) (*domain.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("account", nil)
		}
		return nil, apperrors.NewStoreFailure(err)
	}

	if input.DisplayName != nil {
		name := strings.TrimSpace(*input.DisplayName)
		if name == "" {
			return nil, apperrors.NewInvalidInput("display name must not be empty", nil)
		}
		profile.Name = name
	}
	if input.Password != nil {
		if *input.Password == "" {
			return nil, apperrors.NewInvalidInput("password must not be empty", nil)
		}
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		profile.PasswordHash = hash
	}

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, apperrors.NewStoreFailure(err)
	}
	return profile, nil
}

// CreateUser creates an account on behalf of an admin, optionally with an
// explicit role.
func (s *AccountService) CreateUser(ctx context.Context, actor Actor, name, email, password string, role domain.Role) (*domain.Profile, error) {
	if !permission.CanAdministerUsers(actor.Role) {
		return nil, apperrors.NewForbidden("only admins can create users")
	}
	profile, _, _, err := s.Register(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	if role != "" && role != domain.RoleUser {
		if !domain.ValidRole(role) {
			return nil, apperrors.NewInvalidInput("unrecognized role", map[string]any{"role": role})
		}
		assignment := &domain.RoleAssignment{UserID: profile.ID, Role: role}
		if err := s.roles.Create(ctx, assignment); err != nil {
			// Account exists without its elevation; surface the failing step.
			return nil, apperrors.NewStoreFailure(err)
		}
	}
	return profile, nil
}

// AssignRole replaces a user's role assignment. Takes effect on the next
// role lookup; nothing is cached beyond request scope.
func (s *AccountService) AssignRole(ctx context.Context, actor Actor, userID string, role domain.Role) error {
	if !permission.CanAdministerUsers(actor.Role) {
		return apperrors.NewForbidden("only admins can assign roles")
	}
	if !domain.ValidRole(role) {
		return apperrors.NewInvalidInput("unrecognized role", map[string]any{"role": role})
	}
	if _, err := s.profiles.GetByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("account", map[string]any{"user_id": userID})
		}
		return apperrors.NewStoreFailure(err)
	}

	if err := s.roles.DeleteByUser(ctx, userID); err != nil {
		return apperrors.NewStoreFailure(err)
	}
	if role == domain.RoleUser {
		// The default role needs no explicit record.
		return nil
	}
	assignment := &domain.RoleAssignment{UserID: userID, Role: role}
	if err := s.roles.Create(ctx, assignment); err != nil {
		return apperrors.NewStoreFailure(err)
	}
	return nil
}

// ListUsers returns all profiles with their resolved roles. Admin only.
func (s *AccountService) ListUsers(ctx context.Context, actor Actor) ([]UserWithRole, error) {
	if !permission.CanAdministerUsers(actor.Role) {
		return nil, apperrors.NewForbidden("only admins can list users")
	}
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, apperrors.NewStoreFailure(err)
	}
	assignments, err := s.roles.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewStoreFailure(err)
	}

	// Earliest assignment per user wins, matching the resolver.
	earliest := make(map[string]domain.Role, len(assignments))
	for _, assignment := range assignments {
		if _, ok := earliest[assignment.UserID]; !ok {
			earliest[assignment.UserID] = assignment.Role
		}
	}

	result := make([]UserWithRole, 0, len(profiles))
	for _, profile := range profiles {
		role, ok := earliest[profile.ID]
		if !ok || !domain.ValidRole(role) {
			role = domain.RoleUser
		}
		result = append(result, UserWithRole{Profile: profile, Role: role})
	}
	return result, nil
}

// ListProfiles returns the member directory visible to any authenticated
// user.
func (s *AccountService) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, apperrors.NewStoreFailure(err)
	}
	return profiles, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AccountService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// ResolveRole resolves the current role for a user id.
func (s *AccountService) ResolveRole(ctx context.Context, userID string) (domain.Role, error) {
	return s.resolver.Resolve(ctx, userID)
}
