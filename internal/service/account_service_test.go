package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/ticket-tracker/internal/auth"
	"github.com/spec-kit/ticket-tracker/internal/config"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

type accountFixture struct {
	svc      *AccountService
	profiles *fakeProfileRepo
	roles    *fakeRoleRepo
	resolver *auth.RoleResolver
}

func newAccountFixture() *accountFixture {
	f := &accountFixture{
		profiles: newFakeProfileRepo(),
		roles:    &fakeRoleRepo{},
	}
	f.resolver = auth.NewRoleResolver(f.roles)
	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 5,
		BcryptCost:            bcrypt.MinCost,
	}}
	f.svc = NewAccountService(cfg, AccountDependencies{
		ProfileRepo: f.profiles,
		RoleRepo:    f.roles,
		Resolver:    f.resolver,
	})
	return f
}

func (f *accountFixture) register(t *testing.T, name, email string) *domain.Profile {
	t.Helper()
	profile, _, _, err := f.svc.Register(context.Background(), name, email, "s3cret")
	require.NoError(t, err)
	return profile
}

func TestRegisterDefaultsToUserRole(t *testing.T) {
	f := newAccountFixture()

	profile, token, expiresAt, err := f.svc.Register(context.Background(), "Pat Plain", "Pat@Example.com ", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.False(t, expiresAt.IsZero())
	assert.Equal(t, "pat@example.com", profile.Email)
	assert.NotEqual(t, "s3cret", profile.PasswordHash)

	role, err := f.svc.ResolveRole(context.Background(), profile.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, role, "registration writes no role record")
	assert.Empty(t, f.roles.assignments)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	f := newAccountFixture()
	f.register(t, "Pat Plain", "pat@example.com")

	_, _, _, err := f.svc.Register(context.Background(), "Other Pat", "pat@example.com", "s3cret")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestLogin(t *testing.T) {
	f := newAccountFixture()
	f.register(t, "Pat Plain", "pat@example.com")

	profile, token, _, err := f.svc.Login(context.Background(), "pat@example.com", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "Pat Plain", profile.Name)

	_, _, _, err = f.svc.Login(context.Background(), "pat@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))

	_, _, _, err = f.svc.Login(context.Background(), "nobody@example.com", "s3cret")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))
}

func TestAssignRoleTakesEffectOnNextLookup(t *testing.T) {
	f := newAccountFixture()
	profile := f.register(t, "Avery", "avery@example.com")

	require.NoError(t, f.svc.AssignRole(context.Background(), adminActor, profile.ID, domain.RoleAgent))
	role, err := f.resolver.Resolve(context.Background(), profile.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAgent, role)

	// Reassignment must replace the earlier record: the lookup takes the
	// earliest-created assignment, so a plain insert would leave the old
	// role winning forever.
	require.NoError(t, f.svc.AssignRole(context.Background(), adminActor, profile.ID, domain.RoleAdmin))
	role, err = f.resolver.Resolve(context.Background(), profile.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, role)
	assert.Len(t, f.roles.assignments, 1, "exactly one live assignment after reassignment")
}

func TestAssignRoleDemotionToUserLeavesNoRecord(t *testing.T) {
	f := newAccountFixture()
	profile := f.register(t, "Avery", "avery@example.com")
	require.NoError(t, f.svc.AssignRole(context.Background(), adminActor, profile.ID, domain.RoleAdmin))

	require.NoError(t, f.svc.AssignRole(context.Background(), adminActor, profile.ID, domain.RoleUser))
	assert.Empty(t, f.roles.assignments, "the default role needs no explicit record")

	role, err := f.resolver.Resolve(context.Background(), profile.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, role)
}

func TestAssignRoleAdminOnly(t *testing.T) {
	f := newAccountFixture()
	profile := f.register(t, "Avery", "avery@example.com")

	for _, actor := range []Actor{agentActor, plainActor} {
		err := f.svc.AssignRole(context.Background(), actor, profile.ID, domain.RoleAgent)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	}
	assert.Empty(t, f.roles.assignments)
}

func TestAssignRoleValidation(t *testing.T) {
	f := newAccountFixture()
	profile := f.register(t, "Avery", "avery@example.com")

	err := f.svc.AssignRole(context.Background(), adminActor, profile.ID, domain.Role("superuser"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "INVALID_INPUT"))

	err = f.svc.AssignRole(context.Background(), adminActor, "missing-user", domain.RoleAgent)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestCreateUserWithRole(t *testing.T) {
	f := newAccountFixture()

	profile, err := f.svc.CreateUser(context.Background(), adminActor, "Avery Agent", "avery@example.com", "s3cret", domain.RoleAgent)
	require.NoError(t, err)

	role, err := f.resolver.Resolve(context.Background(), profile.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAgent, role)
}

func TestCreateUserWithDefaultRoleWritesNoAssignment(t *testing.T) {
	f := newAccountFixture()

	profile, err := f.svc.CreateUser(context.Background(), adminActor, "Pat Plain", "pat@example.com", "s3cret", domain.RoleUser)
	require.NoError(t, err)
	assert.Empty(t, f.roles.assignments)

	role, err := f.resolver.Resolve(context.Background(), profile.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, role)
}

func TestCreateUserAdminOnly(t *testing.T) {
	f := newAccountFixture()

	_, err := f.svc.CreateUser(context.Background(), agentActor, "Nope", "nope@example.com", "s3cret", domain.RoleAgent)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	assert.Empty(t, f.profiles.profiles)
}

func TestUpdateProfile(t *testing.T) {
	f := newAccountFixture()
	profile := f.register(t, "Pat Plain", "pat@example.com")
	oldHash := profile.PasswordHash

	name := "Pat Renamed"
	password := "n3w-s3cret"
	updated, err := f.svc.UpdateProfile(context.Background(), profile.ID, UpdateProfileInput{
		DisplayName: &name,
		Password:    &password,
	})
	require.NoError(t, err)
	assert.Equal(t, "Pat Renamed", updated.Name)
	assert.NotEqual(t, oldHash, updated.PasswordHash)

	_, _, _, err = f.svc.Login(context.Background(), "pat@example.com", "n3w-s3cret")
	require.NoError(t, err)
}

func TestUpdateProfileRejectsBlankName(t *testing.T) {
	f := newAccountFixture()
	profile := f.register(t, "Pat Plain", "pat@example.com")

	blank := "   "
	_, err := f.svc.UpdateProfile(context.Background(), profile.ID, UpdateProfileInput{DisplayName: &blank})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "INVALID_INPUT"))
}

func TestListUsersResolvesEarliestAssignment(t *testing.T) {
	f := newAccountFixture()
	avery := f.register(t, "Avery", "avery@example.com")
	f.register(t, "Pat", "pat@example.com")
	require.NoError(t, f.svc.AssignRole(context.Background(), adminActor, avery.ID, domain.RoleAgent))

	users, err := f.svc.ListUsers(context.Background(), adminActor)
	require.NoError(t, err)
	require.Len(t, users, 2)

	byName := make(map[string]domain.Role, len(users))
	for _, user := range users {
		byName[user.Profile.Name] = user.Role
	}
	assert.Equal(t, domain.RoleAgent, byName["Avery"])
	assert.Equal(t, domain.RoleUser, byName["Pat"])

	_, err = f.svc.ListUsers(context.Background(), plainActor)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}
