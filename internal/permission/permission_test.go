package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

func TestCanManage(t *testing.T) {
	cases := []struct {
		name     string
		role     domain.Role
		isAuthor bool
		want     bool
	}{
		{"admin on own ticket", domain.RoleAdmin, true, true},
		{"admin on foreign ticket", domain.RoleAdmin, false, true},
		{"agent on own ticket", domain.RoleAgent, true, true},
		{"agent on foreign ticket", domain.RoleAgent, false, true},
		{"user on own ticket", domain.RoleUser, true, true},
		{"user on foreign ticket", domain.RoleUser, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			authorID := "author-1"
			actingID := "someone-else"
			if tc.isAuthor {
				actingID = authorID
			}
			assert.Equal(t, tc.want, CanManage(tc.role, actingID, authorID))
		})
	}
}

func TestCanManageEmptyActingUser(t *testing.T) {
	// An unauthenticated principal never matches authorship, even against a
	// ticket whose author id is also empty.
	assert.False(t, CanManage(domain.RoleUser, "", ""))
}

func TestForAdminOnly(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleAgent, domain.RoleUser} {
		actions := For(role, "u-1", "u-2")
		isAdmin := role == domain.RoleAdmin
		assert.Equal(t, isAdmin, actions.CanDelete, "CanDelete for %s", role)
		assert.Equal(t, isAdmin, actions.CanCreateUser, "CanCreateUser for %s", role)
		assert.Equal(t, isAdmin, actions.CanAssignRole, "CanAssignRole for %s", role)
	}
}

func TestCanCommentIsUnconditional(t *testing.T) {
	// Collaboration features are open to any authenticated principal; only
	// ticket metadata control is restricted.
	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleAgent, domain.RoleUser} {
		assert.True(t, For(role, "u-1", "u-2").CanComment)
	}
}
