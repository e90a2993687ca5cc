package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itops-lab/helpdesk/internal/config"
	"github.com/itops-lab/helpdesk/internal/domain"
)

var testAuthConfig = config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 30, BcryptCost: 4}

func newStaffFixture() (*StaffService, *AuthService, *memAdminUserRepo) {
	users := &memAdminUserRepo{users: map[string]domain.AdminUser{}}
	teams := &memTeamRepo{teams: map[string]domain.SupportTeam{
		"team-net": {ID: "team-net", Name: "Network", IsActive: true},
	}}
	staff := NewStaffService(testAuthConfig, StaffDependencies{AdminUserRepo: users, TeamRepo: teams})
	authSvc := NewAuthService(testAuthConfig, AuthDependencies{AdminUserRepo: users})
	return staff, authSvc, users
}

func TestStaffCreate_AndLogin(t *testing.T) {
	staff, authSvc, _ := newStaffFixture()
	ctx := context.Background()

	user, err := staff.Create(ctx, StaffInput{
		Name: " Mali ", Email: "mali@corp.example", Password: "s3cure-pass",
		Role: domain.StaffRoleAgent, TeamID: ptr("team-net"), IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Mali", user.Name)
	assert.NotEqual(t, "s3cure-pass", user.PasswordHash)

	res, err := authSvc.Login(ctx, "mali@corp.example", "s3cure-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, user.ID, res.User.ID)

	claims, err := authSvc.TokenManager().ParseToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.StaffRoleAgent, claims.Role)
}

func TestStaffCreate_Rejections(t *testing.T) {
	staff, _, _ := newStaffFixture()
	ctx := context.Background()

	_, err := staff.Create(ctx, StaffInput{Name: "a", Email: "a@x", Password: "longenough", Role: "ROOT"})
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))

	_, err = staff.Create(ctx, StaffInput{Name: "a", Email: "a@x", Password: "longenough", Role: domain.StaffRoleAgent, TeamID: ptr("team-x")})
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))

	_, err = staff.Create(ctx, StaffInput{Name: "a", Email: "a@x", Password: "short", Role: domain.StaffRoleAgent})
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))

	_, err = staff.Create(ctx, StaffInput{Name: "a", Email: "a@x", Password: "longenough", Role: domain.StaffRoleAgent, IsActive: true})
	require.NoError(t, err)
	_, err = staff.Create(ctx, StaffInput{Name: "b", Email: "a@x", Password: "longenough", Role: domain.StaffRoleAdmin})
	assert.Equal(t, "CONFLICT", errorCode(t, err))
}

func TestLogin_UniformFailures(t *testing.T) {
	staff, authSvc, _ := newStaffFixture()
	ctx := context.Background()

	_, err := staff.Create(ctx, StaffInput{Name: "on", Email: "on@x", Password: "password-1", Role: domain.StaffRoleAgent, IsActive: true})
	require.NoError(t, err)
	_, err = staff.Create(ctx, StaffInput{Name: "off", Email: "off@x", Password: "password-1", Role: domain.StaffRoleAgent})
	require.NoError(t, err)

	attempts := [][2]string{
		{"nobody@x", "password-1"},
		{"on@x", "wrong-password"},
		{"off@x", "password-1"},
	}
	var messages []string
	for _, a := range attempts {
		_, err := authSvc.Login(ctx, a[0], a[1])
		assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
		messages = append(messages, err.Error())
	}
	assert.Equal(t, messages[0], messages[1])
	assert.Equal(t, messages[0], messages[2])
}

func TestStaffUpdate_SelfProtection(t *testing.T) {
	staff, _, _ := newStaffFixture()
	ctx := context.Background()

	me, err := staff.Create(ctx, StaffInput{Name: "Boss", Email: "boss@x", Password: "password-1", Role: domain.StaffRoleAdmin, IsActive: true})
	require.NoError(t, err)

	_, err = staff.Update(ctx, me, me.ID, StaffInput{Name: "Boss", Email: "boss@x", Role: domain.StaffRoleAgent, IsActive: true})
	assert.Equal(t, "CONFLICT", errorCode(t, err))
	_, err = staff.Update(ctx, me, me.ID, StaffInput{Name: "Boss", Email: "boss@x", Role: domain.StaffRoleAdmin, IsActive: false})
	assert.Equal(t, "CONFLICT", errorCode(t, err))
	assert.Equal(t, "CONFLICT", errorCode(t, staff.Delete(ctx, me, me.ID)))

	renamed, err := staff.Update(ctx, me, me.ID, StaffInput{Name: "Big Boss", Email: "boss@x", Role: domain.StaffRoleAdmin, IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "Big Boss", renamed.Name)
	assert.Equal(t, me.PasswordHash, renamed.PasswordHash, "empty password keeps the hash")
}

func TestChangePassword(t *testing.T) {
	staff, authSvc, _ := newStaffFixture()
	ctx := context.Background()

	user, err := staff.Create(ctx, StaffInput{Name: "u", Email: "u@x", Password: "password-1", Role: domain.StaffRoleAgent, IsActive: true})
	require.NoError(t, err)

	err = authSvc.ChangePassword(ctx, user.ID, "not-it", "password-2")
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))
	err = authSvc.ChangePassword(ctx, user.ID, "password-1", "short")
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))
	err = authSvc.ChangePassword(ctx, "ghost", "password-1", "password-2")
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))

	require.NoError(t, authSvc.ChangePassword(ctx, user.ID, "password-1", "password-2"))
	_, err = authSvc.Login(ctx, "u@x", "password-2")
	require.NoError(t, err)
}
