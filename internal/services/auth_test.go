package services_test

import (
	"context"
	"testing"

	"nexusmarket/internal/models"
	"nexusmarket/internal/remote"
	"nexusmarket/internal/remote/remotetest"
	"nexusmarket/internal/services"

	"github.com/stretchr/testify/require"
)

func newAuthEnv(t *testing.T) (*services.AuthService, *remotetest.Server) {
	t.Helper()
	srv := remotetest.New()
	t.Cleanup(srv.Close)
	return services.NewAuthService(remote.NewClient(srv.URL(), "anon-key")), srv
}

func TestRegisterWithAdminSecret(t *testing.T) {
	auth, srv := newAuthEnv(t)

	user, err := auth.Register(context.Background(), "boss", "password1", "boss@example.com", services.AdminSecret)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, user.Role)
	require.True(t, user.IsVerified)
	require.Equal(t, models.PremiumApproved, user.PremiumStatus)
	require.Len(t, srv.Rows("profiles"), 1)
}

func TestRegisterWithoutSecret(t *testing.T) {
	auth, _ := newAuthEnv(t)

	user, err := auth.Register(context.Background(), "ProSeller_X", "password1", "x@example.com", "")
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, user.Role)
	require.False(t, user.IsVerified)
	require.Equal(t, models.PremiumNone, user.PremiumStatus)
	require.Equal(t, "https://api.dicebear.com/7.x/avataaars/svg?seed=ProSeller_X", user.AvatarURL)
	require.Equal(t, "New member of the Nexus.", user.Bio)
}

func TestRegisterWithWrongSecret(t *testing.T) {
	auth, _ := newAuthEnv(t)

	user, err := auth.Register(context.Background(), "sneaky", "password1", "s@example.com", "nexus-admin-oops")
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, user.Role)
}

// profiles 插入失败时注册流程照常返回本地构造的资料对象
func TestRegisterLenientOnProfileInsertFailure(t *testing.T) {
	auth, srv := newAuthEnv(t)
	srv.FailInsert["profiles"] = `duplicate key value violates unique constraint "profiles_pkey"`

	user, err := auth.Register(context.Background(), "dup", "password1", "dup@example.com", "")
	require.NoError(t, err)
	require.Equal(t, "dup", user.Username)
	require.Empty(t, srv.Rows("profiles"))
}

func TestLoginRequiresPassword(t *testing.T) {
	auth, _ := newAuthEnv(t)

	_, err := auth.Login(context.Background(), "a@example.com", "")
	require.ErrorIs(t, err, services.ErrPasswordRequired)
}

func TestLoginBadCredentialsKeepsBackendMessage(t *testing.T) {
	auth, srv := newAuthEnv(t)
	srv.SeedAccount("a@example.com", "password1")

	_, err := auth.Login(context.Background(), "a@example.com", "wrong")
	require.EqualError(t, err, "Invalid login credentials")
}

// 认证通过但 profiles 里没有对应行：not-found 哨兵，区别于后端报错
func TestLoginWithoutProfileRow(t *testing.T) {
	auth, srv := newAuthEnv(t)
	srv.SeedAccount("ghost@example.com", "password1")

	_, err := auth.Login(context.Background(), "ghost@example.com", "password1")
	require.ErrorIs(t, err, services.ErrProfileNotFound)
}

func TestLoginReturnsMappedProfile(t *testing.T) {
	auth, _ := newAuthEnv(t)

	_, err := auth.Register(context.Background(), "seller", "password1", "s@example.com", "")
	require.NoError(t, err)

	user, err := auth.Login(context.Background(), "s@example.com", "password1")
	require.NoError(t, err)
	require.Equal(t, "seller", user.Username)
	require.Equal(t, models.RoleUser, user.Role)
}

func TestApplyForPremium(t *testing.T) {
	auth, _ := newAuthEnv(t)

	user, err := auth.Register(context.Background(), "seller", "password1", "s@example.com", "")
	require.NoError(t, err)

	updated, err := auth.ApplyForPremium(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, models.PremiumPending, updated.PremiumStatus)
}

func TestManagePremiumStatus(t *testing.T) {
	auth, _ := newAuthEnv(t)

	user, err := auth.Register(context.Background(), "seller", "password1", "s@example.com", "")
	require.NoError(t, err)

	updated, err := auth.ManagePremiumStatus(context.Background(), user.ID, models.PremiumApproved)
	require.NoError(t, err)
	require.Equal(t, models.PremiumApproved, updated.PremiumStatus)
}

// 顺序调用时每次恰好翻转一次
func TestToggleUserVerificationSequential(t *testing.T) {
	auth, _ := newAuthEnv(t)

	user, err := auth.Register(context.Background(), "seller", "password1", "s@example.com", "")
	require.NoError(t, err)
	require.False(t, user.IsVerified)

	once, err := auth.ToggleUserVerification(context.Background(), user.ID)
	require.NoError(t, err)
	require.True(t, once.IsVerified)

	twice, err := auth.ToggleUserVerification(context.Background(), user.ID)
	require.NoError(t, err)
	require.False(t, twice.IsVerified)
}

func TestGetUserProfileNotFound(t *testing.T) {
	auth, _ := newAuthEnv(t)

	_, err := auth.GetUserProfile(context.Background(), "missing-id")
	require.ErrorIs(t, err, services.ErrProfileNotFound)
}

func TestGetAllUsers(t *testing.T) {
	auth, _ := newAuthEnv(t)

	_, err := auth.Register(context.Background(), "one", "password1", "one@example.com", "")
	require.NoError(t, err)
	_, err = auth.Register(context.Background(), "two", "password1", "two@example.com", "")
	require.NoError(t, err)

	users, err := auth.GetAllUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
}

func TestUpdateProfilePartial(t *testing.T) {
	auth, _ := newAuthEnv(t)

	user, err := auth.Register(context.Background(), "seller", "password1", "s@example.com", "")
	require.NoError(t, err)

	bio := "Trusted since 2021"
	updated, err := auth.UpdateProfile(context.Background(), user.ID, services.ProfilePatch{Bio: &bio})
	require.NoError(t, err)
	require.Equal(t, bio, updated.Bio)
	// 没提交的字段保持原样
	require.Equal(t, "s@example.com", updated.Email)
	require.Equal(t, user.AvatarURL, updated.AvatarURL)
}

func TestLogoutEndsSession(t *testing.T) {
	srv := remotetest.New()
	t.Cleanup(srv.Close)
	rc := remote.NewClient(srv.URL(), "anon-key")
	auth := services.NewAuthService(rc)

	_, err := auth.Register(context.Background(), "seller", "password1", "s@example.com", "")
	require.NoError(t, err)
	require.NotNil(t, rc.Session())

	require.NoError(t, auth.Logout(context.Background()))
	require.Nil(t, rc.Session())
}
