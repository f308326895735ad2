package store_test

import (
	"context"
	"testing"
	"time"

	"nexusmarket/internal/models"
	"nexusmarket/internal/remote"
	"nexusmarket/internal/remote/remotetest"
	"nexusmarket/internal/services"
	"nexusmarket/internal/store"

	"github.com/stretchr/testify/require"
)

func newStoreEnv(t *testing.T) (*store.Store, *remote.Client, *remotetest.Server) {
	t.Helper()
	srv := remotetest.New()
	t.Cleanup(srv.Close)

	rc := remote.NewClient(srv.URL(), "anon-key")
	st := store.New(rc, services.NewAuthService(rc), services.NewListingService(rc))
	return st, rc, srv
}

// 完整的高级卖家审批流程：注册 -> 申请 -> 管理员通过，
// 结果要同时反映在用户列表和当前会话用户上
func TestPremiumWorkflow(t *testing.T) {
	st, _, _ := newStoreEnv(t)
	ctx := context.Background()

	user, err := st.Register(ctx, "ProSeller_X", "password1", "x@example.com", "")
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, user.Role)
	require.Equal(t, models.PremiumNone, user.PremiumStatus)

	require.NoError(t, st.ApplyForPremium(ctx))
	require.Equal(t, models.PremiumPending, st.User().PremiumStatus)

	st.FetchAllUsers(ctx)
	require.Len(t, st.AllUsers(), 1)

	st.SetPremiumStatus(ctx, user.ID, models.PremiumApproved)
	require.Equal(t, models.PremiumApproved, st.AllUsers()[0].PremiumStatus)
	require.Equal(t, models.PremiumApproved, st.User().PremiumStatus)
}

func TestLoginFailureStoresError(t *testing.T) {
	st, _, srv := newStoreEnv(t)
	srv.SeedAccount("a@example.com", "password1")

	_, err := st.Login(context.Background(), "a@example.com", "wrong")
	require.Error(t, err)
	require.Equal(t, "Invalid login credentials", st.Err())
	require.Nil(t, st.User())
	require.False(t, st.IsLoading())

	st.ClearError()
	require.Empty(t, st.Err())
}

func TestLoginSuccessClearsError(t *testing.T) {
	st, _, _ := newStoreEnv(t)
	ctx := context.Background()

	_, err := st.Register(ctx, "seller", "password1", "s@example.com", "")
	require.NoError(t, err)
	st.Logout(ctx)

	_, err = st.Login(ctx, "s@example.com", "wrong")
	require.Error(t, err)
	require.NotEmpty(t, st.Err())

	user, err := st.Login(ctx, "s@example.com", "password1")
	require.NoError(t, err)
	require.Equal(t, "seller", user.Username)
	require.Empty(t, st.Err())
}

func TestCheckSessionRestoresUser(t *testing.T) {
	st, rc, srv := newStoreEnv(t)

	id := srv.SeedAccount("a@example.com", "password1")
	srv.Seed("profiles", map[string]any{
		"id": id, "username": "restored", "role": "user",
		"premium_status": "none", "joined_at": "2025-01-01T00:00:00Z",
	})

	require.NoError(t, rc.RestoreSession(srv.TokenFor(id, time.Hour), "refresh"))
	st.CheckSession(context.Background())

	user := st.User()
	require.NotNil(t, user)
	require.Equal(t, "restored", user.Username)
}

// 没有既存会话不算错误
func TestCheckSessionWithoutSession(t *testing.T) {
	st, _, _ := newStoreEnv(t)
	st.CheckSession(context.Background())
	require.Nil(t, st.User())
}

func TestLogoutClearsState(t *testing.T) {
	st, rc, _ := newStoreEnv(t)
	ctx := context.Background()

	_, err := st.Register(ctx, "seller", "password1", "s@example.com", "")
	require.NoError(t, err)
	st.FetchAllUsers(ctx)
	require.NotEmpty(t, st.AllUsers())

	st.Logout(ctx)
	require.Nil(t, st.User())
	require.Empty(t, st.AllUsers())
	require.Nil(t, rc.Session())
}

func TestListingMerges(t *testing.T) {
	st, _, _ := newStoreEnv(t)

	a := models.Listing{ID: "a", Title: "first"}
	b := models.Listing{ID: "b", Title: "second"}

	st.AddListing(a)
	st.AddListing(b)
	// 新挂单排最前
	require.Equal(t, "b", st.Listings()[0].ID)

	b.Title = "renamed"
	st.UpdateListingInStore(b)
	require.Equal(t, "renamed", st.Listings()[0].Title)

	st.RemoveListingFromStore("a")
	listings := st.Listings()
	require.Len(t, listings, 1)
	require.Equal(t, "b", listings[0].ID)
}

func TestFetchListings(t *testing.T) {
	st, _, srv := newStoreEnv(t)
	srv.Seed("listings", map[string]any{"id": "l-1", "owner_id": "u-1", "title": "seeded"})

	st.FetchListings(context.Background())
	listings := st.Listings()
	require.Len(t, listings, 1)
	require.Equal(t, "seeded", listings[0].Title)
	require.False(t, st.IsLoading())
}

func TestToggleUserVerificationSyncsSessionUser(t *testing.T) {
	st, _, _ := newStoreEnv(t)
	ctx := context.Background()

	user, err := st.Register(ctx, "seller", "password1", "s@example.com", "")
	require.NoError(t, err)
	st.FetchAllUsers(ctx)

	st.ToggleUserVerification(ctx, user.ID)
	require.True(t, st.AllUsers()[0].IsVerified)
	require.True(t, st.User().IsVerified)
}
