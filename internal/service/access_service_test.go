package service

import (
	"context"
	"errors"
	"mindtrack_backend/internal/model"
	"mindtrack_backend/internal/repository"
	"mindtrack_backend/internal/testutil"
	"mindtrack_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isAdmin(t *testing.T, access *AccessService, claims *util.Claims) bool {
	t.Helper()
	ok, err := access.IsAdmin(context.Background(), claims)
	require.NoError(t, err)
	return ok
}

func canActAs(t *testing.T, access *AccessService, claims *util.Claims, userID string) bool {
	t.Helper()
	ok, err := access.CanActAs(context.Background(), claims, userID)
	require.NoError(t, err)
	return ok
}

// failingProfiles 模拟资料存储不可用
type failingProfiles struct{}

func (failingProfiles) Get(context.Context, string) (*model.Profile, error) {
	return nil, errors.New("redis down")
}

func (failingProfiles) Upsert(context.Context, *model.Profile) error {
	return errors.New("redis down")
}

func (failingProfiles) Merge(context.Context, string, map[string]interface{}) error {
	return errors.New("redis down")
}

func (failingProfiles) Delete(context.Context, string) error {
	return errors.New("redis down")
}

func TestAccessService_AdminPrecedence(t *testing.T) {
	db := testutil.NewDB(t)
	store := repository.NewSQLProfileRepository(db)
	access := NewAccessService(store, true, []string{"Boss@Example.com"})
	ctx := context.Background()

	assert.False(t, isAdmin(t, access, nil))
	assert.True(t, isAdmin(t, access, &util.Claims{UID: "u1", Email: "boss@example.com"}))
	assert.False(t, isAdmin(t, access, &util.Claims{UID: "u2", Email: "dev@example.com"}))

	// 令牌中的 is_admin 优先于邮箱白名单
	assert.False(t, isAdmin(t, access, &util.Claims{UID: "u1", Email: "boss@example.com", IsAdmin: testutil.BoolPtr(false)}))
	assert.True(t, isAdmin(t, access, &util.Claims{UID: "u2", IsAdmin: testutil.BoolPtr(true)}))

	// 资料文档中的 is_admin 优先级最高
	require.NoError(t, store.Merge(ctx, "u2", map[string]interface{}{model.ProfileFieldIsAdmin: true}))
	assert.True(t, isAdmin(t, access, &util.Claims{UID: "u2", IsAdmin: testutil.BoolPtr(false)}))

	access.SetAdminEmails(nil)
	assert.False(t, isAdmin(t, access, &util.Claims{UID: "u1", Email: "boss@example.com"}))
}

func TestAccessService_CanActAs(t *testing.T) {
	open := NewAccessService(nil, false, nil)
	assert.True(t, canActAs(t, open, nil, "anyone"))

	access := NewAccessService(nil, true, []string{"boss@example.com"})
	assert.False(t, canActAs(t, access, nil, "u1"))
	assert.True(t, canActAs(t, access, &util.Claims{UID: "u1"}, "u1"))
	assert.False(t, canActAs(t, access, &util.Claims{UID: "u2"}, "u1"))
	assert.True(t, canActAs(t, access, &util.Claims{UID: "u9", Email: "boss@example.com"}, "u1"))
}

func TestAccessService_ProfileStoreFailure(t *testing.T) {
	access := NewAccessService(failingProfiles{}, true, []string{"boss@example.com"})
	ctx := context.Background()

	// 存储异常不退回邮箱判定
	admin, err := access.IsAdmin(ctx, &util.Claims{UID: "b", Email: "boss@example.com"})
	assert.False(t, admin)
	assert.True(t, errors.Is(err, util.ErrStore))

	allowed, err := access.CanActAs(ctx, &util.Claims{UID: "u2"}, "u1")
	assert.False(t, allowed)
	assert.True(t, errors.Is(err, util.ErrStore))

	// 操作自己的数据无需查询资料
	allowed, err = access.CanActAs(ctx, &util.Claims{UID: "u1"}, "u1")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestProfileService_EnsureAndMirror(t *testing.T) {
	db := testutil.NewDB(t)
	profiles := NewProfileService(repository.NewSQLProfileRepository(db))
	ctx := context.Background()

	_, err := profiles.Get(ctx, "u1")
	assert.ErrorIs(t, err, util.ErrProfileNotFound)

	p, err := profiles.Ensure(ctx, "u1", EnsureInput{Name: "Neo", Email: "NEO@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Neo", p.Name)
	assert.Equal(t, "neo@example.com", p.Email)
	assert.False(t, p.IsVerified)
	assert.Nil(t, p.IsAdmin)
	assert.False(t, p.CreatedAt.IsZero())

	app := "neo"
	profiles.MirrorVerification(ctx, "u1", &app, nil, true)

	// 再次初始化只合并基本字段，不覆盖认证状态
	p, err = profiles.Ensure(ctx, "u1", EnsureInput{PhotoURL: "https://img.example.com/neo.png"})
	require.NoError(t, err)
	assert.Equal(t, "Neo", p.Name)
	assert.Equal(t, "https://img.example.com/neo.png", p.PhotoURL)
	assert.True(t, p.IsVerified)
	assert.Equal(t, "neo", p.AppUsername)

	_, err = profiles.Ensure(ctx, "", EnsureInput{})
	assert.ErrorIs(t, err, util.ErrUserIDRequired)
}
