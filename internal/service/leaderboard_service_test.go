package service

import (
	"context"
	"mindtrack_backend/internal/model"
	"mindtrack_backend/internal/repository"
	"mindtrack_backend/internal/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLeaderboard(t *testing.T) *LeaderboardService {
	t.Helper()
	db := testutil.NewDB(t)

	users := []model.User{
		{UserID: "a", AppUsername: testutil.StringPtr("alice"), IsVerified: true, CurrentStreak: 5, TotalSolved: 10},
		{UserID: "b", AppUsername: testutil.StringPtr("bob"), IsVerified: true, CurrentStreak: 5, TotalSolved: 20},
		{UserID: "c", AppUsername: testutil.StringPtr("carol"), IsVerified: true, CurrentStreak: 5, TotalSolved: 10},
		{UserID: "d", AppUsername: testutil.StringPtr("dave"), IsVerified: true, CurrentStreak: 1, TotalSolved: 99},
		// 未认证或没有用户名的用户不上榜
		{UserID: "e", AppUsername: testutil.StringPtr("eve"), IsVerified: false, CurrentStreak: 50},
		{UserID: "f", IsVerified: true, CurrentStreak: 50},
	}
	for _, u := range users {
		testutil.SeedUser(t, db, u)
	}

	return NewLeaderboardService(repository.NewLeaderboardRepository(db))
}

func TestLeaderboardService_Ordering(t *testing.T) {
	svc := seedLeaderboard(t)

	page, err := svc.Get(context.Background(), 0, 0, "")
	require.NoError(t, err)

	assert.Equal(t, int64(4), page.Total)
	assert.Equal(t, DefaultLeaderboardLimit, page.Limit)
	require.Len(t, page.Rows, 4)

	var order []string
	for i, row := range page.Rows {
		order = append(order, row.Username)
		assert.Equal(t, i+1, row.Rank)
	}
	assert.Equal(t, []string{"bob", "alice", "carol", "dave"}, order)
	assert.Nil(t, page.My)
}

func TestLeaderboardService_OffsetRank(t *testing.T) {
	svc := seedLeaderboard(t)

	page, err := svc.Get(context.Background(), 2, 1, "")
	require.NoError(t, err)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, "alice", page.Rows[0].Username)
	assert.Equal(t, 2, page.Rows[0].Rank)
	assert.Equal(t, 3, page.Rows[1].Rank)
}

func TestLeaderboardService_MyRank(t *testing.T) {
	svc := seedLeaderboard(t)

	page, err := svc.Get(context.Background(), 1, 0, "c")
	require.NoError(t, err)
	require.NotNil(t, page.My)
	assert.Equal(t, "carol", page.My.Username)
	assert.Equal(t, 3, page.My.Rank)

	page, err = svc.Get(context.Background(), 1, 0, "e")
	require.NoError(t, err)
	assert.Nil(t, page.My)
}

func TestLeaderboardService_LimitClamp(t *testing.T) {
	svc := seedLeaderboard(t)

	page, err := svc.Get(context.Background(), 1000, -3, "")
	require.NoError(t, err)
	assert.Equal(t, MaxLeaderboardLimit, page.Limit)
	assert.Equal(t, 0, page.Offset)
}

func TestLeaderboardService_NonPositiveLimit(t *testing.T) {
	svc := seedLeaderboard(t)
	ctx := context.Background()

	page, err := svc.Get(ctx, -5, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 1, page.Limit)
	assert.Len(t, page.Rows, 1)

	page, err = svc.Get(ctx, 0, 0, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultLeaderboardLimit, page.Limit)
	assert.Len(t, page.Rows, 4)
}
