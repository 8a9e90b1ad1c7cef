package service

import (
	"context"
	"mindtrack_backend/internal/model"
	"mindtrack_backend/internal/repository"
	"mindtrack_backend/internal/util"
	"strings"
)

const (
	DefaultLeaderboardLimit = 100
	MaxLeaderboardLimit     = 200
)

type LeaderboardService struct {
	LeaderboardRepo *repository.LeaderboardRepository
}

func NewLeaderboardService(repo *repository.LeaderboardRepository) *LeaderboardService {
	return &LeaderboardService{LeaderboardRepo: repo}
}

// LeaderboardPage 排行榜分页结果，My 为请求用户自己的名次
type LeaderboardPage struct {
	Total  int64                  `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
	Rows   []model.LeaderboardRow `json:"rows"`
	My     *model.LeaderboardRow  `json:"my"`
}

// Get 按连续天数、总解题数、用户名排序
func (s *LeaderboardService) Get(ctx context.Context, limit, offset int, userID string) (*LeaderboardPage, error) {
	// 0 表示未指定，负数按 1 处理
	switch {
	case limit == 0:
		limit = DefaultLeaderboardLimit
	case limit < 0:
		limit = 1
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}
	if offset < 0 {
		offset = 0
	}

	total, err := s.LeaderboardRepo.Count(ctx)
	if err != nil {
		return nil, util.WrapStore("leaderboard.count", err)
	}

	rows, err := s.LeaderboardRepo.Page(ctx, limit, offset)
	if err != nil {
		return nil, util.WrapStore("leaderboard.page", err)
	}
	rows = orEmpty(rows)
	for i := range rows {
		rows[i].Rank = offset + i + 1
	}

	page := &LeaderboardPage{
		Total:  total,
		Limit:  limit,
		Offset: offset,
		Rows:   rows,
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return page, nil
	}

	my, err := s.LeaderboardRepo.Entry(ctx, userID)
	if err != nil {
		return nil, util.WrapStore("leaderboard.entry", err)
	}
	if my != nil {
		ahead, err := s.LeaderboardRepo.CountAhead(ctx, my)
		if err != nil {
			return nil, util.WrapStore("leaderboard.rank", err)
		}
		my.Rank = int(ahead) + 1
		page.My = my
	}
	return page, nil
}
