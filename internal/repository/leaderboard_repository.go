package repository

import (
	"context"
	"mindtrack_backend/internal/model"

	"gorm.io/gorm"
)

const leaderboardColumns = "user_id, app_username AS username, leetcode_username, current_streak AS streak, " +
	"longest_streak, total_solved, easy_solved, medium_solved, hard_solved"

// LeaderboardRepository 只统计已认证且设置了应用用户名的用户
type LeaderboardRepository struct {
	DB *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) *LeaderboardRepository {
	return &LeaderboardRepository{DB: db}
}

func (r *LeaderboardRepository) eligible(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Model(&model.User{}).
		Where("is_verified = ? AND app_username IS NOT NULL", true)
}

func (r *LeaderboardRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.eligible(ctx).Count(&total).Error
	return total, err
}

func (r *LeaderboardRepository) Page(ctx context.Context, limit, offset int) ([]model.LeaderboardRow, error) {
	var rows []model.LeaderboardRow
	err := r.eligible(ctx).
		Select(leaderboardColumns).
		Order("current_streak DESC").
		Order("total_solved DESC").
		Order("app_username ASC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	return rows, err
}

// Entry 用户不在榜单范围内时返回 nil
func (r *LeaderboardRepository) Entry(ctx context.Context, userID string) (*model.LeaderboardRow, error) {
	var rows []model.LeaderboardRow
	err := r.eligible(ctx).
		Select(leaderboardColumns).
		Where("user_id = ?", userID).
		Limit(1).
		Scan(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// CountAhead 按榜单排序严格排在该行之前的人数
func (r *LeaderboardRepository) CountAhead(ctx context.Context, row *model.LeaderboardRow) (int64, error) {
	var ahead int64
	err := r.eligible(ctx).
		Where(
			"((current_streak > ?) OR (current_streak = ? AND total_solved > ?) OR (current_streak = ? AND total_solved = ? AND app_username < ?))",
			row.Streak,
			row.Streak, row.TotalSolved,
			row.Streak, row.TotalSolved, row.Username,
		).
		Count(&ahead).Error
	return ahead, err
}
