package repository

import (
	"context"
	"database/sql"
	"mindtrack_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressRepository 题目进度与每日台账
type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// WithTx 返回绑定到事务的仓库
func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: tx}
}

// EnsureProgress 不存在时插入，已存在的记录保持不变
func (r *ProgressRepository) EnsureProgress(ctx context.Context, userID string, questionID int64) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.UserQuestionProgress{UserID: userID, QuestionID: questionID}).Error
}

// LockProgress 读取进度并加行锁（SQLite 下由单写者串行化）
func (r *ProgressRepository) LockProgress(ctx context.Context, userID string, questionID int64) (*model.UserQuestionProgress, error) {
	var p model.UserQuestionProgress
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProgressRepository) UpdateState(ctx context.Context, userID string, questionID int64, starred, solved bool, solvedAt *time.Time) error {
	return r.DB.WithContext(ctx).
		Model(&model.UserQuestionProgress{}).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		Updates(map[string]interface{}{
			"is_starred": starred,
			"is_solved":  solved,
			"solved_at":  solvedAt,
			"updated_at": time.Now().UTC(),
		}).Error
}

// FindByQuestions 批量读取用户在若干题目上的进度
func (r *ProgressRepository) FindByQuestions(ctx context.Context, userID string, questionIDs []int64) (map[int64]model.UserQuestionProgress, error) {
	out := make(map[int64]model.UserQuestionProgress, len(questionIDs))
	if len(questionIDs) == 0 {
		return out, nil
	}
	var rows []model.UserQuestionProgress
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND question_id IN ?", userID, questionIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.QuestionID] = p
	}
	return out, nil
}

// CountsForUser 已解决与已收藏的题目数
func (r *ProgressRepository) CountsForUser(ctx context.Context, userID string) (solved int64, starred int64, err error) {
	err = r.DB.WithContext(ctx).
		Model(&model.UserQuestionProgress{}).
		Where("user_id = ? AND is_solved = ?", userID, true).
		Count(&solved).Error
	if err != nil {
		return 0, 0, err
	}
	err = r.DB.WithContext(ctx).
		Model(&model.UserQuestionProgress{}).
		Where("user_id = ? AND is_starred = ?", userID, true).
		Count(&starred).Error
	return solved, starred, err
}

// IncrementDaily 当天台账 +1，不存在时以 1 创建
func (r *ProgressRepository) IncrementDaily(ctx context.Context, userID, date string) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"solved_count": gorm.Expr("user_daily_stats.solved_count + 1"),
			}),
		}).
		Create(&model.UserDailyStat{UserID: userID, Date: date, SolvedCount: 1}).Error
}

// EnsureDaily 以 0 创建台账行，已存在时不变
func (r *ProgressRepository) EnsureDaily(ctx context.Context, userID, date string) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.UserDailyStat{UserID: userID, Date: date}).Error
}

// DecrementDaily 台账 -1，最低为 0
func (r *ProgressRepository) DecrementDaily(ctx context.Context, userID, date string) error {
	return r.DB.WithContext(ctx).
		Model(&model.UserDailyStat{}).
		Where("user_id = ? AND date = ? AND solved_count > 0", userID, date).
		UpdateColumn("solved_count", gorm.Expr("solved_count - 1")).Error
}

func (r *ProgressRepository) FindDaily(ctx context.Context, userID, date string) (*model.UserDailyStat, error) {
	var stat model.UserDailyStat
	err := r.DB.WithContext(ctx).Where("user_id = ? AND date = ?", userID, date).First(&stat).Error
	if err != nil {
		return nil, err
	}
	return &stat, nil
}

// ActiveDates 截止 upTo（含）有解题记录的日期，按日期倒序
func (r *ProgressRepository) ActiveDates(ctx context.Context, userID, upTo string) ([]string, error) {
	var dates []string
	err := r.DB.WithContext(ctx).
		Model(&model.UserDailyStat{}).
		Where("user_id = ? AND solved_count > 0 AND date <= ?", userID, upTo).
		Order("date DESC").
		Pluck("date", &dates).Error
	return dates, err
}

// LatestActiveDate 最近一个有解题记录的日期，没有时返回空字符串
func (r *ProgressRepository) LatestActiveDate(ctx context.Context, userID string) (string, error) {
	var last sql.NullString
	err := r.DB.WithContext(ctx).
		Model(&model.UserDailyStat{}).
		Select("MAX(date)").
		Where("user_id = ? AND solved_count > 0", userID).
		Row().Scan(&last)
	if err != nil {
		return "", err
	}
	return last.String, nil
}

func (r *ProgressRepository) DeleteByUser(ctx context.Context, userID string) error {
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.UserQuestionProgress{}).Error; err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.UserDailyStat{}).Error
}
