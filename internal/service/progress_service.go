package service

import (
	"context"
	"mindtrack_backend/internal/config"
	"mindtrack_backend/internal/model"
	"mindtrack_backend/internal/repository"
	"mindtrack_backend/internal/util"
	"mindtrack_backend/pkg/logger"
	"mindtrack_backend/pkg/monitoring"
	"mindtrack_backend/pkg/tracing"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProgressService 处理收藏/解题动作，并根据每日台账重新计算用户的计数与连续天数
type ProgressService struct {
	db           *gorm.DB
	ProgressRepo *repository.ProgressRepository
	UserRepo     *repository.UserRepository
	QuestionRepo *repository.QuestionRepository
	Location     *time.Location
	MaxRetries   int
	Now          func() time.Time
}

func NewProgressService(
	db *gorm.DB,
	progressRepo *repository.ProgressRepository,
	userRepo *repository.UserRepository,
	questionRepo *repository.QuestionRepository,
	cfg *config.ProgressConfig,
) *ProgressService {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}
	return &ProgressService{
		db:           db,
		ProgressRepo: progressRepo,
		UserRepo:     userRepo,
		QuestionRepo: questionRepo,
		Location:     loc,
		MaxRetries:   retries,
		Now:          time.Now,
	}
}

// ProgressInput 已校验的进度更新参数
type ProgressInput struct {
	UserID     string
	QuestionID int64
	Action     model.ProgressAction
}

// ParseProgressInput 只做参数校验，不访问存储
func ParseProgressInput(userID, questionID string, action model.ProgressAction) (*ProgressInput, error) {
	userID = strings.TrimSpace(userID)
	questionID = strings.TrimSpace(questionID)
	action = model.ProgressAction(strings.TrimSpace(string(action)))

	if userID == "" || questionID == "" || action == "" {
		return nil, util.ErrMissingParameter
	}
	if !action.Valid() {
		return nil, util.ErrInvalidAction
	}
	qid, err := strconv.ParseInt(questionID, 10, 64)
	if err != nil {
		return nil, util.ErrInvalidQuestionID
	}
	return &ProgressInput{UserID: userID, QuestionID: qid, Action: action}, nil
}

// Update 参数校验在任何数据库访问之前完成；整个流程在一个事务中执行
func (s *ProgressService) Update(ctx context.Context, userID, questionID string, action model.ProgressAction) (*model.ProgressResult, error) {
	input, err := ParseProgressInput(userID, questionID, action)
	if err != nil {
		return nil, err
	}
	return s.Apply(ctx, input)
}

// Apply 执行已校验的进度更新
func (s *ProgressService) Apply(ctx context.Context, input *ProgressInput) (*model.ProgressResult, error) {
	userID, qid, action := input.UserID, input.QuestionID, input.Action

	ctx, span := tracing.Tracer.Start(ctx, "progress.Update", trace.WithAttributes(
		attribute.String("user_id", userID),
		attribute.Int64("question_id", qid),
		attribute.String("action", string(action)),
	))
	defer span.End()

	var (
		result  *model.ProgressResult
		changed bool
		err     error
	)
	for attempt := 1; ; attempt++ {
		result, changed, err = s.reconcile(ctx, userID, qid, action)
		if err == nil {
			break
		}
		if !isRetryable(err) || attempt >= s.MaxRetries {
			span.RecordError(err)
			logger.Log.Error("progress update failed",
				zap.String("user_id", userID),
				zap.Int64("question_id", qid),
				zap.String("action", string(action)),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return nil, util.WrapStore("progress.update", err)
		}

		monitoring.ProgressRetries.Inc()
		logger.Log.Warn("progress update conflict, retrying",
			zap.String("user_id", userID),
			zap.Int64("question_id", qid),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return nil, util.WrapStore("progress.update", ctx.Err())
		case <-time.After(time.Duration(attempt) * 25 * time.Millisecond):
		}
	}

	transition := "noop"
	if changed {
		transition = "changed"
	}
	monitoring.ProgressActions.WithLabelValues(string(action), transition).Inc()
	logger.Log.Debug("progress updated",
		zap.String("user_id", userID),
		zap.Int64("question_id", qid),
		zap.String("action", string(action)),
		zap.Bool("solved_changed", changed),
	)

	return result, nil
}

func (s *ProgressService) reconcile(ctx context.Context, userID string, questionID int64, action model.ProgressAction) (*model.ProgressResult, bool, error) {
	now := s.Now()
	today := now.In(s.Location).Format(util.DateFormat)

	var (
		result  model.ProgressResult
		changed bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		progressRepo := s.ProgressRepo.WithTx(tx)
		userRepo := s.UserRepo.WithTx(tx)
		questionRepo := s.QuestionRepo.WithTx(tx)

		if err := progressRepo.EnsureProgress(ctx, userID, questionID); err != nil {
			return err
		}

		current, err := progressRepo.LockProgress(ctx, userID, questionID)
		if err != nil {
			return err
		}
		// 题库中不存在的题目按未知难度处理
		difficulty, _, err := questionRepo.Difficulty(ctx, questionID)
		if err != nil {
			return err
		}

		wasSolved := current.IsSolved
		nowStarred, nowSolved := action.Apply(current.IsStarred, current.IsSolved)

		solvedAt := current.SolvedAt
		switch {
		case nowSolved && !wasSolved:
			t := now.UTC()
			solvedAt = &t
		case !nowSolved:
			solvedAt = nil
		}
		if err := progressRepo.UpdateState(ctx, userID, questionID, nowStarred, nowSolved, solvedAt); err != nil {
			return err
		}

		result = model.ProgressResult{IsStarred: nowStarred, IsSolved: nowSolved}
		changed = nowSolved != wasSolved
		if !changed {
			return nil
		}

		return s.reconcileAggregates(ctx, progressRepo, userRepo, userID, model.BucketOf(difficulty), nowSolved, current.SolvedAt, today)
	})
	if err != nil {
		return nil, false, err
	}
	return &result, changed, nil
}

func (s *ProgressService) reconcileAggregates(
	ctx context.Context,
	progressRepo *repository.ProgressRepository,
	userRepo *repository.UserRepository,
	userID string,
	bucket model.Difficulty,
	solved bool,
	prevSolvedAt *time.Time,
	today string,
) error {
	if err := userRepo.EnsureUser(ctx, userID); err != nil {
		return err
	}
	user, err := userRepo.LockUser(ctx, userID)
	if err != nil {
		return err
	}

	longest := user.LongestStreak
	updates := map[string]interface{}{}

	if solved {
		if err := progressRepo.IncrementDaily(ctx, userID, today); err != nil {
			return err
		}
		streak := ProvisionalStreak(user.LastSolvedDate, user.CurrentStreak, today)
		longest = maxInt(longest, streak)
		updates["total_solved"] = user.TotalSolved + 1
		updates["current_streak"] = streak
		updates["longest_streak"] = longest
		updates["last_solved_date"] = today
		if col := bucket.Column(); col != "" {
			updates[col] = bucketCount(user, bucket) + 1
		}
	} else {
		if prevSolvedAt != nil {
			day := prevSolvedAt.In(s.Location).Format(util.DateFormat)
			if err := progressRepo.EnsureDaily(ctx, userID, day); err != nil {
				return err
			}
			if err := progressRepo.DecrementDaily(ctx, userID, day); err != nil {
				return err
			}
		}
		updates["total_solved"] = maxInt(user.TotalSolved-1, 0)
		if col := bucket.Column(); col != "" {
			updates[col] = maxInt(bucketCount(user, bucket)-1, 0)
		}
	}

	if err := userRepo.UpdateFields(ctx, userID, updates); err != nil {
		return err
	}

	// 以台账为准重新计算连续天数与最近解题日期
	dates, err := progressRepo.ActiveDates(ctx, userID, today)
	if err != nil {
		return err
	}
	streak := StreakFrom(dates, today)

	last, err := progressRepo.LatestActiveDate(ctx, userID)
	if err != nil {
		return err
	}

	final := map[string]interface{}{
		"current_streak": streak,
		"longest_streak": maxInt(longest, streak),
	}
	if last != "" {
		final["last_solved_date"] = last
	}
	return userRepo.UpdateFields(ctx, userID, final)
}

// ProvisionalStreak 基于上次解题日期的增量估算
func ProvisionalStreak(lastSolved *string, current int, today string) int {
	if lastSolved == nil || *lastSolved == "" {
		return 1
	}
	if *lastSolved == today {
		return maxInt(current, 1)
	}
	if *lastSolved == shiftDate(today, -1) {
		return current + 1
	}
	return 1
}

// StreakFrom 从今天开始逐日向前计数，遇到空缺即停止；datesDesc 需按日期倒序
func StreakFrom(datesDesc []string, today string) int {
	expected := today
	streak := 0
	for _, d := range datesDesc {
		if d != expected {
			break
		}
		streak++
		expected = shiftDate(expected, -1)
	}
	return streak
}

func shiftDate(date string, days int) string {
	t, err := time.Parse(util.DateFormat, date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, days).Format(util.DateFormat)
}

func bucketCount(user *model.User, bucket model.Difficulty) int {
	switch bucket {
	case model.DifficultyEasy:
		return user.EasySolved
	case model.DifficultyMedium:
		return user.MediumSolved
	case model.DifficultyHard:
		return user.HardSolved
	}
	return 0
}

// isRetryable 锁冲突与死锁可重试，其它错误直接返回
func isRetryable(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"database is locked",
		"database table is locked",
		"sqlite_busy",
		"deadlock found",
		"lock wait timeout",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
