package service

import (
	"context"
	"errors"
	"mindtrack_backend/internal/model"
	"mindtrack_backend/internal/repository"
	"mindtrack_backend/internal/util"
	"mindtrack_backend/pkg/logger"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultUserLimit = 100
	MaxUserLimit     = 500
)

// UserService 用户统计查询与管理员审核
type UserService struct {
	db               *gorm.DB
	UserRepo         *repository.UserRepository
	ProgressRepo     *repository.ProgressRepository
	RegistrationRepo *repository.RegistrationRepository
	TaskRepo         *repository.TaskRepository
	Profiles         *ProfileService
}

func NewUserService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	progressRepo *repository.ProgressRepository,
	registrationRepo *repository.RegistrationRepository,
	taskRepo *repository.TaskRepository,
	profiles *ProfileService,
) *UserService {
	return &UserService{
		db:               db,
		UserRepo:         userRepo,
		ProgressRepo:     progressRepo,
		RegistrationRepo: registrationRepo,
		TaskRepo:         taskRepo,
		Profiles:         profiles,
	}
}

func (s *UserService) List(ctx context.Context, filter model.UserFilter) ([]model.User, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultUserLimit
	}
	if filter.Limit > MaxUserLimit {
		filter.Limit = MaxUserLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	filter.Query = strings.TrimSpace(filter.Query)

	users, err := s.UserRepo.List(ctx, filter)
	if err != nil {
		return nil, util.WrapStore("users.list", err)
	}
	return orEmpty(users), nil
}

func (s *UserService) Get(ctx context.Context, userID string) (*model.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, util.ErrUserIDRequired
	}
	user, err := s.UserRepo.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, util.WrapStore("users.get", err)
	}
	return user, nil
}

func summaryOf(user *model.User) *model.UserProgressSummary {
	return &model.UserProgressSummary{
		UserID:         user.UserID,
		EasySolved:     user.EasySolved,
		MediumSolved:   user.MediumSolved,
		HardSolved:     user.HardSolved,
		TotalSolved:    user.TotalSolved,
		CurrentStreak:  user.CurrentStreak,
		LongestStreak:  user.LongestStreak,
		LastSolvedDate: user.LastSolvedDate,
	}
}

func (s *UserService) Summary(ctx context.Context, userID string) (*model.UserProgressSummary, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return summaryOf(user), nil
}

// Progress 在汇总之外附带按题目统计的解题数与收藏数
func (s *UserService) Progress(ctx context.Context, userID string) (*model.UserProgressSummary, error) {
	summary, err := s.Summary(ctx, userID)
	if err != nil {
		return nil, err
	}
	solved, starred, err := s.ProgressRepo.CountsForUser(ctx, summary.UserID)
	if err != nil {
		return nil, util.WrapStore("users.progress", err)
	}
	summary.SolvedCount = &solved
	summary.StarredCount = &starred
	return summary, nil
}

// Stats 按 user_id 或应用用户名查找
func (s *UserService) Stats(ctx context.Context, userID, username string) (*model.User, error) {
	userID = strings.TrimSpace(userID)
	username = strings.TrimSpace(username)

	switch {
	case userID != "":
		return s.Get(ctx, userID)
	case username != "":
		user, err := s.UserRepo.FindByAppUsername(ctx, username)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		if err != nil {
			return nil, util.WrapStore("users.stats", err)
		}
		return user, nil
	}
	return nil, util.ErrLookupKeyRequired
}

// PatchUserInput 管理员局部更新，nil 表示不修改
type PatchUserInput struct {
	IsVerified       *bool
	AppUsername      *string
	LeetcodeUsername *string
	ClearUsernames   bool
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (s *UserService) Patch(ctx context.Context, userID string, in PatchUserInput) (*model.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, util.ErrUserIDRequired
	}

	if in.ClearUsernames {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			userRepo := s.UserRepo.WithTx(tx)
			if err := userRepo.EnsureUser(ctx, userID); err != nil {
				return err
			}
			return userRepo.UpdateFields(ctx, userID, map[string]interface{}{
				"app_username":      nil,
				"leetcode_username": nil,
				"is_verified":       false,
			})
		})
		if err != nil {
			return nil, util.WrapStore("users.clear", err)
		}
		empty := ""
		s.Profiles.MirrorVerification(ctx, userID, &empty, &empty, false)
		return s.Get(ctx, userID)
	}

	app := trimmedOrNil(in.AppUsername)
	leet := trimmedOrNil(in.LeetcodeUsername)
	if in.IsVerified == nil && app == nil && leet == nil {
		return nil, util.ErrNothingToUpdate
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userRepo := s.UserRepo.WithTx(tx)
		if err := checkUsernamesFree(ctx, userRepo, userID, app, leet); err != nil {
			return err
		}
		if err := userRepo.EnsureUser(ctx, userID); err != nil {
			return err
		}

		fields := map[string]interface{}{}
		if in.IsVerified != nil {
			fields["is_verified"] = *in.IsVerified
		}
		if app != nil {
			fields["app_username"] = *app
		}
		if leet != nil {
			fields["leetcode_username"] = *leet
		}
		return userRepo.UpdateFields(ctx, userID, fields)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, s.resolveUsernameConflict(ctx, userID, app, leet)
	}
	if err != nil {
		return nil, util.WrapStore("users.patch", err)
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.Profiles.MirrorVerification(ctx, userID, user.AppUsername, user.LeetcodeUsername, user.IsVerified)
	return user, nil
}

func checkUsernamesFree(ctx context.Context, userRepo *repository.UserRepository, userID string, app, leet *string) error {
	if app != nil {
		taken, err := userRepo.AppUsernameHeldByOther(ctx, *app, userID)
		if err != nil {
			return err
		}
		if taken {
			return util.ErrAppUsernameInUse
		}
	}
	if leet != nil {
		taken, err := userRepo.LeetcodeUsernameHeldByOther(ctx, *leet, userID)
		if err != nil {
			return err
		}
		if taken {
			return util.ErrLeetcodeUsernameInUse
		}
	}
	return nil
}

// resolveUsernameConflict 并发写入撞上唯一索引时，重新判断是哪个用户名被占用
func (s *UserService) resolveUsernameConflict(ctx context.Context, userID string, app, leet *string) error {
	if err := checkUsernamesFree(ctx, s.UserRepo, userID, app, leet); err != nil {
		return util.WrapStore("users.conflict", err)
	}
	return util.ErrAppUsernameInUse
}

// Verify 管理员审核通过：写入用户名并标记为已认证，同步登记状态
func (s *UserService) Verify(ctx context.Context, userID, appUsername, leetcodeUsername string) (*model.User, error) {
	userID = strings.TrimSpace(userID)
	app := strings.TrimSpace(appUsername)
	leet := strings.TrimSpace(leetcodeUsername)
	if userID == "" || app == "" || leet == "" {
		return nil, util.ErrVerifyFieldsNeeded
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userRepo := s.UserRepo.WithTx(tx)
		if err := checkUsernamesFree(ctx, userRepo, userID, &app, &leet); err != nil {
			return err
		}
		if err := userRepo.EnsureUser(ctx, userID); err != nil {
			return err
		}
		if err := userRepo.UpdateFields(ctx, userID, map[string]interface{}{
			"app_username":      app,
			"leetcode_username": leet,
			"is_verified":       true,
		}); err != nil {
			return err
		}
		_, err := s.RegistrationRepo.WithTx(tx).UpdateStatus(ctx, userID, model.RegistrationVerified)
		return err
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, s.resolveUsernameConflict(ctx, userID, &app, &leet)
	}
	if err != nil {
		return nil, util.WrapStore("users.verify", err)
	}

	s.Profiles.MirrorVerification(ctx, userID, &app, &leet, true)
	logger.Log.Info("user verified", zap.String("user_id", userID))
	return s.Get(ctx, userID)
}

// Delete 删除用户统计及其进度、台账、任务与登记，返回删除的用户行数
func (s *UserService) Delete(ctx context.Context, userID string) (int64, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, util.ErrUserIDRequired
	}

	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ProgressRepo.WithTx(tx).DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := s.TaskRepo.WithTx(tx).DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if _, err := s.RegistrationRepo.WithTx(tx).Delete(ctx, userID); err != nil {
			return err
		}
		n, err := s.UserRepo.WithTx(tx).Delete(ctx, userID)
		deleted = n
		return err
	})
	if err != nil {
		return 0, util.WrapStore("users.delete", err)
	}

	logger.Log.Info("user deleted", zap.String("user_id", userID), zap.Int64("rows", deleted))
	return deleted, nil
}
