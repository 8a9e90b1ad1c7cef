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
	DefaultRegistrationLimit = 200
	MaxRegistrationLimit     = 500
)

// RegistrationService 排行榜登记，写入时同步到用户统计与资料文档
type RegistrationService struct {
	db               *gorm.DB
	RegistrationRepo *repository.RegistrationRepository
	UserRepo         *repository.UserRepository
	Profiles         *ProfileService
}

func NewRegistrationService(
	db *gorm.DB,
	registrationRepo *repository.RegistrationRepository,
	userRepo *repository.UserRepository,
	profiles *ProfileService,
) *RegistrationService {
	return &RegistrationService{
		db:               db,
		RegistrationRepo: registrationRepo,
		UserRepo:         userRepo,
		Profiles:         profiles,
	}
}

func (s *RegistrationService) List(ctx context.Context, filter model.RegistrationFilter) ([]model.Registration, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultRegistrationLimit
	}
	if filter.Limit > MaxRegistrationLimit {
		filter.Limit = MaxRegistrationLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	filter.Status = strings.ToLower(strings.TrimSpace(filter.Status))
	filter.Query = strings.TrimSpace(filter.Query)

	rows, err := s.RegistrationRepo.List(ctx, filter)
	if err != nil {
		return nil, util.WrapStore("registrations.list", err)
	}
	return orEmpty(rows), nil
}

func (s *RegistrationService) Get(ctx context.Context, uid string) (*model.Registration, error) {
	reg, err := s.RegistrationRepo.FindByUID(ctx, strings.TrimSpace(uid))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrRegistrationNotFound
	}
	if err != nil {
		return nil, util.WrapStore("registrations.get", err)
	}
	return reg, nil
}

// SubmitInput 登记请求；AllowStatus 为 false 时状态固定为 pending
type SubmitInput struct {
	UID              string
	DisplayName      string
	Email            string
	AvatarURL        string
	AppUsername      string
	LeetcodeUsername string
	Status           string
	AllowStatus      bool
}

// Submit 新建或按 uid 更新登记
func (s *RegistrationService) Submit(ctx context.Context, in SubmitInput) (*model.Registration, error) {
	uid := strings.TrimSpace(in.UID)
	app := strings.TrimSpace(in.AppUsername)
	leet := strings.TrimSpace(in.LeetcodeUsername)
	if uid == "" || app == "" || leet == "" {
		return nil, util.ErrUsernamesRequired
	}

	status := model.RegistrationPending
	if in.AllowStatus && strings.TrimSpace(in.Status) != "" {
		status = model.RegistrationStatus(strings.ToLower(strings.TrimSpace(in.Status)))
		if !status.Valid() {
			return nil, util.ErrInvalidStatus
		}
	}

	var saved model.Registration
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		regRepo := s.RegistrationRepo.WithTx(tx)
		if err := checkRegistrationFree(ctx, regRepo, uid, app, leet); err != nil {
			return err
		}

		reg, err := regRepo.FindByUID(ctx, uid)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			reg = &model.Registration{UID: uid}
			applySubmit(reg, in, app, leet, status)
			if err := regRepo.Create(ctx, reg); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			applySubmit(reg, in, app, leet, status)
			if err := regRepo.Save(ctx, reg); err != nil {
				return err
			}
		}
		saved = *reg

		return mirrorIntoUsers(ctx, s.UserRepo.WithTx(tx), uid, app, leet, status == model.RegistrationVerified)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, s.resolveConflict(ctx, uid, app, leet)
	}
	if err != nil {
		return nil, util.WrapStore("registrations.submit", err)
	}

	s.Profiles.MirrorVerification(ctx, uid, &app, &leet, status == model.RegistrationVerified)
	logger.Log.Info("registration saved",
		zap.String("uid", uid),
		zap.String("status", string(status)),
	)
	return &saved, nil
}

func applySubmit(reg *model.Registration, in SubmitInput, app, leet string, status model.RegistrationStatus) {
	if v := strings.TrimSpace(in.DisplayName); v != "" {
		reg.DisplayName = v
	}
	if v := strings.TrimSpace(in.Email); v != "" {
		reg.Email = v
	}
	if v := strings.TrimSpace(in.AvatarURL); v != "" {
		reg.AvatarURL = v
	}
	reg.AppUsername = app
	reg.AppUsernameLower = strings.ToLower(app)
	reg.LeetcodeUsername = leet
	reg.LeetcodeUsernameLower = strings.ToLower(leet)
	reg.Status = status
}

func checkRegistrationFree(ctx context.Context, regRepo *repository.RegistrationRepository, uid, app, leet string) error {
	taken, err := regRepo.LowerTakenByOther(ctx, "app_username_lower", strings.ToLower(app), uid)
	if err != nil {
		return err
	}
	if taken {
		return util.ErrAppUsernameTaken
	}
	taken, err = regRepo.LowerTakenByOther(ctx, "leetcode_username_lower", strings.ToLower(leet), uid)
	if err != nil {
		return err
	}
	if taken {
		return util.ErrLeetcodeUsernameTaken
	}
	return nil
}

// mirrorIntoUsers 用户统计中的用户名被他人占用时视为登记冲突
func mirrorIntoUsers(ctx context.Context, userRepo *repository.UserRepository, uid, app, leet string, verified bool) error {
	taken, err := userRepo.AppUsernameHeldByOther(ctx, app, uid)
	if err != nil {
		return err
	}
	if taken {
		return util.ErrAppUsernameTaken
	}
	taken, err = userRepo.LeetcodeUsernameHeldByOther(ctx, leet, uid)
	if err != nil {
		return err
	}
	if taken {
		return util.ErrLeetcodeUsernameTaken
	}

	if err := userRepo.EnsureUser(ctx, uid); err != nil {
		return err
	}
	return userRepo.UpdateFields(ctx, uid, map[string]interface{}{
		"app_username":      app,
		"leetcode_username": leet,
		"is_verified":       verified,
	})
}

// resolveConflict 并发写入撞上唯一索引时，重新判断是哪个用户名冲突
func (s *RegistrationService) resolveConflict(ctx context.Context, uid, app, leet string) error {
	if err := checkRegistrationFree(ctx, s.RegistrationRepo, uid, app, leet); err != nil {
		if util.IsDomainError(err) {
			return err
		}
		return util.WrapStore("registrations.conflict", err)
	}
	taken, err := s.UserRepo.LeetcodeUsernameHeldByOther(ctx, leet, uid)
	if err == nil && taken {
		return util.ErrLeetcodeUsernameTaken
	}
	return util.ErrAppUsernameTaken
}

// UpdateStatus 管理员修改登记状态，并同步用户认证标记
func (s *RegistrationService) UpdateStatus(ctx context.Context, uid, rawStatus string) (*model.Registration, error) {
	uid = strings.TrimSpace(uid)
	status := model.RegistrationStatus(strings.ToLower(strings.TrimSpace(rawStatus)))
	if !status.Valid() {
		return nil, util.ErrInvalidStatus
	}

	var saved model.Registration
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		regRepo := s.RegistrationRepo.WithTx(tx)
		reg, err := regRepo.FindByUID(ctx, uid)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrRegistrationNotFound
		}
		if err != nil {
			return err
		}
		reg.Status = status
		if err := regRepo.Save(ctx, reg); err != nil {
			return err
		}
		saved = *reg
		return mirrorIntoUsers(ctx, s.UserRepo.WithTx(tx), uid, reg.AppUsername, reg.LeetcodeUsername, status == model.RegistrationVerified)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, util.ErrAppUsernameTaken
	}
	if err != nil {
		return nil, util.WrapStore("registrations.status", err)
	}

	s.Profiles.MirrorVerification(ctx, uid, &saved.AppUsername, &saved.LeetcodeUsername, status == model.RegistrationVerified)
	logger.Log.Info("registration status changed",
		zap.String("uid", uid),
		zap.String("status", string(status)),
	)
	return &saved, nil
}

func (s *RegistrationService) Delete(ctx context.Context, uid string) error {
	if _, err := s.RegistrationRepo.Delete(ctx, strings.TrimSpace(uid)); err != nil {
		return util.WrapStore("registrations.delete", err)
	}
	return nil
}
