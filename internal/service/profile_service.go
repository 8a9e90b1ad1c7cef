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
)

type ProfileService struct {
	Store repository.ProfileStore
}

func NewProfileService(store repository.ProfileStore) *ProfileService {
	return &ProfileService{Store: store}
}

func (s *ProfileService) Get(ctx context.Context, uid string) (*model.Profile, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, util.ErrUserIDRequired
	}
	profile, err := s.Store.Get(ctx, uid)
	if err != nil {
		return nil, util.WrapStore("profile.get", err)
	}
	return profile, nil
}

// EnsureInput 首次登录时写入的资料字段
type EnsureInput struct {
	Name     string
	Email    string
	PhotoURL string
}

// Ensure 资料不存在时创建，存在时只合并非空的基本字段；管理员与认证标记不从这里写入
func (s *ProfileService) Ensure(ctx context.Context, uid string, in EnsureInput) (*model.Profile, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, util.ErrUserIDRequired
	}

	fields := map[string]interface{}{}
	if v := strings.TrimSpace(in.Name); v != "" {
		fields[model.ProfileFieldName] = v
	}
	if v := strings.TrimSpace(in.Email); v != "" {
		fields[model.ProfileFieldEmail] = strings.ToLower(v)
	}
	if v := strings.TrimSpace(in.PhotoURL); v != "" {
		fields[model.ProfileFieldPhotoURL] = v
	}

	if _, err := s.Store.Get(ctx, uid); errors.Is(err, util.ErrProfileNotFound) {
		fields[model.ProfileFieldIsVerified] = false
	} else if err != nil {
		return nil, util.WrapStore("profile.ensure", err)
	}

	if err := s.Store.Merge(ctx, uid, fields); err != nil {
		return nil, util.WrapStore("profile.ensure", err)
	}
	return s.Get(ctx, uid)
}

// MirrorVerification 将用户名与认证状态同步到资料文档，失败只记录日志
func (s *ProfileService) MirrorVerification(ctx context.Context, uid string, appUsername, leetcodeUsername *string, verified bool) {
	if s == nil || s.Store == nil {
		return
	}
	fields := map[string]interface{}{
		model.ProfileFieldIsVerified: verified,
	}
	if appUsername != nil {
		fields[model.ProfileFieldAppUsername] = *appUsername
	}
	if leetcodeUsername != nil {
		fields[model.ProfileFieldLeetcodeUsername] = *leetcodeUsername
	}
	if err := s.Store.Merge(ctx, uid, fields); err != nil {
		logger.Log.Error("failed to mirror verification into profile",
			zap.String("uid", uid),
			zap.Bool("verified", verified),
			zap.Error(err),
		)
	}
}
