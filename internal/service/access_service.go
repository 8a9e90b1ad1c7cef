package service

import (
	"context"
	"errors"
	"mindtrack_backend/internal/repository"
	"mindtrack_backend/internal/util"
	"mindtrack_backend/pkg/logger"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// AccessService 管理员判定：配置的管理员邮箱为默认值，令牌声明覆盖邮箱，资料文档覆盖二者
type AccessService struct {
	Profiles    repository.ProfileStore
	AuthEnabled bool

	mu          sync.RWMutex
	adminEmails map[string]bool
}

func NewAccessService(profiles repository.ProfileStore, authEnabled bool, adminEmails []string) *AccessService {
	s := &AccessService{
		Profiles:    profiles,
		AuthEnabled: authEnabled,
	}
	s.SetAdminEmails(adminEmails)
	return s
}

// SetAdminEmails 配置热更新时替换管理员邮箱
func (s *AccessService) SetAdminEmails(emails []string) {
	set := make(map[string]bool, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			set[e] = true
		}
	}
	s.mu.Lock()
	s.adminEmails = set
	s.mu.Unlock()
}

func (s *AccessService) isAdminEmail(email string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adminEmails[strings.ToLower(strings.TrimSpace(email))]
}

// IsAdmin 资料文档读取失败时返回 StoreError，不退回令牌或邮箱的判定结果
func (s *AccessService) IsAdmin(ctx context.Context, claims *util.Claims) (bool, error) {
	if claims == nil {
		return false, nil
	}

	admin := s.isAdminEmail(claims.Email)
	if claims.IsAdmin != nil {
		admin = *claims.IsAdmin
	}

	if s.Profiles != nil {
		profile, err := s.Profiles.Get(ctx, claims.UID)
		switch {
		case err == nil:
			if profile.IsAdmin != nil {
				admin = *profile.IsAdmin
			}
		case errors.Is(err, util.ErrProfileNotFound):
		default:
			logger.Log.Error("profile lookup failed during admin check",
				zap.String("uid", claims.UID),
				zap.Error(err),
			)
			return false, util.WrapStore("access.admin", err)
		}
	}
	return admin, nil
}

// CanActAs 未启用认证时放行；否则只能操作自己的数据，管理员除外
func (s *AccessService) CanActAs(ctx context.Context, claims *util.Claims, userID string) (bool, error) {
	if !s.AuthEnabled {
		return true, nil
	}
	if claims == nil {
		return false, nil
	}
	if claims.UID == userID {
		return true, nil
	}
	return s.IsAdmin(ctx, claims)
}
