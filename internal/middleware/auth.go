package middleware

import (
	"mindtrack_backend/internal/config"
	"mindtrack_backend/internal/service"
	"mindtrack_backend/internal/util"
	"mindtrack_backend/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware 校验身份提供方签发的令牌；未启用认证时直接放行
func AuthMiddleware(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.Secret)
		if err != nil {
			logger.Log.Debug("JWT parse failed", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(util.ContextUserKey, claims)
		c.Next()
	}
}

// AdminMiddleware 仅管理员可访问
func AdminMiddleware(access *service.AccessService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !access.AuthEnabled {
			c.Next()
			return
		}

		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		admin, err := access.IsAdmin(c.Request.Context(), user)
		if err != nil {
			util.HandleError(c, err)
			c.Abort()
			return
		}
		if !admin {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// SelfOrAdmin 路径参数中的用户必须是当前用户，管理员除外
func SelfOrAdmin(access *service.AccessService, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := access.CanActAs(c.Request.Context(), util.GetUserFromContext(c), c.Param(param))
		if err != nil {
			util.HandleError(c, err)
			c.Abort()
			return
		}
		if !allowed {
			if util.GetUserFromContext(c) == nil {
				util.Unauthorized(c)
			} else {
				util.Forbidden(c)
			}
			c.Abort()
			return
		}
		c.Next()
	}
}
