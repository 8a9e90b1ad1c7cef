package util

import (
	"errors"
	"mindtrack_backend/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一错误响应结构
type Response struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// ListResponse 分页列表响应结构
type ListResponse struct {
	OK     bool        `json:"ok"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
	Rows   interface{} `json:"rows"`
}

func body(fields gin.H) gin.H {
	out := gin.H{"ok": true}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func Success(c *gin.Context, fields gin.H) {
	c.JSON(http.StatusOK, body(fields))
}

func Created(c *gin.Context, fields gin.H) {
	c.JSON(http.StatusCreated, body(fields))
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		OK:    false,
		Error: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	InternalServerError(c)
}

// HandleError 将业务错误映射为对应的 HTTP 状态码
func HandleError(c *gin.Context, err error) {
	switch {
	case matchAny(err, badRequestErrors):
		BadRequest(c, err.Error())
	case matchAny(err, notFoundErrors):
		NotFound(c, err.Error())
	case matchAny(err, conflictErrors):
		Conflict(c, err.Error())
	case errors.Is(err, ErrPermissionDenied):
		Forbidden(c)
	default:
		LogInternalError(c, err)
	}
}
