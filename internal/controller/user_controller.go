package controller

import (
	"errors"
	"mindtrack_backend/internal/model"
	"mindtrack_backend/internal/service"
	"mindtrack_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// UserController 用户统计查询与管理员审核
type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// PatchUserRequest 管理员更新用户请求
// swagger:model PatchUserRequest
type PatchUserRequest struct {
	IsVerified       *bool   `json:"is_verified"`
	AppUsername      *string `json:"app_username"`
	LeetcodeUsername *string `json:"leetcode_username"`
	ClearUsernames   bool    `json:"clear_usernames"`
}

// VerifyUserRequest 审核通过请求
// swagger:model VerifyUserRequest
type VerifyUserRequest struct {
	UserID           string `json:"user_id"`
	AppUsername      string `json:"app_username"`
	LeetcodeUsername string `json:"leetcode_username"`
}

// DeleteUserRequest 删除用户请求
// swagger:model DeleteUserRequest
type DeleteUserRequest struct {
	UserID string `json:"user_id"`
}

// ListUsers godoc
// @Summary 获取用户列表
// @Description 管理员查看用户统计，按总解题数、最长连续天数排序
// @Tags 用户
// @Produce json
// @Security ApiKeyAuth
// @Param verified query string false "是否已认证 (true|1|false|0)"
// @Param q query string false "匹配 user_id 或用户名"
// @Param limit query int false "每页条数 (最大500)" default(100)
// @Param offset query int false "偏移量" default(0)
// @Success 200 {object} map[string]interface{} "ok, rows"
// @Failure 403 {object} util.Response "权限不足"
// @Router /api/users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	filter := model.UserFilter{
		Query:  ctx.Query("q"),
		Limit:  util.ClampInt(ctx.Query("limit"), service.DefaultUserLimit, 1, service.MaxUserLimit),
		Offset: util.ParseOffset(ctx.Query("offset")),
	}
	if v, ok := util.ParseBoolFlag(ctx.Query("verified")); ok {
		filter.Verified = &v
	}

	rows, err := c.UserService.List(ctx.Request.Context(), filter)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"rows": rows})
}

// GetUser godoc
// @Summary 获取单个用户
// @Tags 用户
// @Produce json
// @Param user_id path string true "用户ID"
// @Success 200 {object} map[string]interface{} "ok, row"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/users/{user_id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	user, err := c.UserService.Get(ctx.Request.Context(), ctx.Param("user_id"))
	if errors.Is(err, util.ErrUserNotFound) {
		util.NotFound(ctx, "Not found")
		return
	}
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"row": user})
}

// PatchUser godoc
// @Summary 更新用户
// @Description 管理员修改认证状态或用户名，clear_usernames 会清空用户名并取消认证
// @Tags 用户
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param user_id path string true "用户ID"
// @Param request body PatchUserRequest true "更新内容"
// @Success 200 {object} map[string]interface{} "ok, row"
// @Failure 400 {object} util.Response "没有可更新的字段"
// @Failure 409 {object} util.Response "用户名已被占用"
// @Router /api/users/{user_id} [patch]
func (c *UserController) PatchUser(ctx *gin.Context) {
	var request PatchUserRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		util.BadRequest(ctx, "Invalid JSON body")
		return
	}

	user, err := c.UserService.Patch(ctx.Request.Context(), ctx.Param("user_id"), service.PatchUserInput{
		IsVerified:       request.IsVerified,
		AppUsername:      request.AppUsername,
		LeetcodeUsername: request.LeetcodeUsername,
		ClearUsernames:   request.ClearUsernames,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"row": user})
}

// GetSummary godoc
// @Summary 获取用户解题汇总
// @Tags 用户
// @Produce json
// @Param user_id path string true "用户ID"
// @Success 200 {object} map[string]interface{} "ok, row"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/users/{user_id}/summary [get]
func (c *UserController) GetSummary(ctx *gin.Context) {
	summary, err := c.UserService.Summary(ctx.Request.Context(), ctx.Param("user_id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"row": summary})
}

// GetProgress godoc
// @Summary 获取用户进度
// @Description 汇总信息，附带已解决与已收藏题目数
// @Tags 用户
// @Produce json
// @Param user_id path string true "用户ID"
// @Success 200 {object} map[string]interface{} "ok, row"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/users/{user_id}/progress [get]
func (c *UserController) GetProgress(ctx *gin.Context) {
	summary, err := c.UserService.Progress(ctx.Request.Context(), ctx.Param("user_id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"row": summary})
}

// GetUserStats godoc
// @Summary 查询用户统计
// @Description 按 user_id 或应用用户名（不区分大小写）查询
// @Tags 用户
// @Produce json
// @Param user_id query string false "用户ID"
// @Param username query string false "应用用户名"
// @Success 200 {object} map[string]interface{} "ok, user"
// @Failure 400 {object} util.Response "缺少查询条件"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/user-stats [get]
func (c *UserController) GetUserStats(ctx *gin.Context) {
	user, err := c.UserService.Stats(ctx.Request.Context(), ctx.Query("user_id"), ctx.Query("username"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"user": user})
}

// VerifyUser godoc
// @Summary 审核通过用户
// @Description 写入用户名并标记为已认证，同步资料文档与登记状态
// @Tags 用户
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body VerifyUserRequest true "审核请求"
// @Success 200 {object} map[string]interface{} "ok, row"
// @Failure 400 {object} util.Response "缺少字段"
// @Failure 409 {object} util.Response "用户名已被占用"
// @Router /api/verify-user [post]
func (c *UserController) VerifyUser(ctx *gin.Context) {
	var request VerifyUserRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		util.BadRequest(ctx, "Invalid JSON body")
		return
	}

	user, err := c.UserService.Verify(ctx.Request.Context(), request.UserID, request.AppUsername, request.LeetcodeUsername)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"row": user})
}

// DeleteUser godoc
// @Summary 删除用户
// @Description 删除用户统计、进度、每日台账、任务与登记
// @Tags 用户
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body DeleteUserRequest true "删除请求"
// @Success 200 {object} map[string]interface{} "ok, deleted"
// @Failure 400 {object} util.Response "缺少 user_id"
// @Router /api/delete-user [post]
func (c *UserController) DeleteUser(ctx *gin.Context) {
	var request DeleteUserRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		util.BadRequest(ctx, "Invalid JSON body")
		return
	}

	deleted, err := c.UserService.Delete(ctx.Request.Context(), request.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": deleted})
}
