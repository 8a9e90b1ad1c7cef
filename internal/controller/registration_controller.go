package controller

import (
	"mindtrack_backend/internal/model"
	"mindtrack_backend/internal/service"
	"mindtrack_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type RegistrationController struct {
	RegistrationService *service.RegistrationService
	Access              *service.AccessService
}

func NewRegistrationController(registrationService *service.RegistrationService, access *service.AccessService) *RegistrationController {
	return &RegistrationController{
		RegistrationService: registrationService,
		Access:              access,
	}
}

// SubmitRegistrationRequest 排行榜登记请求
// swagger:model SubmitRegistrationRequest
type SubmitRegistrationRequest struct {
	UID              string `json:"uid"`
	DisplayName      string `json:"display_name"`
	Email            string `json:"email"`
	AvatarURL        string `json:"avatar_url"`
	AppUsername      string `json:"app_username"`
	LeetcodeUsername string `json:"leetcode_username"`
	Status           string `json:"status" enums:"pending,verified,rejected"`
}

// UpdateRegistrationStatusRequest 修改登记状态请求
// swagger:model UpdateRegistrationStatusRequest
type UpdateRegistrationStatusRequest struct {
	Status string `json:"status" enums:"pending,verified,rejected"`
}

// ListRegistrations godoc
// @Summary 获取登记列表
// @Tags 登记
// @Produce json
// @Security ApiKeyAuth
// @Param status query string false "状态"
// @Param q query string false "匹配显示名、用户名或邮箱"
// @Param limit query int false "每页条数 (最大500)" default(200)
// @Param offset query int false "偏移量" default(0)
// @Success 200 {object} map[string]interface{} "ok, rows"
// @Failure 403 {object} util.Response "权限不足"
// @Router /api/registrations [get]
func (c *RegistrationController) ListRegistrations(ctx *gin.Context) {
	rows, err := c.RegistrationService.List(ctx.Request.Context(), model.RegistrationFilter{
		Status: ctx.Query("status"),
		Query:  ctx.Query("q"),
		Limit:  util.ClampInt(ctx.Query("limit"), service.DefaultRegistrationLimit, 1, service.MaxRegistrationLimit),
		Offset: util.ParseOffset(ctx.Query("offset")),
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"rows": rows})
}

// SubmitRegistration godoc
// @Summary 提交排行榜登记
// @Description 按 uid 新建或更新登记，非管理员提交的状态固定为 pending
// @Tags 登记
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body SubmitRegistrationRequest true "登记请求"
// @Success 200 {object} map[string]interface{} "ok, row"
// @Failure 400 {object} util.Response "缺少字段"
// @Failure 409 {object} util.Response "用户名已被占用"
// @Router /api/registrations [post]
func (c *RegistrationController) SubmitRegistration(ctx *gin.Context) {
	var request SubmitRegistrationRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		util.BadRequest(ctx, "Invalid JSON body")
		return
	}

	claims := util.GetUserFromContext(ctx)
	if request.UID != "" {
		allowed, err := c.Access.CanActAs(ctx.Request.Context(), claims, request.UID)
		if err != nil {
			util.HandleError(ctx, err)
			return
		}
		if !allowed {
			util.Forbidden(ctx)
			return
		}
	}

	allowStatus := !c.Access.AuthEnabled
	if !allowStatus {
		admin, err := c.Access.IsAdmin(ctx.Request.Context(), claims)
		if err != nil {
			util.HandleError(ctx, err)
			return
		}
		allowStatus = admin
	}

	row, err := c.RegistrationService.Submit(ctx.Request.Context(), service.SubmitInput{
		UID:              request.UID,
		DisplayName:      request.DisplayName,
		Email:            request.Email,
		AvatarURL:        request.AvatarURL,
		AppUsername:      request.AppUsername,
		LeetcodeUsername: request.LeetcodeUsername,
		Status:           request.Status,
		AllowStatus:      allowStatus,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"row": row})
}

// GetRegistration godoc
// @Summary 获取单条登记
// @Tags 登记
// @Produce json
// @Param user_id path string true "用户ID"
// @Success 200 {object} map[string]interface{} "ok, row"
// @Failure 404 {object} util.Response "登记不存在"
// @Router /api/registrations/{user_id} [get]
func (c *RegistrationController) GetRegistration(ctx *gin.Context) {
	row, err := c.RegistrationService.Get(ctx.Request.Context(), ctx.Param("user_id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"row": row})
}

// UpdateRegistrationStatus godoc
// @Summary 修改登记状态
// @Description 管理员修改状态，并同步用户认证标记与资料文档
// @Tags 登记
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param user_id path string true "用户ID"
// @Param request body UpdateRegistrationStatusRequest true "状态"
// @Success 200 {object} map[string]interface{} "ok, row"
// @Failure 400 {object} util.Response "状态无效"
// @Failure 404 {object} util.Response "登记不存在"
// @Router /api/registrations/{user_id} [patch]
func (c *RegistrationController) UpdateRegistrationStatus(ctx *gin.Context) {
	var request UpdateRegistrationStatusRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		util.BadRequest(ctx, "Invalid JSON body")
		return
	}

	row, err := c.RegistrationService.UpdateStatus(ctx.Request.Context(), ctx.Param("user_id"), request.Status)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"row": row})
}

// DeleteRegistration godoc
// @Summary 删除登记
// @Tags 登记
// @Security ApiKeyAuth
// @Param user_id path string true "用户ID"
// @Success 204 "删除成功"
// @Router /api/registrations/{user_id} [delete]
func (c *RegistrationController) DeleteRegistration(ctx *gin.Context) {
	if err := c.RegistrationService.Delete(ctx.Request.Context(), ctx.Param("user_id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}
