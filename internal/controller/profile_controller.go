package controller

import (
	"mindtrack_backend/internal/service"
	"mindtrack_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProfileController struct {
	ProfileService *service.ProfileService
}

func NewProfileController(profileService *service.ProfileService) *ProfileController {
	return &ProfileController{ProfileService: profileService}
}

// EnsureProfileRequest 首次登录资料，管理员与认证标记不可由此写入
// swagger:model EnsureProfileRequest
type EnsureProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhotoURL string `json:"photo_url"`
}

// GetProfile godoc
// @Summary 获取用户资料
// @Tags 资料
// @Produce json
// @Security ApiKeyAuth
// @Param user_id path string true "用户ID"
// @Success 200 {object} map[string]interface{} "ok, data"
// @Failure 404 {object} util.Response "资料不存在"
// @Router /api/users/{user_id}/profile [get]
func (c *ProfileController) GetProfile(ctx *gin.Context) {
	profile, err := c.ProfileService.Get(ctx.Request.Context(), ctx.Param("user_id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"data": profile})
}

// EnsureProfile godoc
// @Summary 初始化用户资料
// @Description 资料不存在时创建，存在时合并姓名、邮箱与头像
// @Tags 资料
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param user_id path string true "用户ID"
// @Param request body EnsureProfileRequest true "资料"
// @Success 200 {object} map[string]interface{} "ok, data"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/users/{user_id}/profile [put]
func (c *ProfileController) EnsureProfile(ctx *gin.Context) {
	var request EnsureProfileRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		util.BadRequest(ctx, "Invalid JSON body")
		return
	}

	profile, err := c.ProfileService.Ensure(ctx.Request.Context(), ctx.Param("user_id"), service.EnsureInput{
		Name:     request.Name,
		Email:    request.Email,
		PhotoURL: request.PhotoURL,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"data": profile})
}
