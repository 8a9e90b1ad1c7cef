package controller

import (
	"mindtrack_backend/internal/model"
	"mindtrack_backend/internal/service"
	"mindtrack_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
	Access          *service.AccessService
}

func NewProgressController(progressService *service.ProgressService, access *service.AccessService) *ProgressController {
	return &ProgressController{
		ProgressService: progressService,
		Access:          access,
	}
}

// UpdateProgressRequest 进度更新请求，question_id 可以是字符串或数字
// swagger:model UpdateProgressRequest
type UpdateProgressRequest struct {
	UserID     string       `json:"user_id"`
	QuestionID model.FlexID `json:"question_id" swaggertype:"string"`
	Action     string       `json:"action" enums:"star,unstar,solve,unsolve"`
}

// UpdateProgress godoc
// @Summary 更新题目进度
// @Description 收藏/取消收藏、解决/取消解决题目，并重新计算解题数与连续天数
// @Tags 进度
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body UpdateProgressRequest true "进度更新请求"
// @Success 200 {object} map[string]interface{} "ok, is_starred, is_solved"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 403 {object} util.Response "无权操作该用户"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /api/progress [post]
func (c *ProgressController) UpdateProgress(ctx *gin.Context) {
	var request UpdateProgressRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		util.BadRequest(ctx, "Invalid JSON body")
		return
	}

	// 先校验参数，再做权限判断
	input, err := service.ParseProgressInput(request.UserID, string(request.QuestionID), model.ProgressAction(request.Action))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	allowed, err := c.Access.CanActAs(ctx.Request.Context(), util.GetUserFromContext(ctx), input.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if !allowed {
		util.Forbidden(ctx)
		return
	}

	result, err := c.ProgressService.Apply(ctx.Request.Context(), input)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"is_starred": util.BoolInt(result.IsStarred),
		"is_solved":  util.BoolInt(result.IsSolved),
	})
}
