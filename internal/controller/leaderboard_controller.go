package controller

import (
	"mindtrack_backend/internal/service"
	"mindtrack_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LeaderboardController struct {
	LeaderboardService *service.LeaderboardService
}

func NewLeaderboardController(leaderboardService *service.LeaderboardService) *LeaderboardController {
	return &LeaderboardController{LeaderboardService: leaderboardService}
}

// GetLeaderboard godoc
// @Summary 获取排行榜
// @Description 仅包含已认证且设置了用户名的用户，按连续天数、总解题数、用户名排序
// @Tags 排行榜
// @Produce json
// @Param limit query int false "每页条数 (1-200)" default(100)
// @Param offset query int false "偏移量" default(0)
// @Param user_id query string false "返回该用户的名次"
// @Success 200 {object} map[string]interface{} "ok, total, limit, offset, rows, my"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /api/leaderboard [get]
func (c *LeaderboardController) GetLeaderboard(ctx *gin.Context) {
	limit := util.ParseLimit(ctx.Query("limit"), service.DefaultLeaderboardLimit)
	offset := util.ParseOffset(ctx.Query("offset"))

	page, err := c.LeaderboardService.Get(ctx.Request.Context(), limit, offset, ctx.Query("user_id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"total":  page.Total,
		"limit":  page.Limit,
		"offset": page.Offset,
		"rows":   page.Rows,
		"my":     page.My,
	})
}
