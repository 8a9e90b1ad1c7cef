package controller

import (
	"mindtrack_backend/internal/model"
	"mindtrack_backend/internal/repository"
	"mindtrack_backend/internal/service"
	"mindtrack_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// QuestionController 题库浏览
type QuestionController struct {
	QuestionService *service.QuestionService
}

func NewQuestionController(questionService *service.QuestionService) *QuestionController {
	return &QuestionController{QuestionService: questionService}
}

// ListQuestions godoc
// @Summary 获取题目列表
// @Description 支持标题搜索、难度、分类、题单、公司筛选，分类/题单/公司可传 ID 或名称
// @Tags 题库
// @Produce json
// @Param limit query int false "每页条数 (1-50)" default(50)
// @Param offset query int false "偏移量" default(0)
// @Param q query string false "标题关键词"
// @Param difficulty query []string false "难度" collectionFormat(multi)
// @Param category query []string false "分类" collectionFormat(multi)
// @Param sheet query []string false "题单" collectionFormat(multi)
// @Param company query []string false "公司" collectionFormat(multi)
// @Param user_id query string false "附带该用户的进度"
// @Success 200 {object} map[string]interface{} "ok, total, limit, offset, columns, rows"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /api/questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	filter := model.QuestionFilter{
		Query:        ctx.Query("q"),
		Difficulties: util.SplitList(ctx.QueryArray("difficulty")),
		Categories:   util.SplitList(ctx.QueryArray("category")),
		Sheets:       util.SplitList(ctx.QueryArray("sheet")),
		Companies:    util.SplitList(ctx.QueryArray("company")),
		UserID:       ctx.Query("user_id"),
		Limit:        util.ClampInt(ctx.Query("limit"), service.DefaultQuestionLimit, 1, service.MaxQuestionLimit),
		Offset:       util.ParseOffset(ctx.Query("offset")),
	}

	rows, total, err := c.QuestionService.List(ctx.Request.Context(), filter)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"total":   total,
		"limit":   filter.Limit,
		"offset":  filter.Offset,
		"columns": repository.QuestionColumns,
		"rows":    rows,
	})
}

// GetQuestion godoc
// @Summary 获取题目详情
// @Tags 题库
// @Produce json
// @Param question_id path int true "题目ID"
// @Success 200 {object} map[string]interface{} "ok, data"
// @Failure 400 {object} util.Response "题目ID无效"
// @Failure 404 {object} util.Response "题目不存在"
// @Router /api/questions/{question_id} [get]
func (c *QuestionController) GetQuestion(ctx *gin.Context) {
	detail, err := c.QuestionService.Detail(ctx.Request.Context(), ctx.Param("question_id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"data": detail})
}

// ListCategories godoc
// @Summary 获取分类列表
// @Tags 题库
// @Produce json
// @Success 200 {object} map[string]interface{} "ok, rows"
// @Router /api/categories [get]
func (c *QuestionController) ListCategories(ctx *gin.Context) {
	rows, err := c.QuestionService.Categories(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"rows": rows})
}

// ListCompanies godoc
// @Summary 获取公司列表
// @Tags 题库
// @Produce json
// @Success 200 {object} map[string]interface{} "ok, rows"
// @Router /api/companies [get]
func (c *QuestionController) ListCompanies(ctx *gin.Context) {
	rows, err := c.QuestionService.Companies(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"rows": rows})
}

// ListSheets godoc
// @Summary 获取题单列表
// @Tags 题库
// @Produce json
// @Success 200 {object} map[string]interface{} "ok, rows"
// @Router /api/sheets [get]
func (c *QuestionController) ListSheets(ctx *gin.Context) {
	rows, err := c.QuestionService.Sheets(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"rows": rows})
}
