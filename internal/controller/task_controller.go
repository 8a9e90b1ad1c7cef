package controller

import (
	"mindtrack_backend/internal/service"
	"mindtrack_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// TaskController 处理个人任务相关的API请求
type TaskController struct {
	TaskService *service.TaskService
}

func NewTaskController(taskService *service.TaskService) *TaskController {
	return &TaskController{TaskService: taskService}
}

// CreateTaskRequest 创建任务请求
// swagger:model CreateTaskRequest
type CreateTaskRequest struct {
	Title        string   `json:"title"`
	Date         string   `json:"date" example:"2024-05-01"`
	Deadline     string   `json:"deadline" example:"2024-05-03"`
	Notification bool     `json:"notification"`
	Reminders    []string `json:"reminders" example:"09:00"`
	Subtasks     []string `json:"subtasks"`
}

// UpdateTaskRequest 更新任务请求，未提供的字段保持不变
// swagger:model UpdateTaskRequest
type UpdateTaskRequest struct {
	Title        *string   `json:"title"`
	Date         *string   `json:"date"`
	Deadline     *string   `json:"deadline"`
	Notification *bool     `json:"notification"`
	Reminders    *[]string `json:"reminders"`
}

// AddSubtaskRequest 添加子任务请求
// swagger:model AddSubtaskRequest
type AddSubtaskRequest struct {
	Title string `json:"title"`
}

// ListTasks godoc
// @Summary 获取任务列表
// @Description today 返回计划日期或截止日期为今天的任务，all 返回全部任务并按截止日期排序
// @Tags 任务管理
// @Produce json
// @Security ApiKeyAuth
// @Param user_id path string true "用户ID"
// @Param view query string false "视图 (today|all)" default(all)
// @Success 200 {object} map[string]interface{} "ok, rows"
// @Failure 403 {object} util.Response "无权操作该用户"
// @Router /api/users/{user_id}/tasks [get]
func (c *TaskController) ListTasks(ctx *gin.Context) {
	tasks, err := c.TaskService.List(ctx.Request.Context(), ctx.Param("user_id"), ctx.DefaultQuery("view", service.TaskViewAll))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"rows": tasks})
}

// CreateTask godoc
// @Summary 创建任务
// @Tags 任务管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param user_id path string true "用户ID"
// @Param request body CreateTaskRequest true "任务内容"
// @Success 201 {object} map[string]interface{} "ok, data"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/users/{user_id}/tasks [post]
func (c *TaskController) CreateTask(ctx *gin.Context) {
	var request CreateTaskRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		util.BadRequest(ctx, "Invalid JSON body")
		return
	}

	task, err := c.TaskService.Create(ctx.Request.Context(), ctx.Param("user_id"), service.CreateTaskInput{
		Title:        request.Title,
		Date:         request.Date,
		Deadline:     request.Deadline,
		Notification: request.Notification,
		Reminders:    request.Reminders,
		Subtasks:     request.Subtasks,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"data": task})
}

// UpdateTask godoc
// @Summary 更新任务
// @Tags 任务管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param user_id path string true "用户ID"
// @Param task_id path string true "任务ID"
// @Param request body UpdateTaskRequest true "更新内容"
// @Success 200 {object} map[string]interface{} "ok, data"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "任务不存在"
// @Router /api/users/{user_id}/tasks/{task_id} [patch]
func (c *TaskController) UpdateTask(ctx *gin.Context) {
	var request UpdateTaskRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		util.BadRequest(ctx, "Invalid JSON body")
		return
	}

	task, err := c.TaskService.Update(ctx.Request.Context(), ctx.Param("user_id"), ctx.Param("task_id"), service.UpdateTaskInput{
		Title:        request.Title,
		Date:         request.Date,
		Deadline:     request.Deadline,
		Notification: request.Notification,
		Reminders:    request.Reminders,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"data": task})
}

// DeleteTask godoc
// @Summary 删除任务
// @Tags 任务管理
// @Security ApiKeyAuth
// @Param user_id path string true "用户ID"
// @Param task_id path string true "任务ID"
// @Success 204 "删除成功"
// @Failure 404 {object} util.Response "任务不存在"
// @Router /api/users/{user_id}/tasks/{task_id} [delete]
func (c *TaskController) DeleteTask(ctx *gin.Context) {
	if err := c.TaskService.Delete(ctx.Request.Context(), ctx.Param("user_id"), ctx.Param("task_id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

// ToggleTask godoc
// @Summary 切换任务完成状态
// @Description 子任务随任务一起完成或取消完成
// @Tags 任务管理
// @Produce json
// @Security ApiKeyAuth
// @Param user_id path string true "用户ID"
// @Param task_id path string true "任务ID"
// @Success 200 {object} map[string]interface{} "ok, data"
// @Failure 404 {object} util.Response "任务不存在"
// @Router /api/users/{user_id}/tasks/{task_id}/toggle [post]
func (c *TaskController) ToggleTask(ctx *gin.Context) {
	task, err := c.TaskService.Toggle(ctx.Request.Context(), ctx.Param("user_id"), ctx.Param("task_id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"data": task})
}

// AddSubtask godoc
// @Summary 添加子任务
// @Tags 任务管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param user_id path string true "用户ID"
// @Param task_id path string true "任务ID"
// @Param request body AddSubtaskRequest true "子任务"
// @Success 200 {object} map[string]interface{} "ok, data"
// @Failure 400 {object} util.Response "标题为空"
// @Failure 404 {object} util.Response "任务不存在"
// @Router /api/users/{user_id}/tasks/{task_id}/subtasks [post]
func (c *TaskController) AddSubtask(ctx *gin.Context) {
	var request AddSubtaskRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		util.BadRequest(ctx, "Invalid JSON body")
		return
	}

	task, err := c.TaskService.AddSubtask(ctx.Request.Context(), ctx.Param("user_id"), ctx.Param("task_id"), request.Title)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"data": task})
}

// ToggleSubtask godoc
// @Summary 切换子任务完成状态
// @Tags 任务管理
// @Produce json
// @Security ApiKeyAuth
// @Param user_id path string true "用户ID"
// @Param task_id path string true "任务ID"
// @Param subtask_id path string true "子任务ID"
// @Success 200 {object} map[string]interface{} "ok, data"
// @Failure 404 {object} util.Response "任务或子任务不存在"
// @Router /api/users/{user_id}/tasks/{task_id}/subtasks/{subtask_id}/toggle [post]
func (c *TaskController) ToggleSubtask(ctx *gin.Context) {
	task, err := c.TaskService.ToggleSubtask(ctx.Request.Context(), ctx.Param("user_id"), ctx.Param("task_id"), ctx.Param("subtask_id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"data": task})
}

// DeleteSubtask godoc
// @Summary 删除子任务
// @Tags 任务管理
// @Produce json
// @Security ApiKeyAuth
// @Param user_id path string true "用户ID"
// @Param task_id path string true "任务ID"
// @Param subtask_id path string true "子任务ID"
// @Success 200 {object} map[string]interface{} "ok, data"
// @Failure 404 {object} util.Response "任务或子任务不存在"
// @Router /api/users/{user_id}/tasks/{task_id}/subtasks/{subtask_id} [delete]
func (c *TaskController) DeleteSubtask(ctx *gin.Context) {
	task, err := c.TaskService.DeleteSubtask(ctx.Request.Context(), ctx.Param("user_id"), ctx.Param("task_id"), ctx.Param("subtask_id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"data": task})
}
