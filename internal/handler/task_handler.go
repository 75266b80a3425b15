package handler

import (
	"net/http"

	"github.com/YyItRoad/ai-trade/internal/service"
	"github.com/YyItRoad/ai-trade/internal/xe"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// TaskHandler 定时任务管理HTTP处理器
type TaskHandler struct {
	logger      *zap.Logger
	taskService *service.TaskService
}

func NewTaskHandler(logger *zap.Logger, taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{
		logger:      logger,
		taskService: taskService,
	}
}

// Create 创建定时任务
// POST /api/tasks
func (h *TaskHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var in service.TaskInput
	if err := c.Bind(&in); err != nil {
		return xe.ErrInvalidParams
	}

	task, err := h.taskService.CreateTask(ctx, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// List 列出所有任务及下次触发时间
// GET /api/tasks
func (h *TaskHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.taskService.FindTasks(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Update 更新定时任务
// PUT /api/tasks/:id
func (h *TaskHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var in service.TaskInput
	if err := c.Bind(&in); err != nil {
		return xe.ErrInvalidParams
	}

	if err := h.taskService.UpdateTask(ctx, c.Param("id"), in); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "更新成功",
	})
}

// SetActive 启用或停用任务
// PUT /api/tasks/:id/active
func (h *TaskHandler) SetActive(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		IsActive bool `json:"isActive"`
	}
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}

	if err := h.taskService.SetTaskActive(ctx, c.Param("id"), req.IsActive); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "操作成功",
	})
}

// Delete 删除任务
// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.taskService.DeleteTask(ctx, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "删除成功",
	})
}

// RegisterRoutes 注册路由
func (h *TaskHandler) RegisterRoutes(g *echo.Group) {
	tasks := g.Group("/tasks")
	tasks.POST("", h.Create)
	tasks.GET("", h.List)
	tasks.PUT("/:id", h.Update)
	tasks.PUT("/:id/active", h.SetActive)
	tasks.DELETE("/:id", h.Delete)
}

// pageParams 解析分页参数，页码从1开始，页大小限制在1到100之间
func pageParams(c echo.Context) (int, int) {
	page := cast.ToInt(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	pageSize := cast.ToInt(c.QueryParam("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
