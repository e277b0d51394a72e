package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"quicktask/internal/models"
	"quicktask/internal/services"
)

// NotificationReader is the read side of the notification cache.
type NotificationReader interface {
	GetForUser(ctx context.Context, userID int64) (*models.NotificationEntry, error)
}

type TaskHandler struct {
	service       services.TaskService
	notifications NotificationReader
}

func NewTaskHandler(service services.TaskService, notifications NotificationReader) *TaskHandler {
	return &TaskHandler{service: service, notifications: notifications}
}

type createTaskRequest struct {
	Title       string              `json:"title" binding:"required"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"` // low|medium|high
	Status      models.TaskStatus   `json:"status"`   // todo|in-progress|completed
	DueDate     string              `json:"dueDate"`  // RFC3339 или YYYY-MM-DD
}

// Absent fields are left untouched; "dueDate": "" clears the due date.
type updateTaskRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Priority    *models.TaskPriority `json:"priority"`
	Status      *models.TaskStatus   `json:"status"`
	DueDate     *string              `json:"dueDate"`
}

type statusRequest struct {
	Status models.TaskStatus `json:"status" binding:"required"`
}

func parseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid dueDate %q (RFC3339 or YYYY-MM-DD)", s)
	}
	return &t, nil
}

// parseFilter reads status, priority, search and sort=field:asc|desc.
func parseFilter(c *gin.Context) (models.TaskFilter, error) {
	var filter models.TaskFilter
	if v := c.Query("status"); v != "" {
		st := models.TaskStatus(v)
		if !st.Valid() {
			return filter, fmt.Errorf("invalid status %q", v)
		}
		filter.Status = &st
	}
	if v := c.Query("priority"); v != "" {
		p := models.TaskPriority(v)
		if !p.Valid() {
			return filter, fmt.Errorf("invalid priority %q", v)
		}
		filter.Priority = &p
	}
	filter.Search = c.Query("search")
	if v := c.Query("sort"); v != "" {
		field, dir, _ := strings.Cut(v, ":")
		filter.SortField = field
		filter.SortDesc = dir == "desc"
	}
	return filter, nil
}

// @Summary  Список задач
// @Tags     Tasks
// @Produce  json
// @Security BearerAuth
// @Param    status    query  string  false  "todo|in-progress|completed"
// @Param    priority  query  string  false  "low|medium|high"
// @Param    search    query  string  false  "подстрока в названии"
// @Param    sort      query  string  false  "field:asc|desc"
// @Success  200  {array}   models.Task
// @Failure  400  {object}  map[string]string
// @Router   /api/tasks [get]
func (h *TaskHandler) GetAll(c *gin.Context) {
	userID := getUserID(c)
	log.Printf("[task][list] call by userID=%d q=%v", userID, c.Request.URL.RawQuery)

	filter, err := parseFilter(c)
	if err != nil {
		log.Printf("[task][list][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tasks, err := h.service.List(c.Request.Context(), userID, filter)
	if err != nil {
		respondError(c, "[task][list]", err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// @Summary  Задача по id
// @Tags     Tasks
// @Produce  json
// @Security BearerAuth
// @Param    id   path      int  true  "Task ID"
// @Success  200  {object}  models.Task
// @Failure  403  {object}  map[string]string
// @Failure  404  {object}  map[string]string
// @Router   /api/tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	task, err := h.service.Get(c.Request.Context(), getUserID(c), id)
	if err != nil {
		respondError(c, "[task][getByID]", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary  Создать задачу
// @Tags     Tasks
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body  body      createTaskRequest  true  "задача"
// @Success  201   {object}  models.Task
// @Failure  400   {object}  map[string]string
// @Router   /api/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	userID := getUserID(c)

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[task][create][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		log.Printf("[task][create][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.Create(c.Request.Context(), userID, &models.Task{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		DueDate:     due,
	})
	if err != nil {
		respondError(c, "[task][create]", err)
		return
	}
	log.Printf("[task][create][ok] id=%d owner=%d title=%q", task.ID, task.OwnerID, task.Title)
	c.JSON(http.StatusCreated, task)
}

// @Summary  Обновить задачу
// @Tags     Tasks
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id    path      int                true  "Task ID"
// @Param    body  body      updateTaskRequest  true  "изменяемые поля"
// @Success  200   {object}  models.Task
// @Failure  400   {object}  map[string]string
// @Failure  403   {object}  map[string]string
// @Failure  404   {object}  map[string]string
// @Router   /api/tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[task][update][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	upd := services.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
	}
	if req.DueDate != nil {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		upd.DueDate = due
		upd.ClearDueDate = due == nil
	}

	task, err := h.service.Update(c.Request.Context(), getUserID(c), id, upd)
	if err != nil {
		respondError(c, "[task][update]", err)
		return
	}
	log.Printf("[task][update][ok] id=%d", task.ID)
	c.JSON(http.StatusOK, task)
}

// @Summary  Сменить статус
// @Tags     Tasks
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id    path      int            true  "Task ID"
// @Param    body  body      statusRequest  true  "новый статус"
// @Success  200   {object}  models.Task
// @Failure  400   {object}  map[string]string
// @Router   /api/tasks/{id}/status [patch]
func (h *TaskHandler) ChangeStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task, err := h.service.UpdateStatus(c.Request.Context(), getUserID(c), id, req.Status)
	if err != nil {
		respondError(c, "[task][status]", err)
		return
	}
	log.Printf("[task][status][ok] id=%d status=%s", task.ID, task.Status)
	c.JSON(http.StatusOK, task)
}

// @Summary  Удалить задачу
// @Tags     Tasks
// @Security BearerAuth
// @Param    id  path  int  true  "Task ID"
// @Success  204
// @Failure  403  {object}  map[string]string
// @Failure  404  {object}  map[string]string
// @Router   /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), getUserID(c), id); err != nil {
		respondError(c, "[task][delete]", err)
		return
	}
	log.Printf("[task][delete][ok] id=%d", id)
	c.Status(http.StatusNoContent)
}

// @Summary  Сводка для дашборда
// @Tags     Tasks
// @Produce  json
// @Security BearerAuth
// @Success  200  {object}  models.DashboardSummary
// @Router   /api/tasks/dashboard/summary [get]
func (h *TaskHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context(), getUserID(c))
	if err != nil {
		respondError(c, "[task][summary]", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary      Уведомления
// @Description  Ближайшие (24ч) и просроченные задачи; данные могут отставать до 30 минут
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.NotificationEntry
// @Failure      500  {object}  map[string]string
// @Router       /api/tasks/notifications [get]
func (h *TaskHandler) Notifications(c *gin.Context) {
	entry, err := h.notifications.GetForUser(c.Request.Context(), getUserID(c))
	if err != nil {
		respondError(c, "[task][notifications]", err)
		return
	}
	c.JSON(http.StatusOK, entry)
}
