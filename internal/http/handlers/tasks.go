package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/service"
	"github.com/gin-gonic/gin"
)

type TaskManager interface {
	Get(ctx context.Context, actorID, boardID, taskID int64) (service.TaskView, error)
	Create(ctx context.Context, actorID, boardID int64, req task.CreateRequest) (service.TaskView, error)
	Update(ctx context.Context, actorID, boardID, taskID int64, req task.UpdateRequest) (service.TaskView, error)
	SetStatus(ctx context.Context, actorID, boardID, taskID int64, status task.Status) (service.TaskView, error)
	SetAssignee(ctx context.Context, actorID, boardID, taskID int64, assignee task.OptionalID) (service.TaskView, error)
	Delete(ctx context.Context, actorID, boardID, taskID int64) error
	Move(ctx context.Context, actorID, taskID int64, req task.MoveRequest) (service.TaskView, error)
}

type TasksHandler struct {
	tasks TaskManager
	prom  *observability.Prom
}

func NewTasksHandler(tasks TaskManager, prom *observability.Prom) *TasksHandler {
	return &TasksHandler{tasks: tasks, prom: prom}
}

// taskPath resolves the actor and the :id/:taskId pair shared by the nested
// task routes.
func taskPath(ctx *gin.Context) (userID, boardID, taskID int64, ok bool) {
	if userID, ok = actorID(ctx); !ok {
		return
	}
	if boardID, ok = pathID(ctx, "id", "Board"); !ok {
		return
	}
	taskID, ok = pathID(ctx, "taskId", "Task")
	return
}

func (h *TasksHandler) Create(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}
	boardID, ok := pathID(ctx, "id", "Board")
	if !ok {
		return
	}

	var req task.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	t, err := h.tasks.Create(cctx, userID, boardID, req)
	if err != nil {
		RespondDomainError(ctx, h.prom, err, "Could not create task")
		return
	}

	ctx.JSON(http.StatusCreated, t)
}

func (h *TasksHandler) Get(ctx *gin.Context) {
	userID, boardID, taskID, ok := taskPath(ctx)
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	t, err := h.tasks.Get(cctx, userID, boardID, taskID)
	if err != nil {
		RespondDomainError(ctx, h.prom, err, "Could not fetch task")
		return
	}

	RespondJSONWithETag(ctx, t)
}

func (h *TasksHandler) Update(ctx *gin.Context) {
	userID, boardID, taskID, ok := taskPath(ctx)
	if !ok {
		return
	}

	var req task.UpdateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	t, err := h.tasks.Update(cctx, userID, boardID, taskID, req)
	if err != nil {
		RespondDomainError(ctx, h.prom, err, "Could not update task")
		return
	}

	ctx.JSON(http.StatusOK, t)
}

func (h *TasksHandler) SetStatus(ctx *gin.Context) {
	userID, boardID, taskID, ok := taskPath(ctx)
	if !ok {
		return
	}

	var req task.StatusRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	t, err := h.tasks.SetStatus(cctx, userID, boardID, taskID, req.Status)
	if err != nil {
		RespondDomainError(ctx, h.prom, err, "Could not update task status")
		return
	}

	ctx.JSON(http.StatusOK, t)
}

func (h *TasksHandler) SetAssignee(ctx *gin.Context) {
	userID, boardID, taskID, ok := taskPath(ctx)
	if !ok {
		return
	}

	var req task.AssigneeRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	t, err := h.tasks.SetAssignee(cctx, userID, boardID, taskID, req.AssignedToID)
	if err != nil {
		RespondDomainError(ctx, h.prom, err, "Could not update task assignee")
		return
	}

	ctx.JSON(http.StatusOK, t)
}

func (h *TasksHandler) Delete(ctx *gin.Context) {
	userID, boardID, taskID, ok := taskPath(ctx)
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	if err := h.tasks.Delete(cctx, userID, boardID, taskID); err != nil {
		RespondDomainError(ctx, h.prom, err, "Could not delete task")
		return
	}

	ctx.Status(http.StatusNoContent)
}

// Move re-parents a task. The body names the board it currently lives on
// and the board it should move to.
func (h *TasksHandler) Move(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}
	taskID, ok := pathID(ctx, "taskId", "Task")
	if !ok {
		return
	}

	var req task.MoveRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	t, err := h.tasks.Move(cctx, userID, taskID, req)
	if err != nil {
		RespondDomainError(ctx, h.prom, err, "Could not move task")
		return
	}

	ctx.JSON(http.StatusOK, t)
}
