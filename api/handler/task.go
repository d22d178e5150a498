package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskhive/backend/api/transport"
	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/pkg/httpcontext"
	taskUC "github.com/taskhive/backend/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List tasks with filters, pagination and status histogram
// @Tags tasks
// @Router /api/tasks [get]
func (h *TaskHandler) List(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	args := ctx.QueryArgs()
	params := taskUC.ListParams{
		Status:   string(args.Peek("status")),
		Priority: string(args.Peek("priority")),
		Category: string(args.Peek("category")),
		Search:   string(args.Peek("search")),
		DueGte:   string(args.Peek("dueDate[gte]")),
		DueLte:   string(args.Peek("dueDate[lte]")),
		Page:     string(args.Peek("page")),
		Limit:    string(args.Peek("limit")),
		SortBy:   string(args.Peek("sortBy")),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.List(stdCtx, userID, params)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, "Tasks fetched", result)
}

// @Summary Create task
// @Tags tasks
// @Router /api/tasks [post]
func (h *TaskHandler) Create(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	var req transport.TaskCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondBadRequest(ctx, "Invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.Create(stdCtx, userID, taskUC.CreateInput{
		Title:          req.Title,
		Description:    req.Description,
		Priority:       domain.Priority(req.Priority),
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
		CategoryID:     req.Category,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, "Task created successfully", map[string]interface{}{"task": task})
}

// @Summary Fetch one task
// @Tags tasks
// @Router /api/tasks/{id} [get]
func (h *TaskHandler) Get(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	taskID, ok := h.pathID(ctx, "task")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.Get(stdCtx, taskID, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, "Task fetched", map[string]interface{}{"task": task})
}

// @Summary Partially update a task
// @Tags tasks
// @Router /api/tasks/{id} [put]
func (h *TaskHandler) Update(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	taskID, ok := h.pathID(ctx, "task")
	if !ok {
		return
	}

	var req transport.TaskUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondBadRequest(ctx, "Invalid payload")
		return
	}

	in := taskUC.UpdateInput{
		Title:          req.Title,
		Description:    req.Description,
		EstimatedHours: req.EstimatedHours,
	}
	if req.Priority != nil {
		p := domain.Priority(*req.Priority)
		in.Priority = &p
	}

	var ok2 bool
	if in.DueDate, ok2 = optionalString(req.DueDate); !ok2 {
		h.respondBadRequest(ctx, "Invalid payload")
		return
	}
	if in.Category, ok2 = optionalID(req.Category); !ok2 {
		h.respondBadRequest(ctx, "Invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.Update(stdCtx, taskID, userID, in)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, "Task updated", map[string]interface{}{"task": task})
}

// @Summary Delete a task
// @Tags tasks
// @Router /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	taskID, ok := h.pathID(ctx, "task")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, taskID, userID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondNoContent(ctx)
}

// @Summary Transition task status
// @Tags tasks
// @Router /api/tasks/{id}/status [put]
func (h *TaskHandler) UpdateStatus(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	taskID, ok := h.pathID(ctx, "task")
	if !ok {
		return
	}

	var req transport.StatusUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondBadRequest(ctx, "Invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.UpdateStatus(stdCtx, taskID, userID, domain.Status(req.Status))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, "Task status updated", map[string]interface{}{
		"task": map[string]interface{}{
			"id":        task.ID,
			"status":    task.Status,
			"updatedAt": task.UpdatedAt,
		},
	})
}

// @Summary Change task priority
// @Tags tasks
// @Router /api/tasks/{id}/priority [put]
func (h *TaskHandler) UpdatePriority(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	taskID, ok := h.pathID(ctx, "task")
	if !ok {
		return
	}

	var req transport.PriorityUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondBadRequest(ctx, "Invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.UpdatePriority(stdCtx, taskID, userID, domain.Priority(req.Priority))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, "Task priority updated", map[string]interface{}{"task": task})
}

// @Summary Share a task with another user
// @Tags tasks
// @Router /api/tasks/{id}/share [post]
func (h *TaskHandler) Share(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	taskID, ok := h.pathID(ctx, "task")
	if !ok {
		return
	}

	var req transport.ShareRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondBadRequest(ctx, "Invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Share(stdCtx, taskID, userID, req.TargetUserID, req.CanEdit); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, "Task shared successfully", nil)
}

// @Summary Tasks shared with the caller
// @Tags tasks
// @Router /api/tasks/shared [get]
func (h *TaskHandler) Shared(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.SharedWithMe(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if tasks == nil {
		tasks = []domain.SharedTask{}
	}
	h.respondSuccess(ctx, http.StatusOK, "Shared tasks fetched", map[string]interface{}{"tasks": tasks})
}

var nullLiteral = []byte("null")

// optionalString decodes a raw JSON value into absent/null/string.
func optionalString(raw json.RawMessage) (taskUC.OptionalString, bool) {
	if len(raw) == 0 {
		return taskUC.OptionalString{}, true
	}
	if bytes.Equal(raw, nullLiteral) {
		return taskUC.OptionalString{Set: true, Null: true}, true
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return taskUC.OptionalString{}, false
	}
	return taskUC.OptionalString{Set: true, Value: value}, true
}

// optionalID decodes a raw JSON value into absent/null/id.
func optionalID(raw json.RawMessage) (taskUC.OptionalID, bool) {
	if len(raw) == 0 {
		return taskUC.OptionalID{}, true
	}
	if bytes.Equal(raw, nullLiteral) {
		return taskUC.OptionalID{Set: true, Null: true}, true
	}
	var value int64
	if err := json.Unmarshal(raw, &value); err != nil {
		// ids may arrive as JSON strings
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return taskUC.OptionalID{}, false
		}
		parsed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return taskUC.OptionalID{}, false
		}
		value = parsed
	}
	return taskUC.OptionalID{Set: true, Value: value}, true
}
