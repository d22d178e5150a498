package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskhive/backend/api/transport"
	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/pkg/httpcontext"
	categoryUC "github.com/taskhive/backend/usecase/category"
)

type CategoryHandler struct {
	baseHandler
	uc *categoryUC.UseCase
}

func NewCategoryHandler(uc *categoryUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List owned categories
// @Tags categories
// @Router /api/categories [get]
func (h *CategoryHandler) List(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	categories, err := h.uc.List(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	h.respondSuccess(ctx, http.StatusOK, "Categories fetched", map[string]interface{}{"categories": categories})
}

// @Summary Create category
// @Tags categories
// @Router /api/categories [post]
func (h *CategoryHandler) Create(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	var req transport.CategoryCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondBadRequest(ctx, "Invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	category, err := h.uc.Create(stdCtx, userID, req.Name, req.Color)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, "Category created", map[string]interface{}{"category": category})
}

// @Summary Delete category and detach its tasks
// @Tags categories
// @Router /api/categories/{id} [delete]
func (h *CategoryHandler) Delete(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	categoryID, ok := h.pathID(ctx, "category")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, categoryID, userID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondNoContent(ctx)
}
