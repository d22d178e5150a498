package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskhive/backend/api/transport"
	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/pkg/httpcontext"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, message string, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(message, data))
}

func (h baseHandler) respondNoContent(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(http.StatusNoContent)
	ctx.Response.ResetBody()
}

// respondError normalizes any error into the envelope. Unclassified
// errors are logged server-side and reported as a generic internal
// failure so no storage or crypto detail leaks to the client.
func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	if dErr, ok := domain.AsDomainError(err); ok {
		h.respondJSON(ctx, statusFor(dErr.Code), transport.NewError(dErr.Code, dErr.Message, dErr.Details))
		return
	}
	h.logger.Error("unhandled error", zap.String("path", string(ctx.Path())), zap.Error(err))
	h.respondJSON(ctx, http.StatusInternalServerError,
		transport.NewError(domain.ErrCodeInternal, "Internal server error", nil))
}

func (h baseHandler) respondBadRequest(ctx *fasthttp.RequestCtx, message string) {
	h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(domain.ErrCodeBadRequest, message, nil))
}

func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.ErrCodeValidation, domain.ErrCodeBadRequest:
		return http.StatusBadRequest
	case domain.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case domain.ErrCodeForbidden:
		return http.StatusForbidden
	case domain.ErrCodeNotFound:
		return http.StatusNotFound
	case domain.ErrCodeConflict:
		return http.StatusConflict
	case domain.ErrCodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// userID reads the identity resolved by the auth middleware. A missing
// value means the middleware was bypassed; respond unauthorized.
func (h baseHandler) userID(ctx *fasthttp.RequestCtx) (int64, bool) {
	id, err := strconv.ParseInt(string(ctx.Request.Header.Peek(httpcontext.UserIDHeader)), 10, 64)
	if err != nil {
		h.respondJSON(ctx, http.StatusUnauthorized,
			transport.NewError(domain.ErrCodeUnauthorized, "Missing authorization token", nil))
		return 0, false
	}
	return id, true
}

// pathID parses the {id} route segment; non-numeric input is a 400.
func (h baseHandler) pathID(ctx *fasthttp.RequestCtx, what string) (int64, bool) {
	raw, _ := ctx.UserValue("id").(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.respondBadRequest(ctx, "Invalid "+what+" ID format")
		return 0, false
	}
	return id, true
}
