package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/taskhive/backend/pkg/logger"
)

// UserIDHeader carries the authenticated user id from the auth middleware
// to the handlers. It is stripped from incoming requests.
const UserIDHeader = "X-User-ID"

// RequestIDHeader is echoed back on every response.
const RequestIDHeader = "X-Request-ID"

type ctxKey int

const (
	keyRemoteAddr ctxKey = iota
	keyUserAgent
)

// Adapter derives a deadline-bound stdlib context from a fasthttp
// request, carrying the request id and client metadata with it.
type Adapter struct {
	timeout time.Duration
}

func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{timeout: timeout}
}

// Attach wraps the request in a timeout context. fasthttp's RequestCtx
// is itself a context, so cancellation of the connection propagates.
func (a *Adapter) Attach(reqCtx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(reqCtx, a.timeout)

	id := requestID(reqCtx)
	reqCtx.Response.Header.Set(RequestIDHeader, id)
	ctx = appLogger.ContextWithRequestID(ctx, id)

	if addr := reqCtx.RemoteAddr(); addr != nil {
		ctx = context.WithValue(ctx, keyRemoteAddr, addr.String())
	}
	if ua := string(reqCtx.Request.Header.UserAgent()); ua != "" {
		ctx = context.WithValue(ctx, keyUserAgent, ua)
	}
	return ctx, cancel
}

// RemoteAddr returns the client address recorded by Attach, if any.
func RemoteAddr(ctx context.Context) (string, bool) {
	addr, ok := ctx.Value(keyRemoteAddr).(string)
	return addr, ok
}

// UserAgent returns the user agent recorded by Attach, if any.
func UserAgent(ctx context.Context) (string, bool) {
	ua, ok := ctx.Value(keyUserAgent).(string)
	return ua, ok
}

// requestID reuses the client-provided id when present so traces stay
// joined across services, otherwise mints a fresh one.
func requestID(reqCtx *fasthttp.RequestCtx) string {
	if header := strings.TrimSpace(string(reqCtx.Request.Header.Peek(RequestIDHeader))); header != "" {
		return header
	}
	return uuid.NewString()
}
