package middleware

import (
	"context"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskhive/backend/api/transport"
	"github.com/taskhive/backend/domain"
)

// LoginLimiter is a Redis-backed fixed-window rate limiter keyed by
// client IP. The counter's first increment arms the window expiry.
type LoginLimiter struct {
	client *redislib.Client
	max    int64
	window time.Duration
	logger *zap.Logger
}

func NewLoginLimiter(client *redislib.Client, max int, window time.Duration, logger *zap.Logger) *LoginLimiter {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoginLimiter{
		client: client,
		max:    int64(max),
		window: window,
		logger: logger,
	}
}

// Wrap limits the wrapped handler per client IP. When Redis is down the
// request is let through: losing rate limiting beats losing logins.
func (l *LoginLimiter) Wrap(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		count, err := l.hit(ctx, clientIP(ctx))
		if err != nil {
			l.logger.Warn("rate limiter unavailable", zap.Error(err))
			next(ctx)
			return
		}
		if count > l.max {
			respond(ctx, fasthttp.StatusTooManyRequests, transport.NewError(
				domain.ErrCodeTooManyRequests,
				"Too many login attempts. Please try again later.",
				nil,
			))
			return
		}
		next(ctx)
	}
}

func (l *LoginLimiter) hit(ctx context.Context, ip string) (int64, error) {
	key := fmt.Sprintf("ratelimit:login:%s", ip)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func clientIP(ctx *fasthttp.RequestCtx) string {
	if forwarded := string(ctx.Request.Header.Peek("X-Forwarded-For")); forwarded != "" {
		return forwarded
	}
	if addr := ctx.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return "unknown"
}
