package middleware

import (
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskhive/backend/api/transport"
	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/pkg/httpcontext"
)

// JWTAuth verifies the bearer access token and hands the resolved user id
// to the handler chain via a trusted header.
func JWTAuth(secret string, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			// Never trust a client-supplied identity header.
			ctx.Request.Header.Del(httpcontext.UserIDHeader)

			tokenString := extractBearer(ctx)
			if tokenString == "" {
				unauthorized(ctx, "Missing authorization token")
				return
			}

			token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				logger.Warn("invalid jwt token", zap.Error(err))
				unauthorized(ctx, "Invalid or expired token")
				return
			}

			claims, ok := token.Claims.(*jwt.RegisteredClaims)
			if !ok || claims.Subject == "" {
				unauthorized(ctx, "Invalid or expired token")
				return
			}

			ctx.Request.Header.Set(httpcontext.UserIDHeader, claims.Subject)
			next(ctx)
		}
	}
}

func extractBearer(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func unauthorized(ctx *fasthttp.RequestCtx, message string) {
	respond(ctx, fasthttp.StatusUnauthorized, transport.NewError(domain.ErrCodeUnauthorized, message, nil))
}

func respond(ctx *fasthttp.RequestCtx, status int, envelope transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBodyString(envelope.String())
}
