package httpx

import (
	"context"

	"jwt-pizza-service/internal/common/logger"
	"jwt-pizza-service/internal/domain"
)

type ctxKey int

const (
	userKey ctxKey = iota
	loggerKey
)

var fallbackLogger = logger.New("http")

// WithUser attaches the authenticated caller to ctx.
func WithUser(ctx context.Context, u *domain.AuthUser) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFrom returns the authenticated caller, or nil for anonymous requests.
func UserFrom(ctx context.Context) *domain.AuthUser {
	u, _ := ctx.Value(userKey).(*domain.AuthUser)
	return u
}

func WithLogger(ctx context.Context, l *logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// Logger returns the request-scoped logger.
func Logger(ctx context.Context) *logger.Logger {
	if l, ok := ctx.Value(loggerKey).(*logger.Logger); ok {
		return l
	}
	return fallbackLogger
}
