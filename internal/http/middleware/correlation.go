package middleware

import (
	"context"
	"net/http"

	"github.com/Sokol111/ecommerce-store-sync/internal/core/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HeaderCorrelationID is the header carrying the request correlation id.
const HeaderCorrelationID = "X-Correlation-Id"

type correlationIDKey struct{}

// CorrelationID extracts the correlation id from the context, empty if absent.
func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithCorrelationID stores the correlation id in the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// Correlation reads the correlation id from the request header, generating one
// when absent, echoes it back in the response and attaches it to the request
// context and its logger.
func Correlation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderCorrelationID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderCorrelationID, id)

		ctx := WithCorrelationID(r.Context(), id)
		ctx = logger.With(ctx, logger.Get(ctx).With(zap.String("correlationId", id)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
