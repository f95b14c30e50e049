package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/atelierhq/atelier-backend/pkg/logger"
)

const actorHeader = "X-Actor"

type contextKey string

const ctxActor contextKey = "actor"

// Actor captures the operator name sent by the client so mutations can be
// attributed in the stock adjustment log. Requests without the header fall
// back to "system" at the service layer.
func Actor(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := strings.TrimSpace(r.Header.Get(actorHeader))
			if actor == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ctxActor, actor)
			if logg != nil {
				ctx = logg.WithActor(ctx, actor)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext returns the operator name attached by Actor, if any.
func ActorFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxActor).(string); ok {
		return v
	}
	return ""
}
