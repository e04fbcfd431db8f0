package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "slfcert/pkg/domain-errors"
	"slfcert/pkg/platform/httputil"
	"slfcert/pkg/requestcontext"
)

// ActorResolver turns a bearer token into the acting user.
type ActorResolver interface {
	ResolveActor(tokenString string) (requestcontext.ActorInfo, error)
}

// RequireActor rejects requests without a valid bearer token and stores the
// resolved actor in the request context.
func RequireActor(resolver ActorResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			actor, err := resolver.ResolveActor(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithActor(ctx, actor)))
		})
	}
}
