package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"tasklane/internal/http/responses"
	"tasklane/internal/logging"
)

type actorKey struct{}

func WithActor(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, actorKey{}, id)
}

// ActorFromContext returns the authenticated user id, or nil for anonymous
// requests.
func ActorFromContext(ctx context.Context) *uuid.UUID {
	if id, ok := ctx.Value(actorKey{}).(uuid.UUID); ok {
		return &id
	}
	return nil
}

// Middleware verifies a bearer token when one is present and stores the actor
// id on the request context. Requests without a token pass through anonymous;
// a token that fails verification is rejected.
func Middleware(issuer *Issuer, logger logging.Logger) func(next http.Handler) http.Handler {
	log := logger.With("component", "auth_middleware")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := issuer.Verify(token)
			if err != nil {
				responses.WriteError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			actorID, err := claims.UserID()
			if err != nil {
				log.Warn("token subject is not a uuid", "sub", claims.Subject)
				responses.WriteError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actorID)))
		})
	}
}
