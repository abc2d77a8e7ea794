package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/zhouzirui/bubble/backend/internal/model/user"
	"github.com/zhouzirui/bubble/backend/pkg/utils"
)

type ctxKey string

const userCtxKey ctxKey = "auth_user"

// Auth resolves the bearer token issued by the auth service into a user
// identity and stores it on the request context.
func Auth(users user.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				utils.RespondError(w, http.StatusUnauthorized, "missing credentials")
				return
			}

			u, err := users.FindByToken(r.Context(), token)
			if err != nil {
				utils.RespondError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// WithUser stores the authenticated user on the context.
func WithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, userCtxKey, u)
}

// UserFrom returns the authenticated user placed by Auth.
func UserFrom(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(userCtxKey).(user.User)
	return u, ok
}
