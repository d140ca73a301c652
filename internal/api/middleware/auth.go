package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mark-szabo/carwash/internal/api/handlers"
)

// UserIDHeader заголовок с идентификатором пользователя, проставляется шлюзом
const UserIDHeader = "X-User-ID"

const msgMissingUserID = "missing user id"

type contextKey string

const userIDKey contextKey = "userID"

// Auth кладёт X-User-ID в контекст запроса; без заголовка - 401
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if userID == "" {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// WithUserID возвращает контекст с идентификатором пользователя
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID достаёт идентификатор пользователя, положенный Auth
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}
