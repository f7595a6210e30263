package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	authservice "github.com/yogesh1636/Bibliotheca/internal/auth/service"
)

// RequestIDMiddleware attaches a request id for log correlation.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), "request_id", requestID)
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionMiddleware resolves the Bearer token to a profile and puts the user
// id and token on the context. Requests without a valid session are rejected.
func SessionMiddleware(auth *authservice.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				respondError(w, http.StatusUnauthorized, "unauthenticated", "missing bearer token")
				return
			}

			profile, err := auth.CurrentUser(r.Context(), token)
			if err != nil {
				handleServiceError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), "user_id", profile.ID.String())
			ctx = context.WithValue(ctx, "session_token", token)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func userIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value("user_id").(string)
	return userID, ok && userID != ""
}

func tokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value("session_token").(string)
	return token, ok && token != ""
}
