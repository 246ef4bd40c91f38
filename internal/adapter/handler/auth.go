package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/eventtribe/ticketing/internal/core/domain"
)

type SessionVerifier interface {
	Session(token string) (domain.Session, error)
}

type sessionKey struct{}

func SessionFromContext(ctx context.Context) domain.Session {
	sess, _ := ctx.Value(sessionKey{}).(domain.Session)
	return sess
}

// RequireSession rejects requests without a valid bearer token.
func RequireSession(verifier SessionVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "Unauthorized"})
				return
			}

			sess, err := verifier.Session(token)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "Unauthorized"})
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
