package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pairbond/pairbond-server/internal/model"
	"github.com/pairbond/pairbond-server/internal/service"
)

type contextKey string

const SessionContextKey contextKey = "pairSession"

func GetSession(ctx context.Context) *model.PairSession {
	if session, ok := ctx.Value(SessionContextKey).(*model.PairSession); ok {
		return session
	}
	return nil
}

type SessionMiddleware struct {
	sessionService *service.SessionService
}

func NewSessionMiddleware(sessionService *service.SessionService) *SessionMiddleware {
	return &SessionMiddleware{sessionService: sessionService}
}

// Handler resolves the bearer token to a PairSession and stores it on the
// request context. Every authenticated route receives its identity this
// way; there is no ambient current-user state.
func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractToken(r)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Missing session token",
			})
			return
		}

		session, err := m.sessionService.Resolve(r.Context(), token)
		if err != nil {
			log.Error().Err(err).Msg("session middleware: database error")
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "Session validation failed",
			})
			return
		}

		if session == nil {
			log.Warn().Msg("session middleware: invalid token attempt")
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Invalid or expired session",
			})
			return
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
