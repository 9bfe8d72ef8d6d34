package middleware

import (
	"context"
	"net/http"
	"time"

	"finance/internal/auth"

	"github.com/rs/zerolog/log"
)

type contextKey string

const userIDKey contextKey = "user_id"

const sessionCookie = "session"

func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// WithUserID attaches the session's user to ctx. Require calls it once the cookie checks out.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Sessions issues and checks the signed session cookie.
type Sessions struct {
	Secret string
	TTL    time.Duration
	Secure bool
}

// Require redirects to /login unless the request carries a valid session.
func (s Sessions) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.userID(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func (s Sessions) userID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	claims, err := auth.ParseToken(s.Secret, cookie.Value)
	if err != nil {
		log.Debug().Err(err).Msg("rejecting session cookie")
		return "", false
	}
	return claims.UserID, claims.UserID != ""
}

// Start replaces whatever session the browser had with one for userID.
func (s Sessions) Start(w http.ResponseWriter, userID string) error {
	token, err := auth.GenerateToken(s.Secret, userID, s.TTL)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.TTL.Seconds()),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
