package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime/debug"

	"finance/internal/middleware"
	"finance/internal/services"

	"github.com/rs/zerolog/log"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// currentUser is only called behind Sessions.Require.
func currentUser(r *http.Request) string {
	userID, _ := middleware.UserIDFromContext(r.Context())
	return userID
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusFound)
}

// requireUser turns away sessions whose user row no longer exists. The cookie
// is still validly signed, so it is cleared before going back to /login.
func (h *Handler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := h.auth.CurrentUser(r.Context(), currentUser(r)); err != nil {
			h.fail(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// fail reports err from a logged-in page.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrUnknownUser) {
		h.sessions.Clear(w)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	h.views.apology(w, r, true, err)
}

func (h *Handler) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.Error().
				Interface("panic", rec).
				Str("path", r.URL.Path).
				Bytes("stack", debug.Stack()).
				Msg("handler panicked")
			h.views.apologyStatus(w, false, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		}()
		next.ServeHTTP(w, r)
	})
}
