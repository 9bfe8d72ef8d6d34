package handlers

import (
	"net/http"

	"finance/internal/middleware"
)

func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.views.render(w, http.StatusOK, "login", pageData{})
}

// Login drops any existing session before checking credentials.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	user, err := h.auth.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		h.views.apology(w, r, false, err)
		return
	}
	if err := h.sessions.Start(w, user.ID); err != nil {
		h.views.apology(w, r, false, err)
		return
	}
	redirectHome(w, r)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	redirectHome(w, r)
}

func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.views.render(w, http.StatusOK, "register", pageData{})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.Register(r.Context(),
		r.PostFormValue("username"),
		r.PostFormValue("password"),
		r.PostFormValue("confirmation"),
	)
	if err != nil {
		h.views.apology(w, r, false, err)
		return
	}
	if err := h.sessions.Start(w, user.ID); err != nil {
		h.views.apology(w, r, false, err)
		return
	}
	middleware.SetFlash(w, "Registered!")
	redirectHome(w, r)
}
