package http

import (
	"log/slog"
	"net/http"
	"time"

	"budget/internal/core"
)

const sessionCookieName = "session"

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	body, err := parseBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	owner, err := s.auth.Register(r.Context(), body.Get("username"), body.Get("password"))
	if err != nil {
		slog.WarnContext(r.Context(), "Registration failed", "error", err)
		writeError(w, err)
		return
	}

	slog.InfoContext(r.Context(), "Owner registered", "owner_id", owner.ID, "username", owner.Username)
	s.startSessionCookie(w, r, owner)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	body, err := parseBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	owner, err := s.auth.Login(r.Context(), body.Get("username"), body.Get("password"))
	if err != nil {
		slog.WarnContext(r.Context(), "Login failed", "error", err)
		writeError(w, err)
		return
	}

	slog.InfoContext(r.Context(), "Owner logged in", "owner_id", owner.ID)
	s.startSessionCookie(w, r, owner)
}

func (s *Server) startSessionCookie(w http.ResponseWriter, r *http.Request, owner core.Owner) {
	token, err := s.auth.StartSession(r.Context(), owner)
	if err != nil {
		slog.ErrorContext(r.Context(), "Session start failed", "error", err, "owner_id", owner.ID)
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       owner.ID,
		"username": owner.Username,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		s.auth.EndSession(r.Context(), cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// handleTheme persists the UI theme preference in a long-lived cookie.
// Unknown values fall back to the light theme.
func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	body, err := parseBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	theme := body.Get("theme")
	if theme != "dark" {
		theme = "light"
	}
	http.SetCookie(w, &http.Cookie{
		Name:    "theme",
		Value:   theme,
		Path:    "/",
		Expires: time.Now().Add(365 * 24 * time.Hour),
	})
	writeJSON(w, http.StatusOK, map[string]string{"theme": theme})
}
