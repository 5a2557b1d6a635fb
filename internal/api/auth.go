package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/eugenenazirov/offer-desk/internal/auth"
	"github.com/eugenenazirov/offer-desk/internal/backend"
	"github.com/eugenenazirov/offer-desk/internal/form"
)

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginForm
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	outcome, err := h.auth.Login(r.Context(), req)
	if err != nil {
		h.writeAuthError(w, "login", err)
		return
	}

	resp := loginResponse{
		Route:     outcome.Route,
		Token:     outcome.Session.Token,
		ExpiresAt: outcome.Session.ExpiresAt,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	f := auth.NewRegisterForm()
	defer f.Close()
	for _, kv := range [][2]string{
		{auth.FieldEmail, req.Email},
		{auth.FieldPassword, req.Password},
		{auth.FieldCheckPassword, req.CheckPassword},
	} {
		if err := f.Set(kv[0], kv[1]); err != nil {
			writeInternalError(w, err)
			return
		}
	}

	outcome, err := h.auth.Register(r.Context(), f)
	if err != nil {
		h.writeAuthError(w, "register", err)
		return
	}
	writeJSON(w, http.StatusCreated, outcome)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		h.auth.Logout(token)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeAuthError(w http.ResponseWriter, op string, err error) {
	var statusErr *backend.StatusError
	switch {
	case errors.Is(err, form.ErrValidationFailed):
		writeValidationError(w, err)
	case errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden):
		writeError(w, http.StatusUnauthorized, "Invalid credentials", op+" rejected by backend")
	case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusConflict:
		writeError(w, http.StatusConflict, "Account exists", op+" rejected by backend")
	default:
		h.writeBackendError(w, op, err)
	}
}

// authGuard rejects requests without a live session. A nil service disables the guard.
func authGuard(svc *auth.Service, next http.Handler) http.Handler {
	if svc == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !svc.Authenticated(bearerToken(r)) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{
				Error:    "Unauthorized",
				Details:  "a valid session is required",
				Redirect: auth.RouteLogin,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

type registerRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	CheckPassword string `json:"checkPassword"`
}

type loginResponse struct {
	Route     string    `json:"route"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
