package handler

import (
	"errors"
	"net/http"

	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/service"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	auth         *service.AuthService
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, cookieSecure: cookieSecure}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates a customer account.
// POST /api/auth/register
// Request:  {"email":"...","password":"..."}
// Response: {"message": "..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := readJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password required.")
		return
	}

	if _, err := h.auth.Register(r.Context(), req.Email, req.Password); err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			writeMessage(w, http.StatusBadRequest, "Email already exists.")
			return
		}
		writeError(w, r, "register account", err)
		return
	}
	writeMessage(w, http.StatusCreated, "Customer registered successfully.")
}

// HandleLogin verifies credentials and sets the token cookie. The token is
// also returned for bearer use.
// POST /api/auth/login
// Request:  {"email":"...","password":"..."}
// Response: {"message": "...", "token": "...", "user": {...}}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := readJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password required.")
		return
	}

	token, p, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, "login", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(service.TokenTTL(p.Role).Seconds()),
	})

	message := "Customer logged in."
	if p.IsAdmin() {
		message = "Admin logged in."
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": message,
		"token":   token,
		"user":    toPrincipalDTO(p),
	})
}

// HandleMe returns the current principal.
// GET /api/auth/me
// Response: {"user": {...}} or 401
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFromContext(r.Context())
	if p == nil {
		writeMessage(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": toPrincipalDTO(p)})
}

// HandleLogout clears the token cookie.
// POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	writeMessage(w, http.StatusOK, "Logged out.")
}
