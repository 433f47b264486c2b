package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/example/lunch-orders/internal/api/middleware"
	"github.com/example/lunch-orders/internal/auth"
)

// Editor is one entry in the editor directory: the people allowed to sign in
// and place orders. The directory is seeded from configuration; editor
// self-service is out of scope.
type Editor struct {
	ID           string
	Email        string
	Role         string
	PasswordHash string
}

// EditorDirectory resolves editors by email.
type EditorDirectory map[string]Editor

// ParseEditorDirectory parses the EDITORS configuration value: a
// semicolon-separated list of id:email:role:bcrypt-hash entries.
func ParseEditorDirectory(raw string) EditorDirectory {
	dir := EditorDirectory{}
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 4)
		if len(parts) != 4 {
			continue
		}
		dir[parts[1]] = Editor{
			ID:           parts[0],
			Email:        parts[1],
			Role:         parts[2],
			PasswordHash: parts[3],
		}
	}
	return dir
}

// AuthHandlers serves sign-in for the seeded editor directory.
type AuthHandlers struct {
	editors    EditorDirectory
	jwtService *auth.JWTService
	log        *zap.Logger
}

func NewAuthHandlers(editors EditorDirectory, jwtService *auth.JWTService, log *zap.Logger) *AuthHandlers {
	return &AuthHandlers{editors: editors, jwtService: jwtService, log: log}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	EditorID    string `json:"editor_id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

// Login verifies the editor's credentials and issues an access token, both
// in the body and as an HttpOnly cookie.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	editor, ok := h.editors[req.Email]
	if !ok || !auth.VerifyPassword(editor.PasswordHash, req.Password) {
		h.log.Info("rejected login", zap.String("email", req.Email))
		respondJSONError(w, "invalid email or password", http.StatusUnauthorized)
		return
	}

	token, expiresAt, err := h.jwtService.GenerateAccessToken(editor.ID, editor.Email, editor.Role)
	if err != nil {
		h.log.Error("failed to issue access token", zap.Error(err))
		respondJSONError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	respondJSON(w, http.StatusOK, LoginResponse{
		AccessToken: token,
		EditorID:    editor.ID,
		Email:       editor.Email,
		Role:        editor.Role,
	})
}

// Logout clears the access token cookie.
func (h *AuthHandlers) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	respondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me returns the caller's verified identity.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"editor_id": claims.EditorID,
		"email":     claims.Email,
		"role":      claims.Role,
	})
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
