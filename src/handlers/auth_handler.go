package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/LinhLe223/GMV-MAX/src/logger"
	"github.com/LinhLe223/GMV-MAX/src/security"
	"github.com/LinhLe223/GMV-MAX/src/utils"
)

type AuthHandler struct {
	authService *security.AuthService
}

func NewAuthHandler(authService *security.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var credentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		log.Warn("Invalid login request body", "error", err)
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.authService.CheckOperator(credentials.Username, credentials.Password); err != nil {
		if errors.Is(err, security.ErrAuthDisabled) {
			utils.SendJSONError(w, "Login is not enabled on this server", http.StatusNotFound)
			return
		}
		log.Warn("Login failed", "username", credentials.Username, "remoteAddr", r.RemoteAddr)
		utils.SendJSONError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	accessToken, err := h.authService.GenerateToken(credentials.Username)
	if err != nil {
		log.Error("Failed to generate access token", "error", err)
		utils.SendJSONError(w, "Failed to generate access token", http.StatusInternalServerError)
		return
	}

	log.Info("Operator logged in", "username", credentials.Username)
	utils.SendJSON(w, map[string]interface{}{
		"access_token": accessToken,
		"token_type":   "Bearer",
		"expires_in":   int(h.authService.TokenExpiry.Seconds()),
	}, http.StatusOK)
}
