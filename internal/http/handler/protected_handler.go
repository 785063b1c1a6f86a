package handler

import (
	"net/http"
	"time"

	"github.com/snic-labs/policy-api/internal/http/middleware"
	"github.com/snic-labs/policy-api/internal/http/response"
)

const timeLayout = time.RFC3339

type ProtectedHandler struct{}

func NewProtectedHandler() *ProtectedHandler { return &ProtectedHandler{} }

func (h *ProtectedHandler) Data(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	response.JSON(w, r, http.StatusOK, map[string]any{
		"message":   "This is protected data",
		"user_id":   claims.Subject,
		"username":  claims.Username,
		"email":     claims.Email,
		"role":      claims.Role,
		"token_id":  claims.ID,
		"timestamp": time.Now().UTC().Format(timeLayout),
	})
}

func (h *ProtectedHandler) Admin(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	response.JSON(w, r, http.StatusOK, map[string]any{
		"message":  "Admin-only data",
		"username": claims.Username,
		"role":     claims.Role,
	})
}

func (h *ProtectedHandler) Customer(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	response.JSON(w, r, http.StatusOK, map[string]any{
		"message":  "Customer-only data",
		"username": claims.Username,
		"role":     claims.Role,
	})
}
