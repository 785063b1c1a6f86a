package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/snic-labs/policy-api/internal/http/middleware"
	"github.com/snic-labs/policy-api/internal/http/response"
	"github.com/snic-labs/policy-api/internal/observability"
	"github.com/snic-labs/policy-api/internal/service"
)

type AuthHandler struct {
	auth     service.AuthServiceInterface
	validate *validator.Validate
	logger   *slog.Logger
}

func NewAuthHandler(auth service.AuthServiceInterface, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{auth: auth, validate: newValidator(), logger: logger}
}

type profileResponse struct {
	ID              uint    `json:"id"`
	Username        string  `json:"username"`
	Email           string  `json:"email"`
	Role            string  `json:"role"`
	RoleDescription string  `json:"role_description"`
	CreatedAt       string  `json:"created_at"`
	LastLoginAt     *string `json:"last_login_at,omitempty"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(in); err != nil {
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_FAILED", "request validation failed", validationDetails(err))
		return
	}

	res, err := h.auth.Register(r.Context(), in)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrEmailTaken):
		response.Error(w, r, http.StatusConflict, "EMAIL_TAKEN", "a user with this email already exists", nil)
		return
	case errors.Is(err, service.ErrUsernameTaken):
		response.Error(w, r, http.StatusConflict, "USERNAME_TAKEN", "a user with this username already exists", nil)
		return
	default:
		h.logger.ErrorContext(r.Context(), "register failed", "error", err)
		response.Error(w, r, http.StatusInternalServerError, "REGISTRATION_FAILED", "registration failed", nil)
		return
	}
	observability.Audit(r, "auth.register", "user_id", res.UserID, "role", res.Role)
	response.JSON(w, r, http.StatusCreated, res)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(in); err != nil {
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_FAILED", "request validation failed", validationDetails(err))
		return
	}

	res, err := h.auth.Login(r.Context(), in)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			observability.Audit(r, "auth.login", "outcome", "invalid_credentials")
			response.Error(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid username or password", nil)
			return
		}
		h.logger.ErrorContext(r.Context(), "login failed", "error", err)
		response.Error(w, r, http.StatusInternalServerError, "LOGIN_FAILED", "login failed", nil)
		return
	}
	observability.Audit(r, "auth.login", "outcome", "success", "user_id", res.UserID)
	response.JSON(w, r, http.StatusOK, res)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	token, hasToken := middleware.TokenFromContext(r.Context())
	if !ok || !hasToken {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid access token", nil)
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token subject", nil)
		return
	}
	if err := h.auth.Logout(r.Context(), token, userID); err != nil {
		h.logger.ErrorContext(r.Context(), "logout failed", "error", err, "user_id", userID)
		response.Error(w, r, http.StatusInternalServerError, "LOGOUT_FAILED", "logout failed", nil)
		return
	}
	observability.Audit(r, "auth.logout", "user_id", userID, "token_id", claims.ID)
	response.JSON(w, r, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid access token", nil)
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token subject", nil)
		return
	}
	user, err := h.auth.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.Error(w, r, http.StatusNotFound, "USER_NOT_FOUND", "user not found", nil)
			return
		}
		h.logger.ErrorContext(r.Context(), "profile lookup failed", "error", err)
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "profile lookup failed", nil)
		return
	}
	out := profileResponse{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		Role:            user.Role.String(),
		RoleDescription: user.Role.Description(),
		CreatedAt:       user.CreatedAt.UTC().Format(timeLayout),
	}
	if user.LastLoginAt != nil {
		v := user.LastLoginAt.UTC().Format(timeLayout)
		out.LastLoginAt = &v
	}
	response.JSON(w, r, http.StatusOK, out)
}

func (h *AuthHandler) TokenStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	token, hasToken := middleware.TokenFromContext(r.Context())
	if !ok || !hasToken {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid access token", nil)
		return
	}
	status, err := h.auth.TokenStatus(r.Context(), token, claims)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "token status check failed", "error", err)
		response.Error(w, r, http.StatusInternalServerError, "TOKEN_STATUS_FAILED", "error checking token status", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, status)
}
