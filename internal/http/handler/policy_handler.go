package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/snic-labs/policy-api/internal/http/response"
	"github.com/snic-labs/policy-api/internal/observability"
	"github.com/snic-labs/policy-api/internal/service"
)

type PolicyHandler struct {
	policies service.PolicyServiceInterface
	validate *validator.Validate
	logger   *slog.Logger
}

func NewPolicyHandler(policies service.PolicyServiceInterface, logger *slog.Logger) *PolicyHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PolicyHandler{policies: policies, validate: newValidator(), logger: logger}
}

func (h *PolicyHandler) List(w http.ResponseWriter, r *http.Request) {
	policies, err := h.policies.List(r.Context())
	h.writeList(w, r, policies, err)
}

func (h *PolicyHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	policies, err := h.policies.ListActive(r.Context())
	h.writeList(w, r, policies, err)
}

func (h *PolicyHandler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "productID")
	if !ok {
		return
	}
	policies, err := h.policies.ListByProduct(r.Context(), id)
	h.writeList(w, r, policies, err)
}

func (h *PolicyHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	policies, err := h.policies.ListByUser(r.Context(), id)
	h.writeList(w, r, policies, err)
}

func (h *PolicyHandler) writeList(w http.ResponseWriter, r *http.Request, policies []service.PolicyView, err error) {
	if err != nil {
		h.fail(w, r, "list policies failed", err)
		return
	}
	response.JSON(w, r, http.StatusOK, policies)
}

func (h *PolicyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "policyID")
	if !ok {
		return
	}
	p, err := h.policies.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get policy failed", err)
		return
	}
	response.JSON(w, r, http.StatusOK, p)
}

func (h *PolicyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CreatePolicyInput
	if err := decodeJSON(r, &in); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(in); err != nil {
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_FAILED", "request validation failed", validationDetails(err))
		return
	}
	p, err := h.policies.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, "create policy failed", err)
		return
	}
	observability.Audit(r, "policy.create", "policy_id", p.ID, "policy_number", p.PolicyNumber)
	response.JSON(w, r, http.StatusCreated, p)
}

func (h *PolicyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "policyID")
	if !ok {
		return
	}
	var in service.UpdatePolicyInput
	if err := decodeJSON(r, &in); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(in); err != nil {
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_FAILED", "request validation failed", validationDetails(err))
		return
	}
	p, err := h.policies.Update(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, "update policy failed", err)
		return
	}
	observability.Audit(r, "policy.update", "policy_id", id)
	response.JSON(w, r, http.StatusOK, p)
}

func (h *PolicyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "policyID")
	if !ok {
		return
	}
	if err := h.policies.Delete(r.Context(), id); err != nil {
		h.fail(w, r, "delete policy failed", err)
		return
	}
	observability.Audit(r, "policy.delete", "policy_id", id)
	response.JSON(w, r, http.StatusOK, map[string]string{"message": "Policy deleted successfully"})
}

func (h *PolicyHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrPolicyNotFound):
		response.Error(w, r, http.StatusNotFound, "POLICY_NOT_FOUND", "policy not found", nil)
	case errors.Is(err, service.ErrUserNotFound):
		response.Error(w, r, http.StatusNotFound, "USER_NOT_FOUND", "user not found", nil)
	case errors.Is(err, service.ErrUnknownProduct):
		response.Error(w, r, http.StatusBadRequest, "UNKNOWN_PRODUCT", "product not found", nil)
	case errors.Is(err, service.ErrUnknownUser):
		response.Error(w, r, http.StatusBadRequest, "UNKNOWN_USER", "user not found", nil)
	case errors.Is(err, service.ErrInvalidPolicyPeriod):
		response.Error(w, r, http.StatusBadRequest, "INVALID_PERIOD", "end date must be after start date", nil)
	case errors.Is(err, service.ErrPolicyNumberTaken):
		response.Error(w, r, http.StatusConflict, "POLICY_NUMBER_TAKEN", "policy number already exists", nil)
	default:
		h.logger.ErrorContext(r.Context(), msg, "error", err)
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "policy operation failed", nil)
	}
}
