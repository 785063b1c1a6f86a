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

type ProductHandler struct {
	products service.ProductServiceInterface
	validate *validator.Validate
	logger   *slog.Logger
}

func NewProductHandler(products service.ProductServiceInterface, logger *slog.Logger) *ProductHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductHandler{products: products, validate: newValidator(), logger: logger}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list products failed", "error", err)
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "could not list products", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "productID")
	if !ok {
		return
	}
	p, err := h.products.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get product failed", err)
		return
	}
	response.JSON(w, r, http.StatusOK, p)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	creator, ok := callerID(w, r)
	if !ok {
		return
	}
	var in service.CreateProductInput
	if err := decodeJSON(r, &in); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(in); err != nil {
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_FAILED", "request validation failed", validationDetails(err))
		return
	}
	p, err := h.products.Create(r.Context(), creator, in)
	if err != nil {
		h.fail(w, r, "create product failed", err)
		return
	}
	observability.Audit(r, "product.create", "product_id", p.ID, "user_id", creator)
	response.JSON(w, r, http.StatusCreated, p)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "productID")
	if !ok {
		return
	}
	var in service.UpdateProductInput
	if err := decodeJSON(r, &in); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(in); err != nil {
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_FAILED", "request validation failed", validationDetails(err))
		return
	}
	p, err := h.products.Update(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, "update product failed", err)
		return
	}
	observability.Audit(r, "product.update", "product_id", id)
	response.JSON(w, r, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "productID")
	if !ok {
		return
	}
	if err := h.products.Delete(r.Context(), id); err != nil {
		h.fail(w, r, "delete product failed", err)
		return
	}
	observability.Audit(r, "product.delete", "product_id", id)
	response.JSON(w, r, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

func (h *ProductHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		response.Error(w, r, http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found", nil)
	case errors.Is(err, service.ErrProductHasPolicies):
		response.Error(w, r, http.StatusConflict, "PRODUCT_IN_USE", "product has associated policies", nil)
	case errors.Is(err, service.ErrUnknownUser):
		response.Error(w, r, http.StatusBadRequest, "UNKNOWN_USER", "creator user not found", nil)
	default:
		h.logger.ErrorContext(r.Context(), msg, "error", err)
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "product operation failed", nil)
	}
}
