package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/snic-labs/policy-api/internal/http/response"
	"github.com/snic-labs/policy-api/internal/repository"
	"github.com/snic-labs/policy-api/internal/service"
)

type AdminHandler struct {
	blacklist service.BlacklistAuditor
	logger    *slog.Logger
}

func NewAdminHandler(blacklist service.BlacklistAuditor, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{blacklist: blacklist, logger: logger}
}

func (h *AdminHandler) ListBlacklist(w http.ResponseWriter, r *http.Request) {
	req, ok := parsePageRequest(r)
	if !ok {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "page and page_size must be integers", nil)
		return
	}
	page, err := h.blacklist.ListActive(r.Context(), req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list blacklist failed", "error", err)
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "could not list blacklist", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, page)
}

func parsePageRequest(r *http.Request) (repository.PageRequest, bool) {
	var req repository.PageRequest
	q := r.URL.Query()
	if raw := q.Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return req, false
		}
		req.Page = v
	}
	if raw := q.Get("page_size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return req, false
		}
		req.PageSize = v
	}
	return req, true
}
