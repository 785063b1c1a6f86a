package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/snic-labs/policy-api/internal/http/middleware"
	"github.com/snic-labs/policy-api/internal/http/response"
)

// pathID reads a positive numeric id from the named chi URL parameter and
// answers 400 itself when it is malformed.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	v, err := strconv.ParseUint(chi.URLParam(r, name), 10, 32)
	if err != nil || v == 0 {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", name+" must be a positive integer", nil)
		return 0, false
	}
	return uint(v), true
}

func callerID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid access token", nil)
		return 0, false
	}
	id, err := claims.UserID()
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token subject", nil)
		return 0, false
	}
	return id, true
}
