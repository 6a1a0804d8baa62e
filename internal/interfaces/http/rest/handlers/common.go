// Package handlers contains the REST endpoint implementations.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"pcforge-backend/internal/domain/shared"
	"pcforge-backend/internal/repository"
	"pcforge-backend/pkg/auth"
)

var validate = validator.New()

// decodeJSON parses the request body into dst and runs struct validation.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return validate.Struct(dst)
}

// currentUserID resolves the authenticated user from the request context.
func currentUserID(r *http.Request) (shared.UserID, error) {
	claims, err := auth.ClaimsFromContext(r.Context())
	if err != nil {
		return shared.UserID{}, err
	}
	return shared.ParseUserID(claims.UserID())
}

// paginationFromQuery reads limit and offset query parameters. Unparseable
// values fall back to zero, which means defaults downstream.
func paginationFromQuery(r *http.Request) repository.Pagination {
	var p repository.Pagination
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		p.Limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		p.Offset = v
	}
	return p
}
