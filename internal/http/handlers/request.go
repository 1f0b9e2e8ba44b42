package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"practice-api/internal/http/middleware"
	"practice-api/internal/models"
	"practice-api/internal/service"
)

const (
	maxBodyBytes = 10 << 20
	maxPageLimit = 100
)

// decodeJSON reads the request body into dst. An empty body leaves dst
// untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return service.BadRequest("Request body too large")
	}
	return service.BadRequest("Invalid request body")
}

// pageFromQuery falls back to page 1 and defaultLimit for missing or
// unusable values.
func pageFromQuery(r *http.Request, defaultLimit int) models.Page {
	q := r.URL.Query()
	page := models.Page{Page: 1, Limit: defaultLimit}

	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		page.Page = n
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		page.Limit = min(n, maxPageLimit)
	}
	return page
}

func floatParam(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, service.BadRequest(name + " must be a number")
	}
	return &f, nil
}

// caller returns the authenticated identity; routes using it are mounted
// behind middleware.Authenticate.
func caller(r *http.Request) *models.Claims {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return &models.Claims{}
	}
	return claims
}
