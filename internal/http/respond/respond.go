// Package respond writes JSON responses and the uniform {"error": msg} body.
package respond

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"practice-api/internal/service"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("RESPONSE_ERROR | status=%d err=%v", status, err)
	}
}

func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// Err translates a service error. Causes of internal errors are logged and
// replaced by a generic message.
func Err(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusOf(service.KindOf(err))
	if status == http.StatusInternalServerError {
		log.Printf("INTERNAL_ERROR | method=%s path=%s err=%v", r.Method, r.URL.Path, err)
		Error(w, status, "Internal server error")
		return
	}

	var se *service.Error
	if errors.As(err, &se) {
		Error(w, status, se.Msg)
		return
	}
	Error(w, status, err.Error())
}

func StatusOf(k service.Kind) int {
	switch k {
	case service.KindBadRequest:
		return http.StatusBadRequest
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
