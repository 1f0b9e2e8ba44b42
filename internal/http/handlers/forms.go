package handlers

import (
	"encoding/json"
	"net/http"

	"practice-api/internal/http/respond"
	"practice-api/internal/models"
	"practice-api/internal/service"
)

const IdempotencyHeader = "Idempotency-Key"

type FormHandler struct {
	forms *service.FormService
}

func NewFormHandler(forms *service.FormService) *FormHandler {
	return &FormHandler{forms: forms}
}

type submitResponse struct {
	Message   string                 `json:"message"`
	Data      *models.FormSubmission `json:"data"`
	Duplicate bool                   `json:"duplicate"`
}

// Submit answers 201 for a new submission and 200 for a repeated key.
func (h *FormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get(IdempotencyHeader)
	if key == "" {
		respond.Error(w, http.StatusBadRequest, "Idempotency-Key header required")
		return
	}

	var req struct {
		FormData json.RawMessage `json:"formData"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Err(w, r, err)
		return
	}

	sub, duplicate, err := h.forms.Submit(r.Context(), key, caller(r).ID, req.FormData)
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	if duplicate {
		respond.JSON(w, http.StatusOK, submitResponse{Message: "Duplicate submission prevented", Data: sub, Duplicate: true})
		return
	}
	respond.JSON(w, http.StatusCreated, submitResponse{Message: "Form submitted successfully", Data: sub})
}
