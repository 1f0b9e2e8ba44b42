package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"practice-api/internal/db"
	"practice-api/internal/models"
)

type FormStore interface {
	GetFormSubmissionByHash(ctx context.Context, hash string) (*models.FormSubmission, error)
	CreateFormSubmission(ctx context.Context, userID, hash string, data json.RawMessage) (*models.FormSubmission, error)
}

// FormService is the idempotency ledger for form submissions. The store's
// UNIQUE index on the submission hash is what makes it correct under
// concurrent duplicates; the lookup only saves a failed insert.
type FormService struct {
	store FormStore
}

func NewFormService(store FormStore) *FormService {
	return &FormService{store: store}
}

// Submit persists data under key unless a submission with that key already
// exists, in which case the stored submission is returned with duplicate=true.
// The first writer wins; later payloads for the same key are discarded.
func (s *FormService) Submit(ctx context.Context, key, userID string, data json.RawMessage) (*models.FormSubmission, bool, error) {
	if key == "" {
		return nil, false, BadRequest("Idempotency-Key header required")
	}

	existing, err := s.store.GetFormSubmissionByHash(ctx, key)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, false, Internal(err)
	}

	payload, err := normalizeFormData(data)
	if err != nil {
		return nil, false, err
	}

	sub, err := s.store.CreateFormSubmission(ctx, userID, key, payload)
	if errors.Is(err, db.ErrDuplicate) {
		winner, err := s.store.GetFormSubmissionByHash(ctx, key)
		if err != nil {
			return nil, false, Internal(fmt.Errorf("reload submission after duplicate insert: %w", err))
		}
		return winner, true, nil
	}
	if err != nil {
		return nil, false, Internal(err)
	}
	return sub, false, nil
}

// normalizeFormData accepts an absent payload or any JSON object. Nested
// values are not inspected.
func normalizeFormData(data json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return json.RawMessage("{}"), nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, BadRequest("formData must be a JSON object")
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return nil, BadRequest("formData must be a JSON object")
	}
	return compact.Bytes(), nil
}
