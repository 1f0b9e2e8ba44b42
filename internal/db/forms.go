package db

import (
	"context"
	"encoding/json"

	"practice-api/internal/models"
)

// CreateFormSubmission inserts a submission. The UNIQUE constraint on
// submission_hash makes a second insert with the same hash fail with
// ErrDuplicate, whichever request reached the store first.
func (db *DB) CreateFormSubmission(ctx context.Context, userID, hash string, data json.RawMessage) (*models.FormSubmission, error) {
	sub := &models.FormSubmission{
		ID:             newID(),
		UserID:         userID,
		FormData:       data,
		SubmissionHash: hash,
		CreatedAt:      now(),
	}

	query := "INSERT INTO form_submissions (id, user_id, form_data, submission_hash, created_at) VALUES (?, ?, ?, ?, ?)"
	_, err := db.exec(ctx, query, sub.ID, sub.UserID, string(sub.FormData), sub.SubmissionHash, sub.CreatedAt)
	if err != nil {
		return nil, storeErr("create form submission", err)
	}
	return sub, nil
}

func (db *DB) GetFormSubmissionByHash(ctx context.Context, hash string) (*models.FormSubmission, error) {
	query := "SELECT id, user_id, form_data, submission_hash, created_at FROM form_submissions WHERE submission_hash = ?"

	sub := &models.FormSubmission{}
	var data string
	err := db.queryRow(ctx, query, hash).Scan(&sub.ID, &sub.UserID, &data, &sub.SubmissionHash, &sub.CreatedAt)
	if err != nil {
		return nil, storeErr("get form submission", err)
	}
	sub.FormData = json.RawMessage(data)
	return sub, nil
}
