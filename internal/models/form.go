package models

import (
	"encoding/json"
	"time"
)

// FormSubmission is stored once per submission hash and never modified.
type FormSubmission struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	FormData       json.RawMessage `json:"formData"`
	SubmissionHash string          `json:"submissionHash"`
	CreatedAt      time.Time       `json:"createdAt"`
}
