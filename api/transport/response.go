package transport

import (
	"encoding/json"
	"time"

	"github.com/taskhive/backend/domain"
)

// Envelope is the standard API response wrapper used for both success and
// error payloads.
type Envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail is the error half of the envelope.
type ErrorDetail struct {
	Code      string              `json:"code"`
	Message   string              `json:"message"`
	Details   []domain.FieldError `json:"details"`
	Timestamp string              `json:"timestamp"`
}

// NewSuccess returns a success envelope.
func NewSuccess(message string, data interface{}) Envelope {
	return Envelope{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// NewError returns an error envelope stamped with the current time.
func NewError(code domain.ErrorCode, message string, details []domain.FieldError) Envelope {
	if details == nil {
		details = []domain.FieldError{}
	}
	return Envelope{
		Success: false,
		Error: &ErrorDetail{
			Code:      string(code),
			Message:   message,
			Details:   details,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}
