package headhunter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrApplyForbidden is returned when hh.ru refuses a negotiation with 403.
var ErrApplyForbidden = errors.New("application forbidden")

var forbiddenReasons = map[string]string{
	"invalid_vacancy":      "vacancy is not available",
	"resume_not_found":     "resume not found",
	"limit_exceeded":       "daily applications limit exceeded",
	"disabled_by_employer": "employer disabled applications",
	"resume_deleted":       "resume was deleted",
	"archived":             "vacancy is archived",
}

type ErrorItem struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// APIError is a non-successful response from hh.ru.
type APIError struct {
	StatusCode int
	Status     string
	Errors     []ErrorItem
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("bad status: %s", e.Status)
	}

	types := make([]string, 0, len(e.Errors))
	for _, item := range e.Errors {
		types = append(types, item.Type)
	}

	return fmt.Sprintf("bad status: %s (%s)", e.Status, strings.Join(types, ", "))
}

// Temporary reports whether the request may succeed later.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// Reason returns a human readable explanation of the first known error type.
func (e *APIError) Reason() string {
	for _, item := range e.Errors {
		if reason, ok := forbiddenReasons[item.Type]; ok {
			return reason
		}
		if reason, ok := forbiddenReasons[item.Value]; ok {
			return reason
		}
	}

	if len(e.Errors) > 0 && e.Errors[0].Value != "" {
		return e.Errors[0].Value
	}

	return "access denied"
}

func newAPIError(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
	}

	var payload struct {
		Errors []ErrorItem `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Errors = payload.Errors
	}

	return apiErr
}
