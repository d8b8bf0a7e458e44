package restapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ConnectionError covers every transport-level failure. Operators see one
// generic message; the cause stays attached for the log.
type ConnectionError struct {
	cause error
}

func (e *ConnectionError) Error() string { return "Errore di connessione al server" }

func (e *ConnectionError) Unwrap() error { return e.cause }

func IsUnreachable(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// FieldError is one entry of a structured validation failure, in the
// backend's shape: a location path plus a message.
type FieldError struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

func (f FieldError) Path() string {
	parts := make([]string, 0, len(f.Loc))
	for _, p := range f.Loc {
		parts = append(parts, fmt.Sprint(p))
	}
	return strings.Join(parts, ".")
}

// APIError is a non-2xx backend response: either a single message or a
// list of per-field validation messages.
type APIError struct {
	Status  int
	Message string
	Fields  []FieldError
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		pairs := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			pairs = append(pairs, f.Path()+": "+f.Msg)
		}
		return "Errori di validazione: " + strings.Join(pairs, ", ")
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("richiesta rifiutata (HTTP %d)", e.Status)
}

// IsAuthError reports a 401: the session is no longer valid.
func IsAuthError(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == 401
}

func IsForbidden(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == 403
}

// errorBody is the backend's error envelope: "detail" holds either a
// string or a validation list.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return apiErr
	}
	var msg string
	if err := json.Unmarshal(eb.Detail, &msg); err == nil {
		apiErr.Message = msg
		return apiErr
	}
	var fields []FieldError
	if err := json.Unmarshal(eb.Detail, &fields); err == nil {
		apiErr.Fields = fields
	}
	return apiErr
}
