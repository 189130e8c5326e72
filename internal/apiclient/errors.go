package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// TransportError means the request never reached the backend or the response
// never came back.
type TransportError struct {
	Method   string
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: transport: %v", e.Method, e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Method   string
	Endpoint string
	Status   int
	Reason   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Endpoint, e.Status, e.Reason)
}

// ProtocolError means a 2xx body was not the JSON shape we expected, or a
// decoded record broke its invariants.
type ProtocolError struct {
	Method   string
	Endpoint string
	Err      error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s %s: malformed response: %v", e.Method, e.Endpoint, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Describe turns any client error into a sentence fit for an operator.
func Describe(err error) string {
	var (
		apiErr   *APIError
		transErr *TransportError
		protoErr *ProtocolError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		return fmt.Sprintf("The backend rejected the request (%d): %s", apiErr.Status, apiErr.Reason)
	case errors.As(err, &transErr):
		return "Could not reach the scheduling backend. Check that it is running and try again."
	case errors.As(err, &protoErr):
		return "The backend sent a response the dashboard could not read."
	default:
		return err.Error()
	}
}

const maxReasonLen = 200

// reasonFrom derives a human-readable reason from an error response body.
// FastAPI answers {"detail": "..."} or {"detail": [{"msg": "..."}]}; other
// services use "error" or "message".
func reasonFrom(status int, body []byte) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Error   string          `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if r := detailReason(payload.Detail); r != "" {
			return r
		}
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	} else if text := strings.TrimSpace(string(body)); text != "" {
		if utf8.RuneCountInString(text) > maxReasonLen {
			text = string([]rune(text)[:maxReasonLen]) + "…"
		}
		return text
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "unexpected status"
}

func detailReason(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []struct {
		Msg string `json:"msg"`
		Loc []any  `json:"loc"`
	}
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		msgs := make([]string, 0, len(list))
		for _, item := range list {
			if item.Msg == "" {
				continue
			}
			if len(item.Loc) > 0 {
				msgs = append(msgs, fmt.Sprintf("%v: %s", item.Loc[len(item.Loc)-1], item.Msg))
			} else {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
