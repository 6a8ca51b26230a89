package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrConnectivity   = errors.New("connectivity error")
	ErrHTTP           = errors.New("http error")
	ErrParse          = errors.New("parse error")
	ErrValidation     = errors.New("validation error")
	ErrAuthentication = errors.New("authentication required")
	ErrNotFound       = errors.New("not found")
)

// ConnectivityError means no HTTP response was received.
type ConnectivityError struct {
	Method string
	Path   string
	Err    error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s %s: unable to reach server: %v", e.Method, e.Path, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

func (e *ConnectivityError) Is(target error) bool { return target == ErrConnectivity }

// HTTPError is a non-2xx response. Message is the server-provided reason when present.
type HTTPError struct {
	StatusCode int
	Message    string
	Method     string
	Path       string
}

func (e *HTTPError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrHTTP:
		return true
	case ErrAuthentication:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// ParseError is a 2xx response whose body could not be decoded into the expected shape.
type ParseError struct {
	Method string
	Path   string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s %s: malformed response: %v", e.Method, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// ValidationError is raised before sending when input is structurally invalid, or by
// services that map a server-side rejection onto it (Err then holds the HTTPError).
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	switch {
	case e.Field != "" && e.Reason != "":
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	case e.Reason != "":
		return "validation failed: " + e.Reason
	case e.Err != nil:
		return "validation failed: " + e.Err.Error()
	}
	return "validation failed"
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Message returns a string suitable for showing to a user: the server's reason for HTTP
// failures, the reason for validation failures, otherwise fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		if verr.Reason != "" {
			return verr.Reason
		}
	}
	var herr *HTTPError
	if errors.As(err, &herr) && herr.Message != "" {
		return herr.Message
	}
	if errors.Is(err, ErrConnectivity) && fallback == "" {
		return "Unable to reach the server"
	}
	if fallback == "" {
		return err.Error()
	}
	return fallback
}

func newHTTPError(method, path string, status int, body []byte) *HTTPError {
	return &HTTPError{
		StatusCode: status,
		Message:    serverMessage(body),
		Method:     method,
		Path:       path,
	}
}

// serverMessage pulls detail/message/error out of an error body. detail may also be a
// list of field errors, each with a msg.
func serverMessage(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"detail", "message", "error"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(raw, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}
	return ""
}
