package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// Error is the typed error every service call returns for a failed request.
type Error struct {
	Message string
	Status  int // 0 when the request never got a response
	Data    json.RawMessage
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// ErrNotFound is matched by errors.Is against any 404 *Error.
var ErrNotFound = errors.New("not found")

func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// errorFromResponse builds an *Error from a non-2xx body, picking the
// server-provided message when there is one.
func errorFromResponse(status int, body []byte) *Error {
	e := &Error{Status: status, Message: http.StatusText(status)}
	if len(body) == 0 {
		return e
	}
	if gjson.ValidBytes(body) {
		e.Data = json.RawMessage(body)
		parsed := gjson.ParseBytes(body)
		for _, path := range []string{"detail", "message", "error", "non_field_errors.0"} {
			if m := parsed.Get(path); m.Exists() && m.String() != "" {
				e.Message = m.String()
				break
			}
		}
	}
	if e.Message == "" {
		e.Message = "request failed"
	}
	return e
}

// DisplayMessage returns the text a page shows in its error banner.
func DisplayMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
