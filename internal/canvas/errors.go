package canvas

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

var (
	// ErrPageLimit is returned when a list call has more pages than the client follows.
	ErrPageLimit = errors.New("pagination limit reached")
	// ErrForeignNextLink is returned when a Link rel="next" leaves the Canvas instance.
	ErrForeignNextLink = errors.New("next link points outside the canvas instance")
)

// APIError is returned for every non-2xx Canvas response.
type APIError struct {
	Status   int
	Endpoint string
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("canvas %s: status %d: %s", e.Endpoint, e.Status, e.Message)
}

// StatusOf returns the upstream status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsForbidden reports 401 and 403 responses.
func IsForbidden(err error) bool {
	status := StatusOf(err)
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// IsNotFound reports 404 responses.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

type errorBody struct {
	Message string `json:"message"`
	Errors  []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// errorMessage extracts Canvas' error text from a response body.
func errorMessage(status int, body []byte) string {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		messages := make([]string, 0, len(parsed.Errors))
		for _, e := range parsed.Errors {
			if e.Message != "" {
				messages = append(messages, e.Message)
			}
		}
		if len(messages) > 0 {
			return strings.Join(messages, "; ")
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "unexpected response"
}
