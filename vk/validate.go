package vk

import (
	"encoding/json"
	"fmt"
)

// UnknownErrorCode is used when the service rejects a request without a code.
const UnknownErrorCode = -1

// APIError is a rejection embedded in an otherwise successful HTTP response.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Code == UnknownErrorCode {
		return fmt.Sprintf("VK API error: %s", e.Message)
	}
	return fmt.Sprintf("VK API error %d: %s", e.Code, e.Message)
}

type errorPayload struct {
	Code    *int   `json:"error_code"`
	Message string `json:"error_msg"`
}

// Validate decodes body and fails with *APIError if its root carries an
// "error" key. Otherwise the decoded payload is returned untouched.
func Validate(body []byte) (map[string]json.RawMessage, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode VK response: %w", err)
	}

	raw, ok := payload["error"]
	if !ok {
		return payload, nil
	}

	// The upload servers report errors as a bare string.
	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil {
		if msg == "" {
			msg = "unknown error"
		}
		return nil, &APIError{Code: UnknownErrorCode, Message: msg}
	}

	var ep errorPayload
	if err := json.Unmarshal(raw, &ep); err != nil {
		return nil, &APIError{Code: UnknownErrorCode, Message: string(raw)}
	}

	apiErr := &APIError{Code: UnknownErrorCode, Message: ep.Message}
	if ep.Code != nil {
		apiErr.Code = *ep.Code
	}
	if apiErr.Message == "" {
		apiErr.Message = "unknown error"
	}
	return nil, apiErr
}
