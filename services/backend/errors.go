package backend

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo/core"
)

// Reply statuses
const (
	StatusSuccess = "success"
	StatusFail    = "fail"  // 4xx
	StatusError   = "error" // 5xx
)

// ErrorDetail is the `error` object of an error payload.
type ErrorDetail struct {
	StatusCode    int    `json:"statusCode"`
	Status        string `json:"status"`
	IsOperational bool   `json:"isOperational"`
}

// APIError is the error payload of every non 2xx reply, as sent by the backend:
//
//	{"status": "fail", "message": "...", "error": {"statusCode": 404, "status": "fail", "isOperational": true}}
//
// It is returned to callers unchanged; nothing is retried.
type APIError struct {
	HTTPStatus int               `json:"-"`
	Status     string            `json:"status"`
	Message    string            `json:"message"`
	Detail     ErrorDetail       `json:"error"`
	Fields     []core.FieldError `json:"errors,omitempty"`
	// Body is the raw reply.
	Body []byte `json:"-"`
}

// NewAPIError builds the payload the backend sends for code.
func NewAPIError(code int, msg string, flds ...core.FieldError) *APIError {
	status := StatusFail
	if code >= 500 {
		status = StatusError
	}
	if msg == "" {
		msg = http.StatusText(code)
	}
	return &APIError{
		HTTPStatus: code,
		Status:     status,
		Message:    msg,
		Detail:     ErrorDetail{StatusCode: code, Status: status, IsOperational: code < 500},
		Fields:     flds,
	}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Status, e.HTTPStatus, e.Message)
}

// FieldMap returns the field errors of a validation failure keyed by field name.
func (e *APIError) FieldMap() map[string]string {
	return core.ValidationError{Fields: e.Fields}.FieldMap()
}

// decodeAPIError reads the error payload of a reply. Replies that do not carry one
// (eg: from a proxy) get a payload built from the HTTP status.
func decodeAPIError(code int, body []byte) *APIError {
	apiErr := new(APIError)
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Status == "" {
		apiErr = NewAPIError(code, "")
	}
	apiErr.HTTPStatus = code
	if apiErr.Detail.StatusCode == 0 {
		apiErr.Detail = ErrorDetail{StatusCode: code, Status: apiErr.Status, IsOperational: code < 500}
	}
	apiErr.Body = body
	return apiErr
}

// AsAPIError returns the *APIError cause of err, if any.
func AsAPIError(err error) (*APIError, bool) {
	apiErr, ok := errors.Cause(err).(*APIError)
	return apiErr, ok
}

func hasStatus(err error, codes ...int) bool {
	apiErr, ok := AsAPIError(err)
	if !ok {
		return false
	}
	for _, code := range codes {
		if apiErr.HTTPStatus == code {
			return true
		}
	}
	return false
}

func IsNotFound(err error) bool { return hasStatus(err, http.StatusNotFound) }

func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized, http.StatusForbidden)
}

// IsValidation reports whether err is a client side validation failure or a 400/422 reply.
func IsValidation(err error) bool {
	return core.IsValidationError(err) || hasStatus(err, http.StatusBadRequest, http.StatusUnprocessableEntity)
}
