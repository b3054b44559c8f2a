package router

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// HTTPError represents a generic http error structure
type HTTPError struct {
	StatusCode int    `json:"statusCode"`
	Status     string `json:"error"`
	Message    string `json:"message"`
}

func (e HTTPError) Error() string {
	return fmt.Sprintf("[%v](%v): %v", e.StatusCode, e.Status, e.Message)
}

// Send will marshal and send the error response to the client
// panic if failed to send
func (e HTTPError) Send(w http.ResponseWriter) {
	errorData, err := json.Marshal(e)
	if err != nil {
		panic(err)
	}
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(e.StatusCode)
	if _, err := w.Write(errorData); err != nil {
		panic(err)
	}
}

// NewHTTPError - creates a generic http error
func NewHTTPError(statusCode int, message string) error {
	return HTTPError{
		StatusCode: statusCode,
		Status:     http.StatusText(statusCode),
		Message:    message,
	}
}

// ResourceNotFoundError a standard 404 error
func ResourceNotFoundError(message string) error {
	return NewHTTPError(http.StatusNotFound, message)
}

// BadRequestError a standard 400 error
func BadRequestError(message string) error {
	return NewHTTPError(http.StatusBadRequest, message)
}

// UnauthorizedError a standard 401 error
func UnauthorizedError(message string) error {
	return NewHTTPError(http.StatusUnauthorized, message)
}

// UnprocessableEntityError a standard 422 error
func UnprocessableEntityError(message string) error {
	return NewHTTPError(http.StatusUnprocessableEntity, message)
}

// PayloadTooLargeError a standard 413 error
func PayloadTooLargeError(message string) error {
	return NewHTTPError(http.StatusRequestEntityTooLarge, message)
}

// ServiceUnavailableError a standard 503 error
func ServiceUnavailableError(message string) error {
	return NewHTTPError(http.StatusServiceUnavailable, message)
}

// ParamValidationError a bad request error related to params validation
func ParamValidationError(paramType RequestParamType, paramName string) error {
	return BadRequestError(fmt.Sprint("ValidationFailed: ", paramType, " parameter '", paramName, "' is invalid"))
}

// newHTTPErrorFromError keeps http errors as is. Any other error
// is reported as 500 without exposing its details
func newHTTPErrorFromError(err error) HTTPError {
	var errResp HTTPError
	if errors.As(err, &errResp) {
		return errResp
	}
	return HTTPError{
		StatusCode: http.StatusInternalServerError,
		Status:     http.StatusText(http.StatusInternalServerError),
		Message:    http.StatusText(http.StatusInternalServerError),
	}
}
