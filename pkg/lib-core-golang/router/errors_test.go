package router

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgErrors "github.com/pkg/errors"

	tst "github.com/evgeny-myasishchev/vault.banking/pkg/internal/testing"

	"github.com/bxcodec/faker/v3"
	"github.com/stretchr/testify/assert"
)

func Test_newHTTPErrorFromError(t *testing.T) {
	type args struct {
		err error
	}
	type testCase struct {
		name string
		args args
		want HTTPError
	}
	tests := []func() testCase{
		func() testCase {
			err := errors.New(faker.Sentence())
			return testCase{
				name: "generic server error",
				args: args{err: err},
				want: HTTPError{
					StatusCode: http.StatusInternalServerError,
					Status:     http.StatusText(http.StatusInternalServerError),
					Message:    http.StatusText(http.StatusInternalServerError),
				},
			}
		},
		func() testCase {
			message := faker.Sentence()
			err := ResourceNotFoundError(message)
			return testCase{
				name: "http error",
				args: args{err: err},
				want: err.(HTTPError),
			}
		},
		func() testCase {
			err := UnprocessableEntityError(faker.Sentence())
			return testCase{
				name: "wrapped http error",
				args: args{err: pkgErrors.Wrap(err, faker.Sentence())},
				want: err.(HTTPError),
			}
		},
	}
	for _, ttFn := range tests {
		tt := ttFn()
		t.Run(tt.name, func(t *testing.T) {
			got := newHTTPErrorFromError(tt.args.err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name       string
		build      func(message string) error
		statusCode int
	}{
		{name: "not found", build: ResourceNotFoundError, statusCode: http.StatusNotFound},
		{name: "bad request", build: BadRequestError, statusCode: http.StatusBadRequest},
		{name: "unauthorized", build: UnauthorizedError, statusCode: http.StatusUnauthorized},
		{name: "unprocessable entity", build: UnprocessableEntityError, statusCode: http.StatusUnprocessableEntity},
		{name: "payload too large", build: PayloadTooLargeError, statusCode: http.StatusRequestEntityTooLarge},
		{name: "service unavailable", build: ServiceUnavailableError, statusCode: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			message := faker.Sentence()
			assert.Equal(t, HTTPError{
				StatusCode: tt.statusCode,
				Status:     http.StatusText(tt.statusCode),
				Message:    message,
			}, tt.build(message))
		})
	}

	t.Run("generic", func(t *testing.T) {
		message := faker.Sentence()
		statusCode := 400 + rand.Intn(10)
		assert.Equal(t, HTTPError{
			StatusCode: statusCode,
			Status:     http.StatusText(statusCode),
			Message:    message,
		}, NewHTTPError(statusCode, message))
	})

	t.Run("param validation error", func(t *testing.T) {
		assert.Equal(t,
			BadRequestError("ValidationFailed: query parameter 'limit' is invalid"),
			ParamValidationError(QueryParam, "limit"),
		)
		assert.Equal(t,
			BadRequestError("ValidationFailed: path parameter 'id' is invalid"),
			ParamValidationError(PathParam, "id"),
		)
	})
}

func Test_errorResponse_Error(t *testing.T) {
	message := faker.Sentence()
	statusCode := 400 + rand.Intn(10)
	statusText := http.StatusText(statusCode)
	err := HTTPError{
		StatusCode: statusCode,
		Status:     statusText,
		Message:    message,
	}

	actual := err.Error()
	assert.Equal(t, fmt.Sprintf("[%v](%v): %v", statusCode, statusText, message), actual)
}

func TestHTTPError_Send(t *testing.T) {
	type args struct {
		err HTTPError
	}
	type testCase struct {
		name string
		args args
		want func(t *testing.T, recorder *httptest.ResponseRecorder)
	}
	tests := []func() testCase{
		func() testCase {
			statusCode := 400 + rand.Intn(10)
			err := HTTPError{
				StatusCode: statusCode,
				Status:     http.StatusText(statusCode),
				Message:    faker.Sentence(),
			}
			return testCase{
				name: "write http error",
				args: args{err: err},
				want: func(t *testing.T, recorder *httptest.ResponseRecorder) {
					assert.Equal(t, statusCode, recorder.Code)
					assert.Equal(t, "application/json", recorder.Header().Get("content-type"))

					var got HTTPError
					if !tst.JSONUnmarshalReader(t, recorder.Body, &got) {
						return
					}
					assert.Equal(t, err, got)
				},
			}
		},
	}
	for _, tt := range tests {
		tt := tt()
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.args.err.Send(w)
			tt.want(t, w)
		})
	}
}
