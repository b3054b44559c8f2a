package router

import (
	"encoding/json"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bxcodec/faker/v3"
	"github.com/stretchr/testify/assert"

	tst "github.com/evgeny-myasishchev/vault.banking/pkg/internal/testing"
)

type testTransferPayload struct {
	SourceAccountID string      `json:"sourceAccountId" validate:"required"`
	RecipientIBAN   string      `json:"recipientIban" validate:"required,min=15,max=34"`
	Amount          json.Number `json:"amount" validate:"required"`
	Reference       string      `json:"reference" validate:"max=140"`
}

func newTestTransferPayload() testTransferPayload {
	return testTransferPayload{
		SourceAccountID: "acc-" + faker.UUIDDigit(),
		RecipientIBAN:   "CH93" + faker.UUIDDigit()[:17],
		Amount:          json.Number("100.50"),
		Reference:       faker.Sentence(),
	}
}

func TestHandlerToolkit(t *testing.T) {
	router := CreateRouter()

	accountID := "acc-" + faker.UUIDDigit()
	want := map[string]interface{}{
		"accountId": accountID,
		"balance":   "1000.00",
		"currency":  "CHF",
	}

	handlerCalled := false
	router.Handle(http.MethodGet, "/api/accounts/:id",
		ToolkitHandlerFunc(func(w http.ResponseWriter, req *http.Request, h HandlerToolkit) error {
			handlerCalled = true
			paramsBinder := h.BindParams()
			if !assert.NotNil(t, paramsBinder) {
				return nil
			}
			assert.Equal(t, req, paramsBinder.req)
			assert.Equal(t, accountID, paramsBinder.pathParamValue(req, "id"))
			return h.WriteJSON(want)
		}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/accounts/"+accountID, nil))

	assert.True(t, handlerCalled, "handler should have been called")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	got := map[string]interface{}{}
	tst.JSONUnmarshalBuffer(w.Body, &got)
	assert.Equal(t, want, got)
}

func TestRouter_NotFound(t *testing.T) {
	router := CreateRouter()
	router.Handle(http.MethodPost, "/api/transfers", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{name: "unknown path", method: http.MethodGet, path: "/api/" + faker.Word()},
		{name: "unknown method", method: http.MethodGet, path: "/api/transfers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			var got HTTPError
			tst.JSONUnmarshalBuffer(w.Body, &got)
			assert.Equal(t, ResourceNotFoundError("Route not found: "+tt.method+" "+tt.path), got)
		})
	}
}

func Test_HandlerToolkit_BindPayload(t *testing.T) {
	type fields struct {
		body io.Reader
	}
	type testCase struct {
		name   string
		fields fields
		assert func(t *testing.T, h HandlerToolkit)
	}
	tests := []func() testCase{
		func() testCase {
			want := map[string]interface{}{
				"username": faker.Username(),
				"attempt":  float64(rand.Intn(10)),
			}
			return testCase{
				name:   "bind json payload map",
				fields: fields{body: tst.JSONMarshalToReader(want)},
				assert: func(t *testing.T, h HandlerToolkit) {
					var got map[string]interface{}
					if assert.NoError(t, h.BindPayload(&got)) {
						assert.Equal(t, want, got)
					}
				},
			}
		},
		func() testCase {
			want := newTestTransferPayload()
			return testCase{
				name:   "bind json payload struct",
				fields: fields{body: tst.JSONMarshalToReader(want)},
				assert: func(t *testing.T, h HandlerToolkit) {
					var got testTransferPayload
					if assert.NoError(t, h.BindPayload(&got)) {
						assert.Equal(t, want, got)
					}
				},
			}
		},
		func() testCase {
			return testCase{
				name:   "fail if bad json",
				fields: fields{body: strings.NewReader(faker.Word())},
				assert: func(t *testing.T, h HandlerToolkit) {
					var got testTransferPayload
					assert.Equal(t, BadRequestError("ValidationFailed: malformed payload"), h.BindPayload(&got))
				},
			}
		},
		func() testCase {
			return testCase{
				name:   "fail if amount is not a number",
				fields: fields{body: strings.NewReader(`{"sourceAccountId":"acc-1","amount":"` + faker.Word() + `"}`)},
				assert: func(t *testing.T, h HandlerToolkit) {
					var got testTransferPayload
					assert.Equal(t, BadRequestError("ValidationFailed: malformed payload"), h.BindPayload(&got))
				},
			}
		},
		func() testCase {
			payload := newTestTransferPayload()
			payload.Reference = strings.Repeat("x", MaxPayloadSize)
			return testCase{
				name:   "fail if payload is too large",
				fields: fields{body: tst.JSONMarshalToReader(payload)},
				assert: func(t *testing.T, h HandlerToolkit) {
					var got testTransferPayload
					assert.Equal(t, PayloadTooLargeError("ValidationFailed: payload too large"), h.BindPayload(&got))
				},
			}
		},
		func() testCase {
			payload := newTestTransferPayload()
			payload.SourceAccountID = ""
			payload.RecipientIBAN = "CH93"
			return testCase{
				name:   "fail if invalid json",
				fields: fields{body: tst.JSONMarshalToReader(payload)},
				assert: func(t *testing.T, h HandlerToolkit) {
					var got testTransferPayload
					err := h.BindPayload(&got)
					var httpErr HTTPError
					if !assert.ErrorAs(t, err, &httpErr) {
						return
					}
					assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
					assert.Contains(t, httpErr.Message, "params [SourceAccountID RecipientIBAN] are invalid")
				},
			}
		},
	}
	for _, ttFn := range tests {
		tt := ttFn()
		t.Run(tt.name, func(t *testing.T) {
			h := &handlerToolkit{
				request:        httptest.NewRequest(http.MethodPost, "/api/transfers", tt.fields.body),
				responseWriter: httptest.NewRecorder(),
				validator:      newStructValidator(),
			}
			tt.assert(t, h)
		})
	}
}

func Test_HandlerToolkit_WriteJSON(t *testing.T) {
	type args struct {
		payload    interface{}
		decorators []ResponseDecorator
	}
	type testCase struct {
		name   string
		args   args
		assert func(t *testing.T, recorder *httptest.ResponseRecorder, err error)
	}
	tests := []func() testCase{
		func() testCase {
			payload := newTestTransferPayload()
			return testCase{
				name: "write",
				args: args{payload: payload},
				assert: func(t *testing.T, recorder *httptest.ResponseRecorder, err error) {
					if !assert.NoError(t, err) {
						return
					}
					var got testTransferPayload
					tst.JSONUnmarshalBuffer(recorder.Body, &got)
					assert.Equal(t, payload, got)
				},
			}
		},
		func() testCase {
			payload := map[string]interface{}{"success": true}
			requestID := faker.UUIDHyphenated()
			return testCase{
				name: "write with decorators",
				args: args{
					payload: payload,
					decorators: []ResponseDecorator{
						func(w http.ResponseWriter) error {
							w.Header().Set("x-request-id", requestID)
							return nil
						},
						func(w http.ResponseWriter) error {
							w.WriteHeader(http.StatusCreated)
							return nil
						},
					},
				},
				assert: func(t *testing.T, recorder *httptest.ResponseRecorder, err error) {
					if !assert.NoError(t, err) {
						return
					}
					assert.Equal(t, http.StatusCreated, recorder.Code)
					assert.Equal(t, requestID, recorder.Header().Get("x-request-id"))
					assert.Equal(t, "application/json", recorder.Header().Get("content-type"))
					var got map[string]interface{}
					tst.JSONUnmarshalBuffer(recorder.Body, &got)
					assert.Equal(t, payload, got)
				},
			}
		},
		func() testCase {
			decoratorErr := errors.New(faker.Sentence())
			return testCase{
				name: "write with decorator error",
				args: args{
					payload: map[string]interface{}{},
					decorators: []ResponseDecorator{
						func(w http.ResponseWriter) error {
							return decoratorErr
						},
					},
				},
				assert: func(t *testing.T, recorder *httptest.ResponseRecorder, err error) {
					assert.EqualError(t, err, decoratorErr.Error())
					assert.Empty(t, recorder.Body.String())
				},
			}
		},
	}
	for _, ttFn := range tests {
		tt := ttFn()
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			h := HandlerToolkit(&handlerToolkit{
				request:        httptest.NewRequest(http.MethodGet, "/api/user", nil),
				responseWriter: recorder,
			})
			err := h.WriteJSON(tt.args.payload, tt.args.decorators...)
			tt.assert(t, recorder, err)
		})
	}
}

func Test_HandlerToolkit_Decorator(t *testing.T) {
	type testCase struct {
		name      string
		decorator func(h HandlerToolkit) ResponseDecorator
		assert    func(t *testing.T, recorder *httptest.ResponseRecorder, err error)
	}

	tests := []func() testCase{
		func() testCase {
			status := http.StatusOK + rand.Intn(300)
			return testCase{
				name: "status",
				decorator: func(h HandlerToolkit) ResponseDecorator {
					return h.WithStatus(status)
				},
				assert: func(t *testing.T, recorder *httptest.ResponseRecorder, err error) {
					assert.NoError(t, err)
					assert.Equal(t, status, recorder.Code)
				},
			}
		},
		func() testCase {
			cookie := &http.Cookie{Name: "vault.sid", Value: faker.UUIDHyphenated(), HttpOnly: true, Path: "/"}
			return testCase{
				name: "session cookie",
				decorator: func(h HandlerToolkit) ResponseDecorator {
					return h.WithCookie(cookie)
				},
				assert: func(t *testing.T, recorder *httptest.ResponseRecorder, err error) {
					assert.NoError(t, err)
					cookies := recorder.Result().Cookies()
					if !assert.Len(t, cookies, 1) {
						return
					}
					assert.Equal(t, cookie.Name, cookies[0].Name)
					assert.Equal(t, cookie.Value, cookies[0].Value)
					assert.Equal(t, "/", cookies[0].Path)
					assert.True(t, cookies[0].HttpOnly)
				},
			}
		},
		func() testCase {
			cookie := &http.Cookie{Name: "vault.sid", Value: "", MaxAge: -1, Path: "/"}
			return testCase{
				name: "expired session cookie",
				decorator: func(h HandlerToolkit) ResponseDecorator {
					return h.WithCookie(cookie)
				},
				assert: func(t *testing.T, recorder *httptest.ResponseRecorder, err error) {
					assert.NoError(t, err)
					assert.Contains(t, recorder.Header().Get("Set-Cookie"), "Max-Age=0")
				},
			}
		},
	}
	for _, ttFn := range tests {
		tt := ttFn()
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			h := HandlerToolkit(&handlerToolkit{
				request:        httptest.NewRequest(http.MethodGet, "/", nil),
				responseWriter: recorder,
			})
			err := tt.decorator(h)(recorder)
			tt.assert(t, recorder, err)
		})
	}
}
