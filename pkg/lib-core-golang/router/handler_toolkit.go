package router

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
)

// MaxPayloadSize limits request bodies accepted by BindPayload
const MaxPayloadSize = 64 << 10

type handlerToolkit struct {
	request        *http.Request
	responseWriter http.ResponseWriter
	validator      *structValidator
	pathParamValue pathParamValueFunc
}

func (h *handlerToolkit) BindParams() *ParamsBinder {
	return &ParamsBinder{
		req:            h.request,
		validator:      h.validator,
		pathParamValue: h.pathParamValue,
	}
}

func (h *handlerToolkit) BindPayload(receiver interface{}) error {
	ctx := h.request.Context()
	body := http.MaxBytesReader(h.responseWriter, h.request.Body, MaxPayloadSize)
	if err := json.NewDecoder(body).Decode(receiver); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Info(ctx, "Payload exceeds %v bytes", tooLarge.Limit)
			return PayloadTooLargeError("ValidationFailed: payload too large")
		}
		logger.WithError(err).Info(ctx, "Failed to decode payload")
		return BadRequestError("ValidationFailed: malformed payload")
	}

	// validator can not validate maps
	if _, isMap := receiver.(*map[string]interface{}); isMap {
		return nil
	}

	return h.validator.validateStruct(ctx, receiver)
}

func (h *handlerToolkit) WriteJSON(payload interface{}, decorators ...ResponseDecorator) error {
	// headers must be set before any decorator writes the status
	h.responseWriter.Header().Set("content-type", "application/json")

	for _, decorator := range decorators {
		if err := decorator(h.responseWriter); err != nil {
			return err
		}
	}
	return json.NewEncoder(h.responseWriter).Encode(payload)
}

// WithStatus decorate response with particular http status
func (h *handlerToolkit) WithStatus(status int) ResponseDecorator {
	return func(w http.ResponseWriter) error {
		w.WriteHeader(status)
		return nil
	}
}

// WithCookie decorate response with a cookie. Must go before WithStatus
func (h *handlerToolkit) WithCookie(cookie *http.Cookie) ResponseDecorator {
	return func(w http.ResponseWriter) error {
		http.SetCookie(w, cookie)
		return nil
	}
}
