package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/evgeny-myasishchev/vault.banking/pkg/lib-core-golang/diag"
)

var defaultLogger = diag.CreateLogger()

// HTTPError is returned when the server responds with non 2xx status
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e HTTPError) Error() string {
	return fmt.Sprintf("[%v](%v): %v", e.StatusCode, e.Status, e.Body)
}

// NewHTTPErrorFromResponse creates an error from a failed response consuming its body
func NewHTTPErrorFromResponse(res *http.Response) error {
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrapf(err, "Failed to read body of %v response", res.StatusCode)
	}
	return HTTPError{
		StatusCode: res.StatusCode,
		Status:     http.StatusText(res.StatusCode),
		Body:       string(body),
	}
}

type sendCfg struct {
	logger diag.Logger
	client *http.Client
}

// SendOpt is a send specific option
type SendOpt func(cfg *sendCfg)

func withLogger(logger diag.Logger) SendOpt {
	return func(cfg *sendCfg) {
		cfg.logger = logger
	}
}

// WithClient sends the request with given client. Useful to keep cookies between requests
func WithClient(client *http.Client) SendOpt {
	return func(cfg *sendCfg) {
		cfg.client = client
	}
}

// ReqFactory is a function that creates an instance of a request
type ReqFactory func() (*http.Request, error)

// Get creates a new req factory that creates a get request for given url
func Get(url string) ReqFactory {
	return func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, url, nil)
	}
}

// Post creates a new req factory that creates a post request with given body
func Post(url string, contentType string, body io.Reader) ReqFactory {
	return func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, url, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		return req, nil
	}
}

// PostJSON creates a post request with JSON encoded payload
func PostJSON(url string, payload interface{}) ReqFactory {
	return func() (*http.Request, error) {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, "Failed to marshal payload")
		}
		return Post(url, "application/json", bytes.NewReader(data))()
	}
}

// WithHeader adds a header to the request
func (f ReqFactory) WithHeader(name string, value string) ReqFactory {
	return func() (*http.Request, error) {
		req, err := f()
		if err != nil {
			return nil, err
		}
		req.Header.Add(name, value)
		return req, nil
	}
}

// ResFactory is a function that holds a request result with a response or error
type ResFactory func() (*http.Response, error)

// ReadAll will read entire body as a byte array
func (f ResFactory) ReadAll() ([]byte, error) {
	res, err := f()
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	return io.ReadAll(res.Body)
}

// DecodeJSON will decode the body into the receiver
func (f ResFactory) DecodeJSON(receiver interface{}) error {
	res, err := f()
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(receiver); err != nil {
		return errors.Wrap(err, "Failed to decode response")
	}
	return nil
}

func newResFactory(res *http.Response, err error) ResFactory {
	if err == nil && res.StatusCode >= 300 {
		err = NewHTTPErrorFromResponse(res)
		res = nil
	}
	return func() (*http.Response, error) {
		return res, err
	}
}

// Do will send the request. Will fail if response status is other than 2xx
func Do(ctx context.Context, factory ReqFactory, opts ...SendOpt) ResFactory {
	cfg := sendCfg{
		logger: defaultLogger,
		client: &http.Client{Transport: http.DefaultTransport},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	req, err := factory()
	if err != nil {
		return newResFactory(nil, err)
	}
	req = req.WithContext(ctx)
	cfg.logger.Debug(ctx, "Sending %v %v", req.Method, req.URL)
	res, err := cfg.client.Do(req)
	if err != nil {
		cfg.logger.WithError(err).Info(ctx, "%v %v failed", req.Method, req.URL)
		return newResFactory(nil, err)
	}
	cfg.logger.Debug(ctx, "%v %v completed with %v", req.Method, req.URL, res.StatusCode)
	return newResFactory(res, nil)
}
