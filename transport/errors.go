package transport

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	// ErrThrottled is returned once a 429 response survives every retry.
	ErrThrottled = errors.New("transport: rate limit exceeded")
	// ErrNoData is returned for 400 and 404 responses, which both APIs use for
	// characters that have nothing on record.
	ErrNoData = errors.New("transport: no data")
)

// StatusError is a non-success HTTP response. Kind is ErrThrottled, ErrNoData
// or nil for any other rejection.
type StatusError struct {
	Service string
	Status  int
	Body    string
	Kind    error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Service, e.Status, e.Body)
}

func (e *StatusError) Unwrap() error { return e.Kind }

// CheckResponse returns nil for 2xx responses. Otherwise it consumes and
// closes the body and returns a *StatusError.
func CheckResponse(service string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	statusErr := &StatusError{
		Service: service,
		Status:  resp.StatusCode,
		Body:    string(body),
	}
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		statusErr.Kind = ErrThrottled
	case http.StatusBadRequest, http.StatusNotFound:
		statusErr.Kind = ErrNoData
	}
	return statusErr
}
