package client

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies why a request produced no usable answer.
type ErrorKind int

const (
	KindBadURL ErrorKind = iota
	KindTimeout
	KindNetwork
	KindBadStatus
	KindBadBody
)

func (k ErrorKind) String() string {
	switch k {
	case KindBadURL:
		return "bad_url"
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network_error"
	case KindBadStatus:
		return "bad_status"
	case KindBadBody:
		return "bad_body"
	default:
		return "unknown"
	}
}

// ErrIncorrectCredentials is returned by Authenticate when the server
// answers 401.
var ErrIncorrectCredentials = errors.New("incorrect credentials")

// RequestError is a transport-level failure. Message renders it for display.
type RequestError struct {
	Kind   ErrorKind
	URL    string
	Status int
	Body   string
	Err    error
}

// Message is the human readable text shown in the UI.
func (e *RequestError) Message() string {
	switch e.Kind {
	case KindBadURL:
		return "bad url: " + e.URL
	case KindTimeout:
		return "request timeout"
	case KindNetwork:
		return "network error"
	case KindBadStatus:
		return fmt.Sprintf("bad status: %d", e.Status)
	case KindBadBody:
		return "bad body: " + e.Body
	default:
		return "request failed"
	}
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return e.Message() + ": " + e.Err.Error()
	}
	return e.Message()
}

func (e *RequestError) Unwrap() error { return e.Err }

// ErrorMessage collapses any error returned by this package into the string
// the UI displays.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrIncorrectCredentials) {
		return ErrIncorrectCredentials.Error()
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Message()
	}
	return err.Error()
}

// transportError classifies an error from http.Client.Do or from reading a
// response body.
func transportError(rawURL string, err error) *RequestError {
	kind := KindNetwork
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = KindTimeout
	}
	return &RequestError{Kind: kind, URL: rawURL, Err: err}
}
