package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrRequestFailed matches any *RequestError via errors.Is.
var ErrRequestFailed = errors.New("provider request failed")

// RequestError wraps a failed backend call: network, auth, timeout or a malformed
// response all collapse into this one kind.
type RequestError struct {
	Provider  string
	Status    int
	Temporary bool
	Err       error
}

func (e *RequestError) Error() string {
	if e == nil {
		return ErrRequestFailed.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", ErrRequestFailed, e.Provider, e.Err)
	}
	return fmt.Sprintf("%s (%s, status=%d)", ErrRequestFailed, e.Provider, e.Status)
}

func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}

// IsTransient reports whether an error is safe to retry.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		if reqErr.Temporary {
			return true
		}
		if reqErr.Status == 429 || (reqErr.Status >= 500 && reqErr.Status <= 599) {
			return true
		}
	}
	return false
}
