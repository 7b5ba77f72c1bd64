package rpc

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ibs-source/rc-bridge/internal/message"
)

// ErrTimeout matches every *TimeoutError.
var ErrTimeout = errors.New("request timed out")

// TimeoutError is returned when no response arrives before the deadline.
type TimeoutError struct {
	Topic   string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request to %s timed out after %s", e.Topic, e.Timeout)
}

// Status maps the timeout to 408.
func (e *TimeoutError) Status() int {
	return http.StatusRequestTimeout
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// RejectedError carries a response whose status is outside 2xx. It is an
// application answer, not a transport fault.
type RejectedError struct {
	Topic    string
	Response *message.Response
}

func (e *RejectedError) Error() string {
	if e.Response.Error != "" {
		return fmt.Sprintf("request to %s rejected with status %d: %s", e.Topic, e.Response.Status, e.Response.Error)
	}
	return fmt.Sprintf("request to %s rejected with status %d", e.Topic, e.Response.Status)
}

// Status returns the status of the rejecting response.
func (e *RejectedError) Status() int {
	if e.Response.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Response.Status
}
