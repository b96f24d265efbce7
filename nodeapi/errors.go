package nodeapi

import (
	"context"
	"errors"
	"fmt"
)

// ErrTransient matches every failed remote query: transport errors, remote
// errors, undecodable responses and timeouts alike. Callers are expected to
// retry on the next natural trigger.
var ErrTransient = errors.New("transient remote failure")

// QueryError is returned by RPCClient for any failed query.
type QueryError struct {
	Method string
	Err    error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Method, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Is makes every QueryError match ErrTransient.
func (e *QueryError) Is(target error) bool {
	return target == ErrTransient
}

// Timeout reports whether the query ran out of time.
func (e *QueryError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}
