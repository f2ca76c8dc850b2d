package service

import (
	"context"
	"errors"
	"fmt"
	"os"
)

var (
	ErrInvalid         = errors.New("invalid")
	ErrNotFound        = errors.New("not found")
	ErrUpstream        = errors.New("upstream provider fault")
	ErrUpstreamTimeout = errors.New("upstream provider timeout")
	ErrPersistence     = errors.New("persistence failed")
)

// classifyUpstream maps a failed provider call to the pipeline error
// taxonomy. Deadline expiry is a distinct kind so callers can report
// timeouts separately from provider faults.
func classifyUpstream(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
