package driver

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrTimeout reports that a wait bound elapsed before its condition held.
	ErrTimeout = errors.New("timed out waiting for condition")
	// ErrNotFound reports that an immediate query matched nothing.
	ErrNotFound = errors.New("no element matches locator")
	// ErrClosed reports use of a session after it was released.
	ErrClosed = errors.New("browser session closed")
)

// Error wraps every failure that crosses the driver boundary: engine errors,
// crashed sessions, navigation errors and the sentinels above.
type Error struct {
	Op      string
	Locator Locator
	Err     error
}

func (e *Error) Error() string {
	if e.Locator.Expr == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Locator, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsDriverError reports whether err originated at the driver boundary, as
// opposed to an assertion or a caller mistake.
func IsDriverError(err error) bool {
	var de *Error
	return errors.As(err, &de) || errors.Is(err, ErrTimeout) || errors.Is(err, ErrNotFound)
}

func wrap(op string, loc Locator, err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
		err = fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return &Error{Op: op, Locator: loc, Err: err}
}
