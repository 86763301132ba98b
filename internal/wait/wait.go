// Package wait provides bounded predicate waits over the driver boundary.
// Every step of a scenario blocks on one of these instead of sleeping.
package wait

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/phuslu/log"
	kwait "k8s.io/apimachinery/pkg/util/wait"

	"github.com/gotrs-io/recruitment-e2e/internal/driver"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultInterval = 250 * time.Millisecond
)

// Options bounds a wait.
type Options struct {
	Timeout  time.Duration
	Interval time.Duration
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	return o
}

// Condition reports whether the awaited state holds. Driver errors are
// treated as "not yet"; any other error aborts the wait.
type Condition func(ctx context.Context) (bool, error)

// Until polls cond, immediately and then every opts.Interval, until it holds
// or opts.Timeout elapses. On timeout the error satisfies
// errors.Is(err, driver.ErrTimeout); when ctx itself ends first its error is
// returned instead.
func Until(ctx context.Context, opts Options, what string, cond Condition) error {
	opts = opts.withDefaults()
	start := time.Now()
	var last error

	err := kwait.PollUntilContextTimeout(ctx, opts.Interval, opts.Timeout, true, func(ctx context.Context) (bool, error) {
		ok, err := cond(ctx)
		if err == nil {
			return ok, nil
		}
		if errors.Is(err, driver.ErrClosed) || !driver.IsDriverError(err) {
			return false, err
		}
		last = err
		return false, nil
	})
	if err == nil {
		log.Debug().Str("wait", what).Dur("elapsed", time.Since(start)).Msg("condition met")
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("waiting for %s: %w", what, ctx.Err())
	}
	if kwait.Interrupted(err) {
		log.Warn().Str("wait", what).Dur("timeout", opts.Timeout).Err(last).Msg("wait timed out")
		if last != nil && !errors.Is(last, driver.ErrNotFound) {
			return fmt.Errorf("%w after %s: %s (last error: %v)", driver.ErrTimeout, opts.Timeout, what, last)
		}
		return fmt.Errorf("%w after %s: %s", driver.ErrTimeout, opts.Timeout, what)
	}
	return fmt.Errorf("waiting for %s: %w", what, err)
}

// ElementCheck decides whether a located element is in the awaited state.
type ElementCheck func(ctx context.Context, el driver.Element) (bool, error)

// ForElement waits until the first element matching loc passes check and
// returns it.
func ForElement(ctx context.Context, f driver.Finder, opts Options, loc driver.Locator, what string, check ElementCheck) (driver.Element, error) {
	var found driver.Element
	err := Until(ctx, opts, what+" "+loc.String(), func(ctx context.Context) (bool, error) {
		el, err := f.FindElement(ctx, loc)
		if err != nil {
			return false, err
		}
		ok, err := check(ctx, el)
		if err != nil || !ok {
			return false, err
		}
		found = el
		return true, nil
	})
	return found, err
}

func isVisible(ctx context.Context, el driver.Element) (bool, error) { return el.Visible(ctx) }

func isClickable(ctx context.Context, el driver.Element) (bool, error) {
	visible, err := el.Visible(ctx)
	if err != nil || !visible {
		return false, err
	}
	return el.Enabled(ctx)
}

func isPresent(context.Context, driver.Element) (bool, error) { return true, nil }

// Visible waits for loc to match a displayed element.
func Visible(ctx context.Context, f driver.Finder, opts Options, loc driver.Locator) (driver.Element, error) {
	return ForElement(ctx, f, opts, loc, "visibility of", isVisible)
}

// Clickable waits for loc to match a displayed, enabled element.
func Clickable(ctx context.Context, f driver.Finder, opts Options, loc driver.Locator) (driver.Element, error) {
	return ForElement(ctx, f, opts, loc, "clickability of", isClickable)
}

// Present waits for loc to match any element, displayed or not.
func Present(ctx context.Context, f driver.Finder, opts Options, loc driver.Locator) (driver.Element, error) {
	return ForElement(ctx, f, opts, loc, "presence of", isPresent)
}

// URLContains waits for the current URL to contain fragment.
func URLContains(ctx context.Context, d driver.Driver, opts Options, fragment string) error {
	return Until(ctx, opts, "url containing "+fragment, func(ctx context.Context) (bool, error) {
		u, err := d.CurrentURL(ctx)
		if err != nil {
			return false, err
		}
		return strings.Contains(u, fragment), nil
	})
}
