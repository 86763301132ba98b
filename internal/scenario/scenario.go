// Package scenario tracks the outcome of each end-to-end test case. A test
// calls Begin with its case ID and priority tag; when the test ends the
// outcome (passed, skipped or failed, with a reason) goes to the installed
// Recorder.
package scenario

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/phuslu/log"

	"github.com/gotrs-io/recruitment-e2e/internal/config"
	"github.com/gotrs-io/recruitment-e2e/internal/driver"
)

type Status string

const (
	Passed  Status = "passed"
	Skipped Status = "skipped"
	Failed  Status = "failed"
)

// Outcome is the result of one test case.
type Outcome struct {
	ID       string
	Test     string
	Suite    string
	Priority string
	Status   Status
	Reason   string
	Started  time.Time
	Duration time.Duration
}

// Recorder persists outcomes. Implementations must be safe for concurrent use.
type Recorder interface {
	Record(o Outcome) error
}

var (
	mu       sync.RWMutex
	recorder Recorder
)

// SetRecorder installs r for every later Begin and returns a func restoring
// the previous one.
func SetRecorder(r Recorder) (restore func()) {
	mu.Lock()
	prev := recorder
	recorder = r
	mu.Unlock()
	return func() {
		mu.Lock()
		recorder = prev
		mu.Unlock()
	}
}

func currentRecorder() Recorder {
	mu.RLock()
	defer mu.RUnlock()
	return recorder
}

// Scenario is a running test case.
type Scenario struct {
	t        testing.TB
	outcome  Outcome
	reasonMu sync.Mutex
}

// Begin starts case id with the given priority tag. Cases whose priority is
// not selected by cfg are skipped. The outcome is recorded from t's cleanup,
// so Begin must run before the session fixture is opened.
func Begin(t testing.TB, cfg *config.Config, id, priority string) *Scenario {
	t.Helper()
	s := &Scenario{
		t: t,
		outcome: Outcome{
			ID:       id,
			Test:     t.Name(),
			Suite:    cfg.Suite.Name,
			Priority: priority,
			Started:  time.Now(),
		},
	}
	t.Cleanup(s.finish)
	t.Logf("%s [%s] %s", id, priority, t.Name())

	if !cfg.Suite.WantsPriority(priority) {
		s.Skipf("priority %s not selected (suite.priorities=%v)", priority, cfg.Suite.Priorities)
	}
	return s
}

// Skipf records the reason and skips the test.
func (s *Scenario) Skipf(format string, args ...any) {
	s.t.Helper()
	s.setReason(fmt.Sprintf(format, args...))
	s.t.Skipf(format, args...)
}

// BestEffort handles the result of a step that may fail for environmental
// reasons. Driver-boundary errors (timeouts, missing elements, crashed
// sessions) skip the test with the error as reason; any other error fails it.
func (s *Scenario) BestEffort(err error, step string) {
	s.t.Helper()
	switch Classify(err) {
	case Passed:
		return
	case Skipped:
		s.Skipf("%s skipped, environment issue: %v", step, err)
	default:
		s.setReason(fmt.Sprintf("%s: %v", step, err))
		s.t.Fatalf("%s: %v", step, err)
	}
}

// Classify maps a step error to the outcome it produces in a best-effort
// scenario.
func Classify(err error) Status {
	switch {
	case err == nil:
		return Passed
	case driver.IsDriverError(err):
		return Skipped
	default:
		return Failed
	}
}

// Outcome returns the outcome so far. The status is final only after the
// test has returned.
func (s *Scenario) Outcome() Outcome {
	s.reasonMu.Lock()
	defer s.reasonMu.Unlock()
	return s.outcome
}

func (s *Scenario) setReason(reason string) {
	s.reasonMu.Lock()
	defer s.reasonMu.Unlock()
	if s.outcome.Reason == "" {
		s.outcome.Reason = reason
	}
}

func (s *Scenario) finish() {
	s.reasonMu.Lock()
	s.outcome.Duration = time.Since(s.outcome.Started)
	switch {
	case s.t.Skipped():
		s.outcome.Status = Skipped
	case s.t.Failed():
		s.outcome.Status = Failed
	default:
		s.outcome.Status = Passed
		s.outcome.Reason = ""
	}
	o := s.outcome
	s.reasonMu.Unlock()

	ev := log.Info()
	if o.Status == Failed {
		ev = log.Error()
	}
	ev.Str("case", o.ID).Str("test", o.Test).Str("priority", o.Priority).
		Str("status", string(o.Status)).Str("reason", o.Reason).
		Dur("elapsed", o.Duration).Msg("scenario finished")

	if r := currentRecorder(); r != nil {
		if err := r.Record(o); err != nil {
			log.Warn().Err(err).Str("case", o.ID).Msg("failed to record outcome")
		}
	}
}
