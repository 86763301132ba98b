// Package session owns the per-test browser session: launch, navigation to
// the login page, and unconditional release when the test ends.
package session

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/phuslu/log"

	"github.com/gotrs-io/recruitment-e2e/internal/config"
	"github.com/gotrs-io/recruitment-e2e/internal/driver"
	"github.com/gotrs-io/recruitment-e2e/internal/wait"
)

// screenshotTimeout bounds the failure screenshot taken during release, which
// runs after the test context is cancelled.
const screenshotTimeout = 15 * time.Second

// Launcher starts a browser session. driver.Launch is the default.
type Launcher func(ctx context.Context, opts driver.Options) (driver.Driver, error)

// Option customizes Open.
type Option func(*Session)

// WithLauncher replaces the browser launcher.
func WithLauncher(l Launcher) Option {
	return func(s *Session) { s.launch = l }
}

// Session is one exclusively owned browser session bound to a test.
type Session struct {
	Driver driver.Driver
	Config *config.Config
	Wait   wait.Options

	t       testing.TB
	launch  Launcher
	started time.Time

	releaseOnce sync.Once
	releaseErr  error
}

// DriverOptions maps the browser section of cfg onto driver options.
func DriverOptions(cfg *config.Config) (driver.Options, error) {
	engine, err := driver.ParseEngine(cfg.Browser.Engine)
	if err != nil {
		return driver.Options{}, err
	}
	return driver.Options{
		Engine:            engine,
		Browser:           cfg.Browser.Name,
		Channel:           cfg.Browser.Channel,
		Install:           cfg.Browser.Install,
		Headless:          cfg.Browser.Headless,
		SlowMo:            cfg.Browser.SlowMo,
		Maximize:          cfg.Browser.Maximize,
		Width:             cfg.Browser.Width,
		Height:            cfg.Browser.Height,
		ActionTimeout:     cfg.Timeouts.Step,
		NavigationTimeout: cfg.Timeouts.Navigation,
		VideoDir:          cfg.VideoDir(),
	}, nil
}

// WaitOptions returns the step wait bounds from cfg.
func WaitOptions(cfg *config.Config) wait.Options {
	return wait.Options{Timeout: cfg.Timeouts.Step, Interval: cfg.Timeouts.PollInterval}
}

// Open launches a maximized browser, navigates to the login page and
// registers release with t.Cleanup. Launch or navigation failures end the
// test through t.Fatalf; the session is still released.
func Open(t testing.TB, cfg *config.Config, opts ...Option) *Session {
	t.Helper()

	s := &Session{
		Config: cfg,
		Wait:   WaitOptions(cfg),
		t:      t,
		launch: driver.Launch,
	}
	for _, o := range opts {
		o(s)
	}

	dopts, err := DriverOptions(cfg)
	if err != nil {
		t.Fatalf("invalid browser config: %v", err)
		return nil
	}

	ctx := t.Context()
	s.started = time.Now()
	d, err := s.launch(ctx, dopts)
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
		return nil
	}
	s.Driver = d
	t.Cleanup(s.release)

	log.Info().Str("test", t.Name()).Str("engine", string(dopts.Engine)).
		Str("url", cfg.LoginURL()).Msg("session opened")

	if err := d.Navigate(ctx, cfg.LoginURL()); err != nil {
		t.Fatalf("failed to open login page: %v", err)
		return nil
	}
	return s
}

// Close releases the session. It is safe to call more than once and from
// the registered cleanup.
func (s *Session) Close() error {
	s.release()
	return s.releaseErr
}

// Elapsed reports how long the session has been open.
func (s *Session) Elapsed() time.Duration { return time.Since(s.started) }

func (s *Session) release() {
	s.releaseOnce.Do(func() {
		if s.t.Failed() && s.Config.Artifacts.Screenshots {
			path := ScreenshotPath(s.Config.ScreenshotDir(), s.t.Name(), time.Now())
			ctx, cancel := context.WithTimeout(context.Background(), screenshotTimeout)
			if err := s.Driver.Screenshot(ctx, path); err != nil {
				log.Warn().Err(err).Str("test", s.t.Name()).Msg("failure screenshot not taken")
			} else {
				s.t.Logf("screenshot saved: %s", path)
			}
			cancel()
		}
		s.releaseErr = s.Driver.Close()
		if s.releaseErr != nil {
			log.Warn().Err(s.releaseErr).Str("test", s.t.Name()).Msg("browser close failed")
		}
		log.Debug().Str("test", s.t.Name()).Dur("elapsed", s.Elapsed()).Msg("session released")
	})
}

// ScreenshotPath names the failure screenshot for a test. Subtest separators
// are flattened so every screenshot lands directly in dir.
func ScreenshotPath(dir, testName string, at time.Time) string {
	name := strings.NewReplacer("/", "_", " ", "_", ":", "_").Replace(testName)
	return filepath.Join(dir, fmt.Sprintf("%s_%d.png", name, at.Unix()))
}
