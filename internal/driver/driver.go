// Package driver is the browser-automation boundary of the suite. Page helpers
// only see the Driver and Element interfaces; the engines behind them
// (playwright-go by default, chromedp as an alternative) are opaque.
package driver

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Engine names a browser-automation backend.
type Engine string

const (
	EnginePlaywright Engine = "playwright"
	EngineChromedp   Engine = "chromedp"
)

// ParseEngine maps a configuration value to an Engine.
func ParseEngine(s string) (Engine, error) {
	switch Engine(strings.ToLower(strings.TrimSpace(s))) {
	case "", EnginePlaywright:
		return EnginePlaywright, nil
	case EngineChromedp:
		return EngineChromedp, nil
	}
	return "", fmt.Errorf("unknown browser engine %q (want %q or %q)", s, EnginePlaywright, EngineChromedp)
}

// Finder locates elements either from the page root or below another element.
type Finder interface {
	// FindElement returns the first element matching loc without waiting.
	// It fails with ErrNotFound when nothing matches.
	FindElement(ctx context.Context, loc Locator) (Element, error)
	// FindElements returns every element matching loc without waiting. An
	// empty result is not an error.
	FindElements(ctx context.Context, loc Locator) ([]Element, error)
}

// Driver controls one browser session.
type Driver interface {
	Finder
	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)
	Screenshot(ctx context.Context, path string) error
	Close() error
}

// Element is a handle on a matched node. Implementations re-resolve the node
// from its locator on every call, so a handle never outlives a DOM change.
type Element interface {
	Finder
	Click(ctx context.Context) error
	// Type appends text to the element's current value, key by key.
	Type(ctx context.Context, text string) error
	Clear(ctx context.Context) error
	Attribute(ctx context.Context, name string) (string, error)
	// Value reads the live value property of form controls.
	Value(ctx context.Context) (string, error)
	Text(ctx context.Context) (string, error)
	Visible(ctx context.Context) (bool, error)
	Enabled(ctx context.Context) (bool, error)
	SetFiles(ctx context.Context, paths ...string) error
	ScrollIntoView(ctx context.Context) error
}

// Options configures a new browser session.
type Options struct {
	Engine  Engine
	Browser string // chromium, firefox or webkit (playwright only)
	Channel string // e.g. msedge or chrome
	Install bool

	Headless bool
	SlowMo   time.Duration
	Maximize bool
	Width    int
	Height   int

	ActionTimeout     time.Duration
	NavigationTimeout time.Duration

	VideoDir string
}

func (o Options) withDefaults() Options {
	if o.Engine == "" {
		o.Engine = EnginePlaywright
	}
	if o.Browser == "" {
		o.Browser = "chromium"
	}
	if o.Width <= 0 {
		o.Width = 1920
	}
	if o.Height <= 0 {
		o.Height = 1080
	}
	if o.ActionTimeout <= 0 {
		o.ActionTimeout = 10 * time.Second
	}
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = 30 * time.Second
	}
	return o
}

// Launch starts a browser session with the engine named in opts.
func Launch(ctx context.Context, opts Options) (Driver, error) {
	opts = opts.withDefaults()
	switch opts.Engine {
	case EnginePlaywright:
		return launchPlaywright(ctx, opts)
	case EngineChromedp:
		return launchChromedp(ctx, opts)
	}
	return nil, fmt.Errorf("unknown browser engine %q", opts.Engine)
}
