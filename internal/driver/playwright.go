package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/phuslu/log"
	"github.com/playwright-community/playwright-go"
)

type playwrightDriver struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page

	closeOnce sync.Once
	closeErr  error
	closed    bool
	mu        sync.Mutex
}

// InstallPlaywright downloads the playwright driver and the named browsers.
func InstallPlaywright(browsers ...string) error {
	if len(browsers) == 0 {
		browsers = []string{"chromium"}
	}
	if err := playwright.Install(&playwright.RunOptions{Browsers: browsers}); err != nil {
		return fmt.Errorf("could not install playwright browsers: %w", err)
	}
	return nil
}

func launchPlaywright(ctx context.Context, opts Options) (Driver, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrap("launch", Locator{}, err)
	}
	if opts.Install {
		if err := InstallPlaywright(opts.Browser); err != nil {
			return nil, err
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		// The driver may be missing or stale; install once and retry.
		if installErr := InstallPlaywright(opts.Browser); installErr != nil {
			return nil, wrap("launch", Locator{}, errors.Join(err, installErr))
		}
		pw, err = playwright.Run()
		if err != nil {
			return nil, wrap("launch", Locator{}, fmt.Errorf("could not start playwright after install: %w", err))
		}
	}
	d := &playwrightDriver{pw: pw}

	browserType, chromium := pw.Chromium, true
	switch opts.Browser {
	case "firefox":
		browserType, chromium = pw.Firefox, false
	case "webkit":
		browserType, chromium = pw.WebKit, false
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		SlowMo:   playwright.Float(float64(opts.SlowMo.Milliseconds())),
	}
	if opts.Channel != "" {
		launchOpts.Channel = playwright.String(opts.Channel)
	}
	maximized := opts.Maximize && !opts.Headless && chromium
	if maximized {
		launchOpts.Args = []string{"--start-maximized"}
	}
	browser, err := browserType.Launch(launchOpts)
	if err != nil {
		_ = d.Close()
		return nil, wrap("launch", Locator{}, fmt.Errorf("could not launch %s: %w", opts.Browser, err))
	}
	d.browser = browser

	ctxOpts := playwright.BrowserNewContextOptions{}
	if maximized {
		ctxOpts.NoViewport = playwright.Bool(true)
	} else {
		ctxOpts.Viewport = &playwright.Size{Width: opts.Width, Height: opts.Height}
	}
	if opts.VideoDir != "" {
		ctxOpts.RecordVideo = &playwright.RecordVideo{Dir: opts.VideoDir}
	}
	bctx, err := browser.NewContext(ctxOpts)
	if err != nil {
		_ = d.Close()
		return nil, wrap("launch", Locator{}, fmt.Errorf("could not create context: %w", err))
	}
	d.context = bctx

	page, err := bctx.NewPage()
	if err != nil {
		_ = d.Close()
		return nil, wrap("launch", Locator{}, fmt.Errorf("could not create page: %w", err))
	}
	page.SetDefaultTimeout(float64(opts.ActionTimeout.Milliseconds()))
	page.SetDefaultNavigationTimeout(float64(opts.NavigationTimeout.Milliseconds()))
	d.page = page

	log.Debug().Str("engine", string(EnginePlaywright)).Str("browser", opts.Browser).
		Bool("headless", opts.Headless).Msg("browser session started")
	return d, nil
}

func pwErr(op string, loc Locator, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		err = fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return wrap(op, loc, err)
}

func (d *playwrightDriver) live(ctx context.Context, op string, loc Locator) error {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return wrap(op, loc, ErrClosed)
	}
	return wrap(op, loc, ctx.Err())
}

func (d *playwrightDriver) Navigate(ctx context.Context, url string) error {
	if err := d.live(ctx, "navigate", Locator{}); err != nil {
		return err
	}
	if _, err := d.page.Goto(url); err != nil {
		return pwErr("navigate", Locator{}, fmt.Errorf("goto %s: %w", url, err))
	}
	return nil
}

func (d *playwrightDriver) CurrentURL(ctx context.Context) (string, error) {
	if err := d.live(ctx, "url", Locator{}); err != nil {
		return "", err
	}
	return d.page.URL(), nil
}

func (d *playwrightDriver) FindElement(ctx context.Context, loc Locator) (Element, error) {
	return pwFindFirst(ctx, d, d.page.Locator(loc.Playwright()), loc)
}

func (d *playwrightDriver) FindElements(ctx context.Context, loc Locator) ([]Element, error) {
	return pwFindAll(ctx, d, d.page.Locator(loc.Playwright()), loc)
}

func (d *playwrightDriver) Screenshot(ctx context.Context, path string) error {
	if err := d.live(ctx, "screenshot", Locator{}); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create screenshot dir: %w", err)
	}
	_, err := d.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return pwErr("screenshot", Locator{}, err)
}

func (d *playwrightDriver) Close() error {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()

		var errs []error
		if d.page != nil {
			errs = append(errs, d.page.Close())
		}
		if d.context != nil {
			errs = append(errs, d.context.Close())
		}
		if d.browser != nil {
			errs = append(errs, d.browser.Close())
		}
		if d.pw != nil {
			errs = append(errs, d.pw.Stop())
		}
		d.closeErr = errors.Join(errs...)
	})
	return d.closeErr
}

func pwFindFirst(ctx context.Context, d *playwrightDriver, l playwright.Locator, loc Locator) (Element, error) {
	if err := d.live(ctx, "find", loc); err != nil {
		return nil, err
	}
	n, err := l.Count()
	if err != nil {
		return nil, pwErr("find", loc, err)
	}
	if n == 0 {
		return nil, wrap("find", loc, ErrNotFound)
	}
	return &playwrightElement{d: d, loc: l.First(), desc: loc}, nil
}

func pwFindAll(ctx context.Context, d *playwrightDriver, l playwright.Locator, loc Locator) ([]Element, error) {
	if err := d.live(ctx, "find", loc); err != nil {
		return nil, err
	}
	n, err := l.Count()
	if err != nil {
		return nil, pwErr("find", loc, err)
	}
	out := make([]Element, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &playwrightElement{d: d, loc: l.Nth(i), desc: loc})
	}
	return out, nil
}

// playwrightElement wraps an index-pinned playwright locator, which the engine
// resolves lazily on every action.
type playwrightElement struct {
	d    *playwrightDriver
	loc  playwright.Locator
	desc Locator
}

func (e *playwrightElement) FindElement(ctx context.Context, loc Locator) (Element, error) {
	return pwFindFirst(ctx, e.d, e.loc.Locator(loc.Playwright()), loc)
}

func (e *playwrightElement) FindElements(ctx context.Context, loc Locator) ([]Element, error) {
	return pwFindAll(ctx, e.d, e.loc.Locator(loc.Playwright()), loc)
}

func (e *playwrightElement) Click(ctx context.Context) error {
	if err := e.d.live(ctx, "click", e.desc); err != nil {
		return err
	}
	return pwErr("click", e.desc, e.loc.Click())
}

func (e *playwrightElement) Type(ctx context.Context, text string) error {
	if err := e.d.live(ctx, "type", e.desc); err != nil {
		return err
	}
	return pwErr("type", e.desc, e.loc.PressSequentially(text))
}

func (e *playwrightElement) Clear(ctx context.Context) error {
	if err := e.d.live(ctx, "clear", e.desc); err != nil {
		return err
	}
	return pwErr("clear", e.desc, e.loc.Clear())
}

func (e *playwrightElement) Attribute(ctx context.Context, name string) (string, error) {
	if err := e.d.live(ctx, "attribute", e.desc); err != nil {
		return "", err
	}
	v, err := e.loc.GetAttribute(name)
	return v, pwErr("attribute", e.desc, err)
}

func (e *playwrightElement) Value(ctx context.Context) (string, error) {
	if err := e.d.live(ctx, "value", e.desc); err != nil {
		return "", err
	}
	v, err := e.loc.InputValue()
	return v, pwErr("value", e.desc, err)
}

func (e *playwrightElement) Text(ctx context.Context) (string, error) {
	if err := e.d.live(ctx, "text", e.desc); err != nil {
		return "", err
	}
	v, err := e.loc.InnerText()
	return v, pwErr("text", e.desc, err)
}

func (e *playwrightElement) Visible(ctx context.Context) (bool, error) {
	if err := e.d.live(ctx, "visible", e.desc); err != nil {
		return false, err
	}
	v, err := e.loc.IsVisible()
	return v, pwErr("visible", e.desc, err)
}

func (e *playwrightElement) Enabled(ctx context.Context) (bool, error) {
	if err := e.d.live(ctx, "enabled", e.desc); err != nil {
		return false, err
	}
	v, err := e.loc.IsEnabled()
	return v, pwErr("enabled", e.desc, err)
}

func (e *playwrightElement) SetFiles(ctx context.Context, paths ...string) error {
	if err := e.d.live(ctx, "set files", e.desc); err != nil {
		return err
	}
	return pwErr("set files", e.desc, e.loc.SetInputFiles(paths))
}

func (e *playwrightElement) ScrollIntoView(ctx context.Context) error {
	if err := e.d.live(ctx, "scroll", e.desc); err != nil {
		return err
	}
	return pwErr("scroll", e.desc, e.loc.ScrollIntoViewIfNeeded())
}
