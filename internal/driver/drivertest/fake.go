// Package drivertest provides an in-memory driver.Driver for unit tests of
// page helpers. Elements are registered against exact locators; a test wires
// page transitions through OnClick hooks.
package drivertest

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/gotrs-io/recruitment-e2e/internal/driver"
)

// Page is a fake browser session holding a single page.
type Page struct {
	mu       sync.Mutex
	url      string
	elems    map[driver.Locator][]*Element
	findErrs map[driver.Locator]error

	Visited     []string
	Screenshots []string
	Closes      int

	// NavigateErr, when set, fails every Navigate.
	NavigateErr error
	// OnNavigate runs after every Navigate with the target URL.
	OnNavigate func(url string)
}

var _ driver.Driver = (*Page)(nil)

// New returns an empty page at about:blank.
func New() *Page {
	return &Page{
		url:      "about:blank",
		elems:    map[driver.Locator][]*Element{},
		findErrs: map[driver.Locator]error{},
	}
}

// Set replaces the elements matched by loc.
func (p *Page) Set(loc driver.Locator, els ...*Element) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range els {
		e.page = p
	}
	p.elems[loc] = els
	return p
}

// Remove makes loc match nothing.
func (p *Page) Remove(loc driver.Locator) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.elems, loc)
}

// FailFind makes queries for loc fail with err.
func (p *Page) FailFind(loc driver.Locator, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.findErrs[loc] = err
}

// SetURL moves the page without recording a visit.
func (p *Page) SetURL(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = url
}

func (p *Page) closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Closes > 0
}

func (p *Page) check(ctx context.Context, op string, loc driver.Locator) error {
	if p.closed() {
		return &driver.Error{Op: op, Locator: loc, Err: driver.ErrClosed}
	}
	if err := ctx.Err(); err != nil {
		return &driver.Error{Op: op, Locator: loc, Err: err}
	}
	return nil
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := p.check(ctx, "navigate", driver.Locator{}); err != nil {
		return err
	}
	p.mu.Lock()
	if p.NavigateErr != nil {
		err := p.NavigateErr
		p.mu.Unlock()
		return &driver.Error{Op: "navigate", Err: err}
	}
	p.url = url
	p.Visited = append(p.Visited, url)
	hook := p.OnNavigate
	p.mu.Unlock()
	if hook != nil {
		hook(url)
	}
	return nil
}

func (p *Page) CurrentURL(ctx context.Context) (string, error) {
	if err := p.check(ctx, "url", driver.Locator{}); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url, nil
}

func (p *Page) FindElement(ctx context.Context, loc driver.Locator) (driver.Element, error) {
	els, err := p.FindElements(ctx, loc)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, &driver.Error{Op: "find", Locator: loc, Err: driver.ErrNotFound}
	}
	return els[0], nil
}

func (p *Page) FindElements(ctx context.Context, loc driver.Locator) ([]driver.Element, error) {
	if err := p.check(ctx, "find", loc); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.findErrs[loc]; err != nil {
		return nil, &driver.Error{Op: "find", Locator: loc, Err: err}
	}
	return asElements(p.elems[loc]), nil
}

// Screenshot writes a placeholder file so callers can assert on the path.
func (p *Page) Screenshot(ctx context.Context, path string) error {
	if err := p.check(ctx, "screenshot", driver.Locator{}); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte("fake screenshot"), 0o644); err != nil {
		return err
	}
	p.mu.Lock()
	p.Screenshots = append(p.Screenshots, path)
	p.mu.Unlock()
	return nil
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closes++
	return nil
}

func asElements(els []*Element) []driver.Element {
	out := make([]driver.Element, 0, len(els))
	for _, e := range els {
		out = append(out, e)
	}
	return out
}

// Element is a fake node. Exported fields are read and written by tests;
// element methods mutate them under the owning page's lock.
type Element struct {
	page     *Page
	children map[driver.Locator][]*Element

	Label    string
	Content  string
	Val      string
	Attrs    map[string]string
	Hidden   bool
	Disabled bool
	Files    []string
	Clicks   int
	Err      error

	// OnClick runs after the click is recorded.
	OnClick func()
}

var _ driver.Element = (*Element)(nil)

// NewElement returns a visible, enabled element with the given text.
func NewElement(text string) *Element {
	return &Element{Content: text, Attrs: map[string]string{}, children: map[driver.Locator][]*Element{}}
}

// Input returns an empty form control.
func Input() *Element { return NewElement("") }

// With registers children matched by loc below e.
func (e *Element) With(loc driver.Locator, els ...*Element) *Element {
	e.children[loc] = els
	return e
}

// WithAttr sets an attribute.
func (e *Element) WithAttr(name, value string) *Element {
	e.Attrs[name] = value
	return e
}

func (e *Element) lock() func() {
	if e.page == nil {
		return func() {}
	}
	e.page.mu.Lock()
	return e.page.mu.Unlock
}

func (e *Element) check(ctx context.Context, op string) error {
	if e.page != nil {
		if err := e.page.check(ctx, op, driver.Locator{}); err != nil {
			return err
		}
	} else if err := ctx.Err(); err != nil {
		return &driver.Error{Op: op, Err: err}
	}
	if e.Err != nil {
		return &driver.Error{Op: op, Err: e.Err}
	}
	return nil
}

func (e *Element) adopt(els []*Element) {
	for _, c := range els {
		if c.page == nil {
			c.page = e.page
		}
	}
}

func (e *Element) FindElement(ctx context.Context, loc driver.Locator) (driver.Element, error) {
	els, err := e.FindElements(ctx, loc)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, &driver.Error{Op: "find", Locator: loc, Err: driver.ErrNotFound}
	}
	return els[0], nil
}

func (e *Element) FindElements(ctx context.Context, loc driver.Locator) ([]driver.Element, error) {
	if err := e.check(ctx, "find"); err != nil {
		return nil, err
	}
	unlock := e.lock()
	defer unlock()
	kids := e.children[loc]
	e.adopt(kids)
	return asElements(kids), nil
}

func (e *Element) Click(ctx context.Context) error {
	if err := e.check(ctx, "click"); err != nil {
		return err
	}
	unlock := e.lock()
	e.Clicks++
	hook := e.OnClick
	unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (e *Element) Type(ctx context.Context, text string) error {
	if err := e.check(ctx, "type"); err != nil {
		return err
	}
	unlock := e.lock()
	defer unlock()
	e.Val += text
	return nil
}

func (e *Element) Clear(ctx context.Context) error {
	if err := e.check(ctx, "clear"); err != nil {
		return err
	}
	unlock := e.lock()
	defer unlock()
	e.Val = ""
	return nil
}

func (e *Element) Attribute(ctx context.Context, name string) (string, error) {
	if err := e.check(ctx, "attribute"); err != nil {
		return "", err
	}
	unlock := e.lock()
	defer unlock()
	return e.Attrs[name], nil
}

func (e *Element) Value(ctx context.Context) (string, error) {
	if err := e.check(ctx, "value"); err != nil {
		return "", err
	}
	unlock := e.lock()
	defer unlock()
	return e.Val, nil
}

func (e *Element) Text(ctx context.Context) (string, error) {
	if err := e.check(ctx, "text"); err != nil {
		return "", err
	}
	unlock := e.lock()
	defer unlock()
	return e.Content, nil
}

func (e *Element) Visible(ctx context.Context) (bool, error) {
	if err := e.check(ctx, "visible"); err != nil {
		return false, err
	}
	unlock := e.lock()
	defer unlock()
	return !e.Hidden, nil
}

func (e *Element) Enabled(ctx context.Context) (bool, error) {
	if err := e.check(ctx, "enabled"); err != nil {
		return false, err
	}
	unlock := e.lock()
	defer unlock()
	return !e.Disabled, nil
}

func (e *Element) SetFiles(ctx context.Context, paths ...string) error {
	if err := e.check(ctx, "set files"); err != nil {
		return err
	}
	unlock := e.lock()
	defer unlock()
	e.Files = append([]string(nil), paths...)
	return nil
}

func (e *Element) ScrollIntoView(ctx context.Context) error {
	return e.check(ctx, "scroll")
}
