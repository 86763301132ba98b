package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"github.com/phuslu/log"
)

type chromedpDriver struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	opts        Options

	closeOnce sync.Once
	closed    chan struct{}
}

func launchChromedp(ctx context.Context, opts Options) (Driver, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrap("launch", Locator{}, err)
	}
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(opts.Width, opts.Height),
	)
	if opts.Maximize {
		allocOpts = append(allocOpts, chromedp.Flag("start-maximized", true))
	}

	// The browser outlives the launch context; it is bound to Close instead.
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	d := &chromedpDriver{
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		opts:        opts,
		closed:      make(chan struct{}),
	}
	// The first Run allocates the browser and binds it to the context it is
	// given, so it must be the tab context itself rather than a timeout child.
	stop := context.AfterFunc(ctx, cancelTab)
	err := chromedp.Run(tabCtx)
	stop()
	if err != nil {
		_ = d.Close()
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return nil, wrap("launch", Locator{}, fmt.Errorf("could not start chrome: %w", err))
	}

	log.Debug().Str("engine", string(EngineChromedp)).Bool("headless", opts.Headless).
		Msg("browser session started")
	return d, nil
}

// run executes actions on the tab, bounded by both the caller's context and
// the per-action timeout.
func (d *chromedpDriver) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	select {
	case <-d.closed:
		return ErrClosed
	default:
	}
	runCtx, cancel := context.WithTimeout(d.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (d *chromedpDriver) Navigate(ctx context.Context, url string) error {
	if err := d.run(ctx, d.opts.NavigationTimeout, chromedp.Navigate(url)); err != nil {
		return wrap("navigate", Locator{}, fmt.Errorf("goto %s: %w", url, err))
	}
	return nil
}

func (d *chromedpDriver) CurrentURL(ctx context.Context) (string, error) {
	var url string
	err := d.run(ctx, d.opts.ActionTimeout, chromedp.Location(&url))
	return url, wrap("url", Locator{}, err)
}

func (d *chromedpDriver) query(ctx context.Context, loc Locator, parent *chromedpElement) ([]*cdp.Node, error) {
	var nodes []*cdp.Node
	if parent == nil {
		err := d.run(ctx, d.opts.ActionTimeout,
			chromedp.Nodes(loc.Search(), &nodes, chromedp.BySearch, chromedp.AtLeast(0)))
		return nodes, err
	}
	if loc.Kind == ByXPath {
		return nil, fmt.Errorf("relative xpath under an element: %w", errors.ErrUnsupported)
	}
	from, err := parent.resolve(ctx)
	if err != nil {
		return nil, err
	}
	err = d.run(ctx, d.opts.ActionTimeout,
		chromedp.Nodes(loc.Search(), &nodes, chromedp.ByQueryAll, chromedp.FromNode(from), chromedp.AtLeast(0)))
	return nodes, err
}

func (d *chromedpDriver) find(ctx context.Context, loc Locator, parent *chromedpElement) ([]Element, error) {
	nodes, err := d.query(ctx, loc, parent)
	if err != nil {
		return nil, wrap("find", loc, err)
	}
	out := make([]Element, 0, len(nodes))
	for i := range nodes {
		out = append(out, &chromedpElement{d: d, loc: loc, idx: i, parent: parent})
	}
	return out, nil
}

func (d *chromedpDriver) FindElement(ctx context.Context, loc Locator) (Element, error) {
	els, err := d.find(ctx, loc, nil)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, wrap("find", loc, ErrNotFound)
	}
	return els[0], nil
}

func (d *chromedpDriver) FindElements(ctx context.Context, loc Locator) ([]Element, error) {
	return d.find(ctx, loc, nil)
}

func (d *chromedpDriver) Screenshot(ctx context.Context, path string) error {
	var buf []byte
	if err := d.run(ctx, d.opts.ActionTimeout, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return wrap("screenshot", Locator{}, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create screenshot dir: %w", err)
	}
	return os.WriteFile(path, buf, 0o644)
}

func (d *chromedpDriver) Close() error {
	var err error
	d.closeOnce.Do(func() {
		close(d.closed)
		err = chromedp.Cancel(d.ctx)
		d.cancelTab()
		d.cancelAlloc()
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// chromedpElement is the idx-th match of loc, searched below parent when set.
type chromedpElement struct {
	d      *chromedpDriver
	loc    Locator
	idx    int
	parent *chromedpElement
}

func (e *chromedpElement) resolve(ctx context.Context) (*cdp.Node, error) {
	nodes, err := e.d.query(ctx, e.loc, e.parent)
	if err != nil {
		return nil, err
	}
	if e.idx >= len(nodes) {
		return nil, ErrNotFound
	}
	return nodes[e.idx], nil
}

// do resolves the element and runs the actions built from its node.
func (e *chromedpElement) do(ctx context.Context, op string, build func(n *cdp.Node) []chromedp.Action) error {
	n, err := e.resolve(ctx)
	if err != nil {
		return wrap(op, e.loc, err)
	}
	return wrap(op, e.loc, e.d.run(ctx, e.d.opts.ActionTimeout, build(n)...))
}

func ids(n *cdp.Node) []cdp.NodeID { return []cdp.NodeID{n.NodeID} }

func (e *chromedpElement) FindElement(ctx context.Context, loc Locator) (Element, error) {
	els, err := e.d.find(ctx, loc, e)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, wrap("find", loc, ErrNotFound)
	}
	return els[0], nil
}

func (e *chromedpElement) FindElements(ctx context.Context, loc Locator) ([]Element, error) {
	return e.d.find(ctx, loc, e)
}

func (e *chromedpElement) Click(ctx context.Context) error {
	return e.do(ctx, "click", func(n *cdp.Node) []chromedp.Action {
		return []chromedp.Action{
			chromedp.ScrollIntoView(ids(n), chromedp.ByNodeID),
			chromedp.MouseClickNode(n),
		}
	})
}

func (e *chromedpElement) Type(ctx context.Context, text string) error {
	return e.do(ctx, "type", func(n *cdp.Node) []chromedp.Action {
		return []chromedp.Action{chromedp.SendKeys(ids(n), text, chromedp.ByNodeID)}
	})
}

func (e *chromedpElement) Clear(ctx context.Context) error {
	return e.do(ctx, "clear", func(n *cdp.Node) []chromedp.Action {
		return []chromedp.Action{chromedp.Clear(ids(n), chromedp.ByNodeID)}
	})
}

func (e *chromedpElement) Attribute(ctx context.Context, name string) (string, error) {
	var (
		v  string
		ok bool
	)
	err := e.do(ctx, "attribute", func(n *cdp.Node) []chromedp.Action {
		return []chromedp.Action{chromedp.AttributeValue(ids(n), name, &v, &ok, chromedp.ByNodeID)}
	})
	return v, err
}

func (e *chromedpElement) Value(ctx context.Context) (string, error) {
	var v string
	err := e.do(ctx, "value", func(n *cdp.Node) []chromedp.Action {
		return []chromedp.Action{chromedp.Value(ids(n), &v, chromedp.ByNodeID)}
	})
	return v, err
}

func (e *chromedpElement) Text(ctx context.Context) (string, error) {
	var v string
	err := e.do(ctx, "text", func(n *cdp.Node) []chromedp.Action {
		return []chromedp.Action{chromedp.Text(ids(n), &v, chromedp.ByNodeID)}
	})
	return v, err
}

// Visible treats a node without a box model (display:none, detached) as
// hidden.
func (e *chromedpElement) Visible(ctx context.Context) (bool, error) {
	n, err := e.resolve(ctx)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, wrap("visible", e.loc, err)
	}
	visible := false
	err = e.d.run(ctx, e.d.opts.ActionTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		box, err := dom.GetBoxModel().WithNodeID(n.NodeID).Do(ctx)
		visible = err == nil && box != nil && box.Width > 0 && box.Height > 0
		return nil
	}))
	return visible, wrap("visible", e.loc, err)
}

func (e *chromedpElement) Enabled(ctx context.Context) (bool, error) {
	var (
		v        string
		disabled bool
	)
	err := e.do(ctx, "enabled", func(n *cdp.Node) []chromedp.Action {
		return []chromedp.Action{chromedp.AttributeValue(ids(n), "disabled", &v, &disabled, chromedp.ByNodeID)}
	})
	return !disabled, err
}

func (e *chromedpElement) SetFiles(ctx context.Context, paths ...string) error {
	return e.do(ctx, "set files", func(n *cdp.Node) []chromedp.Action {
		return []chromedp.Action{chromedp.SetUploadFiles(ids(n), paths, chromedp.ByNodeID)}
	})
}

func (e *chromedpElement) ScrollIntoView(ctx context.Context) error {
	return e.do(ctx, "scroll", func(n *cdp.Node) []chromedp.Action {
		return []chromedp.Action{chromedp.ScrollIntoView(ids(n), chromedp.ByNodeID)}
	})
}
