// Package browser drives a single headless Chrome instance used to render
// card templates into screenshots.
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// DefaultIdleTime is how long the network must stay quiet before capture.
const DefaultIdleTime = 500 * time.Millisecond

// Options configures the browser session
type Options struct {
	// ExecPath overrides the Chrome binary; empty uses chromedp's lookup.
	ExecPath string
	// PageTimeout bounds each capture. Zero waits indefinitely.
	PageTimeout time.Duration
	// IdleTime is the quiet period that counts as network idle.
	IdleTime time.Duration
	Logger   *log.Logger
}

// Session owns one browser process shared by all captures
type Session struct {
	opts          Options
	logger        *log.Logger
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	closeOnce     sync.Once
}

// Open launches the browser. The caller must Close the returned session.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.IdleTime <= 0 {
		opts.IdleTime = DefaultIdleTime
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logger.Debugf),
		chromedp.WithErrorf(logger.Errorf),
	)

	s := &Session{
		opts:          opts,
		logger:        logger,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}

	// An empty Run starts the browser so launch failures surface here.
	if err := chromedp.Run(browserCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	logger.Debug("Browser launched")
	return s, nil
}

// Close shuts the browser down. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.browserCancel()
		s.allocCancel()
		s.logger.Debug("Browser closed")
	})
}

// Capture renders html in a fresh tab and returns a PNG screenshot of a
// width x height viewport. The tab is closed before Capture returns.
func (s *Session) Capture(ctx context.Context, html string, width, height int) ([]byte, error) {
	tabCtx, closeTab := chromedp.NewContext(s.browserCtx)
	defer closeTab()

	// Create the target before any deadline is attached to it.
	if err := chromedp.Run(tabCtx); err != nil {
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}

	runCtx := tabCtx
	if s.opts.PageTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(tabCtx, s.opts.PageTimeout)
		defer cancel()
	}
	stop := context.AfterFunc(ctx, closeTab)
	defer stop()

	idle := newIdleTracker()
	chromedp.ListenTarget(tabCtx, idle.handle)

	var shot []byte
	err := chromedp.Run(runCtx,
		network.Enable(),
		chromedp.Navigate("about:blank"),
		setContent(html),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return idle.wait(ctx, s.opts.IdleTime)
		}),
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.CaptureScreenshot(&shot),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return shot, nil
}

func setContent(html string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
	})
}
