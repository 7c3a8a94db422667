package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/phuslu/log"

	"github.com/jonathan/people-crossref/internal/observability"
)

// DefaultActionTimeout bounds a single browser action.
const DefaultActionTimeout = 30 * time.Second

// Options configures the Chrome driver.
type Options struct {
	Headless      bool
	ExecPath      string // optional path to the Chrome/Chromium binary
	UserAgent     string
	WindowWidth   int
	WindowHeight  int
	ActionTimeout time.Duration
	Logger        *log.Logger
}

// DefaultOptions returns sensible defaults for an interactive run.
func DefaultOptions() Options {
	return Options{
		Headless:      true,
		WindowWidth:   1920,
		WindowHeight:  1080,
		ActionTimeout: DefaultActionTimeout,
	}
}

// Chrome is a Driver backed by a single chromedp browser tab.
// Requires Chrome/Chromium to be installed on the system.
type Chrome struct {
	ctx     context.Context
	cancels []context.CancelFunc
	timeout time.Duration
	logger  *log.Logger
}

var _ Driver = (*Chrome)(nil)

// NewChrome launches a browser and opens a blank tab.
func NewChrome(ctx context.Context, opts Options) (*Chrome, error) {
	if opts.WindowWidth == 0 || opts.WindowHeight == 0 {
		opts.WindowWidth, opts.WindowHeight = 1920, 1080
	}
	if opts.ActionTimeout == 0 {
		opts.ActionTimeout = DefaultActionTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = observability.NopLogger()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	c := &Chrome{
		ctx:     tabCtx,
		cancels: []context.CancelFunc{tabCancel, allocCancel},
		timeout: opts.ActionTimeout,
		logger:  logger,
	}

	// The first Run starts the browser process.
	if err := chromedp.Run(tabCtx, chromedp.Navigate("about:blank"), network.Enable()); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	logger.Debug().Bool("headless", opts.Headless).Str("exec_path", opts.ExecPath).Msg("browser started")
	return c, nil
}

// run executes actions against the tab, bounded by the action timeout and
// aborted when the caller's context is cancelled.
func (c *Chrome) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithTimeout(c.ctx, c.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url in the tab.
func (c *Chrome) Navigate(ctx context.Context, url string) error {
	if err := c.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// Reload reloads the current page.
func (c *Chrome) Reload(ctx context.Context) error {
	if err := c.run(ctx, chromedp.Reload()); err != nil {
		return fmt.Errorf("failed to reload page: %w", err)
	}
	return nil
}

// CurrentURL returns the location of the tab.
func (c *Chrome) CurrentURL(ctx context.Context) (string, error) {
	var loc string
	if err := c.run(ctx, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("failed to read location: %w", err)
	}
	return loc, nil
}

// Cookies returns every cookie visible to the current page.
func (c *Chrome) Cookies(ctx context.Context) ([]Cookie, error) {
	var raw []*network.Cookie
	err := c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		raw, err = network.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}

	cookies := make([]Cookie, 0, len(raw))
	for _, rc := range raw {
		if rc == nil {
			continue
		}
		ck := Cookie{
			Name:     rc.Name,
			Value:    rc.Value,
			Domain:   rc.Domain,
			Path:     rc.Path,
			Secure:   rc.Secure,
			HTTPOnly: rc.HTTPOnly,
			SameSite: string(rc.SameSite),
		}
		if !rc.Session && rc.Expires > 0 {
			ck.Expires = rc.Expires
		}
		cookies = append(cookies, ck)
	}
	return cookies, nil
}

// SetCookie injects a cookie into the browser. Cookies without a domain are
// scoped to the current page URL.
func (c *Chrome) SetCookie(ctx context.Context, ck Cookie) error {
	err := c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		params := network.SetCookie(ck.Name, ck.Value).
			WithPath(ck.Path).
			WithSecure(ck.Secure).
			WithHTTPOnly(ck.HTTPOnly)

		if ck.Domain != "" {
			params = params.WithDomain(ck.Domain)
		} else {
			var loc string
			if err := chromedp.Location(&loc).Do(ctx); err != nil {
				return err
			}
			params = params.WithURL(loc)
		}

		switch strings.ToLower(ck.SameSite) {
		case "strict":
			params = params.WithSameSite(network.CookieSameSiteStrict)
		case "lax":
			params = params.WithSameSite(network.CookieSameSiteLax)
		case "none":
			params = params.WithSameSite(network.CookieSameSiteNone)
		}

		if ck.Expires > 0 {
			sec := int64(ck.Expires)
			expires := cdp.TimeSinceEpoch(time.Unix(sec, 0))
			params = params.WithExpires(&expires)
		}

		return params.Do(ctx)
	}))
	if err != nil {
		return fmt.Errorf("failed to set cookie %s: %w", ck.Name, err)
	}
	return nil
}

// ExecuteScript evaluates js in the page and decodes the result into res.
func (c *Chrome) ExecuteScript(ctx context.Context, js string, res any) error {
	if err := c.run(ctx, chromedp.Evaluate(js, res)); err != nil {
		return fmt.Errorf("failed to execute script: %w", err)
	}
	return nil
}

// HTML returns the outer HTML of the document element.
func (c *Chrome) HTML(ctx context.Context) (string, error) {
	var html string
	if err := c.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read rendered HTML: %w", err)
	}
	return html, nil
}

// Exists reports whether selector matches at least one element. It never waits.
func (c *Chrome) Exists(ctx context.Context, selector string) (bool, error) {
	quoted, err := json.Marshal(selector)
	if err != nil {
		return false, fmt.Errorf("invalid selector %q: %w", selector, err)
	}

	var found bool
	js := fmt.Sprintf(`document.querySelector(%s) !== null`, quoted)
	if err := c.run(ctx, chromedp.Evaluate(js, &found)); err != nil {
		return false, fmt.Errorf("failed to query %s: %w", selector, err)
	}
	return found, nil
}

// Click clicks the first element matching selector.
func (c *Chrome) Click(ctx context.Context, selector string) error {
	if err := c.requirePresent(ctx, selector); err != nil {
		return err
	}
	if err := c.run(ctx, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to click %s: %w", selector, err)
	}
	return nil
}

// SendKeys clears the first input matching selector and types text into it.
func (c *Chrome) SendKeys(ctx context.Context, selector, text string) error {
	if err := c.requirePresent(ctx, selector); err != nil {
		return err
	}
	err := c.run(ctx,
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, text, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("failed to type into %s: %w", selector, err)
	}
	return nil
}

func (c *Chrome) requirePresent(ctx context.Context, selector string) error {
	ok, err := c.Exists(ctx, selector)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", selector, ErrNotFound)
	}
	return nil
}

// Close quits the browser. It is safe to call more than once.
func (c *Chrome) Close() error {
	for _, cancel := range c.cancels {
		cancel()
	}
	c.cancels = nil
	c.logger.Debug().Msg("browser closed")
	return nil
}
