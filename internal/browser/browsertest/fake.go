// Package browsertest provides a scripted browser.Driver for tests.
package browsertest

import (
	"context"
	"fmt"
	"slices"

	"github.com/jonathan/people-crossref/internal/browser"
)

// Driver is an in-memory browser.Driver. Tests script it by setting fields and
// hooks; every call is recorded in Calls.
type Driver struct {
	URL string

	// Redirects maps a navigated URL to the URL the page ends up on.
	Redirects map[string]string
	// Present lists selectors that currently match an element.
	Present map[string]bool
	// Jar is the cookie jar returned by Cookies and appended to by SetCookie.
	Jar []browser.Cookie
	// Page is returned by HTML unless OnHTML is set.
	Page string

	// Typed records the last text sent to each selector.
	Typed   map[string]string
	Clicks  []string
	Scripts []string
	Calls   []string
	Closed  bool

	// Fail makes the named method (e.g. "Navigate", "HTML") return the error.
	Fail map[string]error

	OnNavigate  func(d *Driver, url string) error
	OnClick     func(d *Driver, selector string) error
	OnSetCookie func(d *Driver, c browser.Cookie) error
	OnHTML      func(d *Driver) (string, error)
}

var _ browser.Driver = (*Driver)(nil)

// New returns an empty Driver positioned at about:blank.
func New() *Driver {
	return &Driver{
		URL:       "about:blank",
		Redirects: map[string]string{},
		Present:   map[string]bool{},
		Typed:     map[string]string{},
		Fail:      map[string]error{},
	}
}

func (d *Driver) record(call string) error {
	d.Calls = append(d.Calls, call)
	return d.Fail[methodOf(call)]
}

func methodOf(call string) string {
	for i, r := range call {
		if r == ' ' {
			return call[:i]
		}
	}
	return call
}

// Called reports whether any recorded call starts with method.
func (d *Driver) Called(method string) bool {
	return slices.ContainsFunc(d.Calls, func(c string) bool { return methodOf(c) == method })
}

// Navigate moves to url, following Redirects.
func (d *Driver) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.record("Navigate " + url); err != nil {
		return err
	}
	d.URL = url
	if to, ok := d.Redirects[url]; ok {
		d.URL = to
	}
	if d.OnNavigate != nil {
		return d.OnNavigate(d, url)
	}
	return nil
}

// Reload records the call; the page does not change.
func (d *Driver) Reload(context.Context) error {
	return d.record("Reload")
}

// CurrentURL returns URL.
func (d *Driver) CurrentURL(context.Context) (string, error) {
	if err := d.record("CurrentURL"); err != nil {
		return "", err
	}
	return d.URL, nil
}

// Cookies returns a copy of Jar.
func (d *Driver) Cookies(context.Context) ([]browser.Cookie, error) {
	if err := d.record("Cookies"); err != nil {
		return nil, err
	}
	return slices.Clone(d.Jar), nil
}

// SetCookie appends c to Jar unless OnSetCookie rejects it.
func (d *Driver) SetCookie(_ context.Context, c browser.Cookie) error {
	if err := d.record("SetCookie " + c.Name); err != nil {
		return err
	}
	if d.OnSetCookie != nil {
		if err := d.OnSetCookie(d, c); err != nil {
			return err
		}
	}
	d.Jar = append(d.Jar, c)
	return nil
}

// ExecuteScript records js.
func (d *Driver) ExecuteScript(_ context.Context, js string, _ any) error {
	if err := d.record("ExecuteScript"); err != nil {
		return err
	}
	d.Scripts = append(d.Scripts, js)
	return nil
}

// HTML returns Page or the result of OnHTML.
func (d *Driver) HTML(context.Context) (string, error) {
	if err := d.record("HTML"); err != nil {
		return "", err
	}
	if d.OnHTML != nil {
		return d.OnHTML(d)
	}
	return d.Page, nil
}

// Exists consults Present.
func (d *Driver) Exists(_ context.Context, selector string) (bool, error) {
	if err := d.record("Exists " + selector); err != nil {
		return false, err
	}
	return d.Present[selector], nil
}

// Click requires selector to be Present, then runs OnClick.
func (d *Driver) Click(_ context.Context, selector string) error {
	if err := d.record("Click " + selector); err != nil {
		return err
	}
	if !d.Present[selector] {
		return fmt.Errorf("%s: %w", selector, browser.ErrNotFound)
	}
	d.Clicks = append(d.Clicks, selector)
	if d.OnClick != nil {
		return d.OnClick(d, selector)
	}
	return nil
}

// SendKeys requires selector to be Present and records text in Typed.
func (d *Driver) SendKeys(_ context.Context, selector, text string) error {
	if err := d.record("SendKeys " + selector); err != nil {
		return err
	}
	if !d.Present[selector] {
		return fmt.Errorf("%s: %w", selector, browser.ErrNotFound)
	}
	d.Typed[selector] = text
	return nil
}

// Close marks the driver closed.
func (d *Driver) Close() error {
	d.Closed = true
	return d.record("Close")
}
