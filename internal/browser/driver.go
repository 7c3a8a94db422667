// Package browser provides the automation driver used to render and operate the
// people-search site. The Driver interface is the only surface the session and
// crawling packages depend on; Chrome implements it with chromedp.
package browser

import (
	"context"
	"errors"
)

// ErrNotFound is returned by element operations when the selector matches nothing.
var ErrNotFound = errors.New("element not found")

// Cookie is a browser cookie as captured from, or replayed into, the driver.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain,omitempty"`
	Path     string  `json:"path,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
	HTTPOnly bool    `json:"httpOnly,omitempty"`
	SameSite string  `json:"sameSite,omitempty"`
	Expires  float64 `json:"expiry,omitempty"` // seconds since epoch, 0 for session cookies
}

// Driver is the automation capability a run owns exclusively.
// Element operations address elements by CSS selector and return ErrNotFound
// instead of blocking when nothing matches.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	Reload(ctx context.Context) error
	CurrentURL(ctx context.Context) (string, error)

	Cookies(ctx context.Context) ([]Cookie, error)
	SetCookie(ctx context.Context, c Cookie) error

	// ExecuteScript evaluates js in the page; res may be nil.
	ExecuteScript(ctx context.Context, js string, res any) error
	// HTML returns the current rendered document markup.
	HTML(ctx context.Context) (string, error)

	Exists(ctx context.Context, selector string) (bool, error)
	Click(ctx context.Context, selector string) error
	// SendKeys replaces the value of the matched input with text.
	SendKeys(ctx context.Context, selector, text string) error

	Close() error
}

// FirstPresent returns the first selector in selectors that matches an element.
// It returns ErrNotFound when none do.
func FirstPresent(ctx context.Context, d Driver, selectors ...string) (string, error) {
	for _, sel := range selectors {
		ok, err := d.Exists(ctx, sel)
		if err != nil {
			return "", err
		}
		if ok {
			return sel, nil
		}
	}
	return "", ErrNotFound
}
