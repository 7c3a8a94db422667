package session

import "github.com/jonathan/people-crossref/internal/browser"

// Cookie is a stored session cookie.
type Cookie = browser.Cookie

// CookieSet is an ordered cookie sequence as captured after login.
type CookieSet []Cookie

// UnsupportedAttributes lists the cookie attributes removed before replay.
// The browser rejects injected cookies carrying a strict same-site policy or
// a stale expiry, so neither is replayed.
var UnsupportedAttributes = []string{"sameSite", "expiry"}

// Strip returns a copy of c without the unsupported attributes.
// Every other field is preserved.
func Strip(c Cookie) Cookie {
	c.SameSite = ""
	c.Expires = 0
	return c
}

// Stripped returns a copy of the set with every cookie stripped.
func (s CookieSet) Stripped() CookieSet {
	out := make(CookieSet, len(s))
	for i, c := range s {
		out[i] = Strip(c)
	}
	return out
}
