package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/phuslu/log"

	"github.com/jonathan/people-crossref/internal/browser"
	"github.com/jonathan/people-crossref/internal/observability"
	"github.com/jonathan/people-crossref/internal/types"
)

// DefaultSettleDelay is the fixed pause that lets client-side redirects and
// rendering settle after a navigation or form submission.
const DefaultSettleDelay = 2 * time.Second

// CodeProvider supplies the one-time code for a two-factor challenge. It blocks
// until a code is available; no timeout is applied by the Manager.
type CodeProvider interface {
	RequestCode(ctx context.Context) (string, error)
}

// CodeProviderFunc adapts a function to CodeProvider.
type CodeProviderFunc func(ctx context.Context) (string, error)

// RequestCode calls f.
func (f CodeProviderFunc) RequestCode(ctx context.Context) (string, error) {
	return f(ctx)
}

// Endpoints are the site URLs the Manager visits.
type Endpoints struct {
	Root    string // cookie domain anchor
	Landing string // protected page that redirects to login when the session is invalid
	Login   string
}

// DefaultEndpoints returns the production site URLs.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Root:    "https://www.linkedin.com",
		Landing: "https://www.linkedin.com/feed/",
		Login:   "https://www.linkedin.com/login",
	}
}

// Selectors locate the login and challenge form fields. Each list is tried in
// order; the first present element is used.
type Selectors struct {
	Username []string
	Password []string
	Submit   []string
	Pin      []string
}

// DefaultSelectors returns the known login form identifiers.
func DefaultSelectors() Selectors {
	return Selectors{
		Username: []string{"#username", `input[name="session_key"]`},
		Password: []string{"#password", `input[name="session_password"]`},
		Submit:   []string{`button[type="submit"]`},
		Pin:      []string{`input[name="pin"]`, "#input__phone_verification_pin"},
	}
}

// Result describes a successful authentication.
type Result struct {
	Success           bool
	UsedStoredSession bool
}

// Manager establishes an authenticated browser session.
type Manager struct {
	creds     types.Credentials
	store     Store
	codes     CodeProvider
	endpoints Endpoints
	selectors Selectors
	settle    time.Duration
	sleep     browser.Sleeper
	logger    *log.Logger
	state     types.AuthState
}

// Option configures a Manager.
type Option func(*Manager)

// WithEndpoints overrides the site URLs.
func WithEndpoints(e Endpoints) Option {
	return func(m *Manager) { m.endpoints = e }
}

// WithSelectors overrides the form field selectors.
func WithSelectors(s Selectors) Option {
	return func(m *Manager) { m.selectors = s }
}

// WithSettleDelay sets the pause after navigations and submissions.
func WithSettleDelay(d time.Duration) Option {
	return func(m *Manager) { m.settle = d }
}

// WithSleeper replaces the function used to pause.
func WithSleeper(s browser.Sleeper) Option {
	return func(m *Manager) { m.sleep = s }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a Manager for creds. store and codes must not be nil.
func NewManager(creds types.Credentials, store Store, codes CodeProvider, opts ...Option) *Manager {
	m := &Manager{
		creds:     creds,
		store:     store,
		codes:     codes,
		endpoints: DefaultEndpoints(),
		selectors: DefaultSelectors(),
		settle:    DefaultSettleDelay,
		sleep:     browser.Sleep,
		logger:    observability.NopLogger(),
		state:     types.Unauthenticated,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the state reached by the last Authenticate call.
func (m *Manager) State() types.AuthState {
	return m.state
}

// Authenticate leaves drv on an authenticated session. Stored cookies are
// tried first; when the landing page still redirects to login, a full
// credential login runs and the fresh cookie set replaces the stored one.
func (m *Manager) Authenticate(ctx context.Context, drv browser.Driver) (Result, error) {
	m.state = types.Unauthenticated

	restored, err := m.restoreCookies(ctx, drv)
	if err != nil {
		return Result{}, err
	}

	if err := m.navigate(ctx, drv, m.endpoints.Landing, m.settle); err != nil {
		return Result{}, err
	}
	landed, err := drv.CurrentURL(ctx)
	if err != nil {
		return Result{}, driverErr("failed to read landing URL", err)
	}
	if !redirectedToLogin(landed) {
		m.state = types.Authenticated
		m.logger.Info().Bool("cookies_restored", restored).Msg("session valid, skipping login")
		return Result{Success: true, UsedStoredSession: true}, nil
	}

	m.logger.Info().Bool("cookies_restored", restored).Str("url", landed).Msg("session not valid, logging in")

	if err := m.submitCredentials(ctx, drv); err != nil {
		return Result{}, err
	}

	challenged, err := m.challenged(ctx, drv)
	if err != nil {
		return Result{}, err
	}
	if challenged {
		if err := m.answerChallenge(ctx, drv); err != nil {
			return Result{}, err
		}
	}

	current, err := drv.CurrentURL(ctx)
	if err != nil {
		return Result{}, driverErr("failed to read post-login URL", err)
	}
	if strings.Contains(current, "login") {
		return Result{}, &AuthError{Reason: CredentialsRejected, Message: "still on the login page after submitting credentials"}
	}

	cookies, err := drv.Cookies(ctx)
	if err != nil {
		return Result{}, driverErr("failed to capture session cookies", err)
	}
	if err := m.store.Save(cookies); err != nil {
		// The browser is authenticated; only the next run loses the shortcut.
		m.logger.Error().Err(err).Msg("failed to persist session cookies")
	}

	m.state = types.Authenticated
	m.logger.Info().Int("cookies", len(cookies)).Msg("logged in, session saved")
	return Result{Success: true}, nil
}

// restoreCookies injects the stored set, if any. Cookies the browser refuses
// are skipped; a set that does not apply simply leads to a full login.
func (m *Manager) restoreCookies(ctx context.Context, drv browser.Driver) (bool, error) {
	set, ok, err := m.store.Load()
	if err != nil {
		m.logger.Warn().Err(err).Msg("failed to load stored session")
		return false, nil
	}
	if !ok || len(set) == 0 {
		return false, nil
	}

	if err := drv.Navigate(ctx, m.endpoints.Root); err != nil {
		return false, driverErr("failed to open site root", err)
	}

	injected := 0
	for _, c := range set.Stripped() {
		if err := drv.SetCookie(ctx, c); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return false, driverErr("cookie injection interrupted", ctxErr)
			}
			m.logger.Debug().Err(err).Str("cookie", c.Name).Msg("stored cookie rejected")
			continue
		}
		injected++
	}

	if err := drv.Reload(ctx); err != nil {
		return false, driverErr("failed to reload after cookie injection", err)
	}
	if err := m.sleep(ctx, m.settle); err != nil {
		return false, driverErr("interrupted while waiting for redirect", err)
	}

	m.logger.Debug().Int("stored", len(set)).Int("injected", injected).Msg("stored cookies replayed")
	return injected > 0, nil
}

func (m *Manager) submitCredentials(ctx context.Context, drv browser.Driver) error {
	if err := m.navigate(ctx, drv, m.endpoints.Login, m.settle/2); err != nil {
		return err
	}
	if err := m.fill(ctx, drv, m.selectors.Username, m.creds.Username, "username", CredentialsRejected); err != nil {
		return err
	}
	if err := m.fill(ctx, drv, m.selectors.Password, m.creds.Secret, "password", CredentialsRejected); err != nil {
		return err
	}
	return m.submit(ctx, drv, CredentialsRejected)
}

// challenged reports whether the site is asking for a one-time code.
func (m *Manager) challenged(ctx context.Context, drv browser.Driver) (bool, error) {
	current, err := drv.CurrentURL(ctx)
	if err != nil {
		return false, driverErr("failed to read URL", err)
	}
	if strings.Contains(current, "checkpoint/challenge") {
		return true, nil
	}

	_, err = browser.FirstPresent(ctx, drv, m.selectors.Pin...)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, browser.ErrNotFound):
		return false, nil
	default:
		return false, driverErr("failed to look for a code field", err)
	}
}

func (m *Manager) answerChallenge(ctx context.Context, drv browser.Driver) error {
	m.state = types.AwaitingTwoFactor
	m.logger.Info().Msg("two-factor code requested")

	code, err := m.codes.RequestCode(ctx)
	if err != nil {
		return &AuthError{Reason: TwoFactorRejected, Message: "no code supplied", Cause: err}
	}

	if err := m.fill(ctx, drv, m.selectors.Pin, strings.TrimSpace(code), "code", TwoFactorRejected); err != nil {
		return err
	}
	if err := m.submit(ctx, drv, TwoFactorRejected); err != nil {
		return err
	}

	still, err := m.challenged(ctx, drv)
	if err != nil {
		return err
	}
	if still {
		return &AuthError{Reason: TwoFactorRejected, Message: "the code was not accepted"}
	}
	return nil
}

func (m *Manager) navigate(ctx context.Context, drv browser.Driver, url string, settle time.Duration) error {
	if err := drv.Navigate(ctx, url); err != nil {
		return driverErr("failed to open "+url, err)
	}
	if err := m.sleep(ctx, settle); err != nil {
		return driverErr("interrupted while waiting for page", err)
	}
	return nil
}

// fill types text into the first present field among selectors. A missing
// field fails with the missing reason; any other failure is the driver's.
func (m *Manager) fill(ctx context.Context, drv browser.Driver, selectors []string, text, field string, missing Reason) error {
	sel, err := browser.FirstPresent(ctx, drv, selectors...)
	if errors.Is(err, browser.ErrNotFound) {
		return &AuthError{Reason: missing, Message: field + " field not found", Cause: err}
	}
	if err != nil {
		return driverErr("failed to locate "+field+" field", err)
	}
	if err := drv.SendKeys(ctx, sel, text); err != nil {
		return driverErr("failed to fill "+field+" field", err)
	}
	return nil
}

func (m *Manager) submit(ctx context.Context, drv browser.Driver, missing Reason) error {
	sel, err := browser.FirstPresent(ctx, drv, m.selectors.Submit...)
	if errors.Is(err, browser.ErrNotFound) {
		return &AuthError{Reason: missing, Message: "submit button not found", Cause: err}
	}
	if err != nil {
		return driverErr("failed to locate submit button", err)
	}
	if err := drv.Click(ctx, sel); err != nil {
		return driverErr("failed to submit form", err)
	}
	if err := m.sleep(ctx, m.settle); err != nil {
		return driverErr("interrupted while waiting for submission", err)
	}
	return nil
}

// redirectedToLogin reports whether the site bounced a protected page to its
// login or checkpoint flow.
func redirectedToLogin(url string) bool {
	return strings.Contains(url, "login") || strings.Contains(url, "checkpoint")
}
