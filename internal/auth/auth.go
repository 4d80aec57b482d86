// Package auth implements the Auth Gate (spec §4.10, C10): a cached Azure
// credential token, refreshed on a background interval and on demand, with
// expiry surfaced to the rest of the system as an event rather than an
// error return from every call site.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Token is the minimal shape C10 caches; internal/azure's credential
// source adapts azcore.AccessToken into this so the rest of the module
// never imports azcore directly outside internal/azure.
type Token struct {
	Value     string
	ExpiresOn time.Time
}

// Source acquires a fresh token. The real implementation in internal/azure
// wraps azidentity.NewDefaultAzureCredential; tests substitute a fake.
type Source interface {
	Token(ctx context.Context) (Token, error)
}

// ErrExpired is returned by Current when the cached token's expiry has
// passed and a background or on-demand refresh has not yet succeeded.
var ErrExpired = errors.New("auth: token expired")

// Gate owns the single cached credential and revalidates it on a timer
// (spec §4.10: "validation_interval_secs... a background check, not a
// per-request one — C2 does not re-validate before every query").
type Gate struct {
	source Source

	mu      sync.RWMutex
	token   Token
	lastErr error

	interval time.Duration
	events   chan Event

	stop chan struct{}
	once sync.Once
}

// Event is posted to the TUI (spec §5: AuthRevalidated) whenever the
// background check runs, success or failure, so C8 can refresh the auth
// indicator even when nothing else changed.
type Event struct {
	OK    bool
	Err   error
	Token Token
}

// New returns a Gate that checks source every interval. The gate performs
// no I/O until Start is called.
func New(source Source, interval time.Duration) *Gate {
	return &Gate{
		source:   source,
		interval: interval,
		events:   make(chan Event, 1),
		stop:     make(chan struct{}),
	}
}

// Events returns the channel C8 drains for AuthRevalidated notifications.
func (g *Gate) Events() <-chan Event { return g.events }

// Start performs an initial synchronous acquisition and then begins the
// background revalidation ticker. Call Stop to release the ticker
// goroutine.
func (g *Gate) Start(ctx context.Context) error {
	if err := g.refresh(ctx); err != nil {
		return fmt.Errorf("auth: initial token acquisition: %w", err)
	}
	go g.loop(ctx)
	return nil
}

// Stop ends the background revalidation loop. Safe to call more than
// once.
func (g *Gate) Stop() {
	g.once.Do(func() { close(g.stop) })
}

func (g *Gate) loop(ctx context.Context) {
	t := time.NewTicker(g.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-g.stop:
			return
		case <-t.C:
			err := g.refresh(ctx)
			ev := Event{OK: err == nil, Err: err}
			if err == nil {
				ev.Token = g.Snapshot()
			}
			select {
			case g.events <- ev:
			default:
				// Drop the stale event rather than block the ticker; the next
				// tick's event supersedes it and C8 only cares about the most
				// recent auth state (unlike job events, auth state has no
				// per-item ordering requirement to preserve).
			}
		}
	}
}

func (g *Gate) refresh(ctx context.Context) error {
	tok, err := g.source.Token(ctx)
	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil {
		g.lastErr = err
		return err
	}
	g.token = tok
	g.lastErr = nil
	return nil
}

// Snapshot returns the currently cached token without checking its expiry
// or triggering a refresh.
func (g *Gate) Snapshot() Token {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token
}

// Valid reports whether the cached token is present and unexpired, per
// spec §4.10's "auth indicator" used by C8's status bar.
func (g *Gate) Valid() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lastErr == nil && !g.token.ExpiresOn.IsZero() && time.Now().Before(g.token.ExpiresOn)
}

// Current returns the cached token, or ErrExpired if it is stale. C2
// (internal/azure's client) calls this once per request rather than
// forcing a network round trip to validate (spec §4.10: "a query that
// starts while the token is still valid but expires mid-pagination is the
// query client's problem, not the auth gate's").
func (g *Gate) Current() (Token, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.lastErr != nil {
		return Token{}, g.lastErr
	}
	if g.token.ExpiresOn.IsZero() || !time.Now().Before(g.token.ExpiresOn) {
		return Token{}, ErrExpired
	}
	return g.token, nil
}

// ForceRefresh triggers an immediate out-of-band acquisition, used when C2
// observes a 401 mid-query and wants one forced refresh before giving up
// (spec §4.2 "one forced-refresh-and-retry").
func (g *Gate) ForceRefresh(ctx context.Context) (Token, error) {
	if err := g.refresh(ctx); err != nil {
		return Token{}, err
	}
	return g.Snapshot(), nil
}
