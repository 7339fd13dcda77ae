// Package credentials keeps the engine's OAuth2 access token fresh.
//
// The engine consumes bearer tokens but owns no refresh machinery; a
// [Refresher] bridges any [oauth2.TokenSource] to the session's token-update
// path on a fixed schedule. The cadence is deliberately explicit
// configuration: token lifetimes differ per deployment, and the TokenSource
// itself reuses unexpired tokens, so a short interval costs little.
package credentials

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/oauth2"
)

const defaultRefreshInterval = 30 * time.Minute

// Refresher periodically pulls a token from its source and pushes it through
// the apply function given to Start. Pull and push failures are logged and
// the loop continues; a later tick usually succeeds once the credential
// backend recovers.
type Refresher struct {
	source   oauth2.TokenSource
	interval time.Duration
	logger   *slog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool
	cancel    context.CancelFunc
	done      chan struct{}
}

type RefresherOption func(*Refresher)

// WithInterval sets the refresh cadence. Defaults to 30 minutes.
func WithInterval(interval time.Duration) RefresherOption {
	return func(r *Refresher) {
		if interval > 0 {
			r.interval = interval
		}
	}
}

func WithLogger(logger *slog.Logger) RefresherOption {
	return func(r *Refresher) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRefresher(source oauth2.TokenSource, opts ...RefresherOption) *Refresher {
	r := &Refresher{
		source:   source,
		interval: defaultRefreshInterval,
		logger:   slog.Default(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start begins the refresh loop. The current token is pushed immediately,
// then once per interval until Stop is called or ctx is cancelled. Start is
// one-shot; repeated calls do nothing.
func (r *Refresher) Start(ctx context.Context, apply func(token string) error) error {
	if r.source == nil {
		return fmt.Errorf("token source is required")
	}
	if apply == nil {
		return fmt.Errorf("apply function is required")
	}

	r.startOnce.Do(func() {
		ctx, r.cancel = context.WithCancel(ctx)
		r.started.Store(true)
		go r.refreshLoop(ctx, apply)
	})

	return nil
}

// Stop ends the refresh loop and waits for it to exit. Safe to call without
// a prior Start, and idempotent.
func (r *Refresher) Stop() error {
	r.stopOnce.Do(func() {
		if !r.started.Load() {
			return
		}
		r.cancel()
		<-r.done
	})
	return nil
}

func (r *Refresher) refreshLoop(ctx context.Context, apply func(token string) error) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.push(apply)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.push(apply)
		}
	}
}

func (r *Refresher) push(apply func(token string) error) {
	token, err := r.source.Token()
	if err != nil {
		r.logger.Error("failed to refresh access token", "error", err)
		return
	}

	if err := apply(token.AccessToken); err != nil {
		r.logger.Error("failed to apply refreshed access token", "error", err)
	}
}
