package assist

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/voicekit/assist-core/assist/events"
	"github.com/voicekit/assist-core/assist/native"
)

var tracer = otel.Tracer("github.com/voicekit/assist-core/assist")

// CredentialRefresher periodically supplies updated access tokens. Start
// receives the apply function tokens are pushed through; Stop ends the
// refresh loop. Both are called at most once by the session.
type CredentialRefresher interface {
	Start(ctx context.Context, apply func(token string) error) error
	Stop() error
}

// Session is one managed lifetime of the native assistant engine.
type Session struct {
	id     string
	handle *nativeHandle
	queue  *events.Queue
	logger *slog.Logger

	// refresher is the optional credential collaborator; it shares its own
	// lifecycle with the caller but is stopped on session teardown.
	refresher    CredentialRefresher
	initialToken *string

	started   atomic.Bool
	closeOnce sync.Once

	baseContext context.Context
}

// New acquires one engine instance from binding and wires its notifications
// onto a fresh event queue. On any construction failure everything acquired
// up to that point is released before the error is returned.
func New(binding native.Binding, opts ...SessionOption) (*Session, error) {
	s := &Session{
		id:          uuid.NewString(),
		queue:       events.NewQueue(),
		logger:      slog.Default(),
		baseContext: context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}

	bridge := newCallbackBridge(s.queue, s.logger.With("session_id", s.id))
	instance, err := binding.NewInstance(bridge.deliver)
	if err != nil {
		s.queue.Close()
		return nil, fmt.Errorf("failed to create assistant instance: %w", err)
	}
	s.handle = newNativeHandle(instance)

	if s.initialToken != nil {
		if err := s.SetAccessToken(*s.initialToken); err != nil {
			s.handle.release()
			s.queue.Close()
			return nil, fmt.Errorf("failed to set initial access token: %w", err)
		}
	}

	return s, nil
}

// ID returns the session's identifier, used to correlate log entries.
func (s *Session) ID() string { return s.id }

// Start begins hotword listening and the engine's background services and
// returns the consuming event sequence. It also starts the credential
// refresher, if one is configured.
//
// Start can be called once per session: the engine does not support
// restarting, so a second call returns [ErrAlreadyStarted] without issuing
// another native start.
//
// ctx becomes the session's base context; it is used for refresher
// scheduling and error recording, not for cancelling the engine itself (see
// [Session.Close]).
func (s *Session) Start(ctx context.Context) (iter.Seq[events.Event], error) {
	if err := s.handle.guard(); err != nil {
		return nil, err
	}
	if !s.started.CompareAndSwap(false, true) {
		return nil, ErrAlreadyStarted
	}

	s.baseContext = ctx
	_, span := tracer.Start(ctx, "start assistant session")
	defer span.End()

	if err := s.handle.start(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	s.logger.Info("assistant session started", "session_id", s.id)

	if s.refresher != nil {
		if err := s.refresher.Start(ctx, s.SetAccessToken); err != nil {
			recordedErr := fmt.Errorf("failed to start credential refresher: %w", err)
			span.RecordError(recordedErr)
			span.SetStatus(codes.Error, recordedErr.Error())
			s.logger.Error("failed to start credential refresher",
				"session_id", s.id, "error", err)
		}
	}

	return s.queue.Events(), nil
}

// Close tears the session down: it stops the credential refresher, releases
// the engine instance, and closes the event queue, in that order. Every step
// runs even when an earlier one fails; failures are joined into the returned
// error. Close is idempotent, and after the first call every command returns
// [ErrSessionClosed].
func (s *Session) Close() error {
	var closeErr error
	s.closeOnce.Do(func() {
		if s.refresher != nil {
			if err := s.refresher.Stop(); err != nil {
				closeErr = errors.Join(closeErr,
					fmt.Errorf("failed to stop credential refresher: %w", err))
			}
		}

		s.handle.release()
		s.queue.Close()

		if closeErr != nil {
			span := trace.SpanFromContext(s.baseContext)
			span.RecordError(closeErr)
			span.SetStatus(codes.Error, closeErr.Error())
		}
		s.logger.Info("assistant session closed", "session_id", s.id)
	})

	return closeErr
}
