package assist

import (
	"log/slog"

	"github.com/voicekit/assist-core/internal/utils"
)

type SessionOption func(*Session)

// WithLogger sets the logger session internals report through. Defaults to
// [slog.Default].
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAccessToken pushes token to the engine during construction, before the
// session is returned. A token the engine ABI cannot represent fails the
// construction.
func WithAccessToken(token string) SessionOption {
	return func(s *Session) {
		s.initialToken = utils.Ptr(token)
	}
}

// WithCredentialRefresher attaches a refresher that keeps the engine's
// access token fresh. The session starts it on Start, feeds its tokens
// through [Session.SetAccessToken], and stops it on Close.
func WithCredentialRefresher(refresher CredentialRefresher) SessionOption {
	return func(s *Session) {
		s.refresher = refresher
	}
}
