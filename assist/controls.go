package assist

import (
	"fmt"
	"unicode"
)

// SetMicMute stops the engine from listening for the hotword (true) or lets
// it listen again (false). The engine treats a mute request before Start as
// a no-op; the wrapper forwards it without re-validating. After Close it
// returns [ErrSessionClosed].
func (s *Session) SetMicMute(muted bool) error {
	return s.handle.setMicMute(muted)
}

// StartConversation manually opens a conversation, as if the engine had
// heard the hotword. The engine absorbs the call as a no-op when it is not
// started or is muted.
func (s *Session) StartConversation() error {
	return s.handle.startConversation()
}

// StopConversation ends any active conversation, whether the engine is
// listening or responding. With no active conversation the engine absorbs
// the call as a no-op.
func (s *Session) StopConversation() error {
	return s.handle.stopConversation()
}

// SetAccessToken pushes a fresh OAuth2 bearer token to the engine. Valid
// both before and after Start, but not after Close.
//
// The engine ABI takes the token as single-byte characters, so a token with
// anything outside ASCII is a caller error, rejected here before any native
// call is issued.
func (s *Session) SetAccessToken(token string) error {
	for i := 0; i < len(token); i++ {
		if token[i] > unicode.MaxASCII {
			return fmt.Errorf("token byte %d: %w", i, ErrNonASCIIToken)
		}
	}

	return s.handle.setAccessToken([]byte(token))
}
