package assist

import (
	"errors"
	"fmt"
)

// ErrInvalidState marks caller misuse of the session lifecycle. Concrete
// failures wrap it, so errors.Is(err, ErrInvalidState) catches them all.
var ErrInvalidState = errors.New("invalid session state")

// ErrEncoding marks values that cannot be represented on the engine ABI.
var ErrEncoding = errors.New("encoding error")

var (
	// ErrAlreadyStarted is returned by a second Start call. The engine
	// cannot restart; the first Start consumed the one allowed.
	ErrAlreadyStarted = fmt.Errorf("session already started: %w", ErrInvalidState)

	// ErrSessionClosed is returned by any command issued after Close.
	ErrSessionClosed = fmt.Errorf("session is closed: %w", ErrInvalidState)

	// ErrNonASCIIToken is returned when an access token contains characters
	// outside the ASCII range the engine ABI accepts.
	ErrNonASCIIToken = fmt.Errorf("access token contains non-ASCII characters: %w", ErrEncoding)
)
