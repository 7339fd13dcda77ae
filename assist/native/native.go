// Package native binds the platform assistant engine library.
//
// The engine is an opaque shared object with a small C surface: an instance
// constructor taking an event callback, a destructor, and a handful of
// void-returning commands. This package locates the right library for the
// running platform, loads it, and exposes the surface as [Binding] and
// [Instance] values that are passed into a session explicitly rather than
// held in package state.
package native

import "errors"

// ErrUnsupportedPlatform is returned when no engine library exists for the
// current operating system and processor.
var ErrUnsupportedPlatform = errors.New("platform is not supported")

// Callback receives one engine notification: the numeric event code and the
// raw payload bytes (a UTF-8 JSON object, or empty when the notification
// carries no arguments). The engine invokes it from its own threads; it must
// return quickly and must not panic.
type Callback func(code int32, payload []byte)

// Binding creates engine instances. One Binding can serve multiple sessions;
// each instance belongs to exactly one.
type Binding interface {
	NewInstance(callback Callback) (Instance, error)
}

// Instance is one running engine session.
//
// The command methods mirror the engine ABI and, like it, report nothing:
// the engine absorbs commands whose preconditions do not hold (muting before
// start, stopping with no active conversation) as no-ops. Destroy must be
// called exactly once; no method may be called after it. Callers are
// expected to guard that lifecycle themselves.
type Instance interface {
	Start()
	SetAccessToken(token []byte)
	SetMicMute(muted bool)
	StartConversation()
	StopConversation()
	Destroy()
}
