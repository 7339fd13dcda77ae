// Package assist manages one lifetime of the native assistant engine.
//
// A [Session] owns exactly one engine instance and the queue its
// notifications are buffered on. The session moves through three states:
// created (instance acquired, engine idle), started (hotword listening and
// background services running, event sequence live), and closed (terminal).
// Start is one-shot: the engine does not support restarting, so a second
// Start fails loudly instead of being absorbed.
//
// Typical use:
//
//	lib, err := native.Load(path)
//	...
//	session, err := assist.New(lib, assist.WithAccessToken(token))
//	...
//	defer session.Close()
//
//	seq, err := session.Start(ctx)
//	...
//	for event := range seq {
//		...
//	}
//
// Two threads of control touch a session: the application thread driving
// commands and teardown, and the engine's own threads delivering
// notifications. The event queue is the only structure shared between them;
// command methods are meant for a single control thread.
package assist
