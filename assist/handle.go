package assist

import (
	"sync"
	"sync/atomic"

	"github.com/voicekit/assist-core/assist/native"
)

// nativeHandle guards the session's engine instance. Every engine call goes
// through it, so once release runs the instance can never be reached again:
// the released gate flips before the destroy call, and every forwarder
// checks it first.
type nativeHandle struct {
	instance native.Instance

	releaseOnce sync.Once
	released    atomic.Bool
}

func newNativeHandle(instance native.Instance) *nativeHandle {
	return &nativeHandle{instance: instance}
}

func (h *nativeHandle) guard() error {
	if h.released.Load() {
		return ErrSessionClosed
	}
	return nil
}

func (h *nativeHandle) start() error {
	if err := h.guard(); err != nil {
		return err
	}
	h.instance.Start()
	return nil
}

func (h *nativeHandle) setAccessToken(token []byte) error {
	if err := h.guard(); err != nil {
		return err
	}
	h.instance.SetAccessToken(token)
	return nil
}

func (h *nativeHandle) setMicMute(muted bool) error {
	if err := h.guard(); err != nil {
		return err
	}
	h.instance.SetMicMute(muted)
	return nil
}

func (h *nativeHandle) startConversation() error {
	if err := h.guard(); err != nil {
		return err
	}
	h.instance.StartConversation()
	return nil
}

func (h *nativeHandle) stopConversation() error {
	if err := h.guard(); err != nil {
		return err
	}
	h.instance.StopConversation()
	return nil
}

// release destroys the instance exactly once. Further calls are no-ops.
func (h *nativeHandle) release() {
	h.releaseOnce.Do(func() {
		h.released.Store(true)
		h.instance.Destroy()
	})
}
