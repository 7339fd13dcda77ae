package assist

import (
	"log/slog"

	"github.com/voicekit/assist-core/assist/events"
)

// callbackBridge is the single entry point the engine invokes to deliver a
// notification. It converts the raw (code, payload) pair into an event and
// pushes it onto the session's queue.
type callbackBridge struct {
	queue  *events.Queue
	logger *slog.Logger
}

func newCallbackBridge(queue *events.Queue, logger *slog.Logger) *callbackBridge {
	return &callbackBridge{queue: queue, logger: logger}
}

// deliver runs on the engine's own thread. It must return quickly and no
// failure may escape onto the foreign stack: decode failures are already
// absorbed by events.New, late deliveries after close are logged and
// dropped, and anything else is recovered here.
func (b *callbackBridge) deliver(code int32, payload []byte) {
	defer func() {
		if recovered := recover(); recovered != nil {
			b.logger.Error("panic during event delivery",
				"code", code, "panic", recovered)
		}
	}()

	if err := b.queue.Push(events.New(code, payload)); err != nil {
		b.logger.Warn("dropping event delivered after close",
			"code", code, "error", err)
	}
}
