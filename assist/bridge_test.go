package assist

import (
	"log/slog"
	"testing"

	"github.com/voicekit/assist-core/assist/events"
)

func TestBridgeDeliversDecodedEvent(t *testing.T) {
	queue := events.NewQueue()
	bridge := newCallbackBridge(queue, slog.Default())

	bridge.deliver(int32(events.RecognizingSpeechFinished), []byte(`{"text":"what time is it"}`))

	if queue.Len() != 1 {
		t.Fatalf("expected exactly one queued event, got %d", queue.Len())
	}
	queue.Close()
	for event := range queue.Events() {
		if event.Kind() != events.RecognizingSpeechFinished {
			t.Fatalf("expected %s, got %s", events.RecognizingSpeechFinished, event.Kind())
		}
		if got := event.Payload()["text"]; got != "what time is it" {
			t.Fatalf("expected payload text %q, got %v", "what time is it", got)
		}
	}
}

func TestBridgeKeepsMalformedPayloadEvents(t *testing.T) {
	queue := events.NewQueue()
	bridge := newCallbackBridge(queue, slog.Default())

	bridge.deliver(int32(events.RecognizingSpeechFinished), []byte("not json"))

	if queue.Len() != 1 {
		t.Fatalf("expected the malformed-payload event to still be queued, got %d", queue.Len())
	}
	queue.Close()
	for event := range queue.Events() {
		if event.Kind() != events.RecognizingSpeechFinished {
			t.Fatalf("expected %s, got %s", events.RecognizingSpeechFinished, event.Kind())
		}
		if event.Payload() != nil {
			t.Fatalf("expected empty payload for malformed input, got %v", event.Payload())
		}
	}
}

func TestBridgePreservesDeliveryOrder(t *testing.T) {
	queue := events.NewQueue()
	bridge := newCallbackBridge(queue, slog.Default())

	codes := []int32{
		int32(events.ConversationTurnStarted),
		int32(events.EndOfUtterance),
		int32(events.RecognizingSpeechFinished),
		int32(events.RespondingStarted),
		int32(events.RespondingFinished),
		int32(events.ConversationTurnFinished),
	}
	for _, code := range codes {
		bridge.deliver(code, nil)
	}
	queue.Close()

	i := 0
	for event := range queue.Events() {
		if int32(event.Kind()) != codes[i] {
			t.Fatalf("expected event %d to have code %d, got %d", i, codes[i], int32(event.Kind()))
		}
		i++
	}
	if i != len(codes) {
		t.Fatalf("expected %d events, got %d", len(codes), i)
	}
}

func TestBridgeSwallowsDeliveryAfterClose(t *testing.T) {
	queue := events.NewQueue()
	bridge := newCallbackBridge(queue, slog.Default())
	queue.Close()

	// Must not panic; the engine thread cannot handle a failure.
	bridge.deliver(int32(events.ConversationTurnStarted), nil)

	if queue.Len() != 0 {
		t.Fatalf("expected late delivery to be dropped, got %d queued", queue.Len())
	}
}
