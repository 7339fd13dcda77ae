package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind identifies one engine notification code.
//
// The underlying value is the engine's own numeric code, so codes this
// package does not name survive the round trip unchanged.
type Kind int32

const (
	ConversationTurnStarted   Kind = 1
	ConversationTurnFinished  Kind = 2
	EndOfUtterance            Kind = 3
	RecognizingSpeechFinished Kind = 4
	RespondingStarted         Kind = 5
	RespondingFinished        Kind = 6
	AlertStarted              Kind = 7
	AlertFinished             Kind = 8
	AssistantError            Kind = 9
	MutedChanged              Kind = 10
	DeviceActionRequested     Kind = 11
)

func (k Kind) String() string {
	switch k {
	case ConversationTurnStarted:
		return "conversation_turn_started"
	case ConversationTurnFinished:
		return "conversation_turn_finished"
	case EndOfUtterance:
		return "end_of_utterance"
	case RecognizingSpeechFinished:
		return "recognizing_speech_finished"
	case RespondingStarted:
		return "responding_started"
	case RespondingFinished:
		return "responding_finished"
	case AlertStarted:
		return "alert_started"
	case AlertFinished:
		return "alert_finished"
	case AssistantError:
		return "assistant_error"
	case MutedChanged:
		return "muted_changed"
	case DeviceActionRequested:
		return "device_action_requested"
	default:
		return fmt.Sprintf("event_kind(%d)", int32(k))
	}
}

// Event is one immutable engine notification.
type Event struct {
	kind      Kind
	payload   map[string]any
	timestamp time.Time
}

// New builds an Event from the raw (code, payload) pair the engine delivers.
//
// payload is either empty or a serialized JSON object. A payload that fails
// to decode yields an Event with no payload rather than an error: the pair
// arrives on the engine's thread, where a decode failure must never escape.
func New(code int32, payload []byte) Event {
	event := Event{kind: Kind(code), timestamp: time.Now()}

	if len(payload) == 0 {
		return event
	}

	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return event
	}
	event.payload = decoded

	return event
}

func (e Event) Kind() Kind {
	return e.kind
}

// Payload returns the decoded notification arguments, or nil when the
// notification carried none (or carried an undecodable payload).
func (e Event) Payload() map[string]any {
	return e.payload
}

func (e Event) Timestamp() time.Time {
	return e.timestamp
}

func (e Event) String() string {
	if len(e.payload) == 0 {
		return e.kind.String()
	}
	return fmt.Sprintf("%s %v", e.kind, e.payload)
}
