// Package events defines the notification contract between the native
// assistant engine and event consumers.
//
// The engine reports state changes as numbered notifications with an optional
// JSON payload. Each notification becomes one immutable [Event] carrying a
// [Kind] and the decoded payload. Kinds mirror the engine's event codes:
//
//   - ConversationTurnStarted: a turn began (hotword or manual trigger).
//   - ConversationTurnFinished: the turn ended; payload reports
//     "with_follow_on_turn" when the engine keeps listening.
//   - EndOfUtterance: the engine stopped recording the user's query.
//   - RecognizingSpeechFinished: final recognition result; payload carries
//     "text".
//   - RespondingStarted: the engine began responding; payload reports
//     "is_error_response".
//   - RespondingFinished: the engine finished responding.
//   - AlertStarted / AlertFinished: a timer or alarm is sounding.
//   - AssistantError: the engine hit an internal error; payload reports
//     "is_fatal".
//   - MutedChanged: microphone mute state changed; payload reports
//     "is_muted".
//   - DeviceActionRequested: the response includes a device action; payload
//     carries the action request.
//
// Codes the engine adds in newer library revisions are preserved as-is: an
// unknown code still produces an Event whose Kind is that numeric value.
//
// Events are produced on the engine's own thread and buffered by [Queue],
// which decouples that thread from the consuming application.
package events
