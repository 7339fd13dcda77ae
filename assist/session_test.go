package assist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/voicekit/assist-core/assist/events"
	"github.com/voicekit/assist-core/assist/native"
)

type fakeInstance struct {
	mu    sync.Mutex
	calls []string

	startCalls atomic.Int32

	tokenMu sync.Mutex
	tokens  [][]byte
}

func (f *fakeInstance) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeInstance) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeInstance) Start() {
	f.startCalls.Add(1)
	f.record("start")
}

func (f *fakeInstance) SetAccessToken(token []byte) {
	f.tokenMu.Lock()
	f.tokens = append(f.tokens, append([]byte(nil), token...))
	f.tokenMu.Unlock()
	f.record("set_access_token")
}

func (f *fakeInstance) SetMicMute(muted bool) {
	f.record(fmt.Sprintf("set_mic_mute(%t)", muted))
}

func (f *fakeInstance) StartConversation() { f.record("start_conversation") }
func (f *fakeInstance) StopConversation()  { f.record("stop_conversation") }
func (f *fakeInstance) Destroy()           { f.record("destroy") }

type fakeBinding struct {
	instance *fakeInstance
	callback native.Callback
	err      error
}

func (f *fakeBinding) NewInstance(callback native.Callback) (native.Instance, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.callback = callback
	return f.instance, nil
}

func newFakeBinding() *fakeBinding {
	return &fakeBinding{instance: &fakeInstance{}}
}

type fakeRefresher struct {
	startCalls atomic.Int32
	stopCalls  atomic.Int32
	stopErr    error
	onStop     func()
	apply      func(token string) error
}

func (f *fakeRefresher) Start(ctx context.Context, apply func(token string) error) error {
	f.startCalls.Add(1)
	f.apply = apply
	return nil
}

func (f *fakeRefresher) Stop() error {
	f.stopCalls.Add(1)
	if f.onStop != nil {
		f.onStop()
	}
	return f.stopErr
}

func TestNewFailsWhenInstanceCreationFails(t *testing.T) {
	binding := newFakeBinding()
	binding.err = errors.New("engine exploded")

	if _, err := New(binding); err == nil {
		t.Fatalf("expected construction to fail when the binding fails")
	}
}

func TestNewPushesInitialAccessToken(t *testing.T) {
	binding := newFakeBinding()

	session, err := New(binding, WithAccessToken("ya29.token"))
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}
	defer session.Close()

	binding.instance.tokenMu.Lock()
	defer binding.instance.tokenMu.Unlock()
	if len(binding.instance.tokens) != 1 || string(binding.instance.tokens[0]) != "ya29.token" {
		t.Fatalf("expected initial token push, got %q", binding.instance.tokens)
	}
}

func TestNewReleasesInstanceWhenInitialTokenIsInvalid(t *testing.T) {
	binding := newFakeBinding()

	_, err := New(binding, WithAccessToken("žeton"))
	if !errors.Is(err, ErrNonASCIIToken) {
		t.Fatalf("expected ErrNonASCIIToken, got %v", err)
	}

	calls := binding.instance.recorded()
	if len(calls) != 1 || calls[0] != "destroy" {
		t.Fatalf("expected only the destroy call on the failed construction path, got %v", calls)
	}
}

func TestStartReturnsLiveEventSequence(t *testing.T) {
	binding := newFakeBinding()
	session, err := New(binding)
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}
	defer session.Close()

	seq, err := session.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	if got := binding.instance.startCalls.Load(); got != 1 {
		t.Fatalf("expected one native start call, got %d", got)
	}

	binding.callback(int32(events.RecognizingSpeechFinished), []byte(`{"text":"what time is it"}`))

	received := make(chan events.Event, 1)
	go func() {
		for event := range seq {
			received <- event
			return
		}
	}()

	select {
	case event := <-received:
		if event.Kind() != events.RecognizingSpeechFinished {
			t.Fatalf("expected %s, got %s", events.RecognizingSpeechFinished, event.Kind())
		}
		if got := event.Payload()["text"]; got != "what time is it" {
			t.Fatalf("expected payload text %q, got %v", "what time is it", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected delivered event to reach the consumer")
	}
}

func TestStartTwiceFailsWithoutSecondNativeStart(t *testing.T) {
	binding := newFakeBinding()
	session, err := New(binding)
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}
	defer session.Close()

	if _, err := session.Start(context.Background()); err != nil {
		t.Fatalf("unexpected first start error: %v", err)
	}

	_, err = session.Start(context.Background())
	if !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected double start to be an invalid-state error, got %v", err)
	}
	if got := binding.instance.startCalls.Load(); got != 1 {
		t.Fatalf("expected exactly one native start call, got %d", got)
	}
}

func TestStartStartsConfiguredRefresher(t *testing.T) {
	binding := newFakeBinding()
	refresher := &fakeRefresher{}
	session, err := New(binding, WithCredentialRefresher(refresher))
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}
	defer session.Close()

	if _, err := session.Start(context.Background()); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	if got := refresher.startCalls.Load(); got != 1 {
		t.Fatalf("expected refresher start once, got %d", got)
	}

	if err := refresher.apply("refreshed-token"); err != nil {
		t.Fatalf("unexpected apply error: %v", err)
	}
	binding.instance.tokenMu.Lock()
	defer binding.instance.tokenMu.Unlock()
	if len(binding.instance.tokens) != 1 || string(binding.instance.tokens[0]) != "refreshed-token" {
		t.Fatalf("expected refreshed token to reach the engine, got %q", binding.instance.tokens)
	}
}

func TestCloseStopsRefresherBeforeReleasingHandle(t *testing.T) {
	binding := newFakeBinding()
	refresher := &fakeRefresher{}
	refresher.onStop = func() {
		if calls := binding.instance.recorded(); len(calls) != 0 {
			t.Errorf("expected refresher stop before any teardown engine call, got %v", calls)
		}
	}

	session, err := New(binding, WithCredentialRefresher(refresher))
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}

	if err := session.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
	if got := refresher.stopCalls.Load(); got != 1 {
		t.Fatalf("expected refresher stop once, got %d", got)
	}
	calls := binding.instance.recorded()
	if len(calls) != 1 || calls[0] != "destroy" {
		t.Fatalf("expected exactly one destroy call, got %v", calls)
	}
}

func TestCloseReleasesHandleEvenWhenRefresherStopFails(t *testing.T) {
	binding := newFakeBinding()
	refresher := &fakeRefresher{stopErr: errors.New("refresher stuck")}

	session, err := New(binding, WithCredentialRefresher(refresher))
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}

	closeErr := session.Close()
	if closeErr == nil {
		t.Fatalf("expected close to report the refresher failure")
	}
	calls := binding.instance.recorded()
	if len(calls) != 1 || calls[0] != "destroy" {
		t.Fatalf("expected destroy despite refresher failure, got %v", calls)
	}
}

func TestCloseIsIdempotentAndDestroysOnce(t *testing.T) {
	binding := newFakeBinding()
	session, err := New(binding)
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}

	if err := session.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("unexpected second close error: %v", err)
	}

	destroys := 0
	for _, call := range binding.instance.recorded() {
		if call == "destroy" {
			destroys++
		}
	}
	if destroys != 1 {
		t.Fatalf("expected exactly one destroy call, got %d", destroys)
	}
}

func TestCloseEndsEventSequence(t *testing.T) {
	binding := newFakeBinding()
	session, err := New(binding)
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}

	seq, err := session.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	binding.callback(int32(events.ConversationTurnStarted), nil)
	binding.callback(int32(events.ConversationTurnFinished), []byte(`{"with_follow_on_turn":false}`))

	if err := session.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}

	consumed := 0
	for range seq {
		consumed++
	}
	if consumed != 2 {
		t.Fatalf("expected sequence to end after the 2 buffered events, got %d", consumed)
	}
}

func TestStartAfterCloseFails(t *testing.T) {
	binding := newFakeBinding()
	session, err := New(binding)
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}

	if err := session.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}

	if _, err := session.Start(context.Background()); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
	if got := binding.instance.startCalls.Load(); got != 0 {
		t.Fatalf("expected no native start after close, got %d", got)
	}
}
