// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/summify-tui/internal/config"
	"github.com/jeranaias/summify-tui/internal/conversation"
	"github.com/jeranaias/summify-tui/internal/failure"
	"github.com/jeranaias/summify-tui/internal/model"
	"github.com/jeranaias/summify-tui/internal/summarizer"
)

const validURL = "https://www.youtube.com/watch?v=abc"

// =============================================================================
// TEST DOUBLES
// =============================================================================

type fakeClient struct {
	calls atomic.Int32
	fn    func(ctx context.Context, url string) (*summarizer.SummaryResponse, error)
}

func (f *fakeClient) Summarize(ctx context.Context, url string) (*summarizer.SummaryResponse, error) {
	f.calls.Add(1)
	return f.fn(ctx, url)
}

func replying(summary string) *fakeClient {
	return &fakeClient{fn: func(context.Context, string) (*summarizer.SummaryResponse, error) {
		return &summarizer.SummaryResponse{Summary: summary}, nil
	}}
}

// blocking returns a client that signals started, then waits for ctx.
func blocking(started chan<- struct{}) *fakeClient {
	return &fakeClient{fn: func(ctx context.Context, _ string) (*summarizer.SummaryResponse, error) {
		started <- struct{}{}
		<-ctx.Done()
		return nil, &summarizer.ClientError{Type: summarizer.ErrTypeCancelled, Message: "request cancelled", Cause: context.Cause(ctx)}
	}}
}

type recordingInput struct {
	clears atomic.Int32
}

func (r *recordingInput) Clear() { r.clears.Add(1) }

// busyRecorder captures busy transitions published by the store.
type busyRecorder struct {
	mu     sync.Mutex
	states []bool
}

func recordBusy(t *testing.T, store *conversation.Store) *busyRecorder {
	t.Helper()
	rec := &busyRecorder{}
	unsub := store.Subscribe(func(ev conversation.Event) {
		if ev.Type != conversation.EventBusyChanged {
			return
		}
		rec.mu.Lock()
		rec.states = append(rec.states, ev.Busy)
		rec.mu.Unlock()
	})
	t.Cleanup(unsub)
	return rec
}

func (r *busyRecorder) get() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.states...)
}

func endpoint(timeout time.Duration) config.Endpoint {
	return config.Endpoint{Environment: "development", BaseURL: "http://localhost:8000", Timeout: timeout}
}

func newOrchestrator(t *testing.T, client Summarizer, opts ...Option) (*Orchestrator, *conversation.Store, *recordingInput) {
	t.Helper()
	store := conversation.New()
	input := &recordingInput{}
	all := append([]Option{WithEndpoint(endpoint(time.Second)), WithInputBuffer(input)}, opts...)
	orch, err := New(store, client, all...)
	require.NoError(t, err)
	return orch, store, input
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

func TestNew_Validation(t *testing.T) {
	store := conversation.New()

	_, err := New(nil, replying("x"))
	assert.Error(t, err)

	_, err = New(store, nil)
	assert.Error(t, err)

	_, err = New(store, replying("x"), WithEndpoint(endpoint(0)))
	assert.Error(t, err)

	orch, err := New(store, replying("x"))
	require.NoError(t, err)
	assert.Equal(t, config.Default().Endpoint(), orch.Endpoint())
}

// =============================================================================
// GATE
// =============================================================================

func TestSubmit_Success(t *testing.T) {
	client := replying("X")
	orch, store, input := newOrchestrator(t, client)
	busy := recordBusy(t, store)

	out := orch.Submit(context.Background(), "  "+validURL+"\n")

	assert.Equal(t, StatusSucceeded, out.Status)
	assert.True(t, out.OK())
	assert.Equal(t, "X", out.Message)
	assert.NotEmpty(t, out.SessionID)

	want := []model.Message{
		model.GreetingMessage(),
		model.UserMessage(validURL),
		model.BotMessage("X"),
	}
	if diff := cmp.Diff(want, store.Messages()); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}

	assert.False(t, store.IsBusy())
	assert.Equal(t, []bool{true, false}, busy.get())
	assert.Equal(t, int32(1), input.clears.Load())
	assert.Equal(t, int32(1), client.calls.Load())
}

func TestSubmit_IgnoredWhileBusy(t *testing.T) {
	client := replying("X")
	orch, store, input := newOrchestrator(t, client)
	store.SetBusy(true)

	out := orch.Submit(context.Background(), validURL)

	assert.Equal(t, StatusIgnored, out.Status)
	assert.Equal(t, 1, store.Len())
	assert.True(t, store.IsBusy())
	assert.Equal(t, int32(0), client.calls.Load())
	assert.Equal(t, int32(0), input.clears.Load())
}

func TestSubmit_IgnoredWhenBlank(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t"} {
		client := replying("X")
		orch, store, input := newOrchestrator(t, client)

		out := orch.Submit(context.Background(), raw)

		assert.Equal(t, StatusIgnored, out.Status, "input %q", raw)
		assert.Equal(t, 1, store.Len())
		assert.Equal(t, int32(0), input.clears.Load())
	}
}

func TestSubmit_InvalidURL(t *testing.T) {
	client := replying("X")
	orch, store, input := newOrchestrator(t, client)
	busy := recordBusy(t, store)

	out := orch.Submit(context.Background(), "https://vimeo.com/abc")

	assert.Equal(t, StatusRejected, out.Status)
	assert.Equal(t, failure.KindValidationRejected, out.Kind)
	assert.Equal(t, failure.MsgValidation, out.Message)

	want := []model.Message{
		model.GreetingMessage(),
		model.UserMessage("https://vimeo.com/abc"),
		model.BotMessage("Please provide a valid YouTube URL (youtube.com or youtu.be)"),
	}
	if diff := cmp.Diff(want, store.Messages()); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}

	assert.Empty(t, busy.get(), "busy must never be raised")
	assert.Equal(t, int32(0), client.calls.Load())
	assert.Equal(t, int32(1), input.clears.Load())
}

func TestSubmit_ConcurrentAdmitsExactlyOne(t *testing.T) {
	const n = 16
	release := make(chan struct{})
	client := &fakeClient{fn: func(ctx context.Context, _ string) (*summarizer.SummaryResponse, error) {
		<-release
		return &summarizer.SummaryResponse{Summary: "only"}, nil
	}}
	orch, store, _ := newOrchestrator(t, client, WithEndpoint(endpoint(5*time.Second)))

	start := make(chan struct{})
	results := make(chan Outcome, n)
	for i := 0; i < n; i++ {
		go func() {
			<-start
			results <- orch.Submit(context.Background(), validURL)
		}()
	}
	close(start)

	// Everyone but the winner is turned away while the winner is blocked.
	for i := 0; i < n-1; i++ {
		out := <-results
		assert.Equal(t, StatusIgnored, out.Status)
	}
	close(release)
	winner := <-results

	assert.Equal(t, StatusSucceeded, winner.Status)
	assert.Equal(t, int32(1), client.calls.Load())
	assert.Equal(t, 3, store.Len())
	assert.False(t, store.IsBusy())
}

// =============================================================================
// DEADLINE AND CANCELLATION
// =============================================================================

func TestSubmit_Timeout(t *testing.T) {
	causes := make(chan error, 1)
	client := &fakeClient{fn: func(ctx context.Context, _ string) (*summarizer.SummaryResponse, error) {
		<-ctx.Done()
		causes <- context.Cause(ctx)
		return nil, &summarizer.ClientError{Type: summarizer.ErrTypeCancelled, Message: "request cancelled", Cause: context.Cause(ctx)}
	}}
	orch, store, input := newOrchestrator(t, client, WithEndpoint(endpoint(30*time.Millisecond)))

	out := orch.Submit(context.Background(), validURL)

	assert.Equal(t, StatusFailed, out.Status)
	assert.Equal(t, failure.KindTimeout, out.Kind)
	assert.Equal(t, "❌ "+failure.MsgTimeout, out.Message)
	assert.Equal(t, 3, store.Len())

	last, _ := store.Last()
	assert.Equal(t, model.BotMessage("❌ "+failure.MsgTimeout), last)
	assert.False(t, store.IsBusy())
	assert.Equal(t, int32(1), input.clears.Load())

	select {
	case cause := <-causes:
		assert.ErrorIs(t, cause, ErrDeadlineElapsed)
	case <-time.After(2 * time.Second):
		t.Fatal("request was not aborted")
	}
}

func TestSubmit_LateSuccessDiscarded(t *testing.T) {
	release := make(chan struct{})
	returned := make(chan struct{})
	client := &fakeClient{fn: func(ctx context.Context, _ string) (*summarizer.SummaryResponse, error) {
		defer close(returned)
		<-release // ignores ctx on purpose
		return &summarizer.SummaryResponse{Summary: "late"}, nil
	}}
	orch, store, input := newOrchestrator(t, client, WithEndpoint(endpoint(20*time.Millisecond)))
	busy := recordBusy(t, store)

	out := orch.Submit(context.Background(), validURL)
	require.Equal(t, failure.KindTimeout, out.Kind)

	close(release)
	<-returned
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, 3, store.Len())
	for _, m := range store.Messages() {
		assert.NotEqual(t, "late", m.Text)
	}
	assert.Equal(t, []bool{true, false}, busy.get(), "cleanup runs once")
	assert.Equal(t, int32(1), input.clears.Load())
}

func TestCancel(t *testing.T) {
	started := make(chan struct{}, 1)
	orch, store, input := newOrchestrator(t, blocking(started), WithEndpoint(endpoint(5*time.Second)))

	assert.False(t, orch.Cancel(), "nothing to cancel when idle")

	done := make(chan Outcome, 1)
	go func() { done <- orch.Submit(context.Background(), validURL) }()
	<-started

	assert.True(t, orch.Store().IsBusy())
	assert.True(t, orch.Cancel())

	out := <-done
	assert.Equal(t, StatusFailed, out.Status)
	assert.Equal(t, failure.KindUnknown, out.Kind)
	assert.Equal(t, "❌ Request cancelled.", out.Message)
	assert.Equal(t, 3, store.Len())
	assert.False(t, orch.Store().IsBusy())
	assert.Equal(t, int32(1), input.clears.Load())
	assert.False(t, orch.Cancel())
}

func TestSubmit_ParentContextCancelled(t *testing.T) {
	started := make(chan struct{}, 1)
	orch, store, _ := newOrchestrator(t, blocking(started), WithEndpoint(endpoint(5*time.Second)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Outcome, 1)
	go func() { done <- orch.Submit(ctx, validURL) }()
	<-started
	cancel()

	out := <-done
	assert.Equal(t, failure.KindUnknown, out.Kind)
	assert.Equal(t, "❌ "+failure.MsgCancelled, out.Message)
	assert.False(t, store.IsBusy())
}

// =============================================================================
// FAILURE PATHS
// =============================================================================

func TestSubmit_FailureClassification(t *testing.T) {
	tests := []struct {
		name     string
		resp     *summarizer.SummaryResponse
		err      error
		wantKind failure.Kind
		wantMsg  string
	}{
		{
			name:     "captions detail is replaced by notice",
			err:      &summarizer.ClientError{Type: summarizer.ErrTypeHTTPStatus, StatusCode: 400, Status: "Bad Request", Detail: "captions not found"},
			wantKind: failure.KindCaptionsUnavailable,
			wantMsg:  "❌ " + failure.MsgCaptionsUnavailable,
		},
		{
			name:     "server detail passes through",
			err:      &summarizer.ClientError{Type: summarizer.ErrTypeHTTPStatus, StatusCode: 500, Status: "Internal Server Error", Detail: "quota exhausted"},
			wantKind: failure.KindServerRejected,
			wantMsg:  "❌ quota exhausted",
		},
		{
			name:     "status text when no detail",
			err:      &summarizer.ClientError{Type: summarizer.ErrTypeHTTPStatus, StatusCode: 502, Status: "Bad Gateway"},
			wantKind: failure.KindServerRejected,
			wantMsg:  "❌ Bad Gateway",
		},
		{
			name:     "connection refused",
			err:      &summarizer.ClientError{Type: summarizer.ErrTypeTransport, Message: "request failed", Cause: errors.New("dial tcp 127.0.0.1:8000: connect: connection refused")},
			wantKind: failure.KindNetworkUnreachable,
			wantMsg:  "❌ Couldn't connect to server. Please check if the backend is running at http://localhost:8000",
		},
		{
			name:     "undecodable body",
			err:      &summarizer.ClientError{Type: summarizer.ErrTypeInvalidResponse, Message: "failed to decode response", Cause: errors.New("invalid character 'o'")},
			wantKind: failure.KindUnknown,
			wantMsg:  "❌ failed to decode response: invalid character 'o'",
		},
		{
			name:     "empty summary",
			resp:     &summarizer.SummaryResponse{Summary: "  "},
			wantKind: failure.KindEmptySummary,
			wantMsg:  "❌ No summary received from server",
		},
		{
			name:     "nil response without error",
			wantKind: failure.KindEmptySummary,
			wantMsg:  "❌ No summary received from server",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{fn: func(context.Context, string) (*summarizer.SummaryResponse, error) {
				return tt.resp, tt.err
			}}
			orch, store, input := newOrchestrator(t, client)

			out := orch.Submit(context.Background(), validURL)

			assert.Equal(t, StatusFailed, out.Status)
			assert.Equal(t, tt.wantKind, out.Kind)
			assert.Equal(t, tt.wantMsg, out.Message)

			last, ok := store.Last()
			require.True(t, ok)
			assert.Equal(t, model.BotMessage(tt.wantMsg), last)
			assert.Equal(t, 3, store.Len())
			assert.False(t, store.IsBusy())
			assert.Equal(t, int32(1), input.clears.Load())
		})
	}
}

func TestSubmit_PanicRecovered(t *testing.T) {
	client := &fakeClient{fn: func(context.Context, string) (*summarizer.SummaryResponse, error) {
		panic("boom")
	}}
	orch, store, _ := newOrchestrator(t, client)

	out := orch.Submit(context.Background(), validURL)

	assert.Equal(t, StatusFailed, out.Status)
	assert.Equal(t, failure.KindUnknown, out.Kind)
	assert.Equal(t, "❌ "+failure.MsgUnknown, out.Message)
	assert.False(t, store.IsBusy())
}

// =============================================================================
// SESSION AND ENDPOINT
// =============================================================================

func TestSession_DeadlineFromClock(t *testing.T) {
	t0 := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	started := make(chan struct{}, 1)
	orch, _, _ := newOrchestrator(t, blocking(started),
		WithEndpoint(endpoint(90*time.Second)),
		WithClock(func() time.Time { return t0 }),
	)
	orig := newSessionID
	newSessionID = func() string { return "session-1" }
	t.Cleanup(func() { newSessionID = orig })

	done := make(chan Outcome, 1)
	go func() { done <- orch.Submit(context.Background(), "youtu.be/abc") }()
	<-started

	sess, ok := orch.Current()
	require.True(t, ok)
	assert.Equal(t, "session-1", sess.ID)
	assert.Equal(t, "youtu.be/abc", sess.URL)
	assert.Equal(t, t0.Add(90*time.Second), sess.Deadline)
	assert.Equal(t, 30*time.Second, sess.Remaining(t0.Add(60*time.Second)))
	assert.Equal(t, time.Duration(0), sess.Remaining(t0.Add(time.Hour)))

	orch.Cancel()
	out := <-done
	assert.Equal(t, "session-1", out.SessionID)

	_, ok = orch.Current()
	assert.False(t, ok)
}

func TestSetEndpoint(t *testing.T) {
	orch, _, _ := newOrchestrator(t, replying("X"))

	prod := config.Endpoint{Environment: "production", BaseURL: "https://api.example.com", Timeout: 2 * time.Minute}
	orch.SetEndpoint(prod)
	assert.Equal(t, prod, orch.Endpoint())

	orch.SetEndpoint(config.Endpoint{Timeout: 0})
	assert.Equal(t, prod, orch.Endpoint(), "non-positive timeout ignored")
}

func TestSubmit_SequentialSessionsAfterSettle(t *testing.T) {
	orch, store, input := newOrchestrator(t, replying("X"))

	first := orch.Submit(context.Background(), validURL)
	second := orch.Submit(context.Background(), "youtu.be/xyz")

	assert.Equal(t, StatusSucceeded, first.Status)
	assert.Equal(t, StatusSucceeded, second.Status)
	assert.NotEqual(t, first.SessionID, second.SessionID)
	assert.Equal(t, 5, store.Len())
	assert.Equal(t, int32(2), input.clears.Load())

	store.Reset()
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, []model.Message{model.GreetingMessage()}, store.Messages())
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "ignored", StatusIgnored.String())
	assert.Equal(t, "rejected", StatusRejected.String())
	assert.Equal(t, "succeeded", StatusSucceeded.String())
	assert.Equal(t, "failed", StatusFailed.String())
}
