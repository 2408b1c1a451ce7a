// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jeranaias/summify-tui/internal/config"
	"github.com/jeranaias/summify-tui/internal/conversation"
	"github.com/jeranaias/summify-tui/internal/failure"
	"github.com/jeranaias/summify-tui/internal/model"
	"github.com/jeranaias/summify-tui/internal/summarizer"
	"github.com/jeranaias/summify-tui/internal/validate"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Summarizer performs the network call. *summarizer.Client implements it.
type Summarizer interface {
	Summarize(ctx context.Context, url string) (*summarizer.SummaryResponse, error)
}

// InputBuffer is the renderer's text input. Clear is called after every
// settled or rejected submission.
type InputBuffer interface {
	Clear()
}

// InputBufferFunc adapts a function to InputBuffer.
type InputBufferFunc func()

// Clear calls f.
func (f InputBufferFunc) Clear() { f() }

type noopInput struct{}

func (noopInput) Clear() {}

// =============================================================================
// OPTIONS
// =============================================================================

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithEndpoint sets the backend endpoint. The default is the development endpoint.
func WithEndpoint(ep config.Endpoint) Option {
	return func(o *Orchestrator) { o.endpoint = ep }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// WithInputBuffer sets the input buffer cleared after each submission.
func WithInputBuffer(in InputBuffer) Option {
	return func(o *Orchestrator) {
		if in != nil {
			o.input = in
		}
	}
}

// WithClock overrides the clock used for deadlines and elapsed times.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Orchestrator serializes submissions against one conversation store.
// It is safe for concurrent use; concurrent Submit calls admit exactly one.
type Orchestrator struct {
	store  *conversation.Store
	client Summarizer
	input  InputBuffer
	log    zerolog.Logger
	now    func() time.Time

	// mu guards the gate, the live session and the endpoint.
	mu       sync.Mutex
	session  *Session
	endpoint config.Endpoint
}

// New creates an Orchestrator for store that sends requests through client.
func New(store *conversation.Store, client Summarizer, opts ...Option) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("orchestrator: store is required")
	}
	if client == nil {
		return nil, errors.New("orchestrator: summarizer client is required")
	}

	o := &Orchestrator{
		store:    store,
		client:   client,
		input:    noopInput{},
		log:      zerolog.Nop(),
		now:      time.Now,
		endpoint: config.Default().Endpoint(),
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.endpoint.Timeout <= 0 {
		return nil, errors.Errorf("orchestrator: timeout must be positive, got %s", o.endpoint.Timeout)
	}
	return o, nil
}

// Store returns the conversation store.
func (o *Orchestrator) Store() *conversation.Store {
	return o.store
}

// Endpoint returns the endpoint the next session will use.
func (o *Orchestrator) Endpoint() config.Endpoint {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.endpoint
}

// SetEndpoint replaces the endpoint. An in-flight session keeps its deadline.
// Non-positive timeouts are ignored.
func (o *Orchestrator) SetEndpoint(ep config.Endpoint) {
	if ep.Timeout <= 0 {
		o.log.Warn().Dur("timeout", ep.Timeout).Msg("ignoring endpoint with non-positive timeout")
		return
	}
	o.mu.Lock()
	o.endpoint = ep
	o.mu.Unlock()
	o.log.Info().Str("env", ep.Environment).Str("base_url", ep.BaseURL).Dur("timeout", ep.Timeout).Msg("endpoint updated")
}

// Current returns the live session, if any.
func (o *Orchestrator) Current() (Session, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return Session{}, false
	}
	return *o.session, true
}

// Cancel aborts the in-flight submission. The submission settles as a
// cancelled failure. Returns false when nothing was in flight.
func (o *Orchestrator) Cancel() bool {
	o.mu.Lock()
	sess := o.session
	o.mu.Unlock()

	if sess == nil {
		return false
	}
	o.log.Info().Str("session", sess.ID).Msg("submission cancel requested")
	sess.cancel(ErrUserCancelled)
	return true
}

// =============================================================================
// SUBMIT
// =============================================================================

// taskResult is the single settlement of a request task.
type taskResult struct {
	resp     *summarizer.SummaryResponse
	err      error
	panicked bool
}

// Submit processes one user input and blocks until it settles.
// It never returns an error: every path ends in an Outcome.
func (o *Orchestrator) Submit(ctx context.Context, raw string) Outcome {
	trimmed := strings.TrimSpace(raw)

	o.mu.Lock()
	if trimmed == "" || o.session != nil || o.store.IsBusy() {
		o.mu.Unlock()
		return Outcome{Status: StatusIgnored}
	}

	if !validate.IsYouTubeURL(trimmed) {
		o.mu.Unlock()
		return o.reject(trimmed)
	}

	ep := o.endpoint
	started := o.now()
	sessCtx, cancel := context.WithCancelCause(ctx)
	sess := &Session{
		ID:       newSessionID(),
		URL:      trimmed,
		Started:  started,
		Deadline: started.Add(ep.Timeout),
		cancel:   cancel,
	}
	// Reserving the session closes the gate before the lock is released.
	o.session = sess
	o.mu.Unlock()

	defer o.finish(sess)

	o.store.Append(model.UserMessage(trimmed))
	o.store.SetBusy(true)

	o.log.Info().
		Str("session", sess.ID).
		Str("url", trimmed).
		Str("base_url", ep.BaseURL).
		Dur("timeout", ep.Timeout).
		Msg("submission started")

	results := make(chan taskResult, 1)
	go o.run(sessCtx, trimmed, results)

	timer := time.NewTimer(ep.Timeout)
	defer timer.Stop()

	var out Outcome
	select {
	case res := <-results:
		out = o.settle(sessCtx, sess, ep, res)
	case <-timer.C:
		cancel(ErrDeadlineElapsed)
		out = o.fail(sess, ep, failure.Classify(failure.Failure{Reason: failure.ReasonDeadline}, ep.BaseURL))
	case <-sessCtx.Done():
		out = o.fail(sess, ep, cancelClassification(sessCtx, ep))
	}

	out.SessionID = sess.ID
	out.Elapsed = o.now().Sub(started)

	o.log.Info().
		Str("session", sess.ID).
		Stringer("status", out.Status).
		Str("kind", out.Kind.String()).
		Dur("elapsed", out.Elapsed).
		Msg("submission settled")

	return out
}

// reject records an input that is not a YouTube URL. No session is created.
func (o *Orchestrator) reject(trimmed string) Outcome {
	c := failure.Validation()
	o.store.Append(model.UserMessage(trimmed))
	o.store.Append(model.BotMessage(c.Message))
	o.input.Clear()

	o.log.Debug().Str("input", trimmed).Msg("submission rejected")
	return Outcome{Status: StatusRejected, Kind: c.Kind, Message: c.Message}
}

// run is the request task. It settles exactly once into results, which is
// buffered so a late settlement never blocks.
func (o *Orchestrator) run(ctx context.Context, url string, results chan<- taskResult) {
	var res taskResult
	defer func() {
		if r := recover(); r != nil {
			o.log.Error().Interface("panic", r).Msg("summarizer call panicked")
			res = taskResult{err: fmt.Errorf("summarizer panic: %v", r), panicked: true}
		}
		results <- res
	}()
	res.resp, res.err = o.client.Summarize(ctx, url)
}

// settle handles a task result that won the race.
func (o *Orchestrator) settle(ctx context.Context, sess *Session, ep config.Endpoint, res taskResult) Outcome {
	switch {
	case res.panicked:
		return o.fail(sess, ep, failure.Classify(failure.Failure{Reason: failure.ReasonOther}, ep.BaseURL))

	case res.err == nil && res.resp != nil:
		return o.succeed(sess, ep, res.resp)

	case res.err == nil:
		return o.fail(sess, ep, failure.Classify(failure.Failure{Reason: failure.ReasonEmptySummary}, ep.BaseURL))

	case ctx.Err() != nil:
		// The task saw the cancellation before Submit did.
		return o.fail(sess, ep, cancelClassification(ctx, ep))

	default:
		o.log.Debug().Str("session", sess.ID).Err(res.err).Msg("summarizer call failed")
		return o.fail(sess, ep, failure.Classify(toFailure(res.err), ep.BaseURL))
	}
}

func (o *Orchestrator) succeed(sess *Session, ep config.Endpoint, resp *summarizer.SummaryResponse) Outcome {
	evt := o.log.Debug().Str("session", sess.ID).Int("transcript_length", resp.TranscriptLength)
	if len(resp.ProxiesStatus) > 0 {
		evt = evt.RawJSON("proxies_status", resp.ProxiesStatus)
	}
	evt.Msg("summary received")

	if !resp.HasSummary() {
		return o.fail(sess, ep, failure.Classify(failure.Failure{Reason: failure.ReasonEmptySummary}, ep.BaseURL))
	}

	o.store.Append(model.BotMessage(resp.Summary))
	return Outcome{Status: StatusSucceeded, Message: resp.Summary}
}

func (o *Orchestrator) fail(sess *Session, ep config.Endpoint, c failure.Classification) Outcome {
	text := c.Render()
	o.store.Append(model.BotMessage(text))
	return Outcome{Status: StatusFailed, Kind: c.Kind, Message: text}
}

// finish runs exactly once per accepted session.
func (o *Orchestrator) finish(sess *Session) {
	sess.cancel(nil)

	o.mu.Lock()
	if o.session == sess {
		o.session = nil
	}
	o.mu.Unlock()

	o.store.SetBusy(false)
	o.input.Clear()
}

// cancelClassification maps the cause of a cancelled session to a notice.
func cancelClassification(ctx context.Context, ep config.Endpoint) failure.Classification {
	cause := context.Cause(ctx)
	if errors.Is(cause, ErrDeadlineElapsed) || errors.Is(cause, context.DeadlineExceeded) {
		return failure.Classify(failure.Failure{Reason: failure.ReasonDeadline}, ep.BaseURL)
	}
	return failure.Cancelled()
}

// toFailure converts a summarizer error into classifier input.
func toFailure(err error) failure.Failure {
	var cerr *summarizer.ClientError
	if errors.As(err, &cerr) {
		switch cerr.Type {
		case summarizer.ErrTypeHTTPStatus:
			return failure.Failure{
				Reason:     failure.ReasonHTTPStatus,
				StatusCode: cerr.StatusCode,
				StatusText: cerr.Status,
				Detail:     cerr.Detail,
			}
		case summarizer.ErrTypeTransport:
			return failure.Failure{Reason: failure.ReasonTransport, Description: err.Error()}
		}
	}
	return failure.Failure{Reason: failure.ReasonOther, Description: err.Error()}
}
