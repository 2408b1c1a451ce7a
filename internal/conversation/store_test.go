// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/summify-tui/internal/model"
)

func TestNew_StartsWithGreeting(t *testing.T) {
	s := New()
	require.Equal(t, 1, s.Len())
	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, model.GreetingMessage(), last)
	assert.False(t, s.IsBusy())
}

func TestAppend_PreservesOrder(t *testing.T) {
	s := New()
	s.Append(model.UserMessage("a"))
	s.Append(model.BotMessage("b"))
	s.Append(model.BotMessage("b"))

	want := []model.Message{
		model.GreetingMessage(),
		model.UserMessage("a"),
		model.BotMessage("b"),
		model.BotMessage("b"),
	}
	if diff := cmp.Diff(want, s.Messages()); diff != "" {
		t.Errorf("Messages() mismatch (-want +got):\n%s", diff)
	}
}

func TestMessages_ReturnsCopy(t *testing.T) {
	s := New()
	msgs := s.Messages()
	msgs[0] = model.UserMessage("tampered")
	last, _ := s.Last()
	assert.Equal(t, model.Greeting, last.Text)
}

func TestReset(t *testing.T) {
	for _, n := range []int{0, 1, 5, 50} {
		s := New()
		for i := 0; i < n; i++ {
			s.Append(model.UserMessage("x"))
		}
		s.Reset()
		require.Equal(t, 1, s.Len())
		if diff := cmp.Diff([]model.Message{model.GreetingMessage()}, s.Messages()); diff != "" {
			t.Errorf("after reset (-want +got):\n%s", diff)
		}
	}
}

func TestReset_LeavesBusyAlone(t *testing.T) {
	s := New()
	s.SetBusy(true)
	s.Reset()
	assert.True(t, s.IsBusy())
}

func TestLastBot(t *testing.T) {
	s := New()
	s.Append(model.BotMessage("summary"))
	s.Append(model.UserMessage("next"))
	last, ok := s.LastBot()
	require.True(t, ok)
	assert.Equal(t, "summary", last.Text)
}

func TestSubscribe_ReceivesEvents(t *testing.T) {
	s := New()
	var got []Event
	unsubscribe := s.Subscribe(func(ev Event) { got = append(got, ev) })

	s.Append(model.UserMessage("u"))
	s.SetBusy(true)
	s.SetBusy(true) // no change, no event
	s.SetBusy(false)
	s.Reset()

	want := []Event{
		{Type: EventAppended, Message: model.UserMessage("u"), Len: 2},
		{Type: EventBusyChanged, Len: 2, Busy: true},
		{Type: EventBusyChanged, Len: 2, Busy: false},
		{Type: EventReset, Message: model.GreetingMessage(), Len: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	unsubscribe()
	unsubscribe()
	s.Append(model.UserMessage("after"))
	assert.Len(t, got, len(want))
}

func TestSubscribe_ListenerCanReadStore(t *testing.T) {
	s := New()
	var seen int
	s.Subscribe(func(ev Event) { seen = s.Len() })
	s.Append(model.BotMessage("x"))
	assert.Equal(t, 2, seen)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Append(model.UserMessage("x"))
		}()
		go func() {
			defer wg.Done()
			_ = s.Messages()
			_ = s.IsBusy()
		}()
	}
	wg.Wait()
	assert.Equal(t, 51, s.Len())
}
