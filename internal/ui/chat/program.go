// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/summify-tui/internal/conversation"
)

// Sender delivers messages to a running program from any goroutine.
// *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// =============================================================================
// INPUT BUFFER
// =============================================================================

// ProgramInput is the orchestrator's view of the text field. Clear is called
// from the request goroutine, so it posts a ClearInputMsg instead of touching
// the model directly. Calls before Bind are dropped.
type ProgramInput struct {
	mu     sync.Mutex
	sender Sender
}

// Bind sets the program that receives ClearInputMsg.
func (in *ProgramInput) Bind(s Sender) {
	in.mu.Lock()
	in.sender = s
	in.mu.Unlock()
}

// Clear implements orchestrator.InputBuffer.
func (in *ProgramInput) Clear() {
	in.mu.Lock()
	s := in.sender
	in.mu.Unlock()
	if s != nil {
		s.Send(ClearInputMsg{})
	}
}

// Forward relays every store event to s as a StoreEventMsg.
func Forward(store *conversation.Store, s Sender) (unsubscribe func()) {
	return store.Subscribe(func(ev conversation.Event) {
		s.Send(StoreEventMsg{Event: ev})
	})
}

// =============================================================================
// PROGRAM
// =============================================================================

// Program wraps a tea.Program wired to the conversation store.
type Program struct {
	prog  *tea.Program
	store *conversation.Store
}

// NewProgram creates the full-screen program for m. input, when non-nil, is
// bound so the orchestrator can clear the text field.
func NewProgram(ctx context.Context, m Model, input *ProgramInput, opts ...tea.ProgramOption) *Program {
	base := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	}
	prog := tea.NewProgram(m, append(base, opts...)...)
	if input != nil {
		input.Bind(prog)
	}
	return &Program{prog: prog, store: m.store}
}

// Send delivers msg to the running program. It is safe to call from any
// goroutine and returns immediately once the program has exited.
func (p *Program) Send(msg tea.Msg) {
	p.prog.Send(msg)
}

// Run blocks until the user quits or the context ends.
func (p *Program) Run() error {
	unsubscribe := Forward(p.store, p.prog)
	defer unsubscribe()
	_, err := p.prog.Run()
	return err
}
