package lens

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// AskFunc sends one question to the console copilot.
type AskFunc func(ctx context.Context, question string, f FilterState) (Answer, error)

// Session is the assistant conversation: an append-only ordered message log
// plus at most one pending exchange. A Send while an exchange is pending is
// rejected so replies never interleave.
//
// Every exchange resolves through a strictly ordered three-tier chain: the
// console copilot first, the local Responder if the console fails, and a
// fixed generic acknowledgment if that also fails or is absent. Whatever
// happens, exactly one assistant message is appended per accepted Send.
type Session struct {
	ask       AskFunc
	responder Responder
	debug     *DebugLogger

	mu       sync.Mutex
	messages []ChatMessage
	pending  bool
	now      func() time.Time
}

// NewSession creates an empty session. ask may be nil (offline mode), as may
// responder; the generic acknowledgment tier always remains.
func NewSession(ask AskFunc, responder Responder, debug *DebugLogger) *Session {
	return &Session{
		ask:       ask,
		responder: responder,
		debug:     debug,
		now:       time.Now,
	}
}

// Send appends the question as a user message, resolves an answer through
// the fallback chain, appends the assistant reply, and returns it.
// Returns ErrExchangePending if a previous exchange has not resolved.
func (s *Session) Send(ctx context.Context, question string, f FilterState) (ChatMessage, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return ChatMessage{}, ErrEmptyQuestion
	}

	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return ChatMessage{}, ErrExchangePending
	}
	s.pending = true
	s.messages = append(s.messages, ChatMessage{
		ID:        newMessageID(),
		Role:      RoleUser,
		Content:   question,
		Timestamp: s.now(),
	})
	s.mu.Unlock()

	answer := s.resolve(ctx, question, f)
	reply := ChatMessage{
		ID:        newMessageID(),
		Role:      RoleAssistant,
		Content:   answer.Text,
		Timestamp: s.now(),
		Metadata:  metadataFor(answer),
	}

	s.mu.Lock()
	s.messages = append(s.messages, reply)
	s.pending = false
	s.mu.Unlock()

	return reply, nil
}

// resolve walks the three tiers in order. Each tier is attempted only after
// the previous one signaled failure, never in parallel.
func (s *Session) resolve(ctx context.Context, question string, f FilterState) Answer {
	if s.ask != nil {
		answer, err := s.ask(ctx, question, f)
		if err == nil {
			return answer
		}
		s.debug.LogError("copilot", err)
	}

	if s.responder != nil {
		answer, err := s.responder.Respond(question, f)
		if err == nil {
			return answer
		}
		s.debug.LogError("local responder", err)
	}

	return Answer{Text: GenericAssistantReply}
}

// Pending reports whether an exchange is currently unresolved.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Messages returns a copy of the conversation log in order.
func (s *Session) Messages() []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages in the log.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Seed installs an initial transcript. It only applies to an empty session
// with no pending exchange; a populated log is never rewritten.
func (s *Session) Seed(msgs []ChatMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending || len(s.messages) > 0 {
		return false
	}
	s.messages = make([]ChatMessage, len(msgs))
	copy(s.messages, msgs)
	for i := range s.messages {
		if s.messages[i].ID == "" {
			s.messages[i].ID = newMessageID()
		}
	}
	return true
}

// Clear drops the conversation. No-op while an exchange is pending.
func (s *Session) Clear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending {
		return false
	}
	s.messages = nil
	return true
}

// metadataFor derives assistant-message metadata from an answer. Suggestions
// stay data-only: invoking one later means dispatching its Action, nothing in
// the session itself runs effects.
func metadataFor(answer Answer) *MessageMetadata {
	meta := &MessageMetadata{
		Confidence:  answer.Confidence,
		Sources:     answer.Sources,
		Suggestions: answer.Suggestions,
	}

	if len(meta.Suggestions) == 0 && answer.Action != nil {
		meta.Suggestions = []ActionSuggestion{
			{Kind: SuggestExplain, Label: "Explain", Action: *answer.Action},
		}
	}
	if answer.Highlight != nil {
		meta.Suggestions = append(meta.Suggestions, ActionSuggestion{
			Kind:  SuggestSimulate,
			Label: "Highlight",
			Action: Action{
				Type: ActionHighlight,
				Params: map[string]any{
					"date":  answer.Highlight.Date,
					"sku":   answer.Highlight.SKU,
					"store": answer.Highlight.Store,
				},
			},
		})
	}

	if meta.Confidence == nil && meta.Sources == nil && len(meta.Suggestions) == 0 {
		return nil
	}
	return meta
}

// newMessageID returns a lexicographically sortable unique ID, so the log
// order is recoverable from IDs alone.
func newMessageID() string {
	return ulid.Make().String()
}
