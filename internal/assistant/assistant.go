// Package assistant implements the conversational campaign assistant. Every
// turn re-sends the whole campaign context plus the last few messages; there
// is no incremental model-side state. Quick actions are two-turn: the
// assistant first asks for preferences, then answers the next message with a
// deliverable-specific prompt.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fpang/campaign-intel/internal/assets"
	"github.com/fpang/campaign-intel/internal/llm"
	"github.com/fpang/campaign-intel/internal/metrics"
	"github.com/fpang/campaign-intel/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RecentMessages is how many prior messages each prompt carries.
const RecentMessages = 5

// DefaultCampaignType labels saved sessions that ran without a campaign.
const DefaultCampaignType = "General PR"

var (
	ErrSessionNotFound = errors.New("chat session not found")
	ErrUnknownAction   = errors.New("unknown quick action")
	ErrEmptyMessage    = errors.New("message is empty")

	errNoGenerator = errors.New("no language model configured")
)

// Session is one conversation. Its fields are only read or written with mu
// held; callers receive copies via Snapshot.
type Session struct {
	mu       sync.Mutex
	id       string
	messages []store.Message
	context  *Context
	// pending is the quick action awaiting the user's preferences.
	pending *Action
}

// SessionView is a point-in-time copy of a session.
type SessionView struct {
	ID            string          `json:"id"`
	Messages      []store.Message `json:"messages"`
	PendingAction string          `json:"pendingAction,omitempty"`
	HasContext    bool            `json:"hasContext"`
}

func (s *Session) view() SessionView {
	v := SessionView{
		ID:         s.id,
		Messages:   slices.Clone(s.messages),
		HasContext: s.context.HasData(),
	}
	if s.pending != nil {
		v.PendingAction = s.pending.ID
	}
	return v
}

// Assistant owns the open sessions and the history store they are saved to.
type Assistant struct {
	gen   llm.Generator
	store store.Store
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// New returns an Assistant. gen may be nil, in which case every reply is an
// inline error.
func New(gen llm.Generator, st store.Store) *Assistant {
	return &Assistant{
		gen:      gen,
		store:    st,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

func (a *Assistant) message(role, content string) store.Message {
	return store.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: a.now().UTC(),
	}
}

// register adds s under a unique ID derived from the current time.
func (a *Assistant) register(s *Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if s.id == "" {
		ms := a.now().UnixMilli()
		for {
			s.id = "session_" + strconv.FormatInt(ms, 10)
			if _, taken := a.sessions[s.id]; !taken {
				break
			}
			ms++
		}
	}
	a.sessions[s.id] = s
	metrics.ChatSessions.Set(float64(len(a.sessions)))
}

// Open starts a session with a welcome message. c may be nil.
func (a *Assistant) Open(c *Context) SessionView {
	s := &Session{context: c}
	s.messages = []store.Message{a.message(store.RoleAssistant, welcome(c))}
	a.register(s)
	log.Info().Str("session", s.id).Bool("has_context", c.HasData()).Msg("Chat session opened")
	return s.view()
}

func (a *Assistant) session(id string) (*Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Session returns a copy of an open session.
func (a *Assistant) Session(id string) (SessionView, error) {
	s, err := a.session(id)
	if err != nil {
		return SessionView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(), nil
}

// Send appends the user's text and returns the assistant's reply. Model
// failures become an inline reply with IsError set rather than an error.
func (a *Assistant) Send(ctx context.Context, id, text string) (store.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return store.Message{}, ErrEmptyMessage
	}
	s, err := a.session(id)
	if err != nil {
		return store.Message{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	recent := recentLines(s.messages)
	s.messages = append(s.messages, a.message(store.RoleUser, text))

	var prompt, kind string
	if action := s.pending; action != nil {
		s.pending = nil
		prompt, kind = action.prompt(s.context, text), "action."+action.ID
	} else {
		prompt, kind = a.chatPrompt(s.context, recent, text), "chat"
	}

	reply := a.generate(ctx, s.id, kind, prompt)
	s.messages = append(s.messages, reply)
	return reply, nil
}

// QuickAction starts the two-turn flow for actionID: it records the user's
// selection and returns the preference question.
func (a *Assistant) QuickAction(id, actionID string) (store.Message, error) {
	action, ok := lookupAction(actionID)
	if !ok {
		return store.Message{}, fmt.Errorf("%w: %q", ErrUnknownAction, actionID)
	}
	s, err := a.session(id)
	if err != nil {
		return store.Message{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, a.message(store.RoleUser, action.userLine()))
	question := a.message(store.RoleAssistant, action.question(s.context))
	s.messages = append(s.messages, question)
	s.pending = &action
	log.Debug().Str("session", s.id).Str("action", action.ID).Msg("Awaiting quick action preferences")
	return question, nil
}

func (a *Assistant) chatPrompt(c *Context, recent []string, text string) string {
	if !c.HasData() {
		return assets.RenderGeneralPrompt(assets.GeneralData{Recent: recent, Request: text})
	}
	return assets.RenderAssistantPrompt(assets.AssistantData{
		Campaign:        c.Input.PromptData(),
		Provider:        c.provider(),
		KeyFindings:     c.Analysis.KeyFindings(),
		Recommendations: c.Analysis.ImmediateRecommendations(),
		AnalysisJSON:    indentJSON(c.Analysis),
		AnalyticsJSON:   c.analyticsJSON(),
		Recent:          recent,
		Request:         text,
	})
}

func (a *Assistant) generate(ctx context.Context, sessionID, kind, prompt string) store.Message {
	start := time.Now()
	var (
		text     string
		err      error
		provider string
	)
	if a.gen == nil {
		err = errNoGenerator
	} else {
		provider = a.gen.Name()
		text, err = a.gen.Generate(ctx, prompt)
	}

	source := provider
	if err != nil {
		source = "error"
	}
	metrics.RecordStage("assistant."+kind, source, time.Since(start))

	if err != nil {
		log.Warn().Err(err).
			Str("session", sessionID).
			Str("kind", llm.KindOf(err).String()).
			Msg("Assistant reply failed, returning inline error")
		m := a.message(store.RoleAssistant, errorReply(provider, err))
		m.IsError = true
		return m
	}
	return a.message(store.RoleAssistant, strings.TrimSpace(text))
}

// recentLines formats the last RecentMessages messages as "User: ..." and
// "Assistant: ..." lines.
func recentLines(messages []store.Message) []string {
	start := max(len(messages)-RecentMessages, 0)
	lines := make([]string, 0, len(messages)-start)
	for _, m := range messages[start:] {
		who := "Assistant"
		if m.Role == store.RoleUser {
			who = "User"
		}
		lines = append(lines, who+": "+m.Content)
	}
	return lines
}

// Close saves the session to history and forgets it. Sessions holding only
// the welcome message are not saved.
func (a *Assistant) Close(ctx context.Context, id string) error {
	s, err := a.session(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.messages) > 1 {
		rec, err := a.record(s)
		if err != nil {
			return err
		}
		if err := a.store.Save(ctx, rec); err != nil {
			return fmt.Errorf("save session %s: %w", s.id, err)
		}
		log.Info().Str("session", s.id).Int("messages", len(s.messages)).Msg("Chat session saved to history")
	}

	a.mu.Lock()
	delete(a.sessions, s.id)
	metrics.ChatSessions.Set(float64(len(a.sessions)))
	a.mu.Unlock()
	return nil
}

func (a *Assistant) record(s *Session) (store.Record, error) {
	analysisData, analyticsData, err := s.context.snapshot()
	if err != nil {
		return store.Record{}, err
	}
	campaignType := DefaultCampaignType
	if s.context != nil && s.context.Input.TargetScope != "" {
		campaignType = string(s.context.Input.TargetScope)
	}
	return store.Record{
		ID:            s.id,
		Timestamp:     a.now().UTC(),
		Messages:      slices.Clone(s.messages),
		AnalysisData:  analysisData,
		AnalyticsData: analyticsData,
		CampaignType:  campaignType,
		Summary:       fmt.Sprintf("Session with %d exchanges", len(s.messages)-1),
	}, nil
}

// Load reopens a saved session with its messages and campaign context. An
// already-open session with the same ID is returned as is.
func (a *Assistant) Load(ctx context.Context, id string) (SessionView, error) {
	if v, err := a.Session(id); err == nil {
		return v, nil
	}
	rec, err := a.store.Load(ctx, id)
	if err != nil {
		return SessionView{}, fmt.Errorf("load session %s: %w", id, err)
	}
	if rec == nil {
		return SessionView{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	c, err := restoreContext(rec.AnalysisData, rec.AnalyticsData)
	if err != nil {
		return SessionView{}, fmt.Errorf("load session %s: %w", id, err)
	}

	s := &Session{id: rec.ID, messages: rec.Messages, context: c}
	a.register(s)
	log.Info().Str("session", s.id).Int("messages", len(s.messages)).Msg("Chat session restored from history")
	return s.view(), nil
}

// History lists saved sessions, newest first.
func (a *Assistant) History(ctx context.Context) ([]store.Record, error) {
	return a.store.List(ctx)
}

// HistoryRecord returns one saved session, or nil if it is not stored.
func (a *Assistant) HistoryRecord(ctx context.Context, id string) (*store.Record, error) {
	return a.store.Load(ctx, id)
}

// Delete removes one saved session.
func (a *Assistant) Delete(ctx context.Context, id string) error {
	return a.store.Delete(ctx, id)
}

// Clear removes every saved session.
func (a *Assistant) Clear(ctx context.Context) error {
	return a.store.Clear(ctx)
}
