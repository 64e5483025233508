// Package planner implements the AI strategy assistant: a two-phase chat
// flow that first iterates on a weekly plan with the user and then
// extracts concrete calendar events for review and bulk approval.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/BeatGrid/StrategyPipe/internal/genai"
	"github.com/BeatGrid/StrategyPipe/internal/models"
	"github.com/BeatGrid/StrategyPipe/internal/store"
	"github.com/BeatGrid/StrategyPipe/internal/tone"
)

// Scripted assistant messages appended around the model's own replies.
const (
	MsgConnectionError  = "Sorry, I had a connection error."
	MsgExtractionFailed = "I couldn't generate the events automatically. Let's clarify the dates."
	MsgGenerationFailed = "Failed to generate plan. Please try again."
	MsgEventsAdded      = "Great! I've added those events to your calendar."
)

// ErrExtractionFailed indicates the model's response held no parseable
// event array. The user retries rather than the system guessing.
var ErrExtractionFailed = errors.New("no event array found in response")

// ErrNoProposedEvents indicates ApproveAll was called with an empty
// proposal list.
var ErrNoProposedEvents = errors.New("no proposed events to approve")

// chatService defines minimal interface for planner chat completions.
type chatService interface {
	Chat(ctx context.Context, systemPrompt string, history []models.ChatMessage) (string, error)
	ChatJSON(ctx context.Context, systemPrompt string, history []models.ChatMessage) (string, error)
}

// jsonArrayPattern matches the outermost bracketed span of a reply,
// tolerating prose around the array.
var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// integrationKeywords signal that the user or the model wants the plan on
// the calendar. Detection only raises a flag; extraction always waits for
// an explicit call.
var integrationKeywords = struct {
	user  []string
	model []string
}{
	user:  []string{"integrate", "add to calendar", "schedule this"},
	model: []string{"integrating", "added to your calendar"},
}

// Opts holds configuration options for planner sessions.
type Opts struct {
	// Now overrides the clock used to anchor relative dates.
	Now func() time.Time
}

// Option defines a functional option for planner session configuration.
type Option func(*Opts)

// WithNow sets the clock used to anchor relative dates during extraction.
func WithNow(now func() time.Time) Option {
	return func(o *Opts) { o.Now = now }
}

// Session is one planner conversation for one user. Messages are
// process-local and not persisted across restarts.
type Session struct {
	chat   chatService
	store  store.Store
	userID string
	now    func() time.Time

	mu        sync.Mutex
	messages  []models.ChatMessage
	proposed  []models.ProposedEvent
	styleTags []string
}

// SetStyle sets the reply-style tags injected into the discussion
// prompt. Unknown tags are dropped and conflicting tags resolved.
func (s *Session) SetStyle(tags []string) []string {
	cleaned := tone.Normalize(tags)
	s.mu.Lock()
	s.styleTags = cleaned
	s.mu.Unlock()
	slog.Debug("planner.SetStyle: reply style updated", "tags", cleaned)
	return cleaned
}

// Style returns the active reply-style tags.
func (s *Session) Style() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.styleTags))
	copy(out, s.styleTags)
	return out
}

// NewSession opens a planner conversation seeded with the assistant's
// campaign summary greeting.
func NewSession(chat *genai.Client, st store.Store, userID string, opts ...Option) (*Session, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	s := &Session{
		chat:   chat,
		store:  st,
		userID: userID,
		now:    now,
	}
	count, err := s.campaignCount()
	if err != nil {
		return nil, err
	}
	greeting := fmt.Sprintf("I've analyzed your Roadmap. You have %d active campaigns. \n\nShall we create a **Weekly Plan** for you? I can suggest specific content and tasks for each day.", count)
	s.messages = []models.ChatMessage{{Role: models.ChatRoleModel, Text: greeting}}
	slog.Debug("planner.NewSession: session opened", "userID", userID, "campaigns", count)
	return s, nil
}

// Messages returns a snapshot of the conversation.
func (s *Session) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Proposed returns the current proposal list.
func (s *Session) Proposed() []models.ProposedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ProposedEvent, len(s.proposed))
	copy(out, s.proposed)
	return out
}

// BuildContext summarizes the era definition and active campaigns for the
// system prompt.
func (s *Session) BuildContext() (string, error) {
	strategies, err := s.loadStrategies()
	if err != nil {
		return "", err
	}
	stage4 := strategies["stage-4"].Data
	eraTitle := models.AsString(stage4["era_title"])
	if eraTitle == "" {
		eraTitle = "Untitled"
	}
	eraNarrative := models.AsString(stage4["era_narrative"])
	if eraNarrative == "" {
		eraNarrative = "N/A"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Current Era: %s.\n", eraTitle)
	fmt.Fprintf(&b, "Era Narrative: %s.\n", eraNarrative)
	b.WriteString("\nActive Campaigns:\n")
	for i, c := range campaignItems(strategies["stage-5"].Data) {
		dates := models.AsDateRange(c["dates"])
		fmt.Fprintf(&b, "%d. %s (%s to %s)\n   Goal: %s\n   Purpose: %s\n",
			i+1, models.AsString(c["name"]), dates.From, dates.To,
			models.AsString(c["goal"]), models.AsString(c["purpose"]))
	}
	return b.String(), nil
}

// Send appends a user turn, asks the model for a reply with the full
// history, and appends the reply. The returned flag reports integration
// intent in either side of the exchange; acting on it still requires an
// explicit ExtractEvents call.
func (s *Session) Send(ctx context.Context, text string) (reply string, integrationIntent bool, err error) {
	contextBlock, err := s.BuildContext()
	if err != nil {
		return "", false, err
	}
	systemPrompt := discussionPrompt(contextBlock)

	s.mu.Lock()
	if guide := tone.Guide(s.styleTags); guide != "" {
		systemPrompt += guide
	}
	s.messages = append(s.messages, models.ChatMessage{Role: models.ChatRoleUser, Text: text})
	history := make([]models.ChatMessage, len(s.messages))
	copy(history, s.messages)
	s.mu.Unlock()

	reply, err = s.chat.Chat(ctx, systemPrompt, history)
	if err != nil {
		slog.Error("planner.Send: chat call failed", "error", err)
		s.appendModel(MsgConnectionError)
		return "", false, err
	}
	s.appendModel(reply)

	lowerInput := strings.ToLower(text)
	lowerReply := strings.ToLower(reply)
	for _, kw := range integrationKeywords.user {
		if strings.Contains(lowerInput, kw) {
			integrationIntent = true
		}
	}
	for _, kw := range integrationKeywords.model {
		if strings.Contains(lowerReply, kw) {
			integrationIntent = true
		}
	}
	slog.Debug("planner.Send: reply appended", "intent", integrationIntent, "replyLength", len(reply))
	return reply, integrationIntent, nil
}

// ExtractEvents runs the second phase: the same history plus a strict
// JSON instruction, parsed first by bracket extraction and then as raw
// JSON. On failure the proposal list stays empty and the user is told to
// clarify.
func (s *Session) ExtractEvents(ctx context.Context) ([]models.ProposedEvent, error) {
	contextBlock, err := s.BuildContext()
	if err != nil {
		return nil, err
	}
	dateContext := fmt.Sprintf("Today is %s.", s.now().Format("Monday, January 2, 2006"))
	systemPrompt := fmt.Sprintf("You are a JSON extractor helper. Context: %s \n %s", contextBlock, dateContext)

	s.mu.Lock()
	history := make([]models.ChatMessage, len(s.messages), len(s.messages)+1)
	copy(history, s.messages)
	s.mu.Unlock()
	history = append(history, models.ChatMessage{
		Role: models.ChatRoleUser,
		Text: "Based on our agreed plan, extract a list of concrete calendar events. Return ONLY valid JSON array of objects with keys: title, date (YYYY-MM-DD), type (content|marketing|milestone|meeting), description. Resolve relative dates like 'next Monday' to actual YYYY-MM-DD dates starting from Today.",
	})

	response, err := s.chat.ChatJSON(ctx, systemPrompt, history)
	if err != nil {
		slog.Error("planner.ExtractEvents: chat call failed", "error", err)
		s.appendModel(MsgGenerationFailed)
		return nil, err
	}

	events, err := ParseEventArray(response)
	if err != nil {
		slog.Debug("planner.ExtractEvents: parse failed", "error", err)
		s.appendModel(MsgExtractionFailed)
		return nil, err
	}
	s.mu.Lock()
	s.proposed = events
	s.mu.Unlock()
	slog.Debug("planner.ExtractEvents: events proposed", "count", len(events))
	return events, nil
}

// ParseEventArray recovers a proposed event list from a model reply:
// first the outermost bracketed span, then the raw text as JSON.
func ParseEventArray(response string) ([]models.ProposedEvent, error) {
	var events []models.ProposedEvent
	if match := jsonArrayPattern.FindString(response); match != "" {
		if err := json.Unmarshal([]byte(match), &events); err == nil {
			return events, nil
		}
	}
	if err := json.Unmarshal([]byte(response), &events); err != nil {
		return nil, ErrExtractionFailed
	}
	return events, nil
}

// RemoveProposed drops one proposal by index before approval.
func (s *Session) RemoveProposed(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.proposed) {
		return
	}
	s.proposed = append(s.proposed[:index], s.proposed[index+1:]...)
}

// ApproveAll writes every remaining proposal as a pending calendar event
// tagged with the planner source, clears the list and confirms in chat.
// Proposals with unparseable dates are skipped.
func (s *Session) ApproveAll() ([]models.CalendarEvent, error) {
	s.mu.Lock()
	proposed := make([]models.ProposedEvent, len(s.proposed))
	copy(proposed, s.proposed)
	s.mu.Unlock()
	if len(proposed) == 0 {
		return nil, ErrNoProposedEvents
	}

	var created []models.CalendarEvent
	for _, p := range proposed {
		day, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			slog.Warn("planner.ApproveAll: skipping event with bad date", "title", p.Title, "date", p.Date)
			continue
		}
		evType := p.Type
		if !models.IsValidEventType(evType) {
			evType = models.EventTypeContent
		}
		ev, err := s.store.CreateCalendarEvent(s.userID, models.CalendarEvent{
			Title:       p.Title,
			StartDate:   day,
			EndDate:     day,
			Type:        evType,
			Description: p.Description,
			Status:      models.EventStatusPending,
			Platform:    p.Platform,
			Metadata:    map[string]any{"source": models.MetadataSourceAIPlanner},
		})
		if err != nil {
			slog.Error("planner.ApproveAll: event create failed", "error", err, "title", p.Title)
			return created, err
		}
		created = append(created, *ev)
	}

	s.mu.Lock()
	s.proposed = nil
	s.mu.Unlock()
	s.appendModel(MsgEventsAdded)
	slog.Debug("planner.ApproveAll: events persisted", "count", len(created))
	return created, nil
}

func (s *Session) appendModel(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, models.ChatMessage{Role: models.ChatRoleModel, Text: text})
}

func (s *Session) campaignCount() (int, error) {
	strategies, err := s.loadStrategies()
	if err != nil {
		return 0, err
	}
	return len(campaignItems(strategies["stage-5"].Data)), nil
}

func (s *Session) loadStrategies() (map[string]models.StrategyRecord, error) {
	records, err := s.store.GetStrategies(s.userID)
	if err != nil {
		slog.Error("planner.loadStrategies failed", "error", err, "userID", s.userID)
		return nil, err
	}
	out := make(map[string]models.StrategyRecord, len(records))
	for _, rec := range records {
		out[rec.StageID] = rec
	}
	return out, nil
}

// campaignItems reads the campaign list, accepting both the flat
// campaign_list key and the older nesting under a campaigns object.
func campaignItems(data map[string]any) []map[string]any {
	if data == nil {
		return nil
	}
	if items := models.AsItems(data["campaign_list"]); len(items) > 0 {
		return items
	}
	if nested, ok := data["campaigns"].(map[string]any); ok {
		return models.AsItems(nested["campaign_list"])
	}
	return nil
}

// discussionPrompt builds the phase-one system prompt around the strategy
// context.
func discussionPrompt(contextBlock string) string {
	return fmt.Sprintf(`You are a Music Career Strategist & Manager.
Context:
%s

Goal: iterate with the user to create a solid **Weekly Schedule**.
- Ask what days they are available.
- Suggest specific "Content Buckets" or "Campaign Actions" for specific days.
- Be encouraging but disciplined.
- Once agreed, TELL THE USER to click the "Integrate Plan" button at the bottom of the chat to automatically map this to the calendar.
- DO NOT offer .ics files or external downloads. The system handles it internally via the button.

FORMATTING RULES:
- Use ### for Section Titles (e.g. ### Day 1: The Lab).
- Use **bold** for key terms.
- Use - for bullet points.
- Keep paragraphs short and punchy.
`, contextBlock)
}
