// Package models defines the core data structures for StrategyPipe.
//
// It includes the stage schema types, strategy records, calendar events,
// and the API response envelope shared across modules.
package models

import (
	"encoding/json"
	"errors"
	"time"
)

// StageStatus represents the completion state of one strategy stage.
type StageStatus string

const (
	// StageStatusNotStarted indicates the user has never opened the stage.
	StageStatusNotStarted StageStatus = "not_started"
	// StageStatusInProgress indicates the stage has saved partial data.
	StageStatusInProgress StageStatus = "in_progress"
	// StageStatusCompleted indicates the stage was saved via Save & Exit.
	StageStatusCompleted StageStatus = "completed"
)

// IsValidStageStatus checks if the given stage status is supported.
func IsValidStageStatus(s StageStatus) bool {
	switch s {
	case StageStatusNotStarted, StageStatusInProgress, StageStatusCompleted:
		return true
	default:
		return false
	}
}

// Error variables for better error handling and testability
var (
	ErrEmptyStageID        = errors.New("stage id cannot be empty")
	ErrInvalidStageStatus  = errors.New("invalid stage status")
	ErrEmptyEventTitle     = errors.New("event title cannot be empty")
	ErrInvalidEventType    = errors.New("invalid calendar event type")
	ErrInvalidEventStatus  = errors.New("invalid calendar event status")
	ErrEventDatesInverted  = errors.New("event end date precedes start date")
	ErrEmptyFieldID        = errors.New("field id cannot be empty")
	ErrFieldsOnNonArray    = errors.New("nested fields are only valid for array fields")
	ErrArrayWithoutFields  = errors.New("array fields require a non-empty nested field list")
	ErrOptionsOnNonSelect  = errors.New("options are only valid for select and multiselect fields")
	ErrInvalidFieldType    = errors.New("invalid field type")
	ErrMalformedSourcePath = errors.New("source path must be of the form stage-id.field-id")
	ErrStageWithoutSteps   = errors.New("stage requires at least one step")
	ErrStepWithoutFields   = errors.New("step requires at least one field")
)

// StrategyRecord is one persisted strategy blob for a (user, stage) pair.
// Data maps field ids to values whose shape matches the field's declared
// type. Records are created lazily on first save and never hard-deleted.
type StrategyRecord struct {
	StageID     string         `json:"stageId"`
	Status      StageStatus    `json:"status"`
	Data        map[string]any `json:"data"`
	LastUpdated time.Time      `json:"lastUpdated"`
}

// EventType classifies a calendar event.
type EventType string

const (
	EventTypeContent   EventType = "content"
	EventTypeCampaign  EventType = "campaign"
	EventTypeMeeting   EventType = "meeting"
	EventTypeMilestone EventType = "milestone"
	EventTypeRelease   EventType = "release"
	EventTypeMarketing EventType = "marketing"
)

// IsValidEventType checks if the given event type is supported.
func IsValidEventType(t EventType) bool {
	switch t {
	case EventTypeContent, EventTypeCampaign, EventTypeMeeting,
		EventTypeMilestone, EventTypeRelease, EventTypeMarketing:
		return true
	default:
		return false
	}
}

// EventStatus represents the lifecycle status of a calendar event.
type EventStatus string

const (
	EventStatusPending   EventStatus = "pending"
	EventStatusCompleted EventStatus = "completed"
)

// CalendarEvent is one persisted planner calendar entry.
type CalendarEvent struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	StartDate   time.Time      `json:"startDate"`
	EndDate     time.Time      `json:"endDate"`
	Type        EventType      `json:"type"`
	Description string         `json:"description,omitempty"`
	Status      EventStatus    `json:"status"`
	Platform    string         `json:"platform,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Validate performs validation on a CalendarEvent structure.
func (e *CalendarEvent) Validate() error {
	if e.Title == "" {
		return ErrEmptyEventTitle
	}
	if !IsValidEventType(e.Type) {
		return ErrInvalidEventType
	}
	if e.Status != "" && e.Status != EventStatusPending && e.Status != EventStatusCompleted {
		return ErrInvalidEventStatus
	}
	if !e.EndDate.IsZero() && e.EndDate.Before(e.StartDate) {
		return ErrEventDatesInverted
	}
	return nil
}

// MetadataSourceAIPlanner tags events written by the AI planner's bulk
// approval so they can be distinguished from hand-created ones.
const MetadataSourceAIPlanner = "ai_planner"

// ProposedEvent is a client-held, unsaved calendar-event candidate produced
// by the AI extraction phase, pending user approval. Same shape as
// CalendarEvent minus id/status.
type ProposedEvent struct {
	Title       string    `json:"title"`
	Date        string    `json:"date"` // YYYY-MM-DD
	Type        EventType `json:"type"`
	Description string    `json:"description,omitempty"`
	Platform    string    `json:"platform,omitempty"`
}

// ChatRole identifies the speaker of a chat message.
type ChatRole string

const (
	ChatRoleUser  ChatRole = "user"
	ChatRoleModel ChatRole = "model"
)

// ChatMessage is one entry in a planner chat session. The list is
// append-only and process-local; it is not persisted across restarts.
type ChatMessage struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}

// Goal is a simple progress target rendered as a percentage bar.
type Goal struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Type     string    `json:"type"`
	Target   float64   `json:"target"`
	Current  float64   `json:"current"`
	Deadline time.Time `json:"deadline,omitempty"`
	Status   string    `json:"status,omitempty"`
	Category string    `json:"category,omitempty"`
}

// Progress returns the completion percentage clamped to [0, 100].
func (g *Goal) Progress() float64 {
	if g.Target == 0 {
		return 0
	}
	p := g.Current / g.Target * 100
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

// MarshalJSON includes the computed progress percentage so clients render
// the bar without reimplementing the clamp.
func (g Goal) MarshalJSON() ([]byte, error) {
	type goalAlias Goal
	return json.Marshal(struct {
		goalAlias
		Progress float64 `json:"progress"`
	}{goalAlias(g), g.Progress()})
}

// API Response types for consistent JSON responses

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
	// APIStatusRecorded indicates data was successfully recorded via API.
	APIStatusRecorded APIStatus = "recorded"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string `json:"status"`            // status of the API response
	Message string `json:"message,omitempty"` // optional message for error responses or additional info
	Result  any    `json:"result,omitempty"`  // optional result data for successful responses
}

// APIResponseBuilder provides a fluent interface for building API responses.
type APIResponseBuilder struct {
	response APIResponse
}

// NewAPIResponseBuilder creates a new APIResponseBuilder instance.
func NewAPIResponseBuilder() *APIResponseBuilder {
	return &APIResponseBuilder{}
}

// WithStatus sets the status of the API response.
func (b *APIResponseBuilder) WithStatus(status APIStatus) *APIResponseBuilder {
	b.response.Status = string(status)
	return b
}

// WithMessage sets the message of the API response.
func (b *APIResponseBuilder) WithMessage(message string) *APIResponseBuilder {
	b.response.Message = message
	return b
}

// WithResult sets the result data of the API response.
func (b *APIResponseBuilder) WithResult(result any) *APIResponseBuilder {
	b.response.Result = result
	return b
}

// Build constructs and returns the final APIResponse.
func (b *APIResponseBuilder) Build() APIResponse {
	return b.response
}

// Success creates a successful API response with optional result data.
func Success(result any) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusOK).
		WithResult(result).
		Build()
}

// SuccessWithMessage creates a successful API response with a message and optional result data.
func SuccessWithMessage(message string, result any) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusOK).
		WithMessage(message).
		WithResult(result).
		Build()
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusError).
		WithMessage(message).
		Build()
}

// Recorded creates a recorded API response with a message and optional result data.
func Recorded(message string, result any) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusRecorded).
		WithMessage(message).
		WithResult(result).
		Build()
}
