package models

import "strings"

// FieldType defines how a stage field is interpreted and rendered.
type FieldType string

const (
	// FieldTypeText is a single-line free text input.
	FieldTypeText FieldType = "text"
	// FieldTypeTextarea is a multi-line free text input.
	FieldTypeTextarea FieldType = "textarea"
	// FieldTypeSelect is a single choice, or a ranked choice list when
	// AllowSecondary is set.
	FieldTypeSelect FieldType = "select"
	// FieldTypeMultiselect is an unordered set of strings.
	FieldTypeMultiselect FieldType = "multiselect"
	// FieldTypeCheckbox is a boolean toggle.
	FieldTypeCheckbox FieldType = "checkbox"
	// FieldTypeDateRange is a two-click from/to range picker.
	FieldTypeDateRange FieldType = "date-range"
	// FieldTypeArray is a repeating group of items shaped by Fields.
	FieldTypeArray FieldType = "array"
	// FieldTypeWeeklySchedule is seven fixed day buckets of schedule items.
	FieldTypeWeeklySchedule FieldType = "weekly-schedule"
)

// IsValidFieldType checks if the given field type is supported.
func IsValidFieldType(t FieldType) bool {
	switch t {
	case FieldTypeText, FieldTypeTextarea, FieldTypeSelect, FieldTypeMultiselect,
		FieldTypeCheckbox, FieldTypeDateRange, FieldTypeArray, FieldTypeWeeklySchedule:
		return true
	default:
		return false
	}
}

// DefaultMaxSelections is the ranked-slot cap applied when AllowSecondary
// is set without an explicit MaxSelections.
const DefaultMaxSelections = 3

// StageField is the declarative description of one input within a stage.
type StageField struct {
	ID            string      `json:"id"`
	Label         string      `json:"label"`
	Type          FieldType   `json:"type"`
	Placeholder   string      `json:"placeholder,omitempty"`
	Description   string      `json:"description,omitempty"`
	Options       []string    `json:"options,omitempty"` // select/multiselect only
	Required      bool        `json:"required,omitempty"`
	AllowCustom   bool        `json:"allowCustom,omitempty"`   // user may add values outside Options
	AllowSecondary bool       `json:"allowSecondary,omitempty"` // ranked primary/secondary/tertiary slots
	MaxSelections int         `json:"maxSelections,omitempty"`  // ranked slot cap, defaults to 3
	AIEnabled     bool        `json:"aiEnabled,omitempty"`
	Source        string      `json:"source,omitempty"`        // "stage-id.field-id" for dynamic options
	GroupBySource string      `json:"groupBySource,omitempty"` // "stage-id.field-id" for array bucketing
	Fields        []StageField `json:"fields,omitempty"`       // array item shape, array type only
	MaxItems      int         `json:"maxItems,omitempty"`
	ItemLabel     string      `json:"itemLabel,omitempty"`
	FullWidth     bool        `json:"fullWidth,omitempty"`
}

// RankCap returns the effective ranked slot limit for the field.
func (f *StageField) RankCap() int {
	if !f.AllowSecondary {
		return 1
	}
	if f.MaxSelections > 0 {
		return f.MaxSelections
	}
	return DefaultMaxSelections
}

// IsSelectFamily reports whether the field consumes an options list.
func (f *StageField) IsSelectFamily() bool {
	return f.Type == FieldTypeSelect || f.Type == FieldTypeMultiselect
}

// Validate enforces the structural invariants of a field declaration:
// Fields is non-empty iff Type is array, Options only appear on the select
// family, and source paths are dotted stage.field references.
func (f *StageField) Validate() error {
	if f.ID == "" {
		return ErrEmptyFieldID
	}
	if !IsValidFieldType(f.Type) {
		return ErrInvalidFieldType
	}
	if f.Type == FieldTypeArray && len(f.Fields) == 0 {
		return ErrArrayWithoutFields
	}
	if f.Type != FieldTypeArray && len(f.Fields) > 0 {
		return ErrFieldsOnNonArray
	}
	if len(f.Options) > 0 && !f.IsSelectFamily() {
		return ErrOptionsOnNonSelect
	}
	for _, src := range []string{f.Source, f.GroupBySource} {
		if src == "" {
			continue
		}
		parts := strings.SplitN(src, ".", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return ErrMalformedSourcePath
		}
	}
	for i := range f.Fields {
		if err := f.Fields[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// StageStep is an ordered group of fields with a title and description.
type StageStep struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Fields      []StageField `json:"fields"`
}

// Validate checks the step and all of its fields.
func (s *StageStep) Validate() error {
	if len(s.Fields) == 0 {
		return ErrStepWithoutFields
	}
	for i := range s.Fields {
		if err := s.Fields[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// StageConfig is one immutable stage of the strategy wizard, loaded once at
// process start.
type StageConfig struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Steps       []StageStep `json:"steps"`
}

// Validate checks the stage and all of its steps.
func (c *StageConfig) Validate() error {
	if c.ID == "" {
		return ErrEmptyStageID
	}
	if len(c.Steps) == 0 {
		return ErrStageWithoutSteps
	}
	for i := range c.Steps {
		if err := c.Steps[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Field finds a field declaration by id across all steps.
func (c *StageConfig) Field(fieldID string) (*StageField, bool) {
	for i := range c.Steps {
		for j := range c.Steps[i].Fields {
			if c.Steps[i].Fields[j].ID == fieldID {
				return &c.Steps[i].Fields[j], true
			}
		}
	}
	return nil, false
}
