package sign

import (
	"fmt"
	"net/mail"
	"regexp"
	"slices"
	"time"
)

// FieldKind is the closed enumeration of interactive field types. Field
// behavior branches on this tag wherever field content is interpreted.
type FieldKind string

const (
	FieldKindText      FieldKind = "text"
	FieldKindSignature FieldKind = "signature"
	FieldKindDate      FieldKind = "date"
	FieldKindCheckbox  FieldKind = "checkbox"
	FieldKindDropdown  FieldKind = "dropdown"
	FieldKindRadio     FieldKind = "radio"
)

var fieldKinds = []FieldKind{
	FieldKindText, FieldKindSignature, FieldKindDate,
	FieldKindCheckbox, FieldKindDropdown, FieldKindRadio,
}

// IsValidFieldKind reports whether k is a member of the field kind enumeration.
func IsValidFieldKind(k FieldKind) bool {
	return slices.Contains(fieldKinds, k)
}

// ValueKind returns the FieldValue variant a field of this kind accepts.
func (k FieldKind) ValueKind() FieldValueKind {
	switch k {
	case FieldKindSignature:
		return FieldValueKindSignature
	case FieldKindCheckbox:
		return FieldValueKindChecked
	case FieldKindDate:
		return FieldValueKindDate
	case FieldKindDropdown, FieldKindRadio:
		return FieldValueKindChoice
	default:
		return FieldValueKindText
	}
}

// Geometry is a field's position and size in percentages (0-100) of the
// rendered page surface, plus the 1-indexed page it sits on. Percentage
// coordinates keep field placement stable across zoom and page resizes.
type Geometry struct {

	// Page: 1-indexed page number (required)
	Page int `json:"page"`

	// X: left edge as a percentage of page width
	X float64 `json:"x"`

	// Y: top edge as a percentage of page height
	Y float64 `json:"y"`

	// Width: width as a percentage of page width
	Width float64 `json:"width"`

	// Height: height as a percentage of page height
	Height float64 `json:"height"`
}

// ValidateStructure checks the geometry invariant: the rectangle must lie
// entirely within the page surface. Out-of-range geometry is rejected rather
// than tolerated.
func (g *Geometry) ValidateStructure() error {
	if g.Page < 1 {
		return NewValidationError(fmt.Sprintf("page must be 1 or greater, got %d", g.Page))
	}
	if g.Width <= 0 || g.Height <= 0 {
		return NewValidationError(fmt.Sprintf("field size must be positive, got %gx%g", g.Width, g.Height))
	}
	if g.X < 0 || g.Y < 0 || g.X+g.Width > 100 || g.Y+g.Height > 100 {
		return NewValidationError(fmt.Sprintf("field rectangle (%g,%g %gx%g) exceeds page bounds", g.X, g.Y, g.Width, g.Height))
	}
	return nil
}

// Contains reports whether the point (px, py), in page percentages, falls
// inside the rectangle. Edges count as inside.
func (g *Geometry) Contains(px, py float64) bool {
	return px >= g.X && px <= g.X+g.Width && py >= g.Y && py <= g.Y+g.Height
}

// ValidationRuleKind selects how a ValidationRule checks a value.
type ValidationRuleKind string

const (
	ValidationRuleRegex  ValidationRuleKind = "regex"
	ValidationRuleDate   ValidationRuleKind = "date"
	ValidationRuleEmail  ValidationRuleKind = "email"
	ValidationRuleCustom ValidationRuleKind = "custom"
)

// ValidationRule is an optional per-field constraint on filled values.
type ValidationRule struct {

	// Kind: how the value is checked
	Kind ValidationRuleKind `json:"kind"`

	// Pattern: regex pattern (regex kind) or date layout (date kind, Go reference
	// layout; defaults to 2006-01-02 when empty). Ignored for email.
	Pattern string `json:"pattern,omitempty"`

	// Message: message returned to the signer when the check fails
	Message string `json:"message,omitempty"`
}

// Validate checks the given text against the rule. Custom rules are contracts
// for external collaborators and always pass here.
func (r *ValidationRule) Validate(text string) error {
	fail := func() error {
		msg := r.Message
		if msg == "" {
			msg = fmt.Sprintf("value %q does not satisfy %s validation", text, r.Kind)
		}
		return NewValidationError(msg)
	}

	switch r.Kind {
	case ValidationRuleRegex:
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return WrapValidationError(err, fmt.Sprintf("invalid validation pattern %q", r.Pattern))
		}
		if !re.MatchString(text) {
			return fail()
		}
	case ValidationRuleDate:
		layout := r.Pattern
		if layout == "" {
			layout = "2006-01-02"
		}
		if _, err := time.Parse(layout, text); err != nil {
			return fail()
		}
	case ValidationRuleEmail:
		if _, err := mail.ParseAddress(text); err != nil {
			return fail()
		}
	case ValidationRuleCustom:
		// evaluated by an external collaborator, not here
	default:
		return NewValidationError(fmt.Sprintf("unknown validation rule kind %q", r.Kind))
	}
	return nil
}

// Field represents an interactive region on a specific page of a document.
type Field struct {

	// ID: unique field identifier, stable for the field's lifetime
	ID string `json:"id"`

	// Kind: the field type (required)
	Kind FieldKind `json:"kind"`

	// Geometry: percentage position and size plus page number (required)
	Geometry Geometry `json:"geometry"`

	// SignerID: id of the signer this field is assigned to. Empty means
	// unassigned: fillable by any signer, or by the author in preview.
	SignerID string `json:"signerId,omitempty"`

	// Required: whether the field gates workflow completion
	Required bool `json:"required"`

	// Value: the filled payload; nil until a signer fills the field
	Value *FieldValue `json:"value,omitempty"`

	// Label: short caption shown next to the field
	Label string `json:"label,omitempty"`

	// Tooltip: longer hint shown on hover/focus
	Tooltip string `json:"tooltip,omitempty"`

	// Validation: optional constraint applied when the field is filled
	Validation *ValidationRule `json:"validation,omitempty"`

	// Options: permitted values for dropdown and radio fields
	Options []string `json:"options,omitempty"`
}

// ValidateStructure checks that the field is well formed: known kind, in-bounds
// geometry, and options present for option-backed kinds.
func (f *Field) ValidateStructure() error {
	if !IsValidFieldKind(f.Kind) {
		return NewValidationError(fmt.Sprintf("unknown field kind %q", f.Kind))
	}
	if err := f.Geometry.ValidateStructure(); err != nil {
		return WrapValidationError(err, "geometry")
	}
	if f.Kind == FieldKindDropdown || f.Kind == FieldKindRadio {
		if len(f.Options) == 0 {
			return NewValidationError(fmt.Sprintf("%s field requires at least one option", f.Kind))
		}
	}
	return nil
}

// ValidateValue checks a proposed value against the field's kind, option list
// and validation rule. It does not mutate the field.
func (f *Field) ValidateValue(value *FieldValue) error {
	if value == nil {
		return NewValidationError("field value is required")
	}
	if want := f.Kind.ValueKind(); value.Kind != want {
		return NewValidationError(fmt.Sprintf("%s field expects a %s value, got %s", f.Kind, want, value.Kind))
	}
	if value.Kind == FieldValueKindChoice && !slices.Contains(f.Options, value.Choice) {
		return NewValidationError(fmt.Sprintf("%q is not one of the field's options", value.Choice))
	}
	if f.Validation != nil {
		switch value.Kind {
		case FieldValueKindText, FieldValueKindChoice:
			if err := f.Validation.Validate(value.DisplayText()); err != nil {
				return err
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the field.
func (f *Field) Clone() Field {
	out := *f
	out.Value = f.Value.Clone()
	if f.Validation != nil {
		v := *f.Validation
		out.Validation = &v
	}
	if f.Options != nil {
		out.Options = slices.Clone(f.Options)
	}
	return out
}
