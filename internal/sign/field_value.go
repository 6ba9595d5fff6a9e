package sign

import (
	"encoding/json"
	"fmt"
	"time"
)

// FieldValueKind tags the variant carried by a FieldValue.
type FieldValueKind string

const (
	FieldValueKindText      FieldValueKind = "text"
	FieldValueKindSignature FieldValueKind = "signature"
	FieldValueKindChecked   FieldValueKind = "checked"
	FieldValueKindDate      FieldValueKind = "date"
	FieldValueKindChoice    FieldValueKind = "choice"
)

// FieldValue is the tagged variant holding a filled field's payload. Exactly one
// of the payload members is meaningful, selected by Kind. An unfilled field has a
// nil *FieldValue on its Field.
//
// Checkbox state is a real bool here, never the strings "true"/"false".
type FieldValue struct {

	// Kind: which payload member is populated
	Kind FieldValueKind `json:"kind"`

	// Text: payload for text fields
	Text string `json:"text,omitempty"`

	// Signature: opaque signature image payload (e.g. encoded ink strokes or a
	// raster image) for signature fields
	Signature []byte `json:"signature,omitempty"`

	// Checked: payload for checkbox fields
	Checked bool `json:"checked,omitempty"`

	// Date: payload for date fields
	Date time.Time `json:"date,omitempty"`

	// Choice: the selected option value for dropdown and radio fields
	Choice string `json:"choice,omitempty"`
}

// TextValue builds a text field value.
func TextValue(s string) *FieldValue {
	return &FieldValue{Kind: FieldValueKindText, Text: s}
}

// SignatureValue builds a signature field value from an opaque image payload.
func SignatureValue(blob []byte) *FieldValue {
	return &FieldValue{Kind: FieldValueKindSignature, Signature: blob}
}

// CheckedValue builds a checkbox field value.
func CheckedValue(checked bool) *FieldValue {
	return &FieldValue{Kind: FieldValueKindChecked, Checked: checked}
}

// DateValue builds a date field value.
func DateValue(t time.Time) *FieldValue {
	return &FieldValue{Kind: FieldValueKindDate, Date: t}
}

// ChoiceValue builds a dropdown/radio field value.
func ChoiceValue(option string) *FieldValue {
	return &FieldValue{Kind: FieldValueKindChoice, Choice: option}
}

// IsEmpty reports whether the value counts as "not filled" for completion
// gating. A checked=false checkbox is empty: an unticked required checkbox does
// not satisfy the requirement.
func (v *FieldValue) IsEmpty() bool {
	if v == nil {
		return true
	}
	switch v.Kind {
	case FieldValueKindText:
		return v.Text == ""
	case FieldValueKindSignature:
		return len(v.Signature) == 0
	case FieldValueKindChecked:
		return !v.Checked
	case FieldValueKindDate:
		return v.Date.IsZero()
	case FieldValueKindChoice:
		return v.Choice == ""
	default:
		return true
	}
}

// Equal reports whether two values carry the same payload. Used to make
// repeated fills with the same value idempotent.
func (v *FieldValue) Equal(other *FieldValue) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case FieldValueKindText:
		return v.Text == other.Text
	case FieldValueKindSignature:
		return string(v.Signature) == string(other.Signature)
	case FieldValueKindChecked:
		return v.Checked == other.Checked
	case FieldValueKindDate:
		return v.Date.Equal(other.Date)
	case FieldValueKindChoice:
		return v.Choice == other.Choice
	default:
		return false
	}
}

// DisplayText renders the payload as user-visible text, e.g. for narration or
// plain-text progress views. Signature payloads are summarised, not dumped.
func (v *FieldValue) DisplayText() string {
	if v == nil {
		return ""
	}
	switch v.Kind {
	case FieldValueKindText:
		return v.Text
	case FieldValueKindSignature:
		if len(v.Signature) == 0 {
			return ""
		}
		return "signature"
	case FieldValueKindChecked:
		if v.Checked {
			return "checked"
		}
		return "unchecked"
	case FieldValueKindDate:
		if v.Date.IsZero() {
			return ""
		}
		return v.Date.Format("2006-01-02")
	case FieldValueKindChoice:
		return v.Choice
	default:
		return ""
	}
}

// Clone returns a deep copy of the value. Returns nil for a nil receiver so
// callers can clone unfilled fields without a nil check.
func (v *FieldValue) Clone() *FieldValue {
	if v == nil {
		return nil
	}
	out := *v
	if v.Signature != nil {
		out.Signature = make([]byte, len(v.Signature))
		copy(out.Signature, v.Signature)
	}
	return &out
}

// fieldValueJSON mirrors FieldValue for (un)marshalling so UnmarshalJSON can
// validate the kind tag without recursing.
type fieldValueJSON struct {
	Kind      FieldValueKind `json:"kind"`
	Text      string         `json:"text,omitempty"`
	Signature []byte         `json:"signature,omitempty"`
	Checked   bool           `json:"checked,omitempty"`
	Date      *time.Time     `json:"date,omitempty"`
	Choice    string         `json:"choice,omitempty"`
}

func (v *FieldValue) UnmarshalJSON(data []byte) error {
	var raw fieldValueJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Kind {
	case FieldValueKindText, FieldValueKindSignature, FieldValueKindChecked, FieldValueKindDate, FieldValueKindChoice:
	default:
		return NewValidationError(fmt.Sprintf("unknown field value kind %q", raw.Kind))
	}
	v.Kind = raw.Kind
	v.Text = raw.Text
	v.Signature = raw.Signature
	v.Checked = raw.Checked
	if raw.Date != nil {
		v.Date = *raw.Date
	} else {
		v.Date = time.Time{}
	}
	v.Choice = raw.Choice
	return nil
}

func (v FieldValue) MarshalJSON() ([]byte, error) {
	raw := fieldValueJSON{
		Kind:      v.Kind,
		Text:      v.Text,
		Signature: v.Signature,
		Checked:   v.Checked,
		Choice:    v.Choice,
	}
	if !v.Date.IsZero() {
		t := v.Date
		raw.Date = &t
	}
	return json.Marshal(raw)
}
