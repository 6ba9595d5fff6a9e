package api

// types.go defines the request payloads accepted by the API handlers.
// Responses reuse the domain types directly (sign.Document marshals cleanly),
// so only requests need dedicated types here.

import (
	"time"

	"github.com/quillsign/quillsign/internal/sign"
)

// CreateDocumentRequest creates a new draft document. Content is
// base64-encoded in transit (standard encoding for JSON []byte).
type CreateDocumentRequest struct {
	Title       string `json:"title" example:"Consulting Agreement"`
	Content     []byte `json:"content,omitempty" swaggertype:"string" format:"base64"`
	ContentType string `json:"contentType,omitempty" example:"application/pdf"`
	FileName    string `json:"fileName,omitempty" example:"agreement.pdf"`
}

// UpdateDocumentRequest carries a partial document update. Absent members are
// left untouched.
type UpdateDocumentRequest struct {
	Title        *string                `json:"title,omitempty"`
	Folder       *string                `json:"folder,omitempty"`
	Tags         *[]string              `json:"tags,omitempty"`
	SigningOrder *sign.SigningOrder     `json:"signingOrder,omitempty" example:"sequential"`
	ExpiresAt    *time.Time             `json:"expiresAt,omitempty"`
	Settings     *sign.DocumentSettings `json:"settings,omitempty"`
}

// AddFieldRequest places a new field on a document page.
type AddFieldRequest struct {
	Kind       sign.FieldKind       `json:"kind" example:"signature"`
	Geometry   sign.Geometry        `json:"geometry"`
	SignerID   string               `json:"signerId,omitempty"`
	Required   bool                 `json:"required"`
	Label      string               `json:"label,omitempty" example:"Sign here"`
	Tooltip    string               `json:"tooltip,omitempty"`
	Validation *sign.ValidationRule `json:"validation,omitempty"`
	Options    []string             `json:"options,omitempty"`
}

// UpdateFieldRequest carries a partial field update.
type UpdateFieldRequest struct {
	Geometry   *sign.Geometry       `json:"geometry,omitempty"`
	SignerID   *string              `json:"signerId,omitempty"`
	Required   *bool                `json:"required,omitempty"`
	Label      *string              `json:"label,omitempty"`
	Tooltip    *string              `json:"tooltip,omitempty"`
	Validation *sign.ValidationRule `json:"validation,omitempty"`
	Options    *[]string            `json:"options,omitempty"`
}

// AddSignerRequest adds a participant to a document.
type AddSignerRequest struct {
	Name            string `json:"name" example:"Alice Example"`
	Email           string `json:"email" example:"alice@example.com"`
	Role            string `json:"role,omitempty" example:"Tenant"`
	AuthRequirement string `json:"authRequirement,omitempty"`
}

// UpdateSignerRequest carries a partial signer update.
type UpdateSignerRequest struct {
	Name            *string `json:"name,omitempty"`
	Email           *string `json:"email,omitempty"`
	Role            *string `json:"role,omitempty"`
	AuthRequirement *string `json:"authRequirement,omitempty"`
}

// FillFieldRequest records a value on a field. SignerID is empty when the
// document owner fills an unassigned field in preview.
type FillFieldRequest struct {
	SignerID string           `json:"signerId,omitempty"`
	Value    *sign.FieldValue `json:"value"`
}

// DeclineRequest records a signer's refusal to sign.
type DeclineRequest struct {
	Reason string `json:"reason,omitempty" example:"terms unacceptable"`
}

// VoidRequest withdraws a document from circulation.
type VoidRequest struct {
	Reason string `json:"reason,omitempty" example:"superseded"`
}
