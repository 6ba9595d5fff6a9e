package sign

// export.go serializes documents for durability. The in-memory store is
// volatile, so callers wanting a durable copy export the aggregate as canonical
// JSON (RFC 8785) with a SHA-256 checksum, and import verifies both the
// checksum and the structure before accepting the payload.

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/gowebpki/jcs"
)

// Export is a portable snapshot of a single document.
type Export struct {

	// Document: the canonicalized document JSON
	Document json.RawMessage `json:"document"`

	// Checksum: SHA-256 of the canonical document JSON, hex encoded
	Checksum string `json:"checksum"`
}

// ChecksumHex calculates the SHA-256 checksum of data and returns it as a hex string.
func ChecksumHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ExportDocument serializes the document as canonical JSON per RFC 8785 and
// attaches its checksum. Canonical form guarantees that the same document state
// always produces the same bytes, so checksums are comparable across exports.
func ExportDocument(d *Document) (*Export, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, WrapInternalError(err, "failed to marshal document")
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, WrapInternalError(err, "failed to canonicalize document")
	}
	return &Export{
		Document: canonical,
		Checksum: ChecksumHex(canonical),
	}, nil
}

// ImportDocument verifies an export's checksum and structure and returns the
// document it carries.
func ImportDocument(e *Export) (*Document, error) {
	canonical, err := jcs.Transform(e.Document)
	if err != nil {
		return nil, WrapValidationError(err, "export payload is not valid JSON")
	}
	if ChecksumHex(canonical) != e.Checksum {
		return nil, NewValidationError("export checksum does not match document payload")
	}
	var d Document
	if err := json.Unmarshal(canonical, &d); err != nil {
		return nil, WrapValidationError(err, "export payload is not a document")
	}
	if err := d.ValidateStructure(); err != nil {
		return nil, err
	}
	return &d, nil
}
