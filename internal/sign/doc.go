// Package sign defines the core e-signature domain model: documents, the
// interactive fields placed on their pages, the signers who fill them, and the
// status enumerations and transition rules that govern the signing lifecycle.
//
// The package holds no mutable state of its own. The document store
// (internal/store) owns all Document instances; the workflow engine
// (internal/workflow) applies pure transitions over them. Everything here is
// plain data plus validation.
package sign
