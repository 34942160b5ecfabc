package config

import "fmt"

// NotFoundError indicates a referenced configuration or template ID is absent.
type NotFoundError struct {
	Kind string // "configuration" or "template"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// NewNotFoundError creates a NotFoundError for the given entity kind and ID.
func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// ParseError indicates malformed JSON (or YAML) on import or load.
type ParseError struct {
	Source string // file path or "import"
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IOError indicates a file system failure in the store or command layer.
type IOError struct {
	Op   string // "read", "write", "delete", "list"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// UnsupportedFormatError indicates a requested export or report format that
// is not implemented. Callers must fail loudly instead of silently degrading
// to a supported format.
type UnsupportedFormatError struct {
	Format    string
	Supported []string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %q (supported: %v)", e.Format, e.Supported)
}
