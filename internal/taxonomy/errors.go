package taxonomy

import "fmt"

// DataLoadError reports that a tree document could not be read, parsed or
// validated. It is surfaced to users as a retryable error state.
type DataLoadError struct {
	Source string
	Err    error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("loading tree %s: %v", e.Source, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// WarningKind classifies a recoverable problem found during normalization.
type WarningKind string

const (
	WarnUnnamed         WarningKind = "unnamed"
	WarnInvalidChild    WarningKind = "invalid_child"
	WarnNestedContainer WarningKind = "nested_container"
	WarnInvalidField    WarningKind = "invalid_field"
)

// Warning is a malformed-node warning. Normalization logs it and carries on.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Path    string      `json:"path"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s at %s: %s", w.Kind, w.Path, w.Message)
}
