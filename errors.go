package tunebridge

import "fmt"

// ConfigurationError reports a problem locating or validating the backend
// install (missing path, missing bin/neutrino_server or bin/neutrino_client).
type ConfigurationError struct {
	Path    string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error at %q: %s", e.Path, e.Message)
}

// InputValidationError reports a malformed synthesis task: schema failure,
// empty note list, or an unsupported kana mora during lyric conversion.
type InputValidationError struct {
	Message string
}

func (e *InputValidationError) Error() string {
	return "invalid synthesis task: " + e.Message
}

// ParseError reports a label-line parse failure for one of the eleven
// sections. It is the Go form of the spec's LabelCodecError.
type ParseError struct {
	Section string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Section, e.Message)
}

// ComposeError is the umbrella type for LabelComposer failures.
type ComposeError struct {
	Kind    string // "EmptyPhonemes", "InvalidPitch", "TemplateParse"
	Message string
	Index   int
}

func (e *ComposeError) Error() string {
	switch e.Kind {
	case "EmptyPhonemes":
		return fmt.Sprintf("note at index %d has no phonemes", e.Index)
	case "InvalidPitch":
		return fmt.Sprintf("invalid pitch label: %s", e.Message)
	case "TemplateParse":
		return fmt.Sprintf("failed to parse template label: %s", e.Message)
	default:
		return fmt.Sprintf("compose error: %s", e.Message)
	}
}

func errEmptyPhonemes(noteIndex int) *ComposeError {
	return &ComposeError{Kind: "EmptyPhonemes", Index: noteIndex}
}

func errInvalidPitch(name string) *ComposeError {
	return &ComposeError{Kind: "InvalidPitch", Message: name}
}

func errTemplateParse(err error) *ComposeError {
	return &ComposeError{Kind: "TemplateParse", Message: err.Error()}
}

// BackendIOError reports failure to create/read/write a temp file, or a
// backend invocation that exited non-zero or wrote an error marker to stdout.
type BackendIOError struct {
	Message string
	Stderr  string
}

func (e *BackendIOError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("backend I/O error: %s: %s", e.Message, e.Stderr)
	}
	return "backend I/O error: " + e.Message
}

// CancelledError reports that the cancellation token was already set when
// synthesize() was entered.
type CancelledError struct{}

func (e *CancelledError) Error() string { return "synthesis cancelled" }

// InternalError reports an unreachable-invariant violation.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string { return "internal error: " + e.Message }
