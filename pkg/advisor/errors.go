package advisor

import (
	"errors"
	"fmt"
)

var (
	// ErrTemplateNotFound indicates an unregistered prompt template name.
	ErrTemplateNotFound = errors.New("advisor: prompt template not found")

	// ErrAssetUnderspecified indicates an asset with neither shares nor
	// value resolvable. Request-level failure.
	ErrAssetUnderspecified = errors.New("advisor: asset underspecified")

	// ErrConversationNotFound indicates a caller-supplied conversation id
	// with no matching state.
	ErrConversationNotFound = errors.New("advisor: conversation not found")

	// ErrParseFailed indicates the model output had no locatable narrative
	// at all. Partial output never produces this; it degrades to warnings.
	ErrParseFailed = errors.New("advisor: response parse failed")
)

// MissingVariableError reports a template placeholder with no corresponding
// entry in the variables map.
type MissingVariableError struct {
	Template string
	Cause    error
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("advisor: template %s: missing variable: %v", e.Template, e.Cause)
}

func (e *MissingVariableError) Unwrap() error { return e.Cause }

// ParseWarning is a non-fatal diagnostic produced by the response parser or
// the enrichment step. Warnings ride the debug trace and, for degraded
// responses, the response itself.
type ParseWarning struct {
	Stage   string `json:"stage"`
	Line    string `json:"line,omitempty"`
	Message string `json:"message"`
}

func (w ParseWarning) String() string {
	if w.Line == "" {
		return fmt.Sprintf("%s: %s", w.Stage, w.Message)
	}
	return fmt.Sprintf("%s: %s (line: %q)", w.Stage, w.Message, w.Line)
}
