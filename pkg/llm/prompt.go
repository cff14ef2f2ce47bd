package llm

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"text/template"
)

// UserTemplate wraps a text/template parsed from an in-code template body.
// Missing placeholder values fail the render rather than producing "<no
// value>" holes in a prompt.
type UserTemplate struct {
	name string
	body string
	tmpl *template.Template
	hash string
}

// NewUserTemplate parses body under the given name.
func NewUserTemplate(name, body string) (*UserTemplate, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("prompt template name is empty")
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %q: %w", name, err)
	}
	return &UserTemplate{
		name: name,
		body: body,
		tmpl: tmpl,
		hash: DigestString(body),
	}, nil
}

// MustUserTemplate parses body and panics on error. Intended for the
// in-code registry where a malformed template is a programming error.
func MustUserTemplate(name, body string) *UserTemplate {
	t, err := NewUserTemplate(name, body)
	if err != nil {
		panic(err)
	}
	return t
}

// Render executes the template with the provided data.
func (t *UserTemplate) Render(data any) (string, error) {
	if t == nil || t.tmpl == nil {
		return "", fmt.Errorf("prompt template not parsed")
	}
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute prompt template %q: %w", t.name, err)
	}
	return buf.String(), nil
}

// Digest returns the sha256 hash of the template body for observability.
func (t *UserTemplate) Digest() string {
	if t == nil {
		return ""
	}
	return t.hash
}

// DigestString returns the sha256 digest for the provided string.
func DigestString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
