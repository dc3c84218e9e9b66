package source

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/document"
	apperrors "github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/errors"
)

const (
	maxNameLength = 1024
	maxTextLength = 8 << 20
)

// ValidationError holds per-field validation failure messages. It matches
// ErrInvalidDocument.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return apperrors.ErrInvalidDocument }

// Validate checks the name and the text fields of a document. A document
// with no text at all is valid; the pipeline reports it as empty.
func Validate(f *document.Fields) error {
	errs := make(map[string]string)

	name := strings.TrimSpace(f.Name)
	if name == "" {
		errs["name"] = "name is required"
	} else if len(name) > maxNameLength {
		errs["name"] = fmt.Sprintf("name must be at most %d characters", maxNameLength)
	}

	total := 0
	for _, fd := range []struct {
		key   string
		field *document.Field
	}{
		{"abstract", f.Abstract},
		{"description", f.Description},
		{"claims", f.Claims},
	} {
		if !fd.field.Present() {
			continue
		}
		if strings.TrimSpace(fd.field.Language) == "" {
			errs[fd.key] = "language is required when text is present"
		}
		for _, p := range fd.field.Paragraphs {
			total += len(p)
		}
	}
	if total > maxTextLength {
		errs["text"] = fmt.Sprintf("text must be at most %d bytes", maxTextLength)
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
