package document

import "strings"

// Field is one text field of a patent-style document together with the
// language it was written in.
type Field struct {
	Language   string   `json:"lang"`
	Paragraphs []string `json:"text"`
}

// Present reports whether the field exists and carries non-blank text.
func (f *Field) Present() bool {
	if f == nil {
		return false
	}
	for _, p := range f.Paragraphs {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}

// Fields is the ingested form of a document. Absent fields are nil.
type Fields struct {
	Name        string `json:"name"`
	Abstract    *Field `json:"abstract,omitempty"`
	Description *Field `json:"description,omitempty"`
	Claims      *Field `json:"claims,omitempty"`
}

// Language is the abstract's language, falling back to the description's.
// It is empty when neither field is present.
func (f Fields) Language() string {
	if f.Abstract.Present() && f.Abstract.Language != "" {
		return f.Abstract.Language
	}
	if f.Description.Present() && f.Description.Language != "" {
		return f.Description.Language
	}
	return ""
}

// HasAbstract reports whether a real abstract is available; otherwise one
// is synthesized from the description.
func (f Fields) HasAbstract() bool {
	return f.Abstract.Present()
}

// Evidence returns the abstract followed by the description and claims
// paragraphs written in lang. Term frequencies are counted over this union.
func (f Fields) Evidence(lang string) []string {
	var out []string
	if f.Abstract.Present() {
		out = append(out, f.Abstract.Paragraphs...)
	}
	for _, field := range []*Field{f.Description, f.Claims} {
		if field.Present() && strings.EqualFold(field.Language, lang) {
			out = append(out, field.Paragraphs...)
		}
	}
	return out
}

// Paragraphs returns every paragraph regardless of language, abstract
// first. Used when building a corpus.
func (f Fields) Paragraphs() []string {
	var out []string
	for _, field := range []*Field{f.Abstract, f.Description, f.Claims} {
		if field.Present() {
			out = append(out, field.Paragraphs...)
		}
	}
	return out
}

// ReadFields reads the primary text and the evidence text of f in the
// reader's language. The primary text is the abstract or, when there is
// none, an abstract synthesized from the leading description sentences
// within budget tokens.
func (r *Reader) ReadFields(f Fields, budget int) (primary, evidence *Document, err error) {
	evidence, err = r.ReadText(f.Evidence(r.Language()))
	if err != nil {
		return nil, nil, err
	}
	if f.HasAbstract() {
		primary, err = r.ReadText(f.Abstract.Paragraphs)
		return primary, evidence, err
	}
	if !f.Description.Present() || !strings.EqualFold(f.Description.Language, r.Language()) {
		return &Document{Language: r.Language()}, evidence, nil
	}
	desc, err := r.ReadText(f.Description.Paragraphs)
	if err != nil {
		return nil, nil, err
	}
	return Synthesize(desc, budget), evidence, nil
}
