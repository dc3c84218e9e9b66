// Package docfreq counts, per normalized n-gram, the number of documents
// of a corpus that contain it, and persists those counts as a TSV file the
// TF-IDF scorer loads at start-up.
package docfreq

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/candidate"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/document"
	apperrors "github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/errors"
)

// Profile records how the terms of a corpus were normalized. A scorer
// must normalize its documents the same way for the counts to apply.
type Profile struct {
	Language      string
	Normalization document.Normalization
	Stemmer       string
	Stopwords     bool
	MaxN          int
}

// String renders the profile as the tab-separated key=value pairs of the
// corpus file header.
func (p Profile) String() string {
	return strings.Join([]string{
		"lang=" + p.Language,
		"normalization=" + string(p.Normalization),
		"stemmer=" + p.Stemmer,
		"stopwords=" + strconv.FormatBool(p.Stopwords),
		"max_n=" + strconv.Itoa(p.MaxN),
	}, "\t")
}

// Compatible reports whether documents normalized under other can be
// scored against counts built under p. Language, normalization and
// stemmer must agree; n-gram size and stop-word policy may differ.
func (p Profile) Compatible(other Profile) error {
	if !strings.EqualFold(p.Language, other.Language) {
		return apperrors.Newf(apperrors.ErrInvalidConfiguration, "corpus language %q does not match %q", p.Language, other.Language)
	}
	if p.Normalization != other.Normalization {
		return apperrors.Newf(apperrors.ErrInvalidConfiguration, "corpus normalization %q does not match %q", p.Normalization, other.Normalization)
	}
	if p.Stemmer != other.Stemmer {
		return apperrors.Newf(apperrors.ErrInvalidConfiguration, "corpus stemmer %q does not match %q", p.Stemmer, other.Stemmer)
	}
	return nil
}

// Covers reports whether every candidate of an extractor with the given
// n-gram size and stop-word policy was counted under p. Longer n-grams,
// or stop-word bounded spans the corpus filtered out, would otherwise
// look unseen and get the highest idf.
func (p Profile) Covers(maxN int, filterStopwords bool) error {
	if maxN > p.MaxN {
		return apperrors.Newf(apperrors.ErrInvalidConfiguration, "n-grams up to %d requested but the corpus counted up to %d", maxN, p.MaxN)
	}
	if p.Stopwords && !filterStopwords {
		return apperrors.New(apperrors.ErrInvalidConfiguration, "corpus was built with stop-word filtering, extraction must filter stop-words too")
	}
	return nil
}

func parseProfile(fields []string) (*Profile, error) {
	p := &Profile{}
	for _, kv := range fields {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("profile entry %q is not key=value", kv)
		}
		switch key {
		case "lang":
			p.Language = value
		case "normalization":
			n, err := document.ParseNormalization(value)
			if err != nil {
				return nil, err
			}
			p.Normalization = n
		case "stemmer":
			p.Stemmer = value
		case "stopwords":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("profile stopwords: %w", err)
			}
			p.Stopwords = b
		case "max_n":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("profile max_n %q is not a positive integer", value)
			}
			p.MaxN = n
		}
	}
	return p, nil
}

// Corpus is a loaded, read-only set of document frequencies.
type Corpus struct {
	NumDocuments int
	Counts       map[string]int
	// Profile is nil for files written without a profile header.
	Profile *Profile
}

// Count returns the document frequency of term, 0 when unseen.
func (c *Corpus) Count(term string) int {
	return c.Counts[term]
}

func (c *Corpus) Len() int { return len(c.Counts) }

// DocumentFrequency accumulates counts while a corpus is built. It has a
// single writer and is not safe for concurrent use.
type DocumentFrequency struct {
	reader    *document.Reader
	extractor *candidate.Extractor
	profile   Profile
	counts    map[string]int
	numDocs   int
}

// New binds a reader and candidate rules. Terms are the same n-grams the
// extractor would produce, without any part-of-speech filter.
func New(reader *document.Reader, maxN int, filterStopwords bool) (*DocumentFrequency, error) {
	extractor, err := candidate.NewExtractor(candidate.Config{MaxN: maxN, FilterStopwords: filterStopwords})
	if err != nil {
		return nil, err
	}
	return &DocumentFrequency{
		reader:    reader,
		extractor: extractor,
		profile: Profile{
			Language:      reader.Language(),
			Normalization: reader.Normalization(),
			Stemmer:       reader.Bundle().StemmerName(),
			Stopwords:     filterStopwords,
			MaxN:          maxN,
		},
		counts: make(map[string]int),
	}, nil
}

// Process counts every distinct n-gram of one document once. Empty
// documents still increment the document total.
func (d *DocumentFrequency) Process(paragraphs []string) error {
	doc, err := d.reader.ReadText(paragraphs)
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}
	d.ProcessDocument(doc)
	return nil
}

// ProcessDocument is Process for an already normalized document.
func (d *DocumentFrequency) ProcessDocument(doc *document.Document) {
	for _, key := range d.extractor.Extract(doc).Keys() {
		d.counts[key]++
	}
	d.numDocs++
}

func (d *DocumentFrequency) Len() int          { return len(d.counts) }
func (d *DocumentFrequency) NumDocuments() int { return d.numDocs }
func (d *DocumentFrequency) Profile() Profile  { return d.profile }

func (d *DocumentFrequency) Count(term string) int {
	return d.counts[term]
}

// Merge adds the counts and document total of other into d. Both must
// have been built under the same profile.
func (d *DocumentFrequency) Merge(other *DocumentFrequency) error {
	if other.profile != d.profile {
		return apperrors.Newf(apperrors.ErrInvalidConfiguration, "cannot merge corpus built as [%s] into [%s]", other.profile, d.profile)
	}
	for term, n := range other.counts {
		d.counts[term] += n
	}
	d.numDocs += other.numDocs
	return nil
}

// Corpus returns a read-only view of the counts. The map is shared, so d
// must not be written afterwards.
func (d *DocumentFrequency) Corpus() *Corpus {
	p := d.profile
	return &Corpus{NumDocuments: d.numDocs, Counts: d.counts, Profile: &p}
}
