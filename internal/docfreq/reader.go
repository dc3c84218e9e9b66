package docfreq

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/errors"
)

const maxLineSize = 1 << 20

func malformed(path string, line int, format string, args ...any) error {
	return apperrors.Newf(apperrors.ErrMalformedCorpusFile, "%s:%d: %s", path, line, fmt.Sprintf(format, args...))
}

// ReadTSV is the inverse of WriteTSV. It returns the document total and
// the per-term counts.
func ReadTSV(path string) (int, map[string]int, error) {
	c, err := Load(path)
	if err != nil {
		return 0, nil, err
	}
	return c.NumDocuments, c.Counts, nil
}

// Load reads a corpus file including its optional profile header. Every
// structural or invariant violation is reported as ErrMalformedCorpusFile
// with the offending line number.
func Load(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		line++
		return sc.Text(), true
	}

	text, ok := next()
	if !ok {
		if err := sc.Err(); err != nil {
			return nil, scanError(path, line+1, err)
		}
		return nil, malformed(path, 1, "missing %s header", headerDocs)
	}
	parts := strings.Split(text, "\t")
	if len(parts) != 2 || parts[0] != headerDocs {
		return nil, malformed(path, line, "expected %s header", headerDocs)
	}
	numDocs, err := strconv.Atoi(parts[1])
	if err != nil || numDocs < 1 {
		return nil, malformed(path, line, "document total %q must be a positive integer", parts[1])
	}

	corpus := &Corpus{NumDocuments: numDocs, Counts: make(map[string]int)}
	for {
		text, ok := next()
		if !ok {
			break
		}
		parts := strings.Split(text, "\t")
		if line == 2 && parts[0] == headerProfile {
			p, err := parseProfile(parts[1:])
			if err != nil {
				return nil, malformed(path, line, "%v", err)
			}
			corpus.Profile = p
			continue
		}
		if len(parts) != 3 {
			return nil, malformed(path, line, "expected 3 tab-separated fields, got %d", len(parts))
		}
		term := parts[0]
		if term == "" {
			return nil, malformed(path, line, "empty term")
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil || n != strings.Count(term, " ")+1 {
			return nil, malformed(path, line, "n-gram size %q does not match term %q", parts[1], term)
		}
		count, err := strconv.Atoi(parts[2])
		if err != nil || count < 1 || count > numDocs {
			return nil, malformed(path, line, "count %q outside [1, %d]", parts[2], numDocs)
		}
		if _, dup := corpus.Counts[term]; dup {
			return nil, malformed(path, line, "duplicate term %q", term)
		}
		corpus.Counts[term] = count
	}
	if err := sc.Err(); err != nil {
		return nil, scanError(path, line+1, err)
	}
	return corpus, nil
}

func scanError(path string, line int, err error) error {
	if errors.Is(err, bufio.ErrTooLong) {
		return malformed(path, line, "line longer than %d bytes", maxLineSize)
	}
	return fmt.Errorf("reading corpus file: %w", err)
}
