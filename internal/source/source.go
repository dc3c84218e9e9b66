// Package source reads documents stored as JSON lines, one document per
// line, from a single file or from every *.jsonl / *.jsonl.gz file of a
// folder.
package source

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/document"
	apperrors "github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/errors"
)

// Files lists the document files under path in lexical order. A regular
// file is returned as is.
func Files(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening input %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("listing input %s: %w", path, err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !(strings.HasSuffix(name, ".jsonl") || strings.HasSuffix(name, ".jsonl.gz")) {
			continue
		}
		files = append(files, filepath.Join(path, name))
	}
	sort.Strings(files)
	return files, nil
}

type stream struct {
	path    string
	line    int
	buf     *bufio.Reader
	closers []io.Closer
}

func openFile(path string) (*stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	s := &stream{path: path, closers: []io.Closer{f}}
	var src io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		s.closers = append([]io.Closer{gz}, s.closers...)
		src = gz
	}
	s.buf = bufio.NewReaderSize(src, 1<<16)
	return s, nil
}

func (s *stream) close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Reader yields the documents of a list of files in order. It is not safe
// for concurrent use.
type Reader struct {
	files []string
	next  int
	cur   *stream
}

// Open reads every document file found at path.
func Open(path string) (*Reader, error) {
	files, err := Files(path)
	if err != nil {
		return nil, err
	}
	return &Reader{files: files}, nil
}

// FromReader reads documents from r; name labels error messages.
func FromReader(name string, r io.Reader) *Reader {
	return &Reader{cur: &stream{path: name, buf: bufio.NewReaderSize(r, 1<<16)}}
}

// Next returns the next document, io.EOF after the last one, or an
// ErrInvalidDocument error for a line that does not decode or validate.
// Reading may continue after an invalid line.
func (r *Reader) Next(ctx context.Context) (document.Fields, error) {
	for {
		if err := ctx.Err(); err != nil {
			return document.Fields{}, err
		}
		if r.cur == nil {
			if r.next >= len(r.files) {
				return document.Fields{}, io.EOF
			}
			cur, err := openFile(r.files[r.next])
			if err != nil {
				return document.Fields{}, err
			}
			r.cur = cur
			r.next++
		}
		line, err := r.cur.buf.ReadBytes('\n')
		if len(line) > 0 {
			r.cur.line++
			if line = bytes.TrimSpace(line); len(line) > 0 {
				return r.cur.decode(line)
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			cerr := r.cur.close()
			r.cur = nil
			if cerr != nil {
				return document.Fields{}, cerr
			}
			continue
		}
		if err != nil {
			return document.Fields{}, fmt.Errorf("reading %s: %w", r.cur.path, err)
		}
	}
}

func (s *stream) decode(line []byte) (document.Fields, error) {
	var f document.Fields
	if err := json.Unmarshal(line, &f); err != nil {
		return document.Fields{}, apperrors.Newf(apperrors.ErrInvalidDocument, "%s:%d: %v", s.path, s.line, err)
	}
	if err := Validate(&f); err != nil {
		return document.Fields{}, fmt.Errorf("%s:%d: %w", s.path, s.line, err)
	}
	return f, nil
}

// Close releases the file being read, if any.
func (r *Reader) Close() error {
	if r.cur == nil {
		return nil
	}
	err := r.cur.close()
	r.cur = nil
	return err
}

// Count returns the number of non-blank lines under path, which is the
// number of records Next will yield, invalid ones included.
func Count(path string) (int, error) {
	files, err := Files(path)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, file := range files {
		s, err := openFile(file)
		if err != nil {
			return 0, err
		}
		for {
			line, err := s.buf.ReadBytes('\n')
			if len(bytes.TrimSpace(line)) > 0 {
				n++
			}
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				s.close()
				return 0, fmt.Errorf("reading %s: %w", file, err)
			}
		}
		if err := s.close(); err != nil {
			return 0, err
		}
	}
	return n, nil
}
