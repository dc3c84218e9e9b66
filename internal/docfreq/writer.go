package docfreq

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	headerDocs    = "--NB_DOC--"
	headerProfile = "--PROFILE--"
)

type row struct {
	term  string
	n     int
	count int
}

func sortedRows(counts map[string]int) []row {
	rows := make([]row, 0, len(counts))
	for term, c := range counts {
		rows = append(rows, row{term: term, n: strings.Count(term, " ") + 1, count: c})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].n != rows[j].n {
			return rows[i].n < rows[j].n
		}
		return rows[i].term < rows[j].term
	})
	return rows
}

// WriteTSV atomically writes the counts to path. It writes to a temporary
// file in the same directory, syncs it and renames it over path, so a
// reader never observes a partial file.
func (d *DocumentFrequency) WriteTSV(path string) error {
	if d.numDocs == 0 {
		return fmt.Errorf("cannot write empty corpus")
	}
	return writeTSV(path, d.numDocs, &d.profile, d.counts)
}

func writeTSV(path string, numDocs int, profile *Profile, counts map[string]int) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating corpus directory: %w", err)
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp corpus file: %w", err)
	}
	tmpPath := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmpPath)
		}
	}()

	w := bufio.NewWriterSize(f, 1<<16)
	fmt.Fprintf(w, "%s\t%d\n", headerDocs, numDocs)
	if profile != nil {
		fmt.Fprintf(w, "%s\t%s\n", headerProfile, profile)
	}
	for _, r := range sortedRows(counts) {
		w.WriteString(r.term)
		w.WriteByte('\t')
		w.WriteString(strconv.Itoa(r.n))
		w.WriteByte('\t')
		w.WriteString(strconv.Itoa(r.count))
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing corpus file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing corpus file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing corpus file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming corpus file: %w", err)
	}
	return nil
}
