package sink

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/pipeline"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/ranker"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/metrics"
)

var csvHeader = []string{"name", "keyphrases", "lang"}

// CSV writes one row per result: the document name, the keyphrase texts
// as a JSON array and the language. Rows are flushed as they are written.
type CSV struct {
	w       *csv.Writer
	closer  io.Closer
	metrics *metrics.Metrics
}

// CreateCSV truncates path and writes the header row.
func CreateCSV(path string, m *metrics.Metrics) (*CSV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating results file: %w", err)
	}
	c, err := NewCSV(f, m)
	if err != nil {
		f.Close()
		return nil, err
	}
	c.closer = f
	return c, nil
}

func NewCSV(w io.Writer, m *metrics.Metrics) (*CSV, error) {
	c := &CSV{w: csv.NewWriter(w), metrics: m}
	if err := c.w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("writing results header: %w", err)
	}
	return c, nil
}

func (c *CSV) Write(_ context.Context, r *pipeline.Result) error {
	texts, err := json.Marshal(r.Texts())
	if err == nil {
		err = c.w.Write([]string{r.Name, string(texts), r.Language})
	}
	if err == nil {
		c.w.Flush()
		err = c.w.Error()
	}
	c.metrics.SinkWrite("csv", err)
	if err != nil {
		return fmt.Errorf("writing result %s: %w", r.Name, err)
	}
	return nil
}

func (c *CSV) Close() error {
	c.w.Flush()
	err := c.w.Error()
	if c.closer != nil {
		if cerr := c.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// ReadCSV loads a results file written by CSV, keyed by document name.
// Scores are not stored in the file and read back as zero.
func ReadCSV(path string) (map[string]*pipeline.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening results file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(csvHeader)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: reading header: %w", path, err)
	}
	for i, h := range csvHeader {
		if header[i] != h {
			return nil, fmt.Errorf("%s: unexpected header %q", path, header)
		}
	}

	out := make(map[string]*pipeline.Result)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		var texts []string
		if err := json.Unmarshal([]byte(rec[1]), &texts); err != nil {
			line, _ := r.FieldPos(1)
			return nil, fmt.Errorf("%s:%d: keyphrases: %w", path, line, err)
		}
		kps := make([]ranker.Keyphrase, len(texts))
		for i, t := range texts {
			kps[i] = ranker.Keyphrase{Text: t}
		}
		out[rec[0]] = &pipeline.Result{Name: rec[0], Keyphrases: kps, Language: rec[2]}
	}
}
