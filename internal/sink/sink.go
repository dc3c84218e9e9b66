// Package sink writes extraction results: to the CSV file every batch run
// produces and, optionally, to a Postgres table and a Kafka topic.
package sink

import (
	"context"
	"errors"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/pipeline"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/ranker"
)

type Sink interface {
	Write(ctx context.Context, r *pipeline.Result) error
	Close() error
}

// Event is the JSON form of a result published to Kafka.
type Event struct {
	Name        string             `json:"name"`
	Method      string             `json:"method"`
	Language    string             `json:"lang"`
	Keyphrases  []ranker.Keyphrase `json:"keyphrases"`
	ExtractedAt time.Time          `json:"extracted_at"`
}

func NewEvent(method pipeline.Method, r *pipeline.Result) Event {
	return Event{
		Name:        r.Name,
		Method:      string(method),
		Language:    r.Language,
		Keyphrases:  r.Keyphrases,
		ExtractedAt: time.Now().UTC(),
	}
}

// Multi writes every result to each sink in order and stops at the first
// failure.
type Multi []Sink

func (m Multi) Write(ctx context.Context, r *pipeline.Result) error {
	for _, s := range m {
		if err := s.Write(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and joins their errors.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
