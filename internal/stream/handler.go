// Package stream turns document events consumed from Kafka into
// keyphrase results.
package stream

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/document"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/pipeline"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/sink"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/source"
	apperrors "github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/logger"
)

type Processor interface {
	Process(ctx context.Context, fields document.Fields) (*pipeline.Result, error)
}

// HandleMessage returns a MessageHandler that extracts the keyphrases of
// each document event and writes the result to out. Undecodable events
// and documents that can only be skipped are committed; extraction or
// sink failures leave the message uncommitted.
func HandleMessage(p Processor, out sink.Sink) kafka.MessageHandler {
	log := slog.Default().With("component", "document-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		fields, err := kafka.DecodeJSON[document.Fields](value)
		if err != nil {
			log.Error("failed to decode document event",
				"error", err,
				"key", string(key),
			)
			return nil
		}
		if fields.Name == "" {
			fields.Name = string(key)
		}
		if err := source.Validate(&fields); err != nil {
			log.Warn("invalid document event", "key", string(key), "error", err)
			return nil
		}

		dctx := logger.WithDocument(ctx, fields.Name)
		res, err := p.Process(dctx, fields)
		if err != nil {
			if apperrors.Skippable(err) {
				logger.FromContext(dctx).Warn("skipping document", "error", err)
				return nil
			}
			return fmt.Errorf("extracting keyphrases of %s: %w", fields.Name, err)
		}
		if err := out.Write(ctx, res); err != nil {
			return fmt.Errorf("writing result of %s: %w", fields.Name, err)
		}
		logger.FromContext(dctx).Debug("document processed",
			"lang", res.Language,
			"keyphrases", len(res.Keyphrases),
		)
		return nil
	}
}
