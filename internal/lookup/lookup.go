// Package lookup is the interactive keyphrase shell: type a document name
// to print the keyphrases stored for it, or the path of a document file to
// extract them on the spot.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/c-bata/go-prompt"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/document"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/pipeline"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/source"
)

const maxSuggestions = 12

type Processor interface {
	Process(ctx context.Context, fields document.Fields) (*pipeline.Result, error)
}

type Handler struct {
	results map[string]*pipeline.Result
	names   []string
	proc    Processor
	out     io.Writer
}

// NewHandler serves stored results and, when proc is not nil, extracts
// from document files.
func NewHandler(results map[string]*pipeline.Result, proc Processor, out io.Writer) *Handler {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	return &Handler{results: results, names: names, proc: proc, out: out}
}

// Lookup prints the keyphrases for one input line.
func (h *Handler) Lookup(ctx context.Context, in string) error {
	in = strings.TrimSpace(in)
	if in == "" {
		return nil
	}
	if r, ok := h.results[in]; ok {
		h.print(r)
		return nil
	}
	if h.proc != nil {
		if _, err := os.Stat(in); err == nil {
			return h.extract(ctx, in)
		}
	}
	return fmt.Errorf("no keyphrases for %q", in)
}

func (h *Handler) extract(ctx context.Context, path string) error {
	src, err := source.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	for {
		fields, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		r, err := h.proc.Process(ctx, fields)
		if err != nil {
			return fmt.Errorf("%s: %w", fields.Name, err)
		}
		h.print(r)
	}
}

func (h *Handler) print(r *pipeline.Result) {
	fmt.Fprintf(h.out, "# %s (%s)\n", r.Name, r.Language)
	for _, kp := range r.Keyphrases {
		fmt.Fprintln(h.out, kp.Text)
	}
}

// Suggest returns up to maxSuggestions stored names starting with prefix.
func (h *Handler) Suggest(prefix string) []prompt.Suggest {
	if prefix == "" {
		return nil
	}
	i := sort.SearchStrings(h.names, prefix)
	var s []prompt.Suggest
	for ; i < len(h.names) && len(s) < maxSuggestions; i++ {
		name := h.names[i]
		if !strings.HasPrefix(name, prefix) {
			break
		}
		s = append(s, prompt.Suggest{
			Text:        name,
			Description: fmt.Sprintf("%s, %d keyphrases", h.results[name].Language, len(h.results[name].Keyphrases)),
		})
	}
	return s
}

// Run reads names until "quit" or end of input.
func (h *Handler) Run(ctx context.Context) error {
	fmt.Fprintf(h.out, "%d documents loaded, type a name or a document file, quit to exit\n", len(h.names))
	history := []string{}
	for {
		in := prompt.Input("Input file: ", func(d prompt.Document) []prompt.Suggest {
			return h.Suggest(d.TextBeforeCursor())
		},
			prompt.OptionTitle("keyphrase lookup"),
			prompt.OptionPrefixTextColor(prompt.Yellow),
			prompt.OptionPreviewSuggestionTextColor(prompt.Blue),
			prompt.OptionSelectedSuggestionBGColor(prompt.LightGray),
			prompt.OptionMaxSuggestion(maxSuggestions),
			prompt.OptionSuggestionBGColor(prompt.DarkGray),
			prompt.OptionHistory(history),
		)
		if in == "quit" || ctx.Err() != nil {
			return nil
		}
		history = append(history, in)
		if err := h.Lookup(ctx, in); err != nil {
			fmt.Fprintln(h.out, err)
		}
	}
}
