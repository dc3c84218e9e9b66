// Package model keeps one scorer per language, built on first use. Loads
// of the same language are collapsed into one, and a failed load is
// remembered so the language is reported once and then skipped until it
// is evicted.
package model

import (
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/metrics"
)

// Loader builds the model of one language.
type Loader[M any] func(lang string) (M, error)

type entry[M any] struct {
	model M
	err   error
}

// Cache maps language codes to loaded models.
type Cache[M any] struct {
	name    string
	load    Loader[M]
	mu      sync.RWMutex
	entries map[string]entry[M]
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewCache creates an empty cache. name labels log lines and metrics
// (for example "tfidf"); m may be nil.
func NewCache[M any](name string, load Loader[M], m *metrics.Metrics) *Cache[M] {
	return &Cache[M]{
		name:    name,
		load:    load,
		entries: make(map[string]entry[M]),
		metrics: m,
		logger:  slog.Default().With("component", "model-cache", "method", name),
	}
}

// Get returns the model for lang, loading it on first use. A cached load
// error is returned again without retrying.
func (c *Cache[M]) Get(lang string) (M, error) {
	c.mu.RLock()
	e, ok := c.entries[lang]
	c.mu.RUnlock()
	if ok {
		return e.model, e.err
	}

	v, _, _ := c.group.Do(lang, func() (interface{}, error) {
		c.mu.RLock()
		e, ok := c.entries[lang]
		c.mu.RUnlock()
		if ok {
			return e, nil
		}
		m, err := c.load(lang)
		e = entry[M]{model: m, err: err}
		c.mu.Lock()
		c.entries[lang] = e
		c.mu.Unlock()

		c.metrics.ModelLoaded(c.name, lang, err)
		if err != nil {
			c.logger.Warn("model unavailable, skipping language", "language", lang, "error", err)
		} else {
			c.logger.Info("model loaded", "language", lang)
		}
		return e, nil
	})
	e = v.(entry[M])
	return e.model, e.err
}

// Evict forgets lang so the next Get loads it again, for instance after
// its corpus file was replaced.
func (c *Cache[M]) Evict(lang string) {
	c.mu.Lock()
	e, ok := c.entries[lang]
	delete(c.entries, lang)
	c.mu.Unlock()
	if ok && e.err == nil {
		c.metrics.ModelEvicted(c.name)
	}
}

// Languages lists the languages whose models loaded successfully.
func (c *Cache[M]) Languages() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.entries))
	for lang, e := range c.entries {
		if e.err == nil {
			out = append(out, lang)
		}
	}
	sort.Strings(out)
	return out
}

// Failed maps each language whose load failed to its error.
func (c *Cache[M]) Failed() map[string]error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]error)
	for lang, e := range c.entries {
		if e.err != nil {
			out[lang] = e.err
		}
	}
	return out
}
