package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
)

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []string
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, string(m.Key))
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func TestConsumerCommitsHandledMessages(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{
		{Key: []byte("a"), Value: []byte(`{}`)},
		{Key: []byte("bad"), Value: []byte(`{}`)},
		{Key: []byte("c"), Value: []byte(`{}`)},
	}}
	ctx, cancel := context.WithCancel(context.Background())
	seen := 0
	c := newConsumer(r, "docs", func(_ context.Context, key, _ []byte) error {
		seen++
		if seen == 3 {
			defer cancel()
		}
		if string(key) == "bad" {
			return errors.New("handler failed")
		}
		return nil
	})
	if err := c.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if seen != 3 {
		t.Errorf("handled %d messages, want 3", seen)
	}
	if len(r.committed) != 2 || r.committed[0] != "a" || r.committed[1] != "c" {
		t.Errorf("committed = %v, want [a c]", r.committed)
	}
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestProducerEncodesJSON(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "results")
	if err := p.PublishBatch(context.Background(), []Event{{Key: "EP-1", Value: map[string]int{"n": 1}}}); err != nil {
		t.Fatal(err)
	}
	if err := p.PublishBatch(context.Background(), []Event{{Key: "EP-2", Value: "x"}, {Key: "EP-3", Value: "y"}}); err != nil {
		t.Fatal(err)
	}
	if err := p.PublishBatch(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if len(w.msgs) != 3 {
		t.Fatalf("messages = %d, want 3", len(w.msgs))
	}
	var v map[string]int
	if err := json.Unmarshal(w.msgs[0].Value, &v); err != nil || v["n"] != 1 {
		t.Errorf("first value = %s", w.msgs[0].Value)
	}
	if string(w.msgs[2].Key) != "EP-3" {
		t.Errorf("third key = %s", w.msgs[2].Key)
	}

	w.err = errors.New("broker down")
	if err := p.PublishBatch(context.Background(), []Event{{Key: "k", Value: 1}}); !errors.Is(err, w.err) {
		t.Errorf("err = %v", err)
	}
}

func TestDecodeJSON(t *testing.T) {
	type doc struct {
		Name string `json:"name"`
	}
	d, err := DecodeJSON[doc]([]byte(`{"name":"EP-9"}`))
	if err != nil || d.Name != "EP-9" {
		t.Errorf("DecodeJSON = %+v, %v", d, err)
	}
	if _, err := DecodeJSON[doc]([]byte(`{`)); err == nil {
		t.Error("expected a decode error")
	}
}
