package source

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/document"
	apperrors "github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/errors"
)

const docs = `{"name":"EP-1","abstract":{"lang":"en","text":["A hand pump sprayer."]}}

{"name":"EP-2","description":{"lang":"fr","text":["Une pompe."," "]},"claims":{"lang":"fr","text":["Pompe."]}}
{"name":"EP-3",
{"name":"","abstract":{"text":["no language"]}}
{"name":"EP-4"}`

func drain(t *testing.T, r *Reader) (names []string, bad []error) {
	t.Helper()
	for {
		f, err := r.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return names, bad
		}
		if err != nil {
			if !apperrors.Skippable(err) {
				t.Fatalf("unexpected fatal error: %v", err)
			}
			bad = append(bad, err)
			continue
		}
		names = append(names, f.Name)
	}
}

func TestReaderDecodesAndSkips(t *testing.T) {
	names, bad := drain(t, FromReader("stdin", strings.NewReader(docs)))
	if want := []string{"EP-1", "EP-2", "EP-4"}; !reflect.DeepEqual(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
	if len(bad) != 2 {
		t.Fatalf("invalid records = %d, want 2", len(bad))
	}
	if !strings.HasPrefix(bad[0].Error(), "invalid document: stdin:4:") {
		t.Errorf("decode error = %q", bad[0])
	}
	var verr *ValidationError
	if !errors.As(bad[1], &verr) || len(verr.Fields) != 2 {
		t.Errorf("validation error = %v", bad[1])
	}
}

func TestReaderFields(t *testing.T) {
	r := FromReader("x", strings.NewReader(docs))
	r.Next(context.Background())
	f, err := r.Next(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if f.Abstract != nil || f.Language() != "fr" {
		t.Errorf("EP-2 decoded as %+v", f)
	}
	if got := f.Evidence("fr"); len(got) != 3 {
		t.Errorf("evidence = %q", got)
	}
}

func writeGzip(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	zw.Write([]byte(content))
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()
}

func TestOpenFolder(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "b.jsonl"), []byte(`{"name":"b1"}`+"\n"+`{"name":"b2"}`+"\n"), 0644)
	writeGzip(t, filepath.Join(dir, "a.jsonl.gz"), `{"name":"a1"}`)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644)
	os.Mkdir(filepath.Join(dir, "sub.jsonl"), 0755)

	r, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	names, bad := drain(t, r)
	if want := []string{"a1", "b1", "b2"}; !reflect.DeepEqual(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
	if len(bad) != 0 {
		t.Errorf("unexpected invalid records: %v", bad)
	}

	n, err := Count(dir)
	if err != nil || n != 3 {
		t.Errorf("Count = %d, %v; want 3", n, err)
	}
}

func TestOpenMissing(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not-exist", err)
	}
}

func TestNextHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := FromReader("x", strings.NewReader(docs)).Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		fields document.Fields
		bad    []string
	}{
		{"ok", document.Fields{Name: "x", Abstract: &document.Field{Language: "en", Paragraphs: []string{"a"}}}, nil},
		{"no text", document.Fields{Name: "x"}, nil},
		{"blank field needs no language", document.Fields{Name: "x", Claims: &document.Field{Paragraphs: []string{" "}}}, nil},
		{"missing name", document.Fields{Name: "  "}, []string{"name"}},
		{"long name", document.Fields{Name: strings.Repeat("n", maxNameLength+1)}, []string{"name"}},
		{"missing language", document.Fields{Name: "x", Description: &document.Field{Paragraphs: []string{"b"}}}, []string{"description"}},
		{"too long", document.Fields{Name: "x", Claims: &document.Field{Language: "en", Paragraphs: []string{strings.Repeat("c", maxTextLength+1)}}}, []string{"text"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.fields)
			if tt.bad == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
			for _, k := range tt.bad {
				if _, ok := verr.Fields[k]; !ok {
					t.Errorf("missing %q in %v", k, verr.Fields)
				}
			}
			if !errors.Is(err, apperrors.ErrInvalidDocument) {
				t.Error("validation error does not match ErrInvalidDocument")
			}
		})
	}
}
