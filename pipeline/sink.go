package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/eokit/stacforge/errors"
)

// Sink receives rendered documents. Implementations must be safe for
// concurrent writes.
type Sink interface {
	Write(doc map[string]any) error
	Close() error
}

// FileSink writes one file per document. The pattern must contain "{}",
// replaced with the item id.
type FileSink struct {
	pattern   string
	minify    bool
	overwrite bool
	mu        sync.Mutex
}

func NewFileSink(pattern string, minify, overwrite bool) (*FileSink, error) {
	if !strings.Contains(pattern, "{}") {
		return nil, errors.Newf("output pattern %q has no {} placeholder", pattern)
	}
	return &FileSink{pattern: pattern, minify: minify, overwrite: overwrite}, nil
}

func (s *FileSink) Write(doc map[string]any) error {
	id, _ := doc["id"].(string)
	if id == "" {
		return errors.New("document has no id")
	}
	path := strings.Replace(s.pattern, "{}", id, 1)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", filepath.Dir(path))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.Newf("%s already exists", path)
		}
	}
	data, err := encodeDoc(doc, s.minify)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *FileSink) Close() error { return nil }

// NDJSONSink appends documents to newline-delimited JSON files, starting a
// new part file every limit documents. A zero limit keeps everything in
// one file.
type NDJSONSink struct {
	path  string
	limit int

	mu    sync.Mutex
	f     *os.File
	count int
	part  int
}

func NewNDJSONSink(path string, limit int) *NDJSONSink {
	return &NDJSONSink{path: path, limit: limit}
}

func (s *NDJSONSink) Write(doc map[string]any) error {
	data, err := encodeDoc(doc, true)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil || (s.limit > 0 && s.count >= s.limit) {
		if err := s.rollLocked(); err != nil {
			return err
		}
	}
	if _, err := s.f.Write(append(data, '\n')); err != nil {
		return errors.Wrapf(err, "writing %s", s.f.Name())
	}
	s.count++
	return nil
}

func (s *NDJSONSink) rollLocked() error {
	if s.f != nil {
		if err := s.f.Close(); err != nil {
			return errors.Wrap(err, "closing part file")
		}
		s.part++
	}
	name := s.path
	if s.limit > 0 {
		ext := filepath.Ext(s.path)
		name = fmt.Sprintf("%s-%05d%s", strings.TrimSuffix(s.path, ext), s.part, ext)
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrapf(err, "creating %s", name)
	}
	s.f = f
	s.count = 0
	return nil
}

func (s *NDJSONSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

// MemorySink collects documents in memory, for tests and library callers.
type MemorySink struct {
	mu   sync.Mutex
	Docs []map[string]any
}

func (s *MemorySink) Write(doc map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Docs = append(s.Docs, doc)
	return nil
}

func (s *MemorySink) Close() error { return nil }

func encodeDoc(doc map[string]any, minify bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if minify {
		data, err = json.Marshal(doc)
	} else {
		data, err = json.MarshalIndent(doc, "", "  ")
	}
	if err != nil {
		return nil, errors.Wrap(err, "encoding document")
	}
	return data, nil
}
