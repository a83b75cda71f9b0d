package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps history in a JSON document on disk. The document maps
// history keys to session lists, so several keys can share one file the way
// browser local storage shares one origin.
type FileStore struct {
	history
	path string
	key  string
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store for key inside the document at path. An empty
// key uses DefaultKey.
func NewFileStore(path, key string) *FileStore {
	if key == "" {
		key = DefaultKey
	}
	s := &FileStore{path: path, key: key}
	s.b = s
	return s
}

// Init creates the parent directory and an empty document if none exists.
func (s *FileStore) Init(context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return s.writeDocument(map[string]json.RawMessage{})
	} else if err != nil {
		return fmt.Errorf("stat history file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error {
	s.markClosed()
	return nil
}

func (s *FileStore) readDocument() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history file: %w", err)
	}
	doc := map[string]json.RawMessage{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode history file %s: %w", s.path, err)
	}
	return doc, nil
}

// writeDocument replaces the file atomically via a temp file and rename.
// The document is written compact: indenting would also re-indent the raw
// analysis JSON inside each record.
func (s *FileStore) writeDocument(doc map[string]json.RawMessage) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode history file: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".history-*.json")
	if err != nil {
		return fmt.Errorf("create temp history file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write history file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close history file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace history file: %w", err)
	}
	return nil
}

func (s *FileStore) load(context.Context) ([]Record, error) {
	doc, err := s.readDocument()
	if err != nil {
		return nil, err
	}
	return decodeRecords(doc[s.key])
}

func (s *FileStore) update(_ context.Context, fn func([]Record) []Record) error {
	doc, err := s.readDocument()
	if err != nil {
		return err
	}
	records, err := decodeRecords(doc[s.key])
	if err != nil {
		return err
	}

	next := fn(records)
	if next == nil {
		delete(doc, s.key)
	} else {
		raw, err := marshalRecords(next)
		if err != nil {
			return err
		}
		doc[s.key] = raw
	}
	return s.writeDocument(doc)
}
