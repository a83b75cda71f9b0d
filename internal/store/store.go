// Package store persists assistant chat history. Every backend keeps the
// whole history as one list under a single key, newest first and capped at
// MaxRecords: saving dedupes by session ID, prepends, then truncates, so the
// last write for a session wins and the oldest session is evicted.
//
// Backends: MemoryStore (tests), FileStore (a JSON document on disk holding
// any number of keys), RedisStore (one string key) and DynamoStore (one item
// per key with a TTL attribute).
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// MaxRecords is the number of sessions kept per history key.
const MaxRecords = 10

// DefaultKey is the history key used when none is configured.
const DefaultKey = "chatbot_history"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	// IsError marks an inline error shown in place of a model reply.
	IsError bool `json:"isError,omitempty"`
}

// Record is one saved chat session. AnalysisData and AnalyticsData are the
// context the session ran with, kept as raw JSON so the store does not
// depend on their types.
type Record struct {
	ID            string          `json:"id"`
	Timestamp     time.Time       `json:"timestamp"`
	Messages      []Message       `json:"messages"`
	AnalysisData  json.RawMessage `json:"analysisData,omitempty"`
	AnalyticsData json.RawMessage `json:"analyticsData,omitempty"`
	CampaignType  string          `json:"campaignType"`
	Summary       string          `json:"summary"`
}

// Store is a chat history backend. Implementations are safe for concurrent
// use. Load returns (nil, nil) when the session is not stored.
type Store interface {
	// Init prepares the backend (creates files, checks connectivity).
	Init(ctx context.Context) error
	Save(ctx context.Context, r Record) error
	Load(ctx context.Context, id string) (*Record, error)
	// List returns every stored session, newest first.
	List(ctx context.Context) ([]Record, error)
	Delete(ctx context.Context, id string) error
	// Clear removes the history key entirely.
	Clear(ctx context.Context) error
	// Flush persists anything buffered. Every backend here writes through,
	// so Flush only reports a closed store.
	Flush(ctx context.Context) error
	Close() error
}

// upsert applies the save rule: drop any record with r's ID, prepend r and
// keep at most MaxRecords.
func upsert(records []Record, r Record) []Record {
	out := make([]Record, 0, min(len(records)+1, MaxRecords))
	out = append(out, r)
	for _, existing := range records {
		if len(out) == MaxRecords {
			break
		}
		if existing.ID != r.ID {
			out = append(out, existing)
		}
	}
	return out
}

func without(records []Record, id string) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}

// backend is the per-store persistence primitive. update loads the list,
// applies fn and writes the result back; a nil result removes the key.
type backend interface {
	load(ctx context.Context) ([]Record, error)
	update(ctx context.Context, fn func([]Record) []Record) error
}

// history implements the Store operations shared by every backend.
type history struct {
	mu     sync.Mutex
	b      backend
	closed bool
}

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store is closed")

func (h *history) check() error {
	if h.closed {
		return ErrClosed
	}
	return nil
}

func (h *history) Save(ctx context.Context, r Record) error {
	if r.ID == "" {
		return errors.New("save: record has no id")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.check(); err != nil {
		return err
	}
	return h.b.update(ctx, func(records []Record) []Record { return upsert(records, r) })
}

func (h *history) Load(ctx context.Context, id string) (*Record, error) {
	records, err := h.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, nil
}

func (h *history) List(ctx context.Context) ([]Record, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.check(); err != nil {
		return nil, err
	}
	records, err := h.b.load(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

func (h *history) Delete(ctx context.Context, id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.check(); err != nil {
		return err
	}
	return h.b.update(ctx, func(records []Record) []Record {
		out := without(records, id)
		if len(out) == 0 {
			return nil
		}
		return out
	})
}

func (h *history) Clear(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.check(); err != nil {
		return err
	}
	return h.b.update(ctx, func([]Record) []Record { return nil })
}

func (h *history) Flush(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.check()
}

func (h *history) markClosed() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
}

func decodeRecords(data []byte) ([]Record, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return records, nil
}

func marshalRecords(records []Record) ([]byte, error) {
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	return data, nil
}
