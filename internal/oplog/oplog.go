// Package oplog keeps a bounded, newest-first log of integration events that
// staff can inspect from the dashboard.
package oplog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultCapacity is the number of entries retained by the sinks
const DefaultCapacity = 100

// Type classifies an entry
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeInfo    Type = "info"
	TypeWarning Type = "warning"
)

// Entry is one operational log record
type Entry struct {
	ID        string         `json:"id"`
	Type      Type           `json:"type"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Source    string         `json:"source"`
	Timestamp time.Time      `json:"timestamp"`
}

// Sink stores entries. Recent returns at most limit entries, newest first; a
// limit of zero or less returns everything retained.
type Sink interface {
	Append(ctx context.Context, entry Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// NewEntry builds an entry stamped with a fresh id and the current time
func NewEntry(typ Type, source, message string, details map[string]any) Entry {
	return Entry{
		ID:        uuid.NewString(),
		Type:      typ,
		Message:   message,
		Details:   details,
		Source:    source,
		Timestamp: time.Now().UTC(),
	}
}

// Record appends a new entry to sink. Sink failures are returned but callers
// on request paths usually ignore them.
func Record(ctx context.Context, sink Sink, typ Type, source, message string, details map[string]any) error {
	if sink == nil {
		return nil
	}
	return sink.Append(ctx, NewEntry(typ, source, message, details))
}
