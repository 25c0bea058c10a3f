package oplog

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// subscriberBuffer is the number of entries queued per subscriber before
// further entries are dropped for it
const subscriberBuffer = 32

// Broadcaster decorates a Sink: appended entries are stored, mirrored into
// the application log and pushed to live subscribers.
type Broadcaster struct {
	sink   Sink
	logger *zap.Logger

	mu          sync.RWMutex
	subscribers map[chan Entry]struct{}
}

func NewBroadcaster(sink Sink, logger *zap.Logger) *Broadcaster {
	return &Broadcaster{
		sink:        sink,
		logger:      logger,
		subscribers: make(map[chan Entry]struct{}),
	}
}

func (b *Broadcaster) Append(ctx context.Context, entry Entry) error {
	b.mirror(entry)

	err := b.sink.Append(ctx, entry)
	if err != nil {
		b.logger.Warn("failed to store operational log entry", zap.Error(err))
	}

	b.mu.RLock()
	for ch := range b.subscribers {
		select {
		case ch <- entry:
		default:
		}
	}
	b.mu.RUnlock()

	return err
}

func (b *Broadcaster) Recent(ctx context.Context, limit int) ([]Entry, error) {
	return b.sink.Recent(ctx, limit)
}

// Subscribe registers a live listener. The returned cancel func must be
// called to release it; it closes the channel.
func (b *Broadcaster) Subscribe() (<-chan Entry, func()) {
	ch := make(chan Entry, subscriberBuffer)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Subscribers returns the number of live listeners
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

func (b *Broadcaster) mirror(entry Entry) {
	fields := []zap.Field{
		zap.String("oplog_id", entry.ID),
		zap.String("source", entry.Source),
	}
	if len(entry.Details) > 0 {
		fields = append(fields, zap.Any("details", entry.Details))
	}

	switch entry.Type {
	case TypeError:
		b.logger.Error(entry.Message, fields...)
	case TypeWarning:
		b.logger.Warn(entry.Message, fields...)
	default:
		b.logger.Info(entry.Message, fields...)
	}
}
