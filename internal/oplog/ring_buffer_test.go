package oplog_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/privatinsolvenz/lead-dashboard/internal/oplog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingBuffer_NewestFirst(t *testing.T) {
	buf := oplog.NewRingBuffer(5)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, buf.Append(ctx, oplog.Entry{Message: fmt.Sprintf("m%d", i)}))
	}

	entries, err := buf.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "m2", entries[0].Message)
	assert.Equal(t, "m0", entries[2].Message)
}

func TestRingBuffer_Bounded(t *testing.T) {
	buf := oplog.NewRingBuffer(0)
	ctx := context.Background()

	for i := 0; i < oplog.DefaultCapacity+20; i++ {
		require.NoError(t, buf.Append(ctx, oplog.Entry{Message: fmt.Sprintf("m%d", i)}))
	}

	assert.Equal(t, oplog.DefaultCapacity, buf.Len())

	entries, err := buf.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, oplog.DefaultCapacity)
	assert.Equal(t, fmt.Sprintf("m%d", oplog.DefaultCapacity+19), entries[0].Message)
	assert.Equal(t, "m20", entries[len(entries)-1].Message)
}

func TestRingBuffer_Limit(t *testing.T) {
	buf := oplog.NewRingBuffer(10)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		require.NoError(t, buf.Append(ctx, oplog.Entry{Message: fmt.Sprintf("m%d", i)}))
	}

	entries, err := buf.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "m3", entries[0].Message)
	assert.Equal(t, "m2", entries[1].Message)

	entries, err = buf.Recent(ctx, 50)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestRingBuffer_ConcurrentAppend(t *testing.T) {
	buf := oplog.NewRingBuffer(50)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_ = buf.Append(ctx, oplog.Entry{Message: fmt.Sprintf("g%d-%d", i, j)})
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, buf.Len())
}

func TestRecord(t *testing.T) {
	buf := oplog.NewRingBuffer(5)
	ctx := context.Background()

	require.NoError(t, oplog.Record(ctx, buf, oplog.TypeSuccess, "webhook", "Lead created", map[string]any{"taskId": "T1"}))
	require.NoError(t, oplog.Record(ctx, nil, oplog.TypeInfo, "webhook", "ignored", nil))

	entries, err := buf.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].ID)
	assert.Equal(t, oplog.TypeSuccess, entries[0].Type)
	assert.Equal(t, "webhook", entries[0].Source)
	assert.Equal(t, "T1", entries[0].Details["taskId"])
	assert.False(t, entries[0].Timestamp.IsZero())
}
