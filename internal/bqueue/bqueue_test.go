package bqueue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chessgraph/engine/internal/position"
)

func pos(halfMove uint8) position.Position {
	return position.Position{HalfMoveClock: halfMove}
}

func TestDequeueOrdersByDepthDescending(t *testing.T) {
	q := New(0)
	q.Enqueue(1, pos(1))
	q.Enqueue(3, pos(3))
	q.Enqueue(2, pos(2))

	_, d, ok := q.TryDequeue()
	require.True(t, ok)
	require.Equal(t, 3, d)

	_, d, ok = q.TryDequeue()
	require.True(t, ok)
	require.Equal(t, 2, d)

	_, d, ok = q.TryDequeue()
	require.True(t, ok)
	require.Equal(t, 1, d)
}

func TestEnqueueDropsShallowerDuplicate(t *testing.T) {
	q := New(0)
	p := pos(9)
	q.Enqueue(5, p)
	q.Enqueue(2, p) // shallower re-enqueue of the same position is a no-op

	require.Equal(t, 1, q.Len())
	_, d, ok := q.TryDequeue()
	require.True(t, ok)
	require.Equal(t, 5, d)

	_, _, ok = q.TryDequeue()
	require.False(t, ok)
}

func TestEnqueueDeeperSupersedesShallower(t *testing.T) {
	q := New(0)
	p := pos(9)
	q.Enqueue(2, p)
	q.Enqueue(5, p) // deeper re-enqueue supersedes the shallow one

	_, d, ok := q.TryDequeue()
	require.True(t, ok)
	require.Equal(t, 5, d)

	_, _, ok = q.TryDequeue()
	require.False(t, ok, "the superseded depth-2 entry must not surface")
}

func TestEnqueueDeeperSupersedesShallowerFromDepthZero(t *testing.T) {
	// Regression: the stale depth-0 bucket entry must be explicitly removed
	// on supersession, not left to be filtered out by q.seen's zero value —
	// when the superseded depth genuinely is 0, that zero-value coincidence
	// doesn't hold and the stale entry would otherwise replay as a second,
	// spurious dequeue of the same position.
	q := New(0)
	p := pos(9)
	q.Enqueue(0, p)
	q.Enqueue(3, p)

	require.Equal(t, 1, q.Len())

	_, d, ok := q.TryDequeue()
	require.True(t, ok)
	require.Equal(t, 3, d)

	_, _, ok = q.TryDequeue()
	require.False(t, ok, "the superseded depth-0 entry must not surface")
}

func TestTryDequeueEmpty(t *testing.T) {
	q := New(0)
	_, _, ok := q.TryDequeue()
	require.False(t, ok)
}

func TestDequeueRespectsContextCancellation(t *testing.T) {
	q := New(10 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, _, ok := q.Dequeue(ctx)
	require.False(t, ok)
}
