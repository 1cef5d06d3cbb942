package dashboard

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chessgraph/engine/internal/engine"
	"github.com/chessgraph/engine/internal/oracle"
)

func TestRenderIncludesBoardAndCounters(t *testing.T) {
	o := oracle.New(nil)
	e := engine.New(engine.Config{Workers: 2, MaxBackoff: 5 * time.Millisecond}, o)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, e.Start(ctx, oracle.StartingPosition()))
	defer e.Stop()

	var out bytes.Buffer
	d := New(e, &out, strings.NewReader(""), 50*time.Millisecond)
	d.render()

	rendered := out.String()
	require.Contains(t, rendered, "expansion workers:")
	require.Contains(t, rendered, "backprop workers:")
	require.Contains(t, rendered, "move (e2-e4):")
	require.Contains(t, rendered, "side=")
}

func TestIntervalClampedToSpecWindow(t *testing.T) {
	o := oracle.New(nil)
	e := engine.New(engine.Config{}, o)
	d := New(e, &bytes.Buffer{}, strings.NewReader(""), time.Millisecond)
	require.Equal(t, minInterval, d.interval)

	d = New(e, &bytes.Buffer{}, strings.NewReader(""), time.Hour)
	require.Equal(t, maxInterval, d.interval)
}

func TestSubmitMoveCommitsLegalMoveAndRejectsIllegal(t *testing.T) {
	o := oracle.New(nil)
	e := engine.New(engine.Config{Workers: 2, MaxBackoff: 5 * time.Millisecond}, o)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	root := oracle.StartingPosition()
	require.NoError(t, e.Start(ctx, root))
	defer e.Stop()

	d := New(e, &bytes.Buffer{}, strings.NewReader(""), 50*time.Millisecond)

	d.submitMove(ctx, "e2-e9")
	require.Contains(t, d.getStatus(), "illegal move")
	require.Equal(t, root, e.Root())

	d.submitMove(ctx, "e2-e4")
	require.Contains(t, d.getStatus(), "moved e2-e4")
	require.NotEqual(t, root, e.Root())
}
