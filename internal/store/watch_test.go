package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcher_SignalsOnNewTemplate(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDir(dir)
	require.NoError(t, err)

	w, err := NewWatcher(d, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	writeFile(t, dir, "new.txt", "Hello {%name%}")

	select {
	case <-w.Changes():
	case <-time.After(5 * time.Second):
		t.Fatal("no change signalled")
	}
}

func TestWatcher_StopTwice(t *testing.T) {
	d, err := NewDir(t.TempDir())
	require.NoError(t, err)

	w, err := NewWatcher(d)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	w.Stop()
	w.Stop()
}
