package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRefresher struct {
	refreshed chan struct{}
}

func (r *recordingRefresher) Refresh(context.Context) bool {
	select {
	case r.refreshed <- struct{}{}:
	default:
	}
	return true
}

func TestWatchTriggersRefreshOnWrite(t *testing.T) {
	dir := t.TempDir()
	ref := &recordingRefresher{refreshed: make(chan struct{}, 1)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, dir, ref) }()

	// Give the watcher a moment to register before the write.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0o644))

	select {
	case <-ref.refreshed:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a refresh after the corpus changed")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatchMissingDir(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope"), &recordingRefresher{refreshed: make(chan struct{}, 1)})
	assert.Error(t, err)
}
