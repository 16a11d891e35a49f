package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openagent-dev/openagent/internal/event"
)

func TestWatcherPublishesFileEdited(t *testing.T) {
	event.Reset()

	dir := t.TempDir()
	w, err := New(dir)
	require.NoError(t, err)

	edited := make(chan event.Event, 8)
	defer event.Subscribe(event.FileEdited, func(e event.Event) { edited <- e })()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Give the watch loop a moment to start.
	time.Sleep(50 * time.Millisecond)

	path := filepath.Join(dir, "changed.txt")
	require.NoError(t, os.WriteFile(path, []byte("external edit"), 0644))

	select {
	case e := <-edited:
		data := e.Data.(event.FileEditedData)
		assert.Equal(t, path, data.File)
	case <-time.After(2 * time.Second):
		t.Fatal("no file.edited event for external write")
	}
}
