package watcher

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardanlabs/cheddar/logger"
)

func TestRunRegeneratesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.rs")
	require.NoError(t, os.WriteFile(path, []byte("// v1\n"), 0644))

	var logs bytes.Buffer
	require.NoError(t, logger.Init(logger.Config{Level: "info", Output: &logs}))
	t.Cleanup(func() { _ = logger.Init(logger.DefaultConfig()) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, path, func() error {
			calls.Add(1)
			return errors.New("errors are logged, not fatal")
		})
	}()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.rs"), []byte("x"), 0644))

	require.NoError(t, os.WriteFile(path, []byte("// v2\n"), 0644))
	require.Eventually(t, func() bool { return calls.Load() == 2 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, int32(2), calls.Load())

	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "file="+abs)
	assert.Contains(t, logs.String(), "errors are logged, not fatal")
}

func TestRunMissingDirectory(t *testing.T) {
	err := Run(context.Background(), filepath.Join(t.TempDir(), "nope", "lib.rs"), func() error { return nil })
	assert.Error(t, err)
}
