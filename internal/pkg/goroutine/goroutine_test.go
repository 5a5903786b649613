package goroutine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RunsAndCollectsErrors(t *testing.T) {
	t.Parallel()

	m := NewManager(4)
	errBoom := errors.New("boom")

	var ran atomic.Int32
	for range 3 {
		require.True(t, m.Go(context.Background(), func(context.Context) error {
			ran.Add(1)
			return nil
		}))
	}
	require.True(t, m.Go(context.Background(), func(context.Context) error { return errBoom }))

	err := m.Wait()
	assert.ErrorIs(t, err, errBoom)
	assert.EqualValues(t, 3, ran.Load())

	assert.False(t, m.Go(context.Background(), func(context.Context) error { return nil }))
}

func TestManager_DropsWhenFull(t *testing.T) {
	t.Parallel()

	m := NewManager(1)
	release := make(chan struct{})

	require.True(t, m.Go(context.Background(), func(context.Context) error {
		<-release
		return nil
	}))
	assert.False(t, m.Go(context.Background(), func(context.Context) error { return nil }))

	close(release)
	require.NoError(t, m.Wait())
}

func TestManager_RecoversPanic(t *testing.T) {
	t.Parallel()

	m := NewManager(1)
	require.True(t, m.Go(context.Background(), func(context.Context) error { panic("bad") }))

	assert.ErrorIs(t, m.Wait(), ErrPanic)
}

func TestManager_SkipsCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewManager(1)
	var ran atomic.Bool
	m.Go(ctx, func(context.Context) error {
		ran.Store(true)
		return nil
	})

	require.NoError(t, m.Wait())
	assert.False(t, ran.Load())
}

func TestManager_Nil(t *testing.T) {
	t.Parallel()

	var m *Manager
	assert.False(t, m.Go(context.Background(), func(context.Context) error { return nil }))
	assert.NoError(t, m.Wait())
}
