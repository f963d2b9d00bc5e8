package exchange

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLazyResolvesOnce(t *testing.T) {
	var lazy Lazy[string]
	var loads atomic.Int32
	load := func(context.Context) (string, error) {
		loads.Add(1)
		return "account-1", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := lazy.Get(context.Background(), load)
			require.NoError(t, err)
			require.Equal(t, "account-1", v)
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), loads.Load())
	require.True(t, lazy.Resolved())
}

func TestLazyRetriesAfterFailure(t *testing.T) {
	var lazy Lazy[int]
	_, err := lazy.Get(context.Background(), func(context.Context) (int, error) { return 0, errors.New("down") })
	require.Error(t, err)
	require.False(t, lazy.Resolved())

	v, err := lazy.Get(context.Background(), func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	require.Equal(t, 7, v)

	lazy.Reset()
	require.False(t, lazy.Resolved())
	lazy.Set(9)
	v, err = lazy.Get(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 9, v)
}
