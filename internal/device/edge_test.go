package device

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestEdgeFlag_OneShot verifies a set flag is consumed exactly once.
func TestEdgeFlag_OneShot(t *testing.T) {
	t.Parallel()

	var f EdgeFlag

	require.False(t, f.TakeAndClear())

	f.Set()
	f.Set()

	require.True(t, f.TakeAndClear())
	require.False(t, f.TakeAndClear())
}

// TestEdgeFlag_ConcurrentSetters ensures concurrent edges collapse into one observation.
func TestEdgeFlag_ConcurrentSetters(t *testing.T) {
	t.Parallel()

	var (
		f  EdgeFlag
		wg sync.WaitGroup
	)

	for range 16 {
		wg.Go(f.Set)
	}

	wg.Wait()

	require.True(t, f.TakeAndClear())
	require.False(t, f.TakeAndClear())
}
