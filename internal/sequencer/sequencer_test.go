package sequencer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCounter struct {
	mu   sync.Mutex
	seqs map[string]int64
	err  error
}

func (m *memoryCounter) Next(_ context.Context, key string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seqs == nil {
		m.seqs = map[string]int64{}
	}
	m.seqs[key]++
	return m.seqs[key], nil
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "ORD250314001", Format("250314", 1))
	assert.Equal(t, "ORD250314042", Format("250314", 42))
	assert.Equal(t, "ORD2503141000", Format("250314", 1000))
}

func TestDateKeyUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	ts := time.Date(2025, 3, 14, 22, 0, 0, 0, loc)
	assert.Equal(t, "250315", DateKey(ts))
}

func TestNextRestartsEachDay(t *testing.T) {
	s := New(&memoryCounter{})
	ctx := context.Background()

	a, err := s.NextNumber(ctx, "250314")
	require.NoError(t, err)
	b, err := s.NextNumber(ctx, "250314")
	require.NoError(t, err)
	c, err := s.NextNumber(ctx, "250315")
	require.NoError(t, err)

	assert.Equal(t, "ORD250314001", a)
	assert.Equal(t, "ORD250314002", b)
	assert.Equal(t, "ORD250315001", c)
}

func TestNextUsesClock(t *testing.T) {
	s := New(&memoryCounter{})
	s.now = func() time.Time { return time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC) }

	n, err := s.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ORD260102001", n)
}

func TestConcurrentNumbersAreDistinct(t *testing.T) {
	s := New(&memoryCounter{})
	ctx := context.Background()

	const n = 200
	results := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := s.NextNumber(ctx, "250314")
			assert.NoError(t, err)
			results <- num
		}()
	}
	wg.Wait()
	close(results)

	seen := map[string]bool{}
	for r := range results {
		assert.False(t, seen[r], "duplicate %s", r)
		seen[r] = true
	}
	assert.Len(t, seen, n)
}

func TestCounterErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")
	_, err := New(&memoryCounter{err: boom}).NextNumber(context.Background(), "250314")
	assert.ErrorIs(t, err, boom)
}
