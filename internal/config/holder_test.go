package config

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHolder(t *testing.T) {
	cfg := DefaultConfig()
	h := NewHolder(cfg, "/etc/rsinc/config.json")

	require.NotNil(t, h)
	assert.Equal(t, cfg, h.Config())
	assert.Equal(t, "/etc/rsinc/config.json", h.Path())
}

func TestHolder_Update(t *testing.T) {
	cfg1 := DefaultConfig()
	h := NewHolder(cfg1, "/tmp/config.json")

	cfg2 := DefaultConfig()
	cfg2.Workers = 20

	h.Update(cfg2)

	got := h.Config()
	assert.Equal(t, cfg2, got)
	assert.NotEqual(t, cfg1, got)
}

func TestHolder_PathImmutable(t *testing.T) {
	h := NewHolder(DefaultConfig(), "/original/path.json")

	// Path is immutable — no setter. Multiple calls return the same value.
	assert.Equal(t, "/original/path.json", h.Path())
	assert.Equal(t, "/original/path.json", h.Path())
}

func TestHolder_ConcurrentReadWrite(t *testing.T) {
	cfg := DefaultConfig()
	h := NewHolder(cfg, "/tmp/config.json")

	var wg sync.WaitGroup

	// 20 concurrent readers.
	for range 20 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for range 100 {
				got := h.Config()
				assert.NotNil(t, got)
				_ = h.Path()
			}
		}()
	}

	// 5 concurrent writers.
	for range 5 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for range 100 {
				h.Update(DefaultConfig())
			}
		}()
	}

	wg.Wait()
}
