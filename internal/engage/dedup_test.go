package engage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupEmptyNeverDuplicate(t *testing.T) {
	d := NewDedup()
	assert.False(t, d.IsDuplicate(nil))
	d.Record("1", []string{"a", "b"})
	assert.False(t, d.IsDuplicate([]string{}))
}

func TestDedupAnyFingerprintMatches(t *testing.T) {
	d := NewDedup()
	d.Record("1", []string{"a"})
	assert.True(t, d.IsDuplicate([]string{"a"}))
	assert.True(t, d.IsDuplicate([]string{"x", "a"}))
	assert.False(t, d.IsDuplicate([]string{"x", "y"}))
}

func TestDedupFirstItemWins(t *testing.T) {
	d := NewDedup()
	d.Record("first", []string{"a"})
	d.Record("second", []string{"a", "b"})
	id, ok := d.FirstSeen("a")
	require.True(t, ok)
	assert.Equal(t, "first", id)
	id, _ = d.FirstSeen("b")
	assert.Equal(t, "second", id)
	assert.Equal(t, 2, d.Len())
}

func TestDedupConcurrentRecord(t *testing.T) {
	d := NewDedup()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Record("x", []string{"shared"})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, d.Len())
}

func TestDedupReservationBlocksSecondClaim(t *testing.T) {
	d := NewDedup()
	require.True(t, d.Reserve([]string{"status:1", "link:x"}))
	assert.True(t, d.IsDuplicate([]string{"link:x"}), "reserved fingerprints count as seen")
	assert.False(t, d.Reserve([]string{"status:2", "link:x"}))
	assert.True(t, d.Reserve([]string{"status:2"}), "a failed claim takes nothing")
	assert.Zero(t, d.Len())

	d.Record("1", []string{"status:1", "link:x"})
	assert.Equal(t, 2, d.Len())
	assert.False(t, d.Reserve([]string{"link:x"}))
}

func TestDedupReleaseRestoresState(t *testing.T) {
	d := NewDedup()
	fps := []string{"status:3", "link:y"}
	require.True(t, d.Reserve(fps))
	d.Release(fps)
	assert.False(t, d.IsDuplicate(fps))
	assert.Zero(t, d.Len())
	assert.True(t, d.Reserve(fps))
}

func TestDedupConcurrentReserveSingleWinner(t *testing.T) {
	d := NewDedup()
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d.Reserve([]string{"link:shared"}) {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, won)
}

func TestLinkFingerprintNormalizes(t *testing.T) {
	a := LinkFingerprint("https://www.example.com/post/1?utm_source=twitter")
	b := LinkFingerprint("https://example.com/post/1#comments")
	c := LinkFingerprint("https://example.com/post/2")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestNormalizeLinkKeepsRealParams(t *testing.T) {
	got := NormalizeLink("https://example.com/watch?v=abc&utm_medium=social")
	assert.Equal(t, "https://example.com/watch?v=abc", got)
}
