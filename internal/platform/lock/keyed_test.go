package lock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyed_SerializesSameKey(t *testing.T) {
	t.Parallel()

	k := NewKeyed()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("game-1::rider-1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	require.Equal(t, 64, counter)
}

func TestKeyed_ReleasesEntries(t *testing.T) {
	t.Parallel()

	k := NewKeyed()
	unlock := k.Lock("a")
	unlock()

	k.mu.Lock()
	defer k.mu.Unlock()
	require.Empty(t, k.locks)
}

func TestKeyed_DistinctKeysDoNotBlock(t *testing.T) {
	t.Parallel()

	k := NewKeyed()
	unlockA := k.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := k.Lock("b")
		unlockB()
		close(done)
	}()
	<-done
}
