package roomlock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyed_SerializesSameRoom(t *testing.T) {
	k := New()

	const goroutines = 50
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock(101)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines, counter)
}

func TestKeyed_IndependentRooms(t *testing.T) {
	k := New()

	unlockA := k.Lock(1)
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := k.Lock(2)
		unlockB()
		close(done)
	}()

	<-done // would deadlock if room 2 waited on room 1
}

func TestKeyed_EntryDroppedAfterRelease(t *testing.T) {
	k := New()

	unlock := k.Lock(7)
	unlock()

	k.mu.Lock()
	defer k.mu.Unlock()
	assert.Empty(t, k.locks)
}
