package roomlock

import "sync"

// Keyed hands out one mutex per room id so that the final conflict
// re-check and the confirming write run serialized per room. Entries
// are dropped once no goroutine holds or waits on them.
type Keyed struct {
	mu    sync.Mutex
	locks map[int64]*lock
}

type lock struct {
	mu   sync.Mutex
	refs int
}

func New() *Keyed {
	return &Keyed{locks: make(map[int64]*lock)}
}

// Lock blocks until the room's mutex is held and returns the release func.
func (k *Keyed) Lock(roomID int64) func() {
	k.mu.Lock()
	l, ok := k.locks[roomID]
	if !ok {
		l = &lock{}
		k.locks[roomID] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, roomID)
		}
		k.mu.Unlock()
	}
}
