package keyedlock

import (
	"sync"
	"testing"
)

func TestSerializesPerKey(t *testing.T) {
	m := New()
	var a, b int
	counters := map[string]*int{"a": &a, "b": &b}
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		for _, key := range []string{"a", "b"} {
			wg.Add(1)
			go func(key string) {
				defer wg.Done()
				m.Lock(key)
				defer m.Unlock(key)
				*counters[key]++
			}(key)
		}
	}
	wg.Wait()

	if a != 50 || b != 50 {
		t.Fatalf("lost updates under keyed lock: a=%d b=%d", a, b)
	}
}

func TestEntriesAreReclaimed(t *testing.T) {
	m := New()
	m.Lock("a")
	m.Unlock("a")
	m.Lock("b")
	m.Unlock("b")

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.locks) != 0 {
		t.Fatalf("expected lock map to be empty, got %d entries", len(m.locks))
	}
}
