package realtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_LastConnectionWins(t *testing.T) {
	r := NewRegistry()

	_, replaced := r.Register("u1", "c1")
	assert.False(t, replaced)

	prev, replaced := r.Register("u1", "c2")
	assert.True(t, replaced)
	assert.Equal(t, "c1", prev)

	id, ok := r.Lookup("u1")
	assert.True(t, ok)
	assert.Equal(t, "c2", id)
}

func TestRegistry_UnregisterIsCompareAndDelete(t *testing.T) {
	r := NewRegistry()
	r.Register("u1", "c1")
	r.Register("u1", "c2")

	assert.False(t, r.Unregister("u1", "c1"), "stale disconnect must not drop the newer connection")
	id, ok := r.Lookup("u1")
	assert.True(t, ok)
	assert.Equal(t, "c2", id)

	assert.True(t, r.Unregister("u1", "c2"))
	_, ok = r.Lookup("u1")
	assert.False(t, ok)

	assert.False(t, r.Unregister("ghost", "c9"))
}

func TestRegistry_Online(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Online())
	assert.NotNil(t, r.Online())

	r.Register("b", "1")
	r.Register("a", "2")
	assert.Equal(t, []string{"a", "b"}, r.Online())
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("u%d", i%5)
			conn := fmt.Sprintf("c%d", i)
			r.Register(user, conn)
			r.Lookup(user)
			r.Online()
			r.Unregister(user, conn)
		}(i)
	}
	wg.Wait()
}
