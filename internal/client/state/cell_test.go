package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCell_SetNotifiesInRegistrationOrder(t *testing.T) {
	c := NewCell(0)
	var calls []string

	c.Subscribe(func(v int) { calls = append(calls, "first") })
	c.Subscribe(func(v int) { calls = append(calls, "second") })

	c.Set(7)
	assert.Equal(t, 7, c.Get())
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestCell_ListenerSeesPublishedValue(t *testing.T) {
	c := NewCell("a")
	var seen string
	c.Subscribe(func(v string) { seen = c.Get() + "/" + v })

	c.Set("b")
	assert.Equal(t, "b/b", seen)
}

func TestCell_Unsubscribe(t *testing.T) {
	c := NewCell(0)
	count := 0
	unsubscribe := c.Subscribe(func(int) { count++ })
	require.Equal(t, 1, c.Subscribers())

	c.Set(1)
	unsubscribe()
	unsubscribe()
	c.Set(2)

	assert.Equal(t, 1, count)
	assert.Equal(t, 0, c.Subscribers())
}

func TestCell_Update(t *testing.T) {
	c := NewCell([]int{1})
	got := c.Update(func(cur []int) []int { return append([]int{0}, cur...) })
	assert.Equal(t, []int{0, 1}, got)
	assert.Equal(t, []int{0, 1}, c.Get())
}

func TestCell_ConcurrentUpdates(t *testing.T) {
	c := NewCell(0)
	var mu sync.Mutex
	var published []int
	c.Subscribe(func(v int) {
		mu.Lock()
		published = append(published, v)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Update(func(v int) int { return v + 1 })
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, c.Get())
	require.Len(t, published, 50)
	for i, v := range published {
		assert.Equal(t, i+1, v)
	}
}

func TestCell_UpdateIfSkipsUnchanged(t *testing.T) {
	c := NewCell(3)
	calls := 0
	c.Subscribe(func(int) { calls++ })

	v, changed := c.UpdateIf(func(cur int) (int, bool) { return cur, false })
	assert.False(t, changed)
	assert.Equal(t, 3, v)
	assert.Zero(t, calls)

	v, changed = c.UpdateIf(func(cur int) (int, bool) { return cur * 2, true })
	assert.True(t, changed)
	assert.Equal(t, 6, v)
	assert.Equal(t, 1, calls)
}
