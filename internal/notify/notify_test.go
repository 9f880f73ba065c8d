package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	mu sync.Mutex
	n  int
}

func (c *counter) Refresh(...string) {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func TestQueueAddRemove(t *testing.T) {
	refresh := &counter{}
	q := New(10, refresh)
	defer q.Close()

	id, err := q.Add("Member saved", KindSuccess, 0)
	require.NoError(t, err)
	_, err = q.Add("Heads up", "", 0)
	require.NoError(t, err)

	list := q.List()
	require.Len(t, list, 2)
	assert.Equal(t, KindInfo, list[1].Kind)

	assert.True(t, q.Remove(id))
	assert.False(t, q.Remove(id))
	assert.Len(t, q.List(), 1)
	assert.Equal(t, 3, refresh.n)
}

func TestQueueExpires(t *testing.T) {
	q := New(10, nil)
	defer q.Close()

	_, err := q.Add("short lived", KindInfo, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return len(q.List()) == 0 }, time.Second, 5*time.Millisecond)
}

func TestQueueCapacityDropsOldest(t *testing.T) {
	q := New(2, nil)
	defer q.Close()
	for _, msg := range []string{"one", "two", "three"} {
		_, err := q.Info(msg)
		require.NoError(t, err)
	}
	list := q.List()
	require.Len(t, list, 2)
	assert.Equal(t, "two", list[0].Message)
}

func TestQueueDrainAndClose(t *testing.T) {
	q := New(10, nil)
	_, _ = q.Error("failed")
	_, _ = q.Warning("careful")

	assert.Len(t, q.Drain(), 2)
	assert.Empty(t, q.List())

	q.Close()
	q.Close()
	_, err := q.Success("late")
	assert.ErrorIs(t, err, ErrClosed)
}
