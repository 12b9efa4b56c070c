package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShouldEmitFirstSeenWins(t *testing.T) {
	d := New(0)

	assert.True(t, d.ShouldEmit("alice", "hi", 1))
	for i := 0; i < 5; i++ {
		assert.False(t, d.ShouldEmit("alice", "hi", 1))
	}
	assert.Equal(t, 1, d.Len())
}

func TestShouldEmitDistinctKeys(t *testing.T) {
	d := New(0)

	assert.True(t, d.ShouldEmit("alice", "hi", 1))
	assert.True(t, d.ShouldEmit("alice", "hi", 2))
	assert.True(t, d.ShouldEmit("bob", "hi", 1))
	assert.True(t, d.ShouldEmit("alice", "hi!", 1))
	assert.True(t, d.ShouldEmit("alice", "Hi", 1))
	assert.Equal(t, 5, d.Len())
}

func TestShouldEmitEmptyUsername(t *testing.T) {
	d := New(0)

	assert.False(t, d.ShouldEmit("", "hi", 1))
	assert.False(t, d.ShouldEmit("", "hi", 1))
	assert.Equal(t, 0, d.Len())
}

func TestKeyNoCollision(t *testing.T) {
	a := Key{Username: "ab", Content: "c", RoomID: 1}
	b := Key{Username: "a", Content: "bc", RoomID: 1}
	c := Key{Username: "a", Content: "b1", RoomID: 1}
	d := Key{Username: "a", Content: "b", RoomID: 11}

	assert.NotEqual(t, a.String(), b.String())
	assert.NotEqual(t, c.String(), d.String())
}

func TestShouldEmitAfterTTL(t *testing.T) {
	d := New(20 * time.Millisecond)

	assert.True(t, d.ShouldEmit("alice", "hi", 1))
	assert.False(t, d.ShouldEmit("alice", "hi", 1))

	time.Sleep(40 * time.Millisecond)
	assert.True(t, d.ShouldEmit("alice", "hi", 1))
}
