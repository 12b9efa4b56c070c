// Package dedup suppresses repeated reports of the same broadcast.
package dedup

import (
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// Key identifies a logical broadcast. Equality is exact.
type Key struct {
	Username string
	Content  string
	RoomID   int32
}

// String encodes the key so distinct keys never collide.
func (k Key) String() string {
	var b strings.Builder
	b.Grow(len(k.Username) + len(k.Content) + 24)
	b.WriteString(strconv.Itoa(len(k.Username)))
	b.WriteByte(':')
	b.WriteString(k.Username)
	b.WriteString(strconv.Itoa(len(k.Content)))
	b.WriteByte(':')
	b.WriteString(k.Content)
	b.WriteString(strconv.FormatInt(int64(k.RoomID), 10))
	return b.String()
}

// Deduplicator reports each key as emittable exactly once.
type Deduplicator struct {
	seen *cache.Cache
}

// New creates a Deduplicator. A ttl of zero keeps keys for the lifetime of
// the process; a positive ttl lets a key become emittable again after it
// expires.
func New(ttl time.Duration) *Deduplicator {
	expiration := cache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		expiration = ttl
		cleanup = ttl
	}
	return &Deduplicator{seen: cache.New(expiration, cleanup)}
}

// ShouldEmit records the key and returns true the first time it is seen.
// An empty username is never emittable.
func (d *Deduplicator) ShouldEmit(username, content string, roomID int32) bool {
	if username == "" {
		return false
	}
	key := Key{Username: username, Content: content, RoomID: roomID}
	return d.seen.Add(key.String(), struct{}{}, cache.DefaultExpiration) == nil
}

// Len returns the number of keys currently remembered.
func (d *Deduplicator) Len() int {
	return d.seen.ItemCount()
}
