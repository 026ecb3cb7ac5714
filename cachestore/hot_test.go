package cachestore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func hotEntry(key string, data []byte) *Entry {
	return &Entry{
		Key:       key,
		Data:      data,
		Size:      int64(len(data)),
		TTL:       time.Hour,
		CreatedAt: time.Now(),
	}
}

func TestHotCache_Basic(t *testing.T) {
	hc := NewHotCache(5*time.Minute, 10*time.Minute)

	hc.Set(hotEntry("key1", []byte("value1")), 0)
	hc.Set(hotEntry("key2", []byte("value2")), 0)

	entry, found := hc.Get("key1")
	assert.True(t, found)
	assert.Equal(t, []byte("value1"), entry.Data)

	entry, found = hc.Get("key2")
	assert.True(t, found)
	assert.Equal(t, []byte("value2"), entry.Data)

	_, found = hc.Get("missing")
	assert.False(t, found)

	assert.Equal(t, 2, hc.ItemCount())
}

func TestHotCache_Delete(t *testing.T) {
	hc := NewHotCache(5*time.Minute, 10*time.Minute)

	hc.Set(hotEntry("key1", []byte("value1")), 0)
	hc.Set(hotEntry("key2", []byte("value2")), 0)

	hc.Delete("key1")

	_, found := hc.Get("key1")
	assert.False(t, found)
	_, found = hc.Get("key2")
	assert.True(t, found)

	assert.Equal(t, 1, hc.ItemCount())
}

func TestHotCache_Clear(t *testing.T) {
	hc := NewHotCache(5*time.Minute, 10*time.Minute)

	hc.Set(hotEntry("key1", []byte("value1")), 0)
	hc.Set(hotEntry("key2", []byte("value2")), 0)
	assert.Equal(t, 2, hc.ItemCount())

	hc.Clear()

	_, found := hc.Get("key1")
	assert.False(t, found)
	assert.Equal(t, 0, hc.ItemCount())
}

func TestHotCache_Expiration(t *testing.T) {
	hc := NewHotCache(5*time.Minute, 10*time.Minute)

	hc.Set(hotEntry("short", []byte("expires soon")), 50*time.Millisecond)
	hc.Set(hotEntry("forever", []byte("never expires")), -1)

	// Both available immediately
	_, found := hc.Get("short")
	assert.True(t, found)
	_, found = hc.Get("forever")
	assert.True(t, found)

	time.Sleep(80 * time.Millisecond)

	_, found = hc.Get("short")
	assert.False(t, found)
	_, found = hc.Get("forever")
	assert.True(t, found)
}
