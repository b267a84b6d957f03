package narration

import (
	"context"
	"crypto/md5"
	"fmt"
	"sync"
)

// CacheKey hashes the synthesis inputs. Two chunks with the same text,
// voice and speed always produce the same audio, so the hash is the cache
// identity: editing one chunk re-synthesizes only that chunk.
func CacheKey(text, voice string, speed float64) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s|%s|%.3f", text, voice, speed)))
	return fmt.Sprintf("%x", sum)
}

// Cache remembers synthesized clips by content key. Safe for concurrent use
// by a parallel resolver.
type Cache struct {
	mu    sync.RWMutex
	clips map[string]Clip
}

func NewCache() *Cache {
	return &Cache{clips: make(map[string]Clip)}
}

func (c *Cache) Get(key string) (Clip, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	clip, ok := c.clips[key]
	return clip, ok
}

func (c *Cache) Put(key string, clip Clip) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clips[key] = clip
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.clips)
}

// Cached wraps a Synthesizer so repeated requests for unchanged chunks are
// served from the cache instead of hitting the TTS service again.
func Cached(s Synthesizer, c *Cache) Synthesizer {
	return &cachingSynthesizer{next: s, cache: c}
}

type cachingSynthesizer struct {
	next  Synthesizer
	cache *Cache
}

func (cs *cachingSynthesizer) Synthesize(ctx context.Context, text, voice string, speed float64) (Clip, error) {
	key := CacheKey(text, voice, speed)
	if clip, ok := cs.cache.Get(key); ok {
		return clip, nil
	}

	clip, err := cs.next.Synthesize(ctx, text, voice, speed)
	if err != nil {
		return Clip{}, err
	}
	cs.cache.Put(key, clip)
	return clip, nil
}
