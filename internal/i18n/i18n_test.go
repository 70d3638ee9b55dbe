package i18n

import (
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_Expiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache(5 * time.Minute)
	c.now = func() time.Time { return now }

	c.Set("k", map[string]any{"a": "b"})
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "b", v["a"])

	now = now.Add(5 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := NewCache(time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Set("k", map[string]any{})
			_, _ = c.Get("k")
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, c.Len())
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"en/common.json": {Data: []byte(`{"hello":"Hello"}`)},
		"ar/ads.json":    {Data: []byte(`{"title":"إعلان"}`)},
		"fr/bad.json":    {Data: []byte(`{`)},
	}
}

func TestLoader_LoadAndCache(t *testing.T) {
	fsys := testFS()
	l := NewLoaderFS(fsys, NewCache(time.Minute))

	doc, fellBack, err := l.Load("ar", "ads")
	require.NoError(t, err)
	assert.False(t, fellBack)
	assert.Equal(t, "إعلان", doc["title"])

	// served from cache even after the file changes
	fsys["ar/ads.json"] = &fstest.MapFile{Data: []byte(`{"title":"changed"}`)}
	doc, _, err = l.Load("ar", "ads")
	require.NoError(t, err)
	assert.Equal(t, "إعلان", doc["title"])
}

func TestLoader_FallsBackToEnglishCommon(t *testing.T) {
	l := NewLoaderFS(testFS(), NewCache(time.Minute))

	doc, fellBack, err := l.Load("de", "ads")
	require.NoError(t, err)
	assert.True(t, fellBack)
	assert.Equal(t, "Hello", doc["hello"])
}

func TestLoader_Errors(t *testing.T) {
	l := NewLoaderFS(testFS(), NewCache(time.Minute))

	_, _, err := l.Load("../etc", "passwd")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, _, err = l.Load("fr", "bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	empty := NewLoaderFS(fstest.MapFS{}, NewCache(time.Minute))
	_, _, err = empty.Load("de", "ads")
	assert.ErrorIs(t, err, ErrNotFound)
}
