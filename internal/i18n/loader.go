package i18n

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
)

const (
	FallbackLanguage  = "en"
	FallbackNamespace = "common"
)

var (
	ErrInvalidName = errors.New("invalid language or namespace")
	ErrNotFound    = errors.New("translation not found")

	namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)
)

// Loader reads <dir>/<lng>/<ns>.json and caches the parsed document.
type Loader struct {
	fsys  fs.FS
	cache *Cache
}

func NewLoader(dir string, cache *Cache) *Loader {
	return &Loader{fsys: os.DirFS(dir), cache: cache}
}

// NewLoaderFS is NewLoader over an arbitrary filesystem.
func NewLoaderFS(fsys fs.FS, cache *Cache) *Loader {
	return &Loader{fsys: fsys, cache: cache}
}

// Load returns the namespace for lng, falling back to en/common when the
// requested file does not exist. fellBack reports whether that happened.
func (l *Loader) Load(lng, ns string) (doc map[string]any, fellBack bool, err error) {
	if !namePattern.MatchString(lng) || !namePattern.MatchString(ns) {
		return nil, false, ErrInvalidName
	}

	doc, err = l.load(lng, ns)
	if err == nil {
		return doc, false, nil
	}
	if !errors.Is(err, ErrNotFound) || (lng == FallbackLanguage && ns == FallbackNamespace) {
		return nil, false, err
	}

	doc, err = l.load(FallbackLanguage, FallbackNamespace)
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

func (l *Loader) load(lng, ns string) (map[string]any, error) {
	key := cacheKey(lng, ns)
	if doc, ok := l.cache.Get(key); ok {
		return doc, nil
	}

	b, err := fs.ReadFile(l.fsys, path.Join(lng, ns+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read translation %s/%s: %w", lng, ns, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse translation %s/%s: %w", lng, ns, err)
	}

	l.cache.Set(key, doc)
	return doc, nil
}

func cacheKey(lng, ns string) string {
	return "translations_" + lng + "_" + ns
}
