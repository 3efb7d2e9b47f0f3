// Package cache remembers inputs that are already formatted so unchanged
// files skip the engine on the next run. Entries are msgpack files keyed by
// a hash of the tool version, the config fingerprint, the language and the
// content.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// bump when Entry changes shape; older entries then read as misses
const schemaVersion uint16 = 1

const entryExt = ".mp"

// Key identifies one (tool version, config, language, content) combination.
type Key [32]byte

func NewKey(version, fingerprint, language string, content []byte) Key {
	h := sha256.New()
	for _, part := range []string{version, fingerprint, language} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	h.Write(content)
	var k Key
	h.Sum(k[:0])
	return k
}

func (k Key) String() string { return hex.EncodeToString(k[:]) }

// Entry is stored per key. Clean means the content was a fixed point with
// no warnings or errors.
type Entry struct {
	Schema   uint16
	Path     string
	Language string
	Rounds   int
	Clean    bool
	Stored   int64 // unix seconds
}

// Cache is safe for concurrent use; a nil *Cache never hits and never stores.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// DefaultDir is $XDG_CACHE_HOME/passfmt, falling back to ~/.cache/passfmt.
func DefaultDir() (string, error) {
	if base := os.Getenv("XDG_CACHE_HOME"); base != "" {
		return filepath.Join(base, "passfmt"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "passfmt"), nil
}

// Open creates dir if needed; an empty dir means DefaultDir.
func Open(dir string) (*Cache, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) Dir() string { return c.dir }

func (c *Cache) filesDir() string { return filepath.Join(c.dir, "files") }

func (c *Cache) pathFor(key Key) string {
	name := key.String()
	// шардируем по первому байту ключа
	return filepath.Join(c.filesDir(), name[:2], name+entryExt)
}

// Put writes e under key through a temp file and rename, so readers never
// see a torn entry.
func (c *Cache) Put(key Key, e *Entry) error {
	if c == nil {
		return nil
	}
	rec := *e
	rec.Schema = schemaVersion
	if rec.Stored == 0 {
		rec.Stored = time.Now().Unix()
	}
	data, err := msgpack.Marshal(&rec)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	dst := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), "tmp-*")
	if err != nil {
		return err
	}
	_, werr := tmp.Write(data)
	if err := errors.Join(werr, tmp.Close()); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}

// Get fills out on a hit. Entries of another schema are misses.
func (c *Cache) Get(key Key, out *Entry) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, err := readEntry(c.pathFor(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if e.Schema != schemaVersion {
		return false, nil
	}
	*out = e
	return true, nil
}

func readEntry(path string) (Entry, error) {
	var e Entry
	data, err := os.ReadFile(path)
	if err != nil {
		return e, err
	}
	err = msgpack.Unmarshal(data, &e)
	return e, err
}

// Stats summarises what is on disk.
type Stats struct {
	Entries    int
	Bytes      int64
	Stale      int // other schema or unreadable
	ByLanguage map[string]int
	Oldest     time.Time
}

// Stats walks every entry. It holds the read lock for the whole walk.
func (c *Cache) Stats() (Stats, error) {
	st := Stats{ByLanguage: map[string]int{}}
	if c == nil {
		return st, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	err := c.walk(func(path string, info fs.FileInfo) error {
		st.Entries++
		st.Bytes += info.Size()
		e, err := readEntry(path)
		if err != nil || e.Schema != schemaVersion {
			st.Stale++
			return nil
		}
		st.ByLanguage[e.Language]++
		if stored := time.Unix(e.Stored, 0); st.Oldest.IsZero() || stored.Before(st.Oldest) {
			st.Oldest = stored
		}
		return nil
	})
	return st, err
}

// Prune removes stale entries and those stored before cutoff. A zero cutoff
// removes only stale ones. It returns how many files were deleted.
func (c *Cache) Prune(cutoff time.Time) (int, error) {
	if c == nil {
		return 0, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	err := c.walk(func(path string, _ fs.FileInfo) error {
		e, err := readEntry(path)
		keep := err == nil && e.Schema == schemaVersion &&
			(cutoff.IsZero() || !time.Unix(e.Stored, 0).Before(cutoff))
		if keep {
			return nil
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		removed++
		return nil
	})
	return removed, err
}

func (c *Cache) walk(fn func(path string, info fs.FileInfo) error) error {
	err := filepath.WalkDir(c.filesDir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), entryExt) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return fn(path, info)
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Clear removes every entry and leaves an empty cache directory behind.
func (c *Cache) Clear() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	// сначала переименовать: параллельный процесс не увидит полуудалённый каталог
	old := c.dir + ".old-" + time.Now().Format("20060102150405.000000000")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return os.MkdirAll(c.dir, 0o755)
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
