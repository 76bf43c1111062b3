// Package cache keeps loaded datasets in memory for the lifetime of the host
// process so several views over the same file read it once.
//
// Entries are keyed by absolute path, column mapping and read options, and
// validated on every lookup: an unchanged modification time and size is a hit;
// otherwise the file content is hashed (xxhash) and compared to the stored
// hash, so a touched-but-identical file is still a hit while edited content is
// reloaded. Fitted planes are never cached here.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/KaramelBytes/surfloom-cli/internal/dataset"
	"github.com/cespare/xxhash/v2"
)

// LoadFunc reads a dataset from disk.
type LoadFunc func(path string, cols dataset.Columns, opt dataset.Options) (*dataset.Dataset, error)

type entry struct {
	path    string
	modTime time.Time
	size    int64
	hash    uint64
	ds      *dataset.Dataset
}

// Stats reports cache activity.
type Stats struct {
	Hits    int
	Misses  int
	Entries int
}

// Datasets caches loaded datasets. The zero value is not usable; call New.
// Returned datasets are shared between callers and must not be modified.
type Datasets struct {
	mu      sync.Mutex
	load    LoadFunc
	entries map[string]*entry
	hits    int
	misses  int
}

// New returns an empty cache. A nil load uses dataset.Load.
func New(load LoadFunc) *Datasets {
	if load == nil {
		load = dataset.Load
	}
	return &Datasets{load: load, entries: map[string]*entry{}}
}

func key(abs string, cols dataset.Columns, opt dataset.Options) string {
	return abs + "\x00" + cols.Key() + "\x00" + opt.Key()
}

// Get returns the dataset for path, loading it when absent or stale.
// hit reports whether the cached copy was served.
func (c *Datasets) Get(path string, cols dataset.Columns, opt dataset.Options) (ds *dataset.Dataset, hit bool, err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, false, fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, false, fmt.Errorf("stat dataset: %w", err)
	}
	k := key(abs, cols, opt)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[k]
	if ok && e.modTime.Equal(info.ModTime()) && e.size == info.Size() {
		c.hits++
		return e.ds, true, nil
	}
	b, err := os.ReadFile(abs)
	if err != nil {
		return nil, false, fmt.Errorf("read dataset: %w", err)
	}
	sum := xxhash.Sum64(b)
	if ok && e.hash == sum {
		e.modTime, e.size = info.ModTime(), info.Size()
		c.hits++
		return e.ds, true, nil
	}

	c.misses++
	loaded, err := c.load(abs, cols, opt)
	if err != nil {
		delete(c.entries, k)
		return nil, false, err
	}
	c.entries[k] = &entry{path: abs, modTime: info.ModTime(), size: info.Size(), hash: sum, ds: loaded}
	return loaded, false, nil
}

// Invalidate drops every entry for path regardless of column mapping or options.
func (c *Datasets) Invalidate(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if e.path == abs {
			delete(c.entries, k)
		}
	}
}

// Purge drops all entries and resets the counters.
func (c *Datasets) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]*entry{}
	c.hits, c.misses = 0, 0
}

// Stats returns a snapshot of the counters.
func (c *Datasets) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Entries: len(c.entries)}
}
