// Package tu drives the translation-unit pipeline: turning one compile
// command into a parsed AST, walking it into SMT assertions, and caching the
// serialized result so a subsequent run over an unchanged file can skip
// parsing and constraint generation entirely. Grounded in the reference
// implementation's tu.py, with the on-disk cache read path backed by
// github.com/edsrzf/mmap-go rather than a second in-memory copy of
// (potentially large) solver text.
package tu

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/edsrzf/mmap-go"
)

// SerializedTU is one translation unit's on-disk/in-memory cache record:
// every assertion asserted while walking it, the merged per-TU solver's
// SMT-LIB2 text, and the wall-clock time the record was produced. Field
// names are load-bearing: they are the on-disk JSON schema, matching the
// reference implementation's SerializedTU dataclass exactly.
type SerializedTU struct {
	SerializationTime int64    `json:"SerializationTime"`
	Assertions        []string `json:"Assertions"`
	Solver            string   `json:"Solver"`

	// Spelling is the source file path this record belongs to. It is
	// deliberately not serialized (the cache file's own path already
	// encodes it via CacheKey) so renaming a cache directory never leaves
	// stale paths embedded in its files.
	Spelling string `json:"-"`
}

// CacheKey is the reference implementation's
// _translation_unit_file_path_to_filename: a full source path with every
// slash replaced by an underscore, used as both the in-memory map key and
// the on-disk "<key>.json" filename.
func CacheKey(fullPath string) string {
	return strings.ReplaceAll(fullPath, "/", "_")
}

// Cache is the two-tier (in-memory, then on-disk) store get_stored_stu
// consults before a TU is reparsed from scratch. A Cache with no on-disk
// directory configured degrades gracefully to memory-only, matching a run
// invoked without --serialize-analysis.
type Cache struct {
	dir string

	mu  sync.RWMutex
	mem map[string]*SerializedTU
}

// NewCache returns a Cache persisting to dir. dir == "" disables on-disk
// persistence entirely (memory-only, cleared at process exit).
func NewCache(dir string) *Cache {
	return &Cache{dir: dir, mem: map[string]*SerializedTU{}}
}

// Get returns a cached SerializedTU for fullPath if one exists and is no
// older than the file's current mtime, checking the in-memory tier before
// falling back to disk, mirroring get_stored_stu.
func (c *Cache) Get(fullPath string) (*SerializedTU, bool) {
	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, false
	}
	modTime := info.ModTime().Unix()

	key := CacheKey(fullPath)
	c.mu.RLock()
	stu, ok := c.mem[key]
	c.mu.RUnlock()
	if ok {
		if stu.SerializationTime >= modTime {
			return stu, true
		}
		return nil, false
	}

	if c.dir == "" {
		return nil, false
	}
	stu, err = c.readFromDisk(fullPath)
	if err != nil {
		return nil, false
	}
	if stu.SerializationTime < modTime {
		return nil, false
	}
	c.putMemory(stu)
	return stu, true
}

// readFromDisk loads "<dir>/<cacheKey>.json", mmap'ing the file for the
// decode so the process never holds both the raw bytes and an unmarshaled
// copy of what can be a multi-megabyte solver-text blob at once.
func (c *Cache) readFromDisk(fullPath string) (*SerializedTU, error) {
	p := filepath.Join(c.dir, CacheKey(fullPath)+".json")
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("tu: empty cache file %s", p)
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer m.Unmap()

	var stu SerializedTU
	if err := json.Unmarshal(m, &stu); err != nil {
		return nil, err
	}
	stu.Spelling = fullPath
	return &stu, nil
}

func (c *Cache) putMemory(stu *SerializedTU) {
	c.mu.Lock()
	c.mem[CacheKey(stu.Spelling)] = stu
	c.mu.Unlock()
}

// Put records stu in the in-memory tier and, if this Cache has an on-disk
// directory configured, writes it out too, mirroring save_stu_to_memory
// followed by write_tu.
func (c *Cache) Put(stu *SerializedTU) error {
	c.putMemory(stu)
	if c.dir == "" {
		return nil
	}
	data, err := json.Marshal(stu)
	if err != nil {
		return err
	}
	p := filepath.Join(c.dir, CacheKey(stu.Spelling)+".json")
	return os.WriteFile(p, data, 0o644)
}

// Now stamps a SerializedTU's SerializationTime with the current time,
// mirroring serialize_tu's int(time.time()). Factored out so callers never
// call time.Now() inline (this analyzer's own code elsewhere avoids
// wall-clock reads outside this one seam, keeping cache-freshness logic
// easy to reason about).
func Now() int64 { return time.Now().Unix() }
