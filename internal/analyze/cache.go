// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/daily-scholar/pkg/types"
)

// CacheError reports a cache read or write failure. The analyzer logs these
// and carries on.
type CacheError struct {
	PaperID string
	Op      string
	Err     error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s %s: %v", e.Op, e.PaperID, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }

// Cache stores one JSON file per paper ID, mirrored in memory.
type Cache struct {
	dir string
	mem map[string]*types.AnalysisResult
}

// NewCache returns a Cache rooted at dir, creating the directory if needed.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Cache{dir: dir, mem: make(map[string]*types.AnalysisResult)}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// Path returns the cache file for a paper ID. Path separators in the ID are
// replaced so old-style arXiv IDs (cs/0101001) stay inside the directory.
func (c *Cache) Path(paperID string) string {
	name := strings.NewReplacer("/", "_", `\`, "_", "..", "_").Replace(paperID)
	return filepath.Join(c.dir, name+".json")
}

// Memory returns the in-process entry for paperID.
func (c *Cache) Memory(paperID string) (*types.AnalysisResult, bool) {
	r, ok := c.mem[paperID]
	return r, ok
}

// Load reads the cache file for paperID and populates the in-process map.
// A missing file returns (nil, nil); an unreadable or malformed file returns
// a *CacheError.
func (c *Cache) Load(paperID string) (*types.AnalysisResult, error) {
	data, err := os.ReadFile(c.Path(paperID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &CacheError{PaperID: paperID, Op: "read", Err: err}
	}
	var r types.AnalysisResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, &CacheError{PaperID: paperID, Op: "decode", Err: err}
	}
	if r.PaperID == "" {
		r.PaperID = paperID
	}
	c.mem[paperID] = &r
	return &r, nil
}

// Put stores r in memory and writes it to disk through a temp file and
// rename. The in-process entry is kept even when the disk write fails.
func (c *Cache) Put(r *types.AnalysisResult) error {
	c.mem[r.PaperID] = r

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return &CacheError{PaperID: r.PaperID, Op: "encode", Err: err}
	}

	path := c.Path(r.PaperID)
	tmp, err := os.CreateTemp(c.dir, ".tmp-*.json")
	if err != nil {
		return &CacheError{PaperID: r.PaperID, Op: "write", Err: err}
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &CacheError{PaperID: r.PaperID, Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &CacheError{PaperID: r.PaperID, Op: "write", Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &CacheError{PaperID: r.PaperID, Op: "write", Err: err}
	}
	return nil
}
