package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"os"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/conneroisu/i18nextract/internal/logging"
)

// DefaultCacheSize is the number of extraction results kept by CachedOracle.
const DefaultCacheSize = 256

// CachedOracle memoizes another Oracle. Results are keyed by a content digest
// of the request, so an unchanged file set is never re-extracted while a
// change to any file, locale or extra option misses the cache.
type CachedOracle struct {
	next     Oracle
	cache    *lru.Cache[string, []Record]
	crcTable *crc32.Table
	logger   logging.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCachedOracle wraps next with an LRU cache holding size results.
func NewCachedOracle(next Oracle, size int, logger logging.Logger) (*CachedOracle, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []Record](size)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CachedOracle{
		next:     next,
		cache:    cache,
		crcTable: crc32.MakeTable(crc32.Castagnoli),
		logger:   logger.WithComponent("oracle_cache"),
	}, nil
}

// Extract returns a cached result when the request digest matches, otherwise
// delegates and stores the result. Failures are not cached.
func (c *CachedOracle) Extract(ctx context.Context, files, locales []string, extra map[string]any) ([]Record, error) {
	key, ok := c.digest(files, locales, extra)
	if ok {
		if records, found := c.cache.Get(key); found {
			c.hits.Add(1)
			c.logger.Debug(ctx, "extraction cache hit", "key", key, "files", len(files))
			return records, nil
		}
	}
	c.misses.Add(1)

	records, err := c.next.Extract(ctx, files, locales, extra)
	if err != nil {
		return nil, err
	}
	if ok {
		c.cache.Add(key, records)
	}
	return records, nil
}

// Stats returns the cache hit and miss counts.
func (c *CachedOracle) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// digest hashes the request. It reports false when a file cannot be read;
// such requests bypass the cache and let the extractor report the problem.
func (c *CachedOracle) digest(files, locales []string, extra map[string]any) (string, bool) {
	h := crc32.New(c.crcTable)
	var size int64

	write := func(b []byte) {
		_, _ = h.Write(b)
		_, _ = h.Write([]byte{0})
		size += int64(len(b)) + 1
	}

	for _, f := range files {
		content, err := os.ReadFile(f)
		if err != nil {
			return "", false
		}
		write([]byte(f))
		write(content)
	}
	write([]byte{1})
	for _, l := range locales {
		write([]byte(l))
	}
	// encoding/json sorts map keys, which keeps the digest stable.
	opts, err := json.Marshal(extra)
	if err != nil {
		return "", false
	}
	write(opts)

	return fmt.Sprintf("%08x-%d-%d", h.Sum32(), len(files), size), true
}
