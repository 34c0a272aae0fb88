// Package glyph counts recurring path shapes across traced screenshots
// and packages the frequent ones as font glyph metadata.
package glyph

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Hash returns the hex MD5 digest keying a path-data string. MD5 is an
// identity key here, not a security boundary.
func Hash(d string) string {
	sum := md5.Sum([]byte(d))
	return hex.EncodeToString(sum[:])
}

// Counter tallies occurrences of path-data strings by MD5 digest.
// Not safe for concurrent use; each batch owns its own counter.
type Counter struct {
	counts map[string]int
}

// NewCounter returns an empty counter.
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

// Add records one occurrence of the path-data string.
func (c *Counter) Add(d string) {
	c.counts[Hash(d)]++
}

// AddHash records n occurrences of an already-hashed key.
func (c *Counter) AddHash(hash string, n int) {
	c.counts[hash] += n
}

// Count returns the occurrence count for a path-data string.
func (c *Counter) Count(d string) int {
	return c.counts[Hash(d)]
}

// Len returns the number of distinct shapes seen.
func (c *Counter) Len() int { return len(c.counts) }

// Counts returns the digest-to-count map. The caller must not mutate it
// while the counter is in use.
func (c *Counter) Counts() map[string]int { return c.counts }

// Frequent returns the set of digests with count >= limit.
func (c *Counter) Frequent(limit int) map[string]bool {
	out := make(map[string]bool)
	for h, n := range c.counts {
		if n >= limit {
			out[h] = true
		}
	}
	return out
}

// DumpFile writes the counter as a JSON object of digest to count.
func (c *Counter) DumpFile(path string) error {
	b, err := json.Marshal(c.counts)
	if err != nil {
		return errors.Wrap(err, "glyph: marshal counts")
	}
	return errors.Wrapf(os.WriteFile(path, b, 0644), "glyph: write %s", path)
}

// LoadCounterFile reads a counter previously written by DumpFile. A
// missing file yields an empty counter, so batches can accumulate.
func LoadCounterFile(path string) (*Counter, error) {
	c := NewCounter()
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "glyph: read %s", path)
	}
	if err := json.Unmarshal(b, &c.counts); err != nil {
		return nil, errors.Wrapf(err, "glyph: parse %s", path)
	}
	return c, nil
}
