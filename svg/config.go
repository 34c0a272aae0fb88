package svg

import (
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Mode selects how duplicate paths are folded.
type Mode string

const (
	// ModeRemove drops duplicate elements entirely.
	ModeRemove Mode = "remove"
	// ModeReference replaces duplicates with <use> elements pointing at
	// the canonical path, keeping per-instance placement.
	ModeReference Mode = "reference"
)

// KeyConfig selects which attributes participate in the equivalence key.
// Path data always participates; transform and the x/y placement
// attributes never do; they are carried onto reference elements instead.
type KeyConfig struct {
	// Attributes lists style attributes included in the key, e.g.
	// "fill", "stroke", "stroke-width".
	Attributes []string `yaml:"attributes"`
}

// Config configures a deduplication pass.
type Config struct {
	Mode Mode      `yaml:"mode"`
	Key  KeyConfig `yaml:"key"`

	// GlyphLookup, when set, maps path data to a font code point.
	// Matching paths are removed from the document and reported as
	// glyph uses instead of being deduplicated.
	GlyphLookup func(d string) (rune, bool) `yaml:"-"`

	// Logger for per-document debug output.
	Logger *slog.Logger `yaml:"-"`
}

func (c *Config) defaults() {
	if c.Mode == "" {
		c.Mode = ModeReference
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

func (c *Config) validate() error {
	switch c.Mode {
	case ModeRemove, ModeReference:
		return nil
	default:
		return errors.Errorf("svg: unknown dedup mode %q", c.Mode)
	}
}

// LoadConfig reads a YAML deduplication config from path and fills in
// defaults.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "svg: read config %s", path)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, errors.Wrapf(err, "svg: parse config %s", path)
	}
	c.defaults()
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
