package pipeline

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/layout"
)

// DefaultConfigFile is looked up in the working directory when no config
// path is given.
const DefaultConfigFile = "stratum.toml"

// Cache backends selectable in [CacheSection].
const (
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
	CacheBackendNone  = "none"
)

// FileConfig is the TOML configuration file:
//
//	[layout]
//	mode = "multi"
//	node_spacing = 60
//
//	[layout.margin]
//	left = 20
//	right = 20
//
//	[render]
//	formats = ["svg", "png"]
//	theme = "dark"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[server]
//	addr = ":8080"
type FileConfig struct {
	Layout LayoutSection `toml:"layout"`
	Render RenderSection `toml:"render"`
	Cache  CacheSection  `toml:"cache"`
	Server ServerSection `toml:"server"`
}

// LayoutSection is the [layout] table.
type LayoutSection struct {
	Mode               string         `toml:"mode"`
	Transverse         bool           `toml:"transverse"`
	NodeWidth          float64        `toml:"node_width"`
	NodeHeight         float64        `toml:"node_height"`
	NodeSpacing        float64        `toml:"node_spacing"`
	TurningSlotSpacing float64        `toml:"turning_slot_spacing"`
	LevelSpacing       float64        `toml:"level_spacing"`
	Margin             *layout.Margin `toml:"margin"`
	NoMargin           bool           `toml:"no_margin"`
	ComponentPadding   float64        `toml:"component_padding"`
	LinkStrategy       string         `toml:"link_strategy"`
	LinkMerge          *bool          `toml:"link_merge"`
}

// RenderSection is the [render] table.
type RenderSection struct {
	Formats  []string `toml:"formats"`
	Theme    string   `toml:"theme"`
	Labels   *bool    `toml:"labels"`
	Graphviz bool     `toml:"graphviz"`
	Detailed bool     `toml:"detailed"`
	Scale    float64  `toml:"scale"`
}

// CacheSection is the [cache] table.
type CacheSection struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	Prefix   string `toml:"prefix"`
}

// ServerSection is the [server] table.
type ServerSection struct {
	Addr           string `toml:"addr"`
	MaxBodyBytes   int64  `toml:"max_body_bytes"`
	RequestTimeout string `toml:"request_timeout"`
}

// LoadConfigFile decodes a TOML config file. Keys that match no field are
// rejected so typos do not pass silently.
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseConfig(string(data))
}

// ParseConfig decodes TOML config text.
func ParseConfig(data string) (*FileConfig, error) {
	var cfg FileConfig
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Cache.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the backend name.
func (c CacheSection) Validate() error {
	switch c.Backend {
	case "", CacheBackendFile, CacheBackendRedis, CacheBackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "invalid cache backend: %q (must be one of: file, redis, none)", c.Backend)
	}
	if c.Backend == CacheBackendRedis && c.RedisURL == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache backend redis needs redis_url")
	}
	return nil
}

// Options converts the layout and render tables into pipeline options.
// A nil receiver yields zero options.
func (c *FileConfig) Options() Options {
	if c == nil {
		return Options{}
	}
	l, r := c.Layout, c.Render
	opts := Options{
		Mode:               l.Mode,
		Transverse:         l.Transverse,
		NodeWidth:          l.NodeWidth,
		NodeHeight:         l.NodeHeight,
		NodeSpacing:        l.NodeSpacing,
		TurningSlotSpacing: l.TurningSlotSpacing,
		LevelSpacing:       l.LevelSpacing,
		NoMargin:           l.NoMargin,
		ComponentPadding:   l.ComponentPadding,
		LinkStrategy:       l.LinkStrategy,
		Formats:            r.Formats,
		Theme:              r.Theme,
		Graphviz:           r.Graphviz,
		Detailed:           r.Detailed,
		Scale:              r.Scale,
	}
	if l.Margin != nil {
		m := *l.Margin
		opts.Margin = &m
	}
	if l.LinkMerge != nil {
		opts.DisableLinkMerge = !*l.LinkMerge
	}
	if r.Labels != nil {
		opts.NoLabels = !*r.Labels
	}
	return opts
}
