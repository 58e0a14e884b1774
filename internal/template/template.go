package template

import (
	"crypto/sha256"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of compiled templates a Compiler keeps.
const DefaultCacheSize = 256

// Source is a raw template as handed over by a template store.
type Source struct {
	// ID identifies the template, e.g. its file path.
	ID string `json:"id"`
	// Text is the raw template text.
	Text string `json:"-"`
}

// Template is a loaded, compiled template. Templates are immutable.
type Template struct {
	ID  string
	Raw string
	*Compiled
}

// Compiler compiles templates and memoizes the result by raw text.
// It is safe for concurrent use.
type Compiler struct {
	matchTimeout time.Duration
	cache        *lru.Cache[[sha256.Size]byte, *Compiled]
}

// CompilerOption configures a Compiler.
type CompilerOption func(*Compiler) error

// WithMatchTimeout bounds every search run by patterns from this compiler.
func WithMatchTimeout(d time.Duration) CompilerOption {
	return func(c *Compiler) error {
		if d < 0 {
			return fmt.Errorf("match timeout cannot be negative: %s", d)
		}
		c.matchTimeout = d
		return nil
	}
}

// WithCacheSize sets the LRU size. Zero disables caching.
func WithCacheSize(size int) CompilerOption {
	return func(c *Compiler) error {
		if size < 0 {
			return fmt.Errorf("cache size cannot be negative: %d", size)
		}
		if size == 0 {
			c.cache = nil
			return nil
		}
		cache, err := lru.New[[sha256.Size]byte, *Compiled](size)
		if err != nil {
			return fmt.Errorf("creating compile cache: %w", err)
		}
		c.cache = cache
		return nil
	}
}

// NewCompiler creates a Compiler with a DefaultCacheSize cache.
func NewCompiler(opts ...CompilerOption) (*Compiler, error) {
	c := &Compiler{}
	opts = append([]CompilerOption{WithCacheSize(DefaultCacheSize)}, opts...)
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Compile compiles raw, returning a cached result when the same text was
// compiled before.
func (c *Compiler) Compile(raw string) (*Compiled, error) {
	if c.cache == nil {
		return compile(raw, c.matchTimeout)
	}

	key := sha256.Sum256([]byte(raw))
	if compiled, ok := c.cache.Get(key); ok {
		return compiled, nil
	}

	compiled, err := compile(raw, c.matchTimeout)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, compiled)
	return compiled, nil
}

// Load compiles a store source into a Template.
func (c *Compiler) Load(src Source) (*Template, error) {
	compiled, err := c.Compile(src.Text)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", src.ID, err)
	}
	return &Template{
		ID:       src.ID,
		Raw:      src.Text,
		Compiled: compiled,
	}, nil
}

// CacheLen reports how many compiled patterns are cached.
func (c *Compiler) CacheLen() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.Len()
}
