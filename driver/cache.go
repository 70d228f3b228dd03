package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/gogpu/spvasm/ir"
)

// cacheSchemaVersion invalidates old payloads when the format changes.
const cacheSchemaVersion uint16 = 1

// Cache stores assembled modules on disk keyed by the hash of the kernel
// signatures and assembly options. Thread-safe for concurrent access.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// cachePayload is the msgpack-serialized cache entry.
type cachePayload struct {
	Schema  uint16
	Kernels []string
	Module  []byte
}

// NewCache opens (creating if needed) a cache directory.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Key derives the cache key for a set of functions under the given options.
// The key covers everything that affects the emitted bytes: signatures,
// block structure, version, memory model and capabilities.
func (c *Cache) Key(fns []*ir.Function, opts Options) string {
	h := sha256.New()

	fmt.Fprintf(h, "schema=%d;v=%d.%d;addr=%d;mem=%d;debug=%t;",
		cacheSchemaVersion, opts.Version.Major, opts.Version.Minor,
		opts.Addressing, opts.Memory, opts.Debug)
	for _, capability := range opts.Capabilities {
		fmt.Fprintf(h, "cap=%d;", capability)
	}
	for _, fn := range fns {
		h.Write([]byte(signature(fn)))
	}

	return hex.EncodeToString(h.Sum(nil))
}

// Load returns the cached module for a key, or false when absent or stale.
func (c *Cache) Load(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}

	var payload cachePayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, false
	}
	if payload.Schema != cacheSchemaVersion {
		return nil, false
	}
	return payload.Module, true
}

// Store writes a module under a key. The write is atomic: a temp file in the
// cache directory renamed into place.
func (c *Cache) Store(key string, fns []*ir.Function, module []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, len(fns))
	for i, fn := range fns {
		names[i] = fn.Name
	}

	data, err := msgpack.Marshal(cachePayload{
		Schema:  cacheSchemaVersion,
		Kernels: names,
		Module:  module,
	})
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, "entry-*.tmp")
	if err != nil {
		return fmt.Errorf("cache write: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("cache write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cache write: %w", err)
	}

	if err := os.Rename(tmpName, c.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cache write: %w", err)
	}
	return nil
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".spvcache")
}

// signature renders a deterministic textual form of a function's shape for
// cache keying.
func signature(fn *ir.Function) string {
	var sb strings.Builder
	sb.WriteString(fn.Name)
	if fn.Kernel {
		sb.WriteString("!kernel")
	}
	sb.WriteByte('(')
	for i, p := range fn.Params {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(FormatType(p.Type))
	}
	sb.WriteByte(')')
	if fn.Return != nil {
		sb.WriteString(FormatType(fn.Return))
	} else {
		sb.WriteString("void")
	}
	sb.WriteString("/b")
	sb.WriteString(strconv.Itoa(len(fn.Blocks)))
	sb.WriteByte(';')
	return sb.String()
}
