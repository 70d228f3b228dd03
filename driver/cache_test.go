package driver

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/spvasm/ir"
)

func TestCache_StoreLoad(t *testing.T) {
	c, err := NewCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}

	fns := []*ir.Function{addKernel("k")}
	key := c.Key(fns, DefaultOptions())
	module := []byte{0x03, 0x02, 0x23, 0x07, 1, 2, 3, 4}

	if _, ok := c.Load(key); ok {
		t.Error("Load before Store should miss")
	}
	if err := c.Store(key, fns, module); err != nil {
		t.Fatalf("Store: %v", err)
	}
	got, ok := c.Load(key)
	if !ok {
		t.Fatal("Load after Store missed")
	}
	if !bytes.Equal(got, module) {
		t.Errorf("Load = %v, want %v", got, module)
	}
}

func TestCache_KeySensitivity(t *testing.T) {
	c, err := NewCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	fns := []*ir.Function{addKernel("k")}
	opts := DefaultOptions()
	base := c.Key(fns, opts)

	if again := c.Key([]*ir.Function{addKernel("k")}, opts); again != base {
		t.Error("identical inputs should produce identical keys")
	}
	if other := c.Key([]*ir.Function{addKernel("other")}, opts); other == base {
		t.Error("different kernel name should change the key")
	}

	debug := opts
	debug.Debug = true
	if withDebug := c.Key(fns, debug); withDebug == base {
		t.Error("debug flag should change the key")
	}

	helper := addKernel("k")
	helper.Kernel = false
	if nonKernel := c.Key([]*ir.Function{helper}, opts); nonKernel == base {
		t.Error("kernel flag should change the key")
	}
}

func TestCache_RejectsStalePayload(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCache(dir)
	if err != nil {
		t.Fatal(err)
	}

	key := c.Key(nil, DefaultOptions())
	if err := os.WriteFile(filepath.Join(dir, key+".spvcache"), []byte("not msgpack"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Load(key); ok {
		t.Error("corrupt payload should miss")
	}
}

func TestCache_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCache(dir)
	if err != nil {
		t.Fatal(err)
	}

	fns := []*ir.Function{addKernel("k")}
	if err := c.Store(c.Key(fns, DefaultOptions()), fns, []byte{1}); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}
