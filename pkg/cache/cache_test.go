package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get() = %q, %v, %v; want a miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}

	if _, hit, _ := c.Get(ctx, "http:fetch:missing"); hit {
		t.Error("Get() on empty cache should miss")
	}

	if err := c.Set(ctx, "topology:abc", []byte(`{"type":"Topology"}`), 0); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	data, hit, err := c.Get(ctx, "topology:abc")
	if err != nil || !hit || string(data) != `{"type":"Topology"}` {
		t.Errorf("Get() = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "topology:abc"); err != nil {
		t.Errorf("Delete() error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "topology:abc"); hit {
		t.Error("Get() after Delete should miss")
	}
	if err := c.Delete(ctx, "topology:abc"); err != nil {
		t.Errorf("Delete() of missing key error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	if err := c.Set(ctx, "render:x", []byte("<svg/>"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "render:x"); hit {
		t.Error("expired entry should miss")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	path := c.path("render:y")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "render:y"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v, want silent miss", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, "http:fetch:"+k, []byte(k), 0)
	}
	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() removed %d entries, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "http:fetch:a"); hit {
		t.Error("entry survived Clear()")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("usa"))
	if h1 != Hash([]byte("usa")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.HTTPKey("fetch", "https://example.com/a.csv"); got != "http:fetch:https://example.com/a.csv" {
		t.Errorf("HTTPKey() = %q", got)
	}
	if k.TopologyKey("usa", "") == k.TopologyKey("world", "") {
		t.Error("different scopes should produce different topology keys")
	}
	svg := k.RenderKey(RenderKeyOpts{Scope: "usa", ConfigHash: "abc", Format: "svg"})
	png := k.RenderKey(RenderKeyOpts{Scope: "usa", ConfigHash: "abc", Format: "png"})
	if svg == png {
		t.Error("different formats should produce different render keys")
	}
	if !strings.HasPrefix(svg, "render:") {
		t.Errorf("RenderKey() = %q, want render: prefix", svg)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "datamaps:test:")
	if got := scoped.HTTPKey("fetch", "u"); got != "datamaps:test:http:fetch:u" {
		t.Errorf("HTTPKey() = %q", got)
	}
	if got := scoped.TopologyKey("usa", ""); !strings.HasPrefix(got, "datamaps:test:topology:") {
		t.Errorf("TopologyKey() = %q", got)
	}
}

func TestKeyType(t *testing.T) {
	if got := keyType("render:abc"); got != "render" {
		t.Errorf("keyType() = %q", got)
	}
	if got := keyType("plain"); got != "other" {
		t.Errorf("keyType(plain) = %q", got)
	}
}
