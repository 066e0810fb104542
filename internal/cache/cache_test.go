package cache

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	k1 := Key("gpt-4o-mini\x00prompt one")
	k2 := Key("gpt-4o-mini\x00prompt two")
	if k1 == k2 {
		t.Error("distinct material produced the same key")
	}
	if k1 != Key("gpt-4o-mini\x00prompt one") {
		t.Error("key is not stable for identical material")
	}
	if !strings.HasPrefix(k1, "matzpen:v1:") {
		t.Errorf("key missing version prefix: %s", k1)
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("absent"); found {
		t.Error("Get on empty cache reported a hit")
	}
	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if val, found := c.Get("k"); !found || !bytes.Equal(val, []byte("v")) {
		t.Errorf("Get = %q, %v", val, found)
	}
	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("entry survived Delete")
	}
}

func TestDiskCache_RoundtripAndExpiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	if err := c.Set("k", []byte("payload"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if val, found := c.Get("k"); !found || string(val) != "payload" {
		t.Errorf("Get = %q, %v", val, found)
	}

	// An entry whose TTL already elapsed must miss and be removed.
	if err := c.Set("stale", []byte("old"), -time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, found := c.Get("stale"); found {
		t.Error("expired entry served")
	}
	if _, found := c.Get("stale"); found {
		t.Error("expired entry still present after first miss")
	}
}

func TestDiskCache_Clear(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("cache dir survived Clear: %v", err)
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Hour)

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Simulate a fresh process: memory tier empty, disk tier intact.
	c.memory = NewMemoryCache(time.Minute, time.Minute)
	val, found := c.Get("k")
	if !found || string(val) != "v" {
		t.Fatalf("disk read-through failed: %q, %v", val, found)
	}

	// The hit must now be served from memory even if disk goes away.
	c.disk = NewDiskCache(t.TempDir(), time.Hour)
	if val, found := c.Get("k"); !found || string(val) != "v" {
		t.Errorf("promoted entry not in memory tier: %q, %v", val, found)
	}
}

func TestLayeredCache_Delete(t *testing.T) {
	c := NewLayeredCache(time.Minute, t.TempDir(), time.Hour)
	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	c.Delete("k")
	if _, found := c.Get("k"); found {
		t.Error("entry survived Delete in one of the tiers")
	}
}
