package cache

import (
	"testing"
	"time"
)

func TestGetInstance(t *testing.T) {
	inst := GetInstance()
	if inst == nil {
		t.Fatal("GetInstance returned nil")
	}
	if GetInstance() != inst {
		t.Error("GetInstance should return same instance")
	}
}

func TestSet_Get(t *testing.T) {
	c := NewCache()
	c.Set("k", "val", 0, nil)
	got, ok := c.Get("k")
	if !ok {
		t.Fatal("Get: want true")
	}
	if got != "val" {
		t.Errorf("Get = %v, want val", got)
	}
}

func TestGet_Expired(t *testing.T) {
	c := NewCache()
	now := time.Date(2026, 1, 1, 3, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	c.Set("k", "val", time.Minute, nil)

	now = now.Add(30 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("Get before expiry: want true")
	}
	now = now.Add(time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Error("Get after expiry: want false")
	}
}

func TestGetOrDefault(t *testing.T) {
	c := NewCache()
	if got := c.GetOrDefault("k", "default"); got != "default" {
		t.Errorf("GetOrDefault missing = %v, want default", got)
	}
	c.Set("k", "stored", 0, nil)
	if got := c.GetOrDefault("k", "default"); got != "stored" {
		t.Errorf("GetOrDefault found = %v, want stored", got)
	}
}

func TestKey(t *testing.T) {
	if got := Key("supplier-sync", "t1", 7); got != "supplier-sync|t1|7" {
		t.Errorf("Key = %q", got)
	}
}

func TestTagKey_GetKeysByTag_DeleteByTag(t *testing.T) {
	c := NewCache()
	c.Set("k1", "v1", 0, []string{"t1"})
	c.Set("k2", "v2", 0, []string{"t1"})

	if keys := c.GetKeysByTag("t1"); len(keys) != 2 {
		t.Errorf("GetKeysByTag = %d keys, want 2", len(keys))
	}

	c.DeleteByTag("t1")
	if _, ok := c.Get("k1"); ok {
		t.Error("DeleteByTag: k1 should be gone")
	}
	if _, ok := c.Get("k2"); ok {
		t.Error("DeleteByTag: k2 should be gone")
	}
}

func TestDelete_RemovesFromTagIndex(t *testing.T) {
	c := NewCache()
	c.Set("k", "v", 0, []string{"t2"})
	c.Delete("k")
	if keys := c.GetKeysByTag("t2"); len(keys) != 0 {
		t.Errorf("GetKeysByTag after Delete = %d keys, want 0", len(keys))
	}
}
