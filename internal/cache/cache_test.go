// ReelAtlas - AI-Assisted Movie Discovery
// Copyright 2026 ReelAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reel-atlas/reelatlas

package cache

import (
	"testing"
	"time"
)

func newTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	c := New(ttl)
	t.Cleanup(c.Stop)
	return c
}

func TestSetGet(t *testing.T) {
	c := newTestCache(t, time.Minute)

	c.Set("model", "gemini-1.5-flash")

	got, ok := c.Get("model")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.(string) != "gemini-1.5-flash" {
		t.Errorf("got %v", got)
	}
}

func TestGetMissing(t *testing.T) {
	c := newTestCache(t, time.Minute)
	if _, ok := c.Get("absent"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestExpiration(t *testing.T) {
	c := newTestCache(t, time.Minute)
	c.SetWithTTL("short", 42, 10*time.Millisecond)

	if _, ok := c.Get("short"); !ok {
		t.Fatal("expected hit before expiry")
	}

	time.Sleep(25 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Error("expected miss after expiry")
	}
}

func TestDeleteAndClear(t *testing.T) {
	c := newTestCache(t, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("expected a deleted")
	}

	c.Clear()
	if _, ok := c.Get("b"); ok {
		t.Error("expected b cleared")
	}
	if got := c.GetStats().TotalKeys; got != 0 {
		t.Errorf("TotalKeys = %d after Clear, want 0", got)
	}
}

func TestStatsAndHitRate(t *testing.T) {
	c := newTestCache(t, time.Minute)
	c.Set("k", "v")

	c.Get("k")      // hit
	c.Get("absent") // miss

	stats := c.GetStats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 1 hit 1 miss", stats)
	}
	if rate := c.HitRate(); rate != 50.0 {
		t.Errorf("HitRate = %v, want 50.0", rate)
	}
}

func TestStop(t *testing.T) {
	c := New(time.Minute)

	c.Set("k", "v")
	c.Stop()
	c.Stop() // idempotent

	// The cache stays usable after Stop; only the background sweep ends and
	// lazy eviction keeps working.
	if _, ok := c.Get("k"); !ok {
		t.Error("expected hit after Stop")
	}
	c.SetWithTTL("short", 1, time.Nanosecond)
	time.Sleep(time.Millisecond)
	if _, ok := c.Get("short"); ok {
		t.Error("expected lazy eviction after Stop")
	}
}
