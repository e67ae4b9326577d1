package cmap

import (
	"fmt"
	"sync"
	"testing"
)

func TestNew(t *testing.T) {
	m := New[int]()
	if m == nil {
		t.Fatal("New() returned nil")
	}
	if m.ShardCount() != DefaultShardCount {
		t.Errorf("shard count = %d, want %d", m.ShardCount(), DefaultShardCount)
	}
}

func TestNewWithShards(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, DefaultShardCount},
		{-1, DefaultShardCount},
		{3, DefaultShardCount},
		{1, 1},
		{2, 2},
		{8, 8},
		{32, 32},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("shards=%d", tt.input), func(t *testing.T) {
			m := NewWithShards[int](tt.input)
			if m.ShardCount() != tt.expected {
				t.Errorf("NewWithShards(%d) shard count = %d, want %d",
					tt.input, m.ShardCount(), tt.expected)
			}
		})
	}
}

func TestSetAndGet(t *testing.T) {
	m := New[int]()
	m.Set("fork-a", 100)
	m.Set("fork-b", 200)

	if val, ok := m.Get("fork-a"); !ok || val != 100 {
		t.Errorf("Get(fork-a) = (%d, %v), want (100, true)", val, ok)
	}
	if val, ok := m.Get("fork-b"); !ok || val != 200 {
		t.Errorf("Get(fork-b) = (%d, %v), want (200, true)", val, ok)
	}
	if _, ok := m.Get("missing"); ok {
		t.Error("Get(missing) should report absent")
	}
}

func TestSetIfAbsent(t *testing.T) {
	m := New[int]()
	if !m.SetIfAbsent("k", 1) {
		t.Error("SetIfAbsent(absent) should return true")
	}
	if m.SetIfAbsent("k", 2) {
		t.Error("SetIfAbsent(present) should return false")
	}
	if val, _ := m.Get("k"); val != 1 {
		t.Errorf("Get(k) = %d, want 1", val)
	}
}

func TestDeleteAndPop(t *testing.T) {
	m := New[int]()
	m.Set("a", 1)
	m.Set("b", 2)

	m.Delete("a")
	if m.Has("a") {
		t.Error("Has(a) after Delete should be false")
	}

	val, ok := m.Pop("b")
	if !ok || val != 2 {
		t.Errorf("Pop(b) = (%d, %v), want (2, true)", val, ok)
	}
	if _, ok := m.Pop("b"); ok {
		t.Error("second Pop(b) should report absent")
	}
}

func TestCountAndClear(t *testing.T) {
	m := New[int]()
	for i := 0; i < 100; i++ {
		m.Set(fmt.Sprintf("key-%d", i), i)
	}
	if m.Count() != 100 {
		t.Errorf("Count() = %d, want 100", m.Count())
	}
	m.Clear()
	if m.Count() != 0 {
		t.Errorf("Count() after Clear = %d, want 0", m.Count())
	}
}

func TestShardDistribution(t *testing.T) {
	m := NewWithShards[int](8)
	for i := 0; i < 800; i++ {
		m.Set(fmt.Sprintf("fork-%04d", i), i)
	}

	used := 0
	for _, s := range m.Stats() {
		if s.Count > 0 {
			used++
		}
	}
	if used < 6 {
		t.Errorf("keys landed in %d of 8 shards, want a spread", used)
	}
}

func TestShardIndexStable(t *testing.T) {
	a := NewWithShards[int](16)
	b := NewWithShards[int](16)
	for _, k := range []string{"x", "fork-01h", "another-key"} {
		if a.shardIndex(k) != b.shardIndex(k) {
			t.Errorf("shardIndex(%q) differs between maps", k)
		}
	}
}

func TestHashKey(t *testing.T) {
	tests := []struct {
		key  string
		want uint32
	}{
		{"", 0},
		{"hello", 0x248bfa47},
		{"hello, world", 0x149bbb7f},
		{"The quick brown fox jumps over the lazy dog.", 0xd5c48bfc},
	}

	for _, tt := range tests {
		// Repeat so pooled digests are reused.
		for i := 0; i < 3; i++ {
			if got := hashKey(tt.key); got != tt.want {
				t.Errorf("hashKey(%q) = %#x, want %#x", tt.key, got, tt.want)
			}
		}
	}
}

func TestHashKey_Concurrent(t *testing.T) {
	want := hashKey("fk_01j9z3k6m8")

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				if got := hashKey("fk_01j9z3k6m8"); got != want {
					t.Errorf("hashKey = %#x, want %#x", got, want)
					return
				}
				_ = hashKey(fmt.Sprintf("key-%d", i))
			}
		}()
	}
	wg.Wait()
}

func TestConcurrentAccess(t *testing.T) {
	m := New[int]()
	var wg sync.WaitGroup
	numGoroutines := 50
	numOps := 200

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < numOps; j++ {
				key := fmt.Sprintf("%d-%d", base, j)
				m.Set(key, j)
				m.Get(key)
				m.Has(key)
			}
		}(i)
	}
	wg.Wait()

	if m.Count() != numGoroutines*numOps {
		t.Errorf("Count() = %d, want %d", m.Count(), numGoroutines*numOps)
	}
}
