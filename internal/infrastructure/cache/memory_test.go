package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/goosegrocer/backend/internal/domain"
)

func sampleResult(item string) domain.MatchResult {
	return domain.MatchResult{
		Item:  domain.CanonicalItem{Name: item, Quantity: 1},
		Store: domain.StoreNoFrills,
		Product: &domain.Product{
			ID: "p1", Name: "Milk", Store: domain.StoreNoFrills, Price: 3.50,
		},
		Confidence: 1.0,
		Method:     domain.MethodExact,
	}
}

func TestMatchCache(t *testing.T) {
	t.Run("get returns false for missing entry", func(t *testing.T) {
		c := NewMatchCache(time.Minute)
		if _, ok := c.Get("milk", domain.StoreNoFrills, 1); ok {
			t.Error("Get() = ok, want miss")
		}
	})

	t.Run("set then get round trips", func(t *testing.T) {
		c := NewMatchCache(time.Minute)
		want := sampleResult("milk")
		c.Set("milk", domain.StoreNoFrills, 1, want)

		got, ok := c.Get("milk", domain.StoreNoFrills, 1)
		if !ok {
			t.Fatal("Get() = miss, want hit")
		}
		if got.Product.ID != want.Product.ID || got.Method != want.Method {
			t.Errorf("Get() = %+v, want %+v", got, want)
		}
	})

	t.Run("different catalog version is a miss", func(t *testing.T) {
		c := NewMatchCache(time.Minute)
		c.Set("milk", domain.StoreNoFrills, 1, sampleResult("milk"))

		if _, ok := c.Get("milk", domain.StoreNoFrills, 2); ok {
			t.Error("Get() with newer version = hit, want miss")
		}
	})

	t.Run("different store is a miss", func(t *testing.T) {
		c := NewMatchCache(time.Minute)
		c.Set("milk", domain.StoreNoFrills, 1, sampleResult("milk"))

		if _, ok := c.Get("milk", domain.StoreWalmart, 1); ok {
			t.Error("Get() for another store = hit, want miss")
		}
	})

	t.Run("entries expire after the ttl", func(t *testing.T) {
		c := NewMatchCache(10 * time.Millisecond)
		c.Set("milk", domain.StoreNoFrills, 1, sampleResult("milk"))

		time.Sleep(20 * time.Millisecond)

		if _, ok := c.Get("milk", domain.StoreNoFrills, 1); ok {
			t.Error("Get() after ttl = hit, want miss")
		}
	})

	t.Run("zero ttl never expires", func(t *testing.T) {
		c := NewMatchCache(0)
		c.Set("milk", domain.StoreNoFrills, 1, sampleResult("milk"))

		time.Sleep(10 * time.Millisecond)

		if _, ok := c.Get("milk", domain.StoreNoFrills, 1); !ok {
			t.Error("Get() with zero ttl = miss, want hit")
		}
	})

	t.Run("returned result is a copy", func(t *testing.T) {
		c := NewMatchCache(time.Minute)
		c.Set("milk", domain.StoreNoFrills, 1, sampleResult("milk"))

		first, _ := c.Get("milk", domain.StoreNoFrills, 1)
		first.Confidence = 0.1

		second, _ := c.Get("milk", domain.StoreNoFrills, 1)
		if second.Confidence != 1.0 {
			t.Errorf("Confidence = %v, want 1.0 (mutating a hit must not poison the cache)", second.Confidence)
		}
	})

	t.Run("size and clear", func(t *testing.T) {
		c := NewMatchCache(time.Minute)
		c.Set("milk", domain.StoreNoFrills, 1, sampleResult("milk"))
		c.Set("bread", domain.StoreNoFrills, 1, sampleResult("bread"))

		if c.Size() != 2 {
			t.Errorf("Size() = %d, want 2", c.Size())
		}
		c.Clear()
		if c.Size() != 0 {
			t.Errorf("Size() after Clear() = %d, want 0", c.Size())
		}
	})

	t.Run("concurrent access is safe", func(t *testing.T) {
		c := NewMatchCache(time.Minute)
		var wg sync.WaitGroup

		for i := 0; i < 10; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				c.Set("milk", domain.StoreNoFrills, 1, sampleResult("milk"))
			}()
			go func() {
				defer wg.Done()
				c.Get("milk", domain.StoreNoFrills, 1)
			}()
		}
		wg.Wait()
	})
}
