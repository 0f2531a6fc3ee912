package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Fatalf("empty get err = %v, want ErrMiss", err)
	}
	if err := m.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	got, err := m.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("get = %q, %v", got, err)
	}
	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Fatalf("get after delete err = %v, want ErrMiss", err)
	}
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	_ = m.Set(ctx, "k", []byte("v"), time.Minute)
	now = now.Add(59 * time.Second)
	if _, err := m.Get(ctx, "k"); err != nil {
		t.Fatalf("before expiry: %v", err)
	}
	now = now.Add(time.Second)
	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Fatalf("at expiry err = %v, want ErrMiss", err)
	}
	if m.Len() != 0 {
		t.Fatalf("expired entry not evicted")
	}
}

func TestMemoryCopiesValue(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	buf := []byte("abc")
	_ = m.Set(ctx, "k", buf, 0)
	buf[0] = 'x'
	got, _ := m.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("stored value changed to %q", got)
	}
}

func TestPDFKeyChangesWithTimestamps(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	base := PDFKey("inv", t0, t0)
	if base == PDFKey("inv", t0.Add(time.Millisecond), t0) {
		t.Fatal("invoice update did not change key")
	}
	if base == PDFKey("inv", t0, t0.Add(time.Millisecond)) {
		t.Fatal("settings update did not change key")
	}
	if base != PDFKey("inv", t0, t0) {
		t.Fatal("key not stable")
	}
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	var s Store = Nop{}
	_ = s.Set(ctx, "k", []byte("v"), time.Minute)
	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Fatalf("err = %v, want ErrMiss", err)
	}
}

// TestRedisRoundTrip needs a live server; set REDIS_URL to run it.
func TestRedisRoundTrip(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	r, err := Dial(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	key := PDFKey("test-"+t.Name(), time.Now(), time.Now())
	if _, err := r.Get(ctx, key); !errors.Is(err, ErrMiss) {
		t.Fatalf("err = %v, want ErrMiss", err)
	}
	if err := r.Set(ctx, key, []byte("%PDF"), time.Minute); err != nil {
		t.Fatal(err)
	}
	got, err := r.Get(ctx, key)
	if err != nil || string(got) != "%PDF" {
		t.Fatalf("get = %q, %v", got, err)
	}
	_ = r.Delete(ctx, key)
}
