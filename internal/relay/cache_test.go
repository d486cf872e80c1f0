package relay

import (
	"context"
	"errors"
	"testing"
	"time"
)

type countingKeyserver struct {
	calls int
	err   error
}

func (k *countingKeyserver) Sample(_ context.Context, address string) (*AddressMetadata, error) {
	k.calls++
	if k.err != nil {
		return nil, k.err
	}
	return &AddressMetadata{PubKey: []byte(address)}, nil
}

func TestMetadataCache(t *testing.T) {
	ks := &countingKeyserver{}
	c := NewMetadataCache(ks, time.Minute)
	now := time.Unix(1734739200, 0)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.Sample(ctx, "alice"); err != nil {
			t.Fatalf("Sample: %v", err)
		}
	}
	if ks.calls != 1 {
		t.Fatalf("expected 1 keyserver call, got %d", ks.calls)
	}

	now = now.Add(2 * time.Minute)
	if _, err := c.Sample(ctx, "alice"); err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if ks.calls != 2 {
		t.Fatalf("expected refresh after expiry, got %d calls", ks.calls)
	}

	c.Invalidate("alice")
	if _, err := c.Sample(ctx, "alice"); err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if ks.calls != 3 {
		t.Fatalf("expected refresh after invalidate, got %d calls", ks.calls)
	}

	ks.err = errors.New("down")
	if _, err := c.Sample(ctx, "bob"); err == nil {
		t.Fatalf("expected error")
	}
	ks.err = nil
	if _, err := c.Sample(ctx, "bob"); err != nil {
		t.Fatalf("errors must not be cached: %v", err)
	}
}
