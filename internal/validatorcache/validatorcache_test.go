package validatorcache

import (
	"testing"

	"github.com/agentgate/qualitygate/internal/gatetype"
)

func TestCache_MissThenHit(t *testing.T) {
	c := New()
	key := Key{Path: "a.ts", ContentHash: HashContent([]byte("const x=1")), EnabledValidators: []string{"linter"}}

	if _, ok := c.Get(key); ok {
		t.Fatal("expected miss on empty cache")
	}

	resp := gatetype.ValidationResponse{Success: true}
	c.Put(key, resp)

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if !got.Success {
		t.Errorf("got.Success = false, want true")
	}
}

func TestCache_KeyOrderIndependence(t *testing.T) {
	c := New()
	k1 := Key{Path: "a.ts", ContentHash: "h", EnabledValidators: []string{"linter", "typechecker"}}
	k2 := Key{Path: "a.ts", ContentHash: "h", EnabledValidators: []string{"typechecker", "linter"}}

	if k1.Hash() != k2.Hash() {
		t.Error("expected hash to be independent of validator slice order")
	}
}

func TestCache_DifferentContentHashMisses(t *testing.T) {
	c := New()
	k1 := Key{Path: "a.ts", ContentHash: "hash-one"}
	k2 := Key{Path: "a.ts", ContentHash: "hash-two"}

	c.Put(k1, gatetype.ValidationResponse{Success: true})
	if _, ok := c.Get(k2); ok {
		t.Error("expected miss for a different content hash")
	}
}

func TestCache_Invalidate(t *testing.T) {
	c := New()
	key := Key{Path: "a.ts", ContentHash: "h"}
	c.Put(key, gatetype.ValidationResponse{Success: true})

	c.Invalidate()

	if _, ok := c.Get(key); ok {
		t.Error("expected miss after Invalidate")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestHashContent_IsDeterministic(t *testing.T) {
	if HashContent([]byte("hello")) != HashContent([]byte("hello")) {
		t.Error("expected identical content to hash identically")
	}
	if HashContent([]byte("hello")) == HashContent([]byte("world")) {
		t.Error("expected different content to hash differently")
	}
}
