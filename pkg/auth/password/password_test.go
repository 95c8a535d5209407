package password

import (
	"strings"
	"testing"
)

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := NewHasher(MinCost)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	return h
}

func TestHashVerify(t *testing.T) {
	h := newTestHasher(t)

	hashed, err := h.Hash("secreto123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(hashed, "$2a$") {
		t.Errorf("hash %q is not a bcrypt string", hashed)
	}

	ok, err := h.Verify("secreto123", hashed)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Error("correct password rejected")
	}

	ok, err = h.Verify("wrong", hashed)
	if err != nil {
		t.Fatalf("Verify mismatch: %v", err)
	}
	if ok {
		t.Error("wrong password accepted")
	}
}

func TestHashesDifferPerCall(t *testing.T) {
	h := newTestHasher(t)

	a, err := h.Hash("same-input")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := h.Hash("same-input")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a == b {
		t.Error("two hashes of the same input are identical; salt is not random")
	}
	for _, hashed := range []string{a, b} {
		ok, err := h.Verify("same-input", hashed)
		if err != nil || !ok {
			t.Errorf("Verify(%q) = %v, %v", hashed, ok, err)
		}
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	h := newTestHasher(t)

	ok, err := h.Verify("anything", "not-a-bcrypt-hash")
	if err == nil {
		t.Error("malformed stored hash did not surface an error")
	}
	if ok {
		t.Error("malformed stored hash verified")
	}
}

func TestNewHasherCostValidation(t *testing.T) {
	if _, err := NewHasher(MaxCost + 1); err == nil {
		t.Error("cost above max accepted")
	}
	if _, err := NewHasher(-1); err == nil {
		t.Error("negative cost accepted")
	}
	h, err := NewHasher(0)
	if err != nil {
		t.Fatalf("NewHasher(0): %v", err)
	}
	if h.cost != DefaultCost {
		t.Errorf("zero cost resolved to %d, want DefaultCost %d", h.cost, DefaultCost)
	}
}
