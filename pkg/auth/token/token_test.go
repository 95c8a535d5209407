package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func newTestCodec(t *testing.T, ttl time.Duration) *Codec {
	t.Helper()
	c, err := NewCodec(testKey, ttl)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return c
}

func TestNewCodecRejectsShortKey(t *testing.T) {
	if _, err := NewCodec([]byte("too-short"), 0); err == nil {
		t.Fatal("short key accepted")
	}
	if _, err := NewCodec(nil, 0); err == nil {
		t.Fatal("nil key accepted")
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	codec := newTestCodec(t, time.Hour)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	signed, err := codec.Issue("juanperez", []string{"USER", "ADMIN"}, now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if strings.Count(signed, ".") != 2 {
		t.Errorf("token %q is not three dot-separated segments", signed)
	}

	claims, err := codec.Verify(signed, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "juanperez" {
		t.Errorf("subject = %q, want juanperez", claims.Subject)
	}
	if len(claims.Roles) != 2 || claims.Roles[0] != "USER" || claims.Roles[1] != "ADMIN" {
		t.Errorf("roles = %v, want [USER ADMIN]", claims.Roles)
	}
	if !claims.IssuedAt.Equal(now) {
		t.Errorf("issued at = %v, want %v", claims.IssuedAt, now)
	}
	if !claims.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("expires at = %v, want %v", claims.ExpiresAt, now.Add(time.Hour))
	}
}

func TestVerifyIsIdempotent(t *testing.T) {
	codec := newTestCodec(t, time.Hour)
	now := time.Now()
	signed, err := codec.Issue("ana", []string{"USER"}, now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := codec.Verify(signed, now); err != nil {
			t.Fatalf("Verify #%d: %v", i+1, err)
		}
	}
}

func TestVerifyTamperedPayload(t *testing.T) {
	codec := newTestCodec(t, time.Hour)
	now := time.Now()
	signed, err := codec.Issue("ana", []string{"USER"}, now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Swap the payload for another token's payload; signature no longer
	// covers it.
	other, err := codec.Issue("admin", []string{"ADMIN"}, now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	parts := strings.Split(signed, ".")
	otherParts := strings.Split(other, ".")
	forged := parts[0] + "." + otherParts[1] + "." + parts[2]

	if _, err := codec.Verify(forged, now); !errors.Is(err, ErrBadSignature) {
		t.Errorf("Verify(forged) = %v, want ErrBadSignature", err)
	}
}

func TestVerifyWrongKey(t *testing.T) {
	codec := newTestCodec(t, time.Hour)
	otherCodec, err := NewCodec([]byte("ffffffffffffffffffffffffffffffff"), time.Hour)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	now := time.Now()
	signed, err := otherCodec.Issue("ana", []string{"USER"}, now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := codec.Verify(signed, now); !errors.Is(err, ErrBadSignature) {
		t.Errorf("Verify = %v, want ErrBadSignature", err)
	}
}

func TestVerifyExpiryBoundary(t *testing.T) {
	codec := newTestCodec(t, time.Hour)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	signed, err := codec.Issue("ana", []string{"USER"}, now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// One second before expiry the token is still good.
	if _, err := codec.Verify(signed, now.Add(time.Hour-time.Second)); err != nil {
		t.Errorf("Verify just before expiry: %v", err)
	}
	// At and after the expiry instant it is not.
	if _, err := codec.Verify(signed, now.Add(time.Hour)); !errors.Is(err, ErrExpired) {
		t.Errorf("Verify at expiry = %v, want ErrExpired", err)
	}
	if _, err := codec.Verify(signed, now.Add(2*time.Hour)); !errors.Is(err, ErrExpired) {
		t.Errorf("Verify after expiry = %v, want ErrExpired", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	codec := newTestCodec(t, time.Hour)
	now := time.Now()

	for _, tok := range []string{"", "garbage", "a.b", "a.b.c.d", "not.a.jwt"} {
		if _, err := codec.Verify(tok, now); !errors.Is(err, ErrMalformed) {
			t.Errorf("Verify(%q) = %v, want ErrMalformed", tok, err)
		}
	}
}

func TestIssueRequiresSubject(t *testing.T) {
	codec := newTestCodec(t, time.Hour)
	if _, err := codec.Issue("", []string{"USER"}, time.Now()); err == nil {
		t.Fatal("empty subject accepted")
	}
}

func TestZeroTTLSelectsDefault(t *testing.T) {
	codec := newTestCodec(t, 0)
	if codec.TTL() != DefaultTTL {
		t.Errorf("TTL = %v, want %v", codec.TTL(), DefaultTTL)
	}
}
