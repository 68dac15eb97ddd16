package antiforgery

import (
	"bytes"
	"encoding/base64"
	"testing"
	"time"
)

func testSigner(t *testing.T) *Signer {
	t.Helper()
	s, err := NewSigner(bytes.Repeat([]byte("k"), MinKeyBytes), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSigner_RoundTrip(t *testing.T) {
	s := testSigner(t)
	tok, err := s.Generate()
	if err != nil {
		t.Fatal(err)
	}
	if !s.Verify(tok) {
		t.Fatal("fresh token rejected")
	}
}

func TestSigner_RejectsTampering(t *testing.T) {
	s := testSigner(t)
	tok, _ := s.Generate()

	raw, _ := base64.RawURLEncoding.DecodeString(tok)
	raw[len(raw)-1] ^= 0xff
	if s.Verify(base64.RawURLEncoding.EncodeToString(raw)) {
		t.Fatal("tampered signature accepted")
	}
	if s.Verify("") || s.Verify("not-base64!") {
		t.Fatal("garbage accepted")
	}

	other, _ := NewSigner(bytes.Repeat([]byte("x"), MinKeyBytes), time.Hour)
	if other.Verify(tok) {
		t.Fatal("token accepted under a different key")
	}
}

func TestSigner_Expiry(t *testing.T) {
	s := testSigner(t)
	base := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	tok, _ := s.Generate()

	s.now = func() time.Time { return base.Add(59 * time.Minute) }
	if !s.Verify(tok) {
		t.Fatal("token rejected inside window")
	}
	s.now = func() time.Time { return base.Add(61 * time.Minute) }
	if s.Verify(tok) {
		t.Fatal("expired token accepted")
	}
	s.now = func() time.Time { return base.Add(-2 * time.Minute) }
	if s.Verify(tok) {
		t.Fatal("future token accepted")
	}
}

func TestNewSigner_ShortKey(t *testing.T) {
	if _, err := NewSigner([]byte("short"), 0); err != ErrShortKey {
		t.Fatalf("err = %v, want ErrShortKey", err)
	}
}

func TestDecodeKey(t *testing.T) {
	key := bytes.Repeat([]byte{0xfb}, 32)
	for _, enc := range []string{
		base64.RawURLEncoding.EncodeToString(key),
		base64.URLEncoding.EncodeToString(key),
	} {
		got, err := DecodeKey(enc)
		if err != nil || !bytes.Equal(got, key) {
			t.Fatalf("DecodeKey(%q) = %x, %v", enc, got, err)
		}
	}
}
