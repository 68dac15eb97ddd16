// internal/antiforgery/antiforgery.go
//
// Stateless antiforgery tokens for widget forms.
//
// Context
//   widget.FormFields embeds an `__antiforgery` hidden input generated at
//   render time.  The widget invoker verifies it before any POST method
//   runs, so a forged cross-site POST never reaches widget code.  Tokens
//   are stateless:
//
//      base64url( nonce | unixMicro | HMAC_SHA256(key, nonce+unixMicro) )
//
//   •  nonce – 16 random bytes.
//   •  unixMicro – microseconds since Unix epoch, 8 bytes, big-endian.
//   •  HMAC – calculated with the configured key.
//
//   Validation checks the signature and ensures the timestamp is within
//   MaxAge.  No server-side sessions are required, so any instance holding
//   the same key accepts the token.
//
// Workflow
//   •  Signer.Generate() → token string for the form renderer.
//   •  Signer.Verify(tok) → constant-time verify; false on any failure.
//
//------------------------------------------------------------------------------

package antiforgery

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"time"
)

const (
	nonceBytes = 16
	tokenBytes = nonceBytes + 8 + sha256.Size // nonce + ts + sig

	// DefaultMaxAge is the token validity window.
	DefaultMaxAge = 2 * time.Hour

	// MinKeyBytes is the shortest accepted HMAC key.
	MinKeyBytes = 32

	maxSkew = time.Minute
)

// ErrShortKey is returned for keys under MinKeyBytes.
var ErrShortKey = errors.New("antiforgery: key must be at least 32 bytes")

// Signer issues and verifies tokens.  It satisfies widget.TokenSource.
type Signer struct {
	key    []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewSigner returns a Signer.  maxAge ≤ 0 selects DefaultMaxAge.
func NewSigner(key []byte, maxAge time.Duration) (*Signer, error) {
	if len(key) < MinKeyBytes {
		return nil, ErrShortKey
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Signer{key: append([]byte(nil), key...), maxAge: maxAge, now: time.Now}, nil
}

// DecodeKey parses a base64url key (padding optional), as stored in config
// or Vault.
func DecodeKey(s string) ([]byte, error) {
	if b, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.URLEncoding.DecodeString(s)
}

// RandomKey returns a fresh key.  Tokens signed with it die with the
// process, which is fine for development only.
func RandomKey() ([]byte, error) {
	k := make([]byte, MinKeyBytes)
	if _, err := rand.Read(k); err != nil {
		return nil, err
	}
	return k, nil
}

// Generate creates a new token.  Call once per form render.
func (s *Signer) Generate() (string, error) {
	nonce := make([]byte, nonceBytes)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(s.now().UnixMicro()))

	buf := make([]byte, 0, tokenBytes)
	buf = append(buf, nonce...)
	buf = append(buf, ts...)
	buf = append(buf, s.sign(nonce, ts)...)

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Verify reports whether tok passes HMAC and age checks.
func (s *Signer) Verify(tok string) bool {
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) != tokenBytes {
		return false
	}

	nonce := raw[:nonceBytes]
	tsBytes := raw[nonceBytes : nonceBytes+8]
	sig := raw[nonceBytes+8:]

	// Future timestamp (clock skew) or older than maxAge.
	issued := time.UnixMicro(int64(binary.BigEndian.Uint64(tsBytes)))
	now := s.now()
	if now.Sub(issued) > s.maxAge || issued.Sub(now) > maxSkew {
		return false
	}

	return hmac.Equal(sig, s.sign(nonce, tsBytes))
}

func (s *Signer) sign(nonce, ts []byte) []byte {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(nonce)
	mac.Write(ts)
	return mac.Sum(nil)
}
