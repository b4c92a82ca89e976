package shroud

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

// Session is the execution context handed to every transform.
//
// A session owns a master secret from which purpose-specific keys and
// offsets are derived, so keyed hashes, encryption and offsets stay stable
// for the life of one study configuration and differ across sessions.
type Session struct {
	id     string
	secret []byte
	pub    *rsa.PublicKey
	priv   *rsa.PrivateKey
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionID sets the session identifier. Defaults to a random UUID.
func WithSessionID(id string) SessionOption {
	return func(s *Session) { s.id = id }
}

// WithSecret sets the master secret. Defaults to 32 random bytes.
func WithSecret(secret []byte) SessionOption {
	return func(s *Session) { s.secret = append([]byte(nil), secret...) }
}

// WithPublicKey sets the key used by RSAEncrypt.
func WithPublicKey(pub *rsa.PublicKey) SessionOption {
	return func(s *Session) { s.pub = pub }
}

// WithPrivateKey sets the key pair used by RSAEncrypt and its Revert.
func WithPrivateKey(priv *rsa.PrivateKey) SessionOption {
	return func(s *Session) {
		s.priv = priv
		if priv != nil {
			s.pub = &priv.PublicKey
		}
	}
}

// NewSession creates a session.
func NewSession(opts ...SessionOption) (*Session, error) {
	s := &Session{}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if len(s.secret) == 0 {
		s.secret = make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, s.secret); err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
	}
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// PublicKey returns the RSA public key, or nil.
func (s *Session) PublicKey() *rsa.PublicKey { return s.pub }

// PrivateKey returns the RSA private key, or nil.
func (s *Session) PrivateKey() *rsa.PrivateKey { return s.priv }

// Key derives an n-byte key for purpose from the master secret using
// HKDF-SHA256. The session id is mixed in as salt.
func (s *Session) Key(purpose string, n int) ([]byte, error) {
	r := hkdf.New(sha256.New, s.secret, []byte(s.id), []byte(purpose))
	key := make([]byte, n)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("%w: derive %q: %w", ErrInvalidKey, purpose, err)
	}
	return key, nil
}

// Unit derives a stable value in [-1, 1) for purpose.
func (s *Session) Unit(purpose string) (float64, error) {
	b, err := s.Key(purpose, 8)
	if err != nil {
		return 0, err
	}
	// 53 bits of mantissa.
	u := float64(binary.BigEndian.Uint64(b)>>11) / (1 << 53)
	return u*2 - 1, nil
}
