package shroud

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// keyedHash is an HMAC over a session-derived key. The same input hashes
// to the same output within a session, so records stay linkable without
// exposing the raw value.
type keyedHash struct {
	name string
	h    func() hash.Hash
}

// Sha256Hash returns a transform emitting the hex HMAC-SHA256 of text
// values under a session-derived key.
func Sha256Hash() Transform {
	return &keyedHash{name: NameSha256Hash, h: sha256.New}
}

// Sha512Hash returns a transform emitting the hex HMAC-SHA512 of text
// values under a session-derived key.
func Sha512Hash() Transform {
	return &keyedHash{name: NameSha512Hash, h: sha512.New}
}

func (t *keyedHash) Name() string { return t.name }

func (t *keyedHash) Apply(_ context.Context, s *Session, value any) (any, error) {
	text, ok := textOf(value)
	if !ok {
		return nil, unsupported(t.name, value)
	}
	key, err := s.Key("hash."+t.name, 32)
	if err != nil {
		return nil, err
	}
	mac := hmac.New(t.h, key)
	mac.Write([]byte(text))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Argon2Params configures Argon2id hashing.
type Argon2Params struct {
	Time    uint32 // Number of iterations
	Memory  uint32 // Memory usage in KiB
	Threads uint8  // Parallelism factor
	KeyLen  uint32 // Output key length
	SaltLen uint32 // Salt length
}

// DefaultArgon2Params returns recommended Argon2id parameters.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Time:    1,
		Memory:  64 * 1024, // 64 MiB
		Threads: 4,
		KeyLen:  32,
		SaltLen: 16,
	}
}

type argon2Hash struct {
	params Argon2Params
}

// Argon2Hash returns an Argon2id transform with default parameters.
// The salt is derived from the session, so output is stable per session.
func Argon2Hash() Transform {
	return Argon2HashWithParams(DefaultArgon2Params())
}

// Argon2HashWithParams returns an Argon2id transform with custom parameters.
func Argon2HashWithParams(params Argon2Params) Transform {
	return &argon2Hash{params: params}
}

func (t *argon2Hash) Name() string { return NameArgon2Hash }

func (t *argon2Hash) Apply(_ context.Context, s *Session, value any) (any, error) {
	text, ok := textOf(value)
	if !ok {
		return nil, unsupported(NameArgon2Hash, value)
	}
	salt, err := s.Key("hash.argon2.salt", int(t.params.SaltLen))
	if err != nil {
		return nil, err
	}

	sum := argon2.IDKey([]byte(text), salt, t.params.Time, t.params.Memory, t.params.Threads, t.params.KeyLen)

	// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		t.params.Memory,
		t.params.Time,
		t.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

// BcryptCost represents the bcrypt cost factor.
type BcryptCost int

// Bcrypt cost constants.
const (
	BcryptMinCost     BcryptCost = BcryptCost(bcrypt.MinCost)
	BcryptDefaultCost BcryptCost = BcryptCost(bcrypt.DefaultCost)
	BcryptMaxCost     BcryptCost = BcryptCost(bcrypt.MaxCost)
)

type bcryptHash struct {
	cost int
}

// BcryptHash returns a bcrypt transform with default cost. bcrypt salts
// randomly, so output is not linkable across records.
func BcryptHash() Transform {
	return BcryptHashWithCost(BcryptDefaultCost)
}

// BcryptHashWithCost returns a bcrypt transform with a specific cost factor.
func BcryptHashWithCost(cost BcryptCost) Transform {
	return &bcryptHash{cost: int(cost)}
}

func (t *bcryptHash) Name() string { return NameBcryptHash }

func (t *bcryptHash) Apply(_ context.Context, _ *Session, value any) (any, error) {
	text, ok := textOf(value)
	if !ok {
		return nil, unsupported(NameBcryptHash, value)
	}
	sum, err := bcrypt.GenerateFromPassword([]byte(text), t.cost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt hash failed: %w", err)
	}
	return string(sum), nil
}
