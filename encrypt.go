package shroud

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Encryption errors.
var (
	ErrCiphertextShort  = errors.New("ciphertext too short")
	ErrDecryptionFailed = errors.New("decryption failed")
)

// The encrypt transforms serialize the raw value as JSON before sealing it,
// so any field type can be encrypted. The emitted value is a base64 string;
// Revert returns the JSON-decoded value (numbers as float64, objects as
// map[string]any).

type aesEncrypt struct{}

// AESEncrypt returns a reversible AES-256-GCM transform keyed by the
// session. Ciphertexts are nonce-prefixed.
func AESEncrypt() Reversible {
	return &aesEncrypt{}
}

func (t *aesEncrypt) Name() string { return NameAESEncrypt }

func (t *aesEncrypt) gcm(s *Session) (cipher.AEAD, error) {
	key, err := s.Key("encrypt.aes", 32)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return cipher.NewGCM(block)
}

func (t *aesEncrypt) Apply(_ context.Context, s *Session, value any) (any, error) {
	plaintext, err := json.Marshal(value)
	if err != nil {
		return nil, unsupported(NameAESEncrypt, value)
	}
	gcm, err := t.gcm(s)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return base64.StdEncoding.EncodeToString(gcm.Seal(nonce, nonce, plaintext, nil)), nil
}

func (t *aesEncrypt) Revert(_ context.Context, s *Session, value any) (any, error) {
	ciphertext, err := decodeCiphertext(NameAESEncrypt, value)
	if err != nil {
		return nil, err
	}
	gcm, err := t.gcm(s)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, ErrCiphertextShort
	}
	nonce, sealed := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	return decodePlaintext(plaintext)
}

type rsaEncrypt struct{}

// RSAEncrypt returns a reversible RSA-OAEP transform using the session's
// public key. Revert needs the private key, which typically only the
// receiving side holds. Values must fit in a single OAEP block.
func RSAEncrypt() Reversible {
	return &rsaEncrypt{}
}

func (t *rsaEncrypt) Name() string { return NameRSAEncrypt }

func (t *rsaEncrypt) Apply(_ context.Context, s *Session, value any) (any, error) {
	pub := s.PublicKey()
	if pub == nil {
		return nil, fmt.Errorf("%w: session has no public key", ErrInvalidKey)
	}
	plaintext, err := json.Marshal(value)
	if err != nil {
		return nil, unsupported(NameRSAEncrypt, value)
	}
	ciphertext, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, plaintext, nil)
	if err != nil {
		return nil, err
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (t *rsaEncrypt) Revert(_ context.Context, s *Session, value any) (any, error) {
	priv := s.PrivateKey()
	if priv == nil {
		return nil, fmt.Errorf("%w: session has no private key", ErrInvalidKey)
	}
	ciphertext, err := decodeCiphertext(NameRSAEncrypt, value)
	if err != nil {
		return nil, err
	}
	plaintext, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	return decodePlaintext(plaintext)
}

func decodeCiphertext(transform string, value any) ([]byte, error) {
	text, ok := value.(string)
	if !ok {
		return nil, unsupported(transform, value)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("base64 decode: %w", err)
	}
	return ciphertext, nil
}

func decodePlaintext(plaintext []byte) (any, error) {
	var v any
	if err := json.Unmarshal(plaintext, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	return v, nil
}
