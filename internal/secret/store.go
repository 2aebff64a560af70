// Package secret encrypts credentials for at-rest storage and produces
// redacted display forms. The key is derived from machine identity, so
// stored ciphertexts are bound to the (host, account, salt) that wrote them.
package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Sentinel errors. Callers branch with errors.Is; the concrete cause is
// wrapped but never includes the offending plaintext or ciphertext.
var (
	// ErrKeyDerivation means the store could not derive its key. Fatal:
	// the process cannot provide encryption services.
	ErrKeyDerivation = errors.New("secret: key derivation failed")

	// ErrEncrypt means the plaintext was rejected (empty or over the ceiling).
	ErrEncrypt = errors.New("secret: plaintext rejected")

	// ErrDecrypt means a framed ciphertext failed authentication: tampered
	// data, or a key mismatch because host/account/salt changed. The
	// credential must be treated as unusable and re-entered.
	ErrDecrypt = errors.New("secret: ciphertext failed authentication")
)

const (
	// ciphertextPrefix frames stored ciphertexts and carries the format
	// version. Values without it are legacy plaintext from before
	// encryption-at-rest was introduced.
	ciphertextPrefix = "enc:v1:"

	// maxPlaintextLen bounds credential size. Configuration values are
	// short; anything larger is a caller bug.
	maxPlaintextLen = 8 * 1024

	// keyIterations is the PBKDF2-HMAC-SHA256 work factor (OWASP 2023).
	keyIterations = 600_000

	keyLen = 32 // AES-256
)

// Store performs authenticated encryption of credential strings. The AEAD is
// built once at construction; all methods are safe for concurrent use.
type Store struct {
	aead cipher.AEAD
}

// NewStore derives the machine-scoped key from km and returns a ready Store.
// Derivation is CPU-bound (tens of milliseconds); call once at startup and
// share the Store, rather than constructing per request.
func NewStore(km KeyMaterial) (*Store, error) {
	key := deriveKey(km)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivation, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivation, err)
	}

	// Zero the key slice; the AEAD holds its own expanded schedule.
	for i := range key {
		key[i] = 0
	}

	return &Store{aead: aead}, nil
}

// deriveKey stretches the identity triple into an AES-256 key. Deterministic:
// the same (host, account, salt) always yields the same key, and changing any
// one of the three changes it.
func deriveKey(km KeyMaterial) []byte {
	password := km.Host + "\x00" + km.Account
	salt := []byte("sherpa.v1:" + km.Salt)
	return pbkdf2.Key([]byte(password), salt, keyIterations, keyLen, sha256.New)
}

// Encrypt seals plaintext under the store's key and returns the stored form:
// ciphertextPrefix + base64url(nonce || ciphertext || tag). The output is
// printable and safe to embed in a JSON text field.
func (s *Store) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("%w: empty plaintext", ErrEncrypt)
	}
	if len(plaintext) > maxPlaintextLen {
		return "", fmt.Errorf("%w: plaintext exceeds %d bytes", ErrEncrypt, maxPlaintextLen)
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("%w: generate nonce: %v", ErrEncrypt, err)
	}

	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return ciphertextPrefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value previously produced by Encrypt. Three outcomes:
//
//   - framed and authentic: (plaintext, false, nil)
//   - no ciphertext framing: (value, true, nil) — a legacy plaintext value
//     from before encryption-at-rest; the caller should re-encrypt on next write
//   - framed but failing authentication: ("", false, ErrDecrypt)
//
// A framed value that fails to authenticate is never demoted to legacy:
// guessing that tampered ciphertext is plaintext would hand corrupt bytes to
// the caller as a credential.
func (s *Store) Decrypt(value string) (plaintext string, legacy bool, err error) {
	encoded, framed := strings.CutPrefix(value, ciphertextPrefix)
	if !framed {
		return value, true, nil
	}

	// Strict decoding rejects non-zero trailing padding bits, so any
	// single-character mutation of the payload is detected here or by the AEAD.
	sealed, err := base64.RawURLEncoding.Strict().DecodeString(encoded)
	if err != nil {
		return "", false, fmt.Errorf("%w: malformed encoding", ErrDecrypt)
	}
	if len(sealed) < s.aead.NonceSize() {
		return "", false, fmt.Errorf("%w: truncated", ErrDecrypt)
	}

	nonce, ct := sealed[:s.aead.NonceSize()], sealed[s.aead.NonceSize():]
	pt, err := s.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", false, ErrDecrypt
	}
	return string(pt), false, nil
}

// IsEncrypted reports whether value carries the ciphertext framing. It does
// not verify authenticity; use Decrypt for that.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, ciphertextPrefix)
}
