// Package apikeys implements the workspace secret codec and the API-key
// credential presented on machine-to-machine requests.
package apikeys

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	ivLength  = 16
	tagLength = 16
	// minEncryptedLength is iv + tag + at least one ciphertext byte.
	minEncryptedLength = ivLength + tagLength + 1
)

var additionalData = []byte("api-key")

var (
	// ErrConfiguration is returned when no master secret is configured.
	ErrConfiguration = errors.New("apikeys: encryption secret not configured")
	// ErrDecryption is returned for malformed or tampered ciphertext.
	ErrDecryption = errors.New("apikeys: decryption failed")
)

// Codec encrypts workspace secrets with AES-256-GCM. The key is the SHA-256
// digest of the configured master secret.
type Codec struct {
	key        []byte
	configured bool
}

// NewCodec derives the codec key from secret. An empty secret yields a codec
// whose operations fail with ErrConfiguration.
func NewCodec(secret string) *Codec {
	if strings.TrimSpace(secret) == "" {
		return &Codec{}
	}
	sum := sha256.Sum256([]byte(secret))
	return &Codec{key: sum[:], configured: true}
}

// Configured reports whether a master secret is present.
func (c *Codec) Configured() bool {
	return c != nil && c.configured
}

// Encrypt returns base64(iv || tag || ciphertext).
func (c *Codec) Encrypt(plaintext string) (string, error) {
	aead, err := c.aead()
	if err != nil {
		return "", err
	}
	iv := make([]byte, ivLength)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("apikeys: generate iv: %w", err)
	}

	// Seal appends the tag after the ciphertext; the token stores it before.
	sealed := aead.Seal(nil, iv, []byte(plaintext), additionalData)
	ciphertext := sealed[:len(sealed)-tagLength]
	tag := sealed[len(sealed)-tagLength:]

	combined := make([]byte, 0, ivLength+tagLength+len(ciphertext))
	combined = append(combined, iv...)
	combined = append(combined, tag...)
	combined = append(combined, ciphertext...)
	return base64.StdEncoding.EncodeToString(combined), nil
}

// Decrypt reverses Encrypt.
func (c *Codec) Decrypt(token string) (string, error) {
	aead, err := c.aead()
	if err != nil {
		return "", err
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	if len(raw) < ivLength+tagLength {
		return "", fmt.Errorf("%w: token too short", ErrDecryption)
	}

	iv := raw[:ivLength]
	tag := raw[ivLength : ivLength+tagLength]
	ciphertext := raw[ivLength+tagLength:]

	sealed := make([]byte, 0, len(ciphertext)+tagLength)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, iv, sealed, additionalData)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	return string(plaintext), nil
}

// IsEncrypted reports whether value decodes as standard base64 to at least
// iv + tag + one byte. It is a structural heuristic, not a format tag.
func IsEncrypted(value string) bool {
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return false
	}
	return len(raw) >= minEncryptedLength
}

// SafeEncrypt encrypts value unless it already looks encrypted.
func (c *Codec) SafeEncrypt(value string) (string, error) {
	if IsEncrypted(value) {
		return value, nil
	}
	return c.Encrypt(value)
}

// SafeDecrypt decrypts value only if it looks encrypted.
func (c *Codec) SafeDecrypt(value string) (string, error) {
	if !IsEncrypted(value) {
		return value, nil
	}
	return c.Decrypt(value)
}

func (c *Codec) aead() (cipher.AEAD, error) {
	if !c.Configured() {
		return nil, ErrConfiguration
	}
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, fmt.Errorf("apikeys: new cipher: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, ivLength)
	if err != nil {
		return nil, fmt.Errorf("apikeys: new gcm: %w", err)
	}
	return aead, nil
}
