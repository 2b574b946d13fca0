// Package crypto contains password based AES-256-GCM encryption and decryption
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/crypto/pbkdf2"

	"github.com/Dharsan2024/AudioCryptor/models"
)

const (
	KeyIterations = 200000
	KeySize       = 32
	SaltSize      = 16
	NonceSize     = 12
	TagSize       = 16

	// ScatterSeedSize is the length of the value returned by DeriveScatterSeed.
	ScatterSeedSize = 16

	MaxPasswordLength = 1024

	scatterInfo = "AudioStegoScatter"
)

// Cipher performs authenticated encryption of text messages under a password.
type Cipher struct {
	iterations int
	random     io.Reader
}

// NewCipher returns a Cipher using crypto/rand and the format's iteration count.
func NewCipher() *Cipher {
	return &Cipher{iterations: KeyIterations, random: rand.Reader}
}

// WithRandom replaces the salt and nonce source. Intended for tests.
func (c *Cipher) WithRandom(r io.Reader) *Cipher {
	return &Cipher{iterations: c.iterations, random: r}
}

func (c *Cipher) deriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, c.iterations, KeySize, sha256.New)
}

// Encrypt generates a fresh salt and nonce, derives the key and seals the
// message. The tag is appended to the ciphertext.
func (c *Cipher) Encrypt(message, password string) (*models.EncryptedMessage, error) {
	if !utf8.ValidString(message) {
		return nil, models.ErrEncoding
	}

	out := &models.EncryptedMessage{}
	if _, err := io.ReadFull(c.random, out.Salt[:]); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	if _, err := io.ReadFull(c.random, out.Nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	gcm, err := newGCM(c.deriveKey(password, out.Salt[:]))
	if err != nil {
		return nil, err
	}
	out.Ciphertext = gcm.Seal(nil, out.Nonce[:], []byte(message), nil)
	return out, nil
}

// Decrypt derives the key from salt and opens the ciphertext. A failed tag
// check is always reported as models.ErrAuthentication, whatever the cause.
func (c *Cipher) Decrypt(ciphertext []byte, password string, salt [SaltSize]byte, nonce [NonceSize]byte) (string, error) {
	gcm, err := newGCM(c.deriveKey(password, salt[:]))
	if err != nil {
		return "", err
	}

	plaintext, err := gcm.Open(nil, nonce[:], ciphertext, nil)
	if err != nil {
		return "", models.ErrAuthentication
	}
	if !utf8.Valid(plaintext) {
		return "", models.ErrEncoding
	}
	return string(plaintext), nil
}

// DeriveScatterSeed hashes the message key with a fixed domain tag. The result
// may seed bit placement but is never used as an encryption key.
func (c *Cipher) DeriveScatterSeed(password string, salt []byte) [ScatterSeedSize]byte {
	h := sha256.New()
	h.Write(c.deriveKey(password, salt))
	h.Write([]byte(scatterInfo))

	var seed [ScatterSeedSize]byte
	copy(seed[:], h.Sum(nil))
	return seed
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

var defaultCipher = NewCipher()

// DeriveKey is PBKDF2-HMAC-SHA256 with 200,000 iterations and a 32-byte output.
func DeriveKey(password string, salt []byte) []byte {
	return defaultCipher.deriveKey(password, salt)
}

// Encrypt seals message under password with a fresh random salt and nonce.
func Encrypt(message, password string) (*models.EncryptedMessage, error) {
	return defaultCipher.Encrypt(message, password)
}

// Decrypt opens ciphertext produced by Encrypt.
func Decrypt(ciphertext []byte, password string, salt [SaltSize]byte, nonce [NonceSize]byte) (string, error) {
	return defaultCipher.Decrypt(ciphertext, password, salt, nonce)
}

// DeriveScatterSeed returns SHA-256(DeriveKey(password, salt) || "AudioStegoScatter")[:16].
func DeriveScatterSeed(password string, salt []byte) [ScatterSeedSize]byte {
	return defaultCipher.DeriveScatterSeed(password, salt)
}

// EncryptedSize is the ciphertext length for a message of messageLen bytes.
func EncryptedSize(messageLen int) int {
	return messageLen + TagSize
}

// ValidatePassword validates if the password is usable
func ValidatePassword(password string) error {
	if len(password) == 0 {
		return fmt.Errorf("%w: password cannot be empty", models.ErrInvalidArgument)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: password length cannot exceed %d bytes", models.ErrInvalidArgument, MaxPasswordLength)
	}
	if !utf8.ValidString(password) {
		return fmt.Errorf("%w: password is not valid UTF-8", models.ErrInvalidArgument)
	}
	return nil
}
