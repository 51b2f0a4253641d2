package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keySize         = 32
	pbkdf2Iters     = 10000
	keyDerivingSalt = "byok-vault-keystore-v1"
)

// Cipher seals and opens secret values with AES-256-GCM. The key is derived
// once from the configured master passphrase.
type Cipher struct {
	key []byte
}

// NewCipher derives the encryption key from passphrase.
func NewCipher(passphrase string) *Cipher {
	key := pbkdf2.Key([]byte(passphrase), []byte(keyDerivingSalt), pbkdf2Iters, keySize, sha256.New)
	return &Cipher{key: key}
}

// Encrypt seals plaintext with a fresh random nonce and returns
// nonce||ciphertext as raw bytes.
func (c *Cipher) Encrypt(plaintext string) ([]byte, error) {
	gcm, err := c.gcm()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, []byte(plaintext), nil), nil
}

// Decrypt opens data produced by Encrypt.
func (c *Cipher) Decrypt(data []byte) (string, error) {
	gcm, err := c.gcm()
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	plaintext, err := gcm.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("open ciphertext: %w", err)
	}
	return string(plaintext), nil
}

func (c *Cipher) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
