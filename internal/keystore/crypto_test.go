package keystore

import (
	"bytes"
	"strings"
	"testing"
)

func TestCipherRoundTrip(t *testing.T) {
	c := NewCipher("correct horse battery staple")

	plaintext := "sk-ant-api03-secret-value"
	sealed, err := c.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if strings.Contains(string(sealed), plaintext) {
		t.Fatal("ciphertext contains the plaintext")
	}

	opened, err := c.Decrypt(sealed)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if opened != plaintext {
		t.Fatalf("decrypted %q, want %q", opened, plaintext)
	}
}

func TestCipherNonceIsFresh(t *testing.T) {
	c := NewCipher("correct horse battery staple")

	first, err := c.Encrypt("same value")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := c.Encrypt("same value")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if bytes.Equal(first, second) {
		t.Fatal("expected distinct ciphertexts for the same plaintext")
	}
}

func TestCipherWrongPassphrase(t *testing.T) {
	sealed, err := NewCipher("passphrase one, long enough").Encrypt("secret")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := NewCipher("passphrase two, long enough").Decrypt(sealed); err == nil {
		t.Fatal("expected decryption with a different passphrase to fail")
	}
}

func TestCipherRejectsTruncatedData(t *testing.T) {
	c := NewCipher("correct horse battery staple")

	if _, err := c.Decrypt([]byte{0x01, 0x02}); err == nil {
		t.Fatal("expected short ciphertext to be rejected")
	}
	if _, err := c.Decrypt(nil); err == nil {
		t.Fatal("expected empty ciphertext to be rejected")
	}
}

func TestCipherTamperDetection(t *testing.T) {
	c := NewCipher("correct horse battery staple")

	sealed, err := c.Encrypt("secret")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	sealed[len(sealed)-1] ^= 0xff

	if _, err := c.Decrypt(sealed); err == nil {
		t.Fatal("expected tampered ciphertext to be rejected")
	}
}
