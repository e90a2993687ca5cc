package identity

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	keySize   = 32
	nonceSize = 12
	tagSize   = 16
)

// sealer is AES-256-GCM with the wire form hex(iv):hex(tag):hex(ciphertext).
type sealer struct {
	block cipher.Block
}

func newSealer(keyHex string) (*sealer, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("employee code encryption key: %w", err)
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("employee code encryption key must be %d bytes, got %d", keySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return &sealer{block: block}, nil
}

func (s *sealer) seal(plain string) (string, error) {
	gcm, err := cipher.NewGCM(s.block)
	if err != nil {
		return "", err
	}
	iv := make([]byte, nonceSize)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}
	out := gcm.Seal(nil, iv, []byte(plain), nil)
	ciphertext, tag := out[:len(out)-tagSize], out[len(out)-tagSize:]
	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(tag) + ":" + hex.EncodeToString(ciphertext), nil
}

// open accepts any non-empty IV length so values written with 16-byte IVs by
// earlier tooling still decrypt.
func (s *sealer) open(encoded string) (string, bool) {
	parts := strings.Split(encoded, ":")
	if len(parts) != 3 {
		return "", false
	}
	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) == 0 {
		return "", false
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil || len(tag) != tagSize {
		return "", false
	}
	ciphertext, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", false
	}

	var gcm cipher.AEAD
	if len(iv) == nonceSize {
		gcm, err = cipher.NewGCM(s.block)
	} else {
		gcm, err = cipher.NewGCMWithNonceSize(s.block, len(iv))
	}
	if err != nil {
		return "", false
	}
	plain, err := gcm.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		return "", false
	}
	return string(plain), true
}
