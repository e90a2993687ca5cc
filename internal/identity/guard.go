// Package identity protects the employee codes reporters use, together with a
// ticket code, to prove ownership of a ticket on the public API.
package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/itops-lab/helpdesk/internal/config"
)

const maskMarker = "***"

// Protected is the set of derived values stored on a ticket.
type Protected struct {
	Hash      string
	Masked    string
	Encrypted *string
}

// Guard derives lookup hashes, display masks and, when a key is configured,
// a reversible encryption of employee codes.
type Guard struct {
	hmacKey []byte
	sealer  *sealer
}

// NewGuard builds a guard from injected secrets. An empty HMAC secret is
// rejected; an empty encryption key disables the reversible form.
func NewGuard(cfg config.EmployeeCodeConfig) (*Guard, error) {
	if cfg.HMACSecret == "" {
		return nil, errors.New("employee code hmac secret is required")
	}
	g := &Guard{hmacKey: []byte(cfg.HMACSecret)}
	if cfg.EncryptionKeyHex != "" {
		s, err := newSealer(cfg.EncryptionKeyHex)
		if err != nil {
			return nil, err
		}
		g.sealer = s
	}
	return g, nil
}

// Normalize trims surrounding whitespace and upper-cases the code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Hash returns the hex HMAC-SHA256 of the normalized code.
func (g *Guard) Hash(code string) string {
	mac := hmac.New(sha256.New, g.hmacKey)
	mac.Write([]byte(Normalize(code)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Matches reports whether code hashes to storedHash, in constant time.
func (g *Guard) Matches(code, storedHash string) bool {
	if storedHash == "" {
		return false
	}
	return hmac.Equal([]byte(g.Hash(code)), []byte(storedHash))
}

// Mask reveals the first three and last two characters of the normalized
// code. Codes of five characters or fewer reveal only the first and last.
func Mask(code string) string {
	runes := []rune(Normalize(code))
	switch n := len(runes); {
	case n == 0:
		return ""
	case n <= 5:
		return string(runes[0]) + maskMarker + string(runes[n-1])
	default:
		return string(runes[:3]) + maskMarker + string(runes[n-2:])
	}
}

// CanDecrypt reports whether a reversible form is produced and readable.
func (g *Guard) CanDecrypt() bool {
	return g.sealer != nil
}

// Encrypt returns the reversible form of the normalized code, or nil when no
// encryption key is configured.
func (g *Guard) Encrypt(code string) (*string, error) {
	if g.sealer == nil {
		return nil, nil
	}
	sealed, err := g.sealer.seal(Normalize(code))
	if err != nil {
		return nil, err
	}
	return &sealed, nil
}

// Decrypt recovers a code produced by Encrypt. Any failure, including a
// missing key, yields ok=false.
func (g *Guard) Decrypt(encrypted string) (string, bool) {
	if g.sealer == nil {
		return "", false
	}
	return g.sealer.open(encrypted)
}

// Protect derives every stored form of code at once.
func (g *Guard) Protect(code string) (Protected, error) {
	enc, err := g.Encrypt(code)
	if err != nil {
		return Protected{}, err
	}
	return Protected{
		Hash:      g.Hash(code),
		Masked:    Mask(code),
		Encrypted: enc,
	}, nil
}
