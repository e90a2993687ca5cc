package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itops-lab/helpdesk/internal/config"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newTestGuard(t *testing.T, withKey bool) *Guard {
	t.Helper()
	cfg := config.EmployeeCodeConfig{HMACSecret: "unit-test-secret"}
	if withKey {
		cfg.EncryptionKeyHex = testKeyHex
	}
	g, err := NewGuard(cfg)
	require.NoError(t, err)
	return g
}

func TestNewGuard_Validation(t *testing.T) {
	_, err := NewGuard(config.EmployeeCodeConfig{})
	require.Error(t, err)

	_, err = NewGuard(config.EmployeeCodeConfig{HMACSecret: "s", EncryptionKeyHex: "zz"})
	require.Error(t, err)

	_, err = NewGuard(config.EmployeeCodeConfig{HMACSecret: "s", EncryptionKeyHex: "0011"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "32 bytes")
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "EMP-000123", Normalize("  emp-000123\t"))
	assert.Equal(t, "", Normalize("   "))
}

func TestHash_DeterministicAndNormalized(t *testing.T) {
	g := newTestGuard(t, false)

	h := g.Hash("EMP-000123")
	assert.Len(t, h, 64)
	assert.Equal(t, h, g.Hash("EMP-000123"))
	assert.Equal(t, h, g.Hash(" emp-000123 "))
	assert.NotEqual(t, h, g.Hash("EMP-000124"))
}

func TestHash_DependsOnSecret(t *testing.T) {
	a, err := NewGuard(config.EmployeeCodeConfig{HMACSecret: "one"})
	require.NoError(t, err)
	b, err := NewGuard(config.EmployeeCodeConfig{HMACSecret: "two"})
	require.NoError(t, err)

	assert.NotEqual(t, a.Hash("EMP-1"), b.Hash("EMP-1"))
}

func TestHash_DistinctCodes(t *testing.T) {
	g := newTestGuard(t, false)
	seen := map[string]string{}
	for i := 0; i < 500; i++ {
		code := "EMP-" + strings.Repeat("0", 3) + string(rune('A'+i%26)) + string(rune('A'+i/26))
		h := g.Hash(code)
		if prev, ok := seen[h]; ok {
			t.Fatalf("hash collision between %s and %s", prev, code)
		}
		seen[h] = code
	}
}

func TestMatches(t *testing.T) {
	g := newTestGuard(t, false)
	stored := g.Hash("EMP-000123")

	assert.True(t, g.Matches("emp-000123", stored))
	assert.False(t, g.Matches("EMP-000999", stored))
	assert.False(t, g.Matches("EMP-000123", ""))
}

func TestMask(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"EMP-000123", "EMP***23"},
		{"ABCDE", "A***E"},
		{"AB", "A***B"},
		{"abcdef", "ABC***EF"},
		{"x", "X***X"},
		{"  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Mask(tt.in))
		})
	}
}

func TestEncrypt_RoundTrip(t *testing.T) {
	g := newTestGuard(t, true)
	require.True(t, g.CanDecrypt())

	for _, code := range []string{"emp-000123", "A", " x-99 ", "รหัส-01"} {
		enc, err := g.Encrypt(code)
		require.NoError(t, err)
		require.NotNil(t, enc)
		assert.Len(t, strings.Split(*enc, ":"), 3)

		got, ok := g.Decrypt(*enc)
		require.True(t, ok)
		assert.Equal(t, Normalize(code), got)
	}
}

func TestEncrypt_RandomIV(t *testing.T) {
	g := newTestGuard(t, true)
	a, err := g.Encrypt("EMP-1")
	require.NoError(t, err)
	b, err := g.Encrypt("EMP-1")
	require.NoError(t, err)

	assert.NotEqual(t, *a, *b)
}

func TestEncrypt_NoKey(t *testing.T) {
	g := newTestGuard(t, false)

	enc, err := g.Encrypt("EMP-1")
	require.NoError(t, err)
	assert.Nil(t, enc)

	_, ok := g.Decrypt("00:11:22")
	assert.False(t, ok)
	assert.False(t, g.CanDecrypt())
}

func TestDecrypt_RejectsBadInput(t *testing.T) {
	g := newTestGuard(t, true)
	enc, err := g.Encrypt("EMP-000123")
	require.NoError(t, err)
	parts := strings.Split(*enc, ":")

	flip := func(s string) string {
		b := []byte(s)
		if b[0] == '0' {
			b[0] = '1'
		} else {
			b[0] = '0'
		}
		return string(b)
	}

	cases := map[string]string{
		"empty":            "",
		"two parts":        parts[0] + ":" + parts[1],
		"not hex":          "zz:" + parts[1] + ":" + parts[2],
		"truncated":        (*enc)[:len(*enc)-4],
		"tampered cipher":  parts[0] + ":" + parts[1] + ":" + flip(parts[2]),
		"tampered tag":     parts[0] + ":" + flip(parts[1]) + ":" + parts[2],
		"tampered iv":      flip(parts[0]) + ":" + parts[1] + ":" + parts[2],
		"short tag":        parts[0] + ":" + parts[1][:8] + ":" + parts[2],
		"empty iv":         ":" + parts[1] + ":" + parts[2],
		"extra separators": *enc + ":00",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			got, ok := g.Decrypt(input)
			assert.False(t, ok)
			assert.Empty(t, got)
		})
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	g := newTestGuard(t, true)
	enc, err := g.Encrypt("EMP-000123")
	require.NoError(t, err)

	other, err := NewGuard(config.EmployeeCodeConfig{
		HMACSecret:       "unit-test-secret",
		EncryptionKeyHex: strings.Repeat("ab", 32),
	})
	require.NoError(t, err)

	_, ok := other.Decrypt(*enc)
	assert.False(t, ok)
}

func TestProtect(t *testing.T) {
	g := newTestGuard(t, true)

	p, err := g.Protect(" emp-000123 ")
	require.NoError(t, err)

	assert.Equal(t, g.Hash("EMP-000123"), p.Hash)
	assert.Equal(t, "EMP***23", p.Masked)
	require.NotNil(t, p.Encrypted)
	plain, ok := g.Decrypt(*p.Encrypted)
	require.True(t, ok)
	assert.Equal(t, "EMP-000123", plain)
}
