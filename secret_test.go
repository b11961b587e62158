package jackpot

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func field(tail ...byte) CanonicalSecret {
	var c CanonicalSecret
	copy(c[SecretSize-len(tail):], tail)
	return c
}

func TestEncodeSecret(t *testing.T) {
	long := strings.Repeat("a", 40) + "0123456789"
	tests := []struct {
		name   string
		secret string
		want   CanonicalSecret
	}{
		{"uint32", "0x0000002a", field(0, 0, 0, 0x2a)},
		{"uint32 upper prefix", "0X0000002A", field(0, 0, 0, 0x2a)},
		{"uint64", "0x000000000000002a", field(0, 0, 0, 0, 0, 0, 0, 0x2a)},
		{"uint64 max", "0xffffffffffffffff", field(0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)},
		{"raw hex", "0x010203", field(1, 2, 3)},
		{"empty hex", "0x", CanonicalSecret{}},
		{"text", "satoshi", field([]byte("satoshi")...)},
		{"empty text", "", CanonicalSecret{}},
		{"long text keeps rightmost", long, field([]byte(long[len(long)-32:])...)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := EncodeSecret(tc.secret)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEncodeSecretLongHex(t *testing.T) {
	raw := bytes.Repeat([]byte{0x11}, 8)
	raw = append(raw, bytes.Repeat([]byte{0x22}, 32)...)
	got, err := EncodeSecret(fmt.Sprintf("0x%x", raw))
	require.NoError(t, err)

	var want CanonicalSecret
	copy(want[:], bytes.Repeat([]byte{0x22}, 32))
	assert.Equal(t, want, got)
}

func TestEncodeSecretInvalidHex(t *testing.T) {
	for _, s := range []string{"0xabc", "0xzzzzzzzz", "0x00000000000000zz", "0xnot hex"} {
		_, err := EncodeSecret(s)
		assert.ErrorIs(t, err, ErrInvalidSecretFormat, s)
	}
}

func TestEncodeSecretDeterministic(t *testing.T) {
	for _, s := range []string{"satoshi", "bitcoin", "moon 🚀", "0x0000002a", "0xdeadbeef00", ""} {
		a, err := EncodeSecret(s)
		require.NoError(t, err)
		b, err := EncodeSecret(s)
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.Len(t, a[:], SecretSize)
		assert.Equal(t, Commit(a), Commit(b))
	}
}

func TestEncodeSecretHexIsNotText(t *testing.T) {
	hexSecret, err := EncodeSecret("0x0000002a")
	require.NoError(t, err)
	textSecret, err := EncodeSecret("0000002a")
	require.NoError(t, err)
	assert.NotEqual(t, hexSecret, textSecret)
}

func ExampleEncodeSecret() {
	secret, err := EncodeSecret("0x0000002a")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(secret)
	// Output: 0x000000000000000000000000000000000000000000000000000000000000002a
}
