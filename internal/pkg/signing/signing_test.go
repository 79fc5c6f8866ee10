package signing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSign_KnownVector(t *testing.T) {
	got := Sign("key", []byte("The quick brown fox jumps over the lazy dog"))
	assert.Equal(t, "f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8", got)
}

func TestVerify(t *testing.T) {
	secret := "s3cr3t"
	body := []byte(`{"ok":true}`)
	sig := Sign(secret, body)

	assert.True(t, Verify(secret, body, sig))
	assert.False(t, Verify("other", body, sig))
	assert.False(t, Verify(secret, []byte(`{"ok":false}`), sig))
	assert.False(t, Verify(secret, body, "not-hex"))
	assert.False(t, Verify(secret, body, ""))
}

func TestSign_EmptyBody(t *testing.T) {
	sig := Sign("key", nil)
	assert.Len(t, sig, 64)
	assert.True(t, Verify("key", []byte{}, sig))
}
