package password

import (
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := Verify(hash, "correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify(hash, "wrong password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHash_EmptyPassword(t *testing.T) {
	_, err := Hash("")
	assert.Error(t, err)
}

func TestHash_Oversized(t *testing.T) {
	_, err := Hash(strings.Repeat("a", 2000))
	assert.Error(t, err)
}

func TestHash_SaltsDiffer(t *testing.T) {
	h1, err := Hash("same password")
	require.NoError(t, err)
	h2, err := Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2, "fresh salt per hash")
}

func TestVerify_HonorsEncodedParameters(t *testing.T) {
	// A hash minted under lighter parameters than the current defaults
	// must still verify with the parameters it recorded.
	salt := []byte("0123456789abcdef")
	key := argon2.IDKey([]byte("legacy password"), salt, 1, 16*1024, 1, 32)
	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, 16*1024, 1, 1,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))

	ok, err := Verify(encoded, "legacy password")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_MalformedHash(t *testing.T) {
	ok, err := Verify("not-a-hash", "whatever")
	require.NoError(t, err, "malformed hashes fail closed without error details")
	assert.False(t, ok)
}
