// Package password hashes and verifies user credentials with Argon2id,
// encoded as PHC strings. The encoded hash is stored with the user
// document; the API response layer keeps it off the wire.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// params is one Argon2id configuration. New hashes always use
// defaultParams; verification replays whatever the stored hash recorded,
// so existing credentials survive a change of defaults.
type params struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	keyLength   uint32
}

var defaultParams = params{
	memory:      64 * 1024,
	iterations:  3,
	parallelism: 4,
	keyLength:   32,
}

const (
	saltLength = 16

	// Hashing cost scales with input size; cap it so a request body
	// cannot buy arbitrary CPU time.
	maxPasswordLength = 1024
)

// Hash derives an Argon2id key from password under a fresh random salt and
// returns it PHC-encoded.
func Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	if len(password) > maxPasswordLength {
		return "", errors.New("password exceeds maximum length")
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	p := defaultParams
	key := argon2.IDKey([]byte(password), salt, p.iterations, p.memory, p.parallelism, p.keyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memory, p.iterations, p.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches encodedHash. A malformed hash
// verifies as false rather than returning an error, so callers cannot tell
// a corrupt stored credential apart from a wrong password.
func Verify(encodedHash, password string) (bool, error) {
	if len(password) > maxPasswordLength {
		return false, nil
	}

	salt, want, p, err := decode(encodedHash)
	if err != nil {
		return false, nil
	}

	got := argon2.IDKey([]byte(password), salt, p.iterations, p.memory, p.parallelism, p.keyLength)
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

// decode splits a PHC-encoded Argon2id string into its salt, derived key
// and the parameters the key was computed with.
func decode(encodedHash string) ([]byte, []byte, params, error) {
	var p params

	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return nil, nil, p, errors.New("malformed hash")
	}
	if parts[1] != "argon2id" {
		return nil, nil, p, fmt.Errorf("unsupported algorithm %q", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, p, fmt.Errorf("malformed version: %w", err)
	}
	if version != argon2.Version {
		return nil, nil, p, fmt.Errorf("incompatible argon2 version %d", version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &p.parallelism); err != nil {
		return nil, nil, p, fmt.Errorf("malformed parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, p, fmt.Errorf("malformed salt: %w", err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, p, fmt.Errorf("malformed key: %w", err)
	}
	p.keyLength = uint32(len(key))

	return salt, key, p, nil
}
