// Package auth implements the credential primitives of the server:
// one-way password hashing and signed bearer tokens.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/avolkov/filevault/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

// Hasher hashes plaintext passwords and verifies candidates against stored
// hashes. Implementations must be safe for concurrent use.
type Hasher interface {
	// Hash returns a self-contained encoded hash of the password.
	Hash(password string) (string, error)

	// Verify reports whether the password matches the encoded hash.
	// A malformed encoded hash is a verification failure, never a panic.
	Verify(password, encoded string) bool
}

const (
	pbkdf2DefaultIterations = 600_000
	pbkdf2SaltLen           = 16
	pbkdf2KeyLen            = 32
)

// PBKDF2Hasher implements Hasher using PBKDF2-HMAC-SHA256.
//
// The encoded form carries the algorithm parameters and salt, so verification
// needs no side channel:
//
//	$pbkdf2-sha256$<iterations>$<salt-b64>$<digest-b64>
type PBKDF2Hasher struct {
	iterations int
}

// PBKDF2Option configures the hasher.
type PBKDF2Option func(*PBKDF2Hasher)

// WithIterations overrides the PBKDF2 iteration count. Lower values are
// useful in tests; production should keep the default.
func WithIterations(n int) PBKDF2Option {
	return func(h *PBKDF2Hasher) {
		if n > 0 {
			h.iterations = n
		}
	}
}

func NewPBKDF2Hasher(opts ...PBKDF2Option) *PBKDF2Hasher {
	h := &PBKDF2Hasher{iterations: pbkdf2DefaultIterations}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *PBKDF2Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", common.ErrInvalidInput
	}

	salt := common.GenerateRandByteArray(pbkdf2SaltLen)
	digest := pbkdf2.Key([]byte(password), salt, h.iterations, pbkdf2KeyLen, sha256.New)

	encoded := fmt.Sprintf("$pbkdf2-sha256$%d$%s$%s",
		h.iterations,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	)
	return encoded, nil
}

func (h *PBKDF2Hasher) Verify(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 5 || parts[0] != "" || parts[1] != "pbkdf2-sha256" {
		return false
	}

	iterations, err := strconv.Atoi(parts[2])
	if err != nil || iterations <= 0 {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return false
	}

	expected, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(expected) == 0 {
		return false
	}

	digest := pbkdf2.Key([]byte(password), salt, iterations, len(expected), sha256.New)

	return subtle.ConstantTimeCompare(digest, expected) == 1
}
