// Package auth implements project identity: id and secret key
// generation, salted hashing, and key verification.
//
// The salt is a single process-wide secret loaded from configuration
// at startup. Rotating it invalidates every previously issued key,
// because stored hashes can no longer be re-derived from the keys.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
)

const (
	projectIDPrefix = "prj_"
	projectIDBytes  = 4

	// Key format is versioned so a future hashing scheme can issue
	// VT-2- keys without breaking existing ones.
	keyPrefix = "VT-1-"
	keyBytes  = 16
)

// NewProjectID generates a short public project identifier,
// e.g. "prj_3fa8c21d". 32 bits of randomness keeps collision
// probability negligible at this service's scale; the database
// primary key constraint catches the rest.
func NewProjectID() (string, error) {
	suffix, err := randomHex(projectIDBytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate project id: %w", err)
	}
	return projectIDPrefix + suffix, nil
}

// NewProjectKey generates a plaintext secret key with 128 bits of
// randomness, e.g. "VT-1-9f86d081884c7d659a2feaa0c55ad015".
func NewProjectKey() (string, error) {
	suffix, err := randomHex(keyBytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate project key: %w", err)
	}
	return keyPrefix + suffix, nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Keychain derives and verifies secret hashes using the process-wide
// salt. All hashing of project keys goes through a single Keychain so
// the salt never leaks into other packages.
type Keychain struct {
	salt string
}

func NewKeychain(salt string) (*Keychain, error) {
	if salt == "" {
		return nil, errors.New("project key salt must not be empty")
	}
	return &Keychain{salt: salt}, nil
}

// Hash returns the hex-encoded SHA-256 of the key combined with the
// salt. Deterministic: the same key always derives the same hash, which
// is what makes lookup-by-hash possible in ResolveProject.
func (k *Keychain) Hash(key string) string {
	sum := sha256.Sum256([]byte(key + k.salt))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether key derives storedHash. The comparison is
// constant time to avoid a timing side channel on the hash match.
func (k *Keychain) Verify(key, storedHash string) bool {
	derived := k.Hash(key)
	return subtle.ConstantTimeCompare([]byte(derived), []byte(storedHash)) == 1
}
