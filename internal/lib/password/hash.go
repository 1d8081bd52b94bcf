// Package password implements hashing and verification of user passwords
// and generation of one-time admin credentials.
package password

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// GetHash returns the bcrypt hash of a plaintext password for storage.
func GetHash(password string) (string, error) {
	const op = "password.GetHash"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashedPassword), nil
}

// CompareHash checks a plaintext password against its stored bcrypt hash.
// Returns nil when they match.
func CompareHash(originalHash, externalPassword string) error {
	const op = "password.CompareHash"
	if err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalPassword)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

const generatedAlphabet = "abcdefghijkmnpqrstuvwxyz23456789"

// Generate returns a readable random password of n alphanumeric
// characters, used for auto-created publisher admin accounts.
func Generate(n int) (string, error) {
	const op = "password.Generate"
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(generatedAlphabet))))
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		out[i] = generatedAlphabet[idx.Int64()]
	}
	return string(out), nil
}
