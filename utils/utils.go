package utils

import (
	"golang.org/x/crypto/bcrypt"
)

const BcryptCost = 12

// HashSecret hashes a shared secret (the legacy admin key) for storage in configuration.
func HashSecret(secret string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), BcryptCost)
	return string(bytes), err
}

func CheckSecretHash(secret, hash string) bool {
	if secret == "" || hash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	return err == nil
}

func Ptr[T any](v T) *T {
	return &v
}
