package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateToken generates a random bearer token with the given prefix.
// Format: prefix_randomhex (32 random bytes, 64 hex chars).
// Example: ma_seller_a1b2c3d4e5f6...
func GenerateToken(prefix string) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(b)), nil
}

// GenerateSellerToken generates a seller bearer token: ma_seller_xxx
func GenerateSellerToken() (string, error) {
	return GenerateToken("ma_seller")
}

// GenerateBuyerToken generates a buyer bearer token: ma_buyer_xxx
func GenerateBuyerToken() (string, error) {
	return GenerateToken("ma_buyer")
}
