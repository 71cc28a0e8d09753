package generator

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// MinSecretLength is the shortest API key or salt the service accepts.
const MinSecretLength = 32

var ErrInvalidLength = errors.New("token length must be positive")

// GenerateToken returns a random base62 string of the given length.
func GenerateToken(length int) (string, error) {
	if length <= 0 {
		return "", ErrInvalidLength
	}

	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(base62Chars))))
		if err != nil {
			return "", err
		}

		b[i] = base62Chars[n.Int64()]
	}

	return string(b), nil
}
