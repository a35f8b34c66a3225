/*
Package randx generates the random identifiers the folder store needs: short
Base62 share codes (crypto/rand) and UUID folder IDs.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// base62Chars is the alphabet used for share codes.
	base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// ShareCodeLength is the fixed length of a folder share code.
	ShareCodeLength = 8
)

// FolderID returns a fresh UUID v4 string used as a folder primary key.
func FolderID() string {
	return uuid.New().String()
}

// ShareCode generates a Base62 share code of ShareCodeLength characters using
// crypto/rand.
func ShareCode() (string, error) {
	alphabetLen := big.NewInt(int64(len(base62Chars)))
	code := make([]byte, ShareCodeLength)

	for i := range code {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("failed to draw random share code character: %w", err)
		}
		code[i] = base62Chars[n.Int64()]
	}

	return string(code), nil
}

// IsValidShareCode reports whether code has the expected length and alphabet.
func IsValidShareCode(code string) bool {
	if len(code) != ShareCodeLength {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(base62Chars, r) {
			return false
		}
	}
	return true
}
