package password

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Symbols lists the special characters accepted by the registration policy.
const Symbols = "@$!%*?&"

// Hash hashes a plaintext password with bcrypt at the default cost.
func Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare reports whether plain matches the stored bcrypt hash.
func Compare(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// ValidPolicy checks the registration password policy: 8-12 characters,
// at least one uppercase letter, one digit, and one symbol from Symbols,
// with no characters outside letters, digits, and Symbols.
func ValidPolicy(plain string) bool {
	if len(plain) < 8 || len(plain) > 12 {
		return false
	}
	var upper, digit, symbol bool
	for _, r := range plain {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(Symbols, r):
			symbol = true
		default:
			return false
		}
	}
	return upper && digit && symbol
}
