package security

import "golang.org/x/crypto/bcrypt"

// PasswordCost is the bcrypt work factor used for every stored password.
const PasswordCost = 10

// bcrypt only reads this many bytes of input
const maxPasswordBytes = 72

// HashPassword hashes a plain text password with bcrypt. Input past 72 bytes
// is ignored, so long passwords hash instead of failing.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(passwordBytes(plain), PasswordCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// helper that compares a bcrypt hash with a plaintext password.

func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), passwordBytes(plain))
}

func passwordBytes(plain string) []byte {
	b := []byte(plain)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}

	return b
}
