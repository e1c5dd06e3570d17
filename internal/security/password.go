package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrMalformedHash = errors.New("malformed password hash")

// HashPassword hashes a plain text password as "salt$hexdigest" where the
// digest is sha256(password + salt) and the salt is 16 random bytes, hex
// encoded. The format matches the hashes already stored for existing
// members, so it cannot change without a re-hash of the user table.
func HashPassword(plain string) (string, error) {
	saltBytes := make([]byte, 16)

	if _, err := rand.Read(saltBytes); err != nil {
		return "", err
	}

	salt := hex.EncodeToString(saltBytes)
	digest := sha256.Sum256([]byte(plain + salt))

	return salt + "$" + hex.EncodeToString(digest[:]), nil
}

// CheckPassword compares a stored hash with a plaintext password. Accounts
// imported from the previous platform carry bcrypt hashes; those are
// verified with bcrypt and re-hashed on next password change.
//
// Note: the sha256 comparison is not constant-time against the stored
// digest. Flagged, intentionally left as-is.
func CheckPassword(hash, plain string) error {
	if strings.HasPrefix(hash, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	}

	salt, want, ok := strings.Cut(hash, "$")
	if !ok || salt == "" || want == "" {
		return ErrMalformedHash
	}

	digest := sha256.Sum256([]byte(plain + salt))

	if hex.EncodeToString(digest[:]) != want {
		return errors.New("password mismatch")
	}

	return nil
}

// NewSessionToken returns a URL-safe opaque bearer token.
func NewSessionToken() (string, error) {
	b := make([]byte, 32)

	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
