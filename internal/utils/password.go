package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes an account password with bcrypt. A cost outside the
// bcrypt range falls back to DefaultCost so a misconfigured BCRYPT_COST can
// never weaken stored credentials.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash. Any
// comparison failure, including a malformed hash, counts as a mismatch so
// login never errors differently for bad hashes and bad passwords.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
