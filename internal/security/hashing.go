package security

import "golang.org/x/crypto/bcrypt"

// Hasher hashes account passwords with bcrypt. The cost is fixed at
// construction from BCRYPT_COST so login latency is tunable per deployment.
// Callers must not log or persist plaintext passwords.
type Hasher struct {
	Cost int
}

// NewHasher clamps cost into bcrypt's supported range. Non-positive values
// fall back to the library default.
func NewHasher(cost int) *Hasher {
	switch {
	case cost <= 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Hasher{Cost: cost}
}

// Hash returns the bcrypt digest of password, salted by the library. The
// digest string is what gets stored in accounts.password_hash.
func (h *Hasher) Hash(password []byte) (string, error) {
	digest, err := bcrypt.GenerateFromPassword(password, h.Cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Compare verifies password against a stored digest in constant time. A nil
// return means match; bcrypt.ErrMismatchedHashAndPassword or a parse error
// otherwise.
func (h *Hasher) Compare(hash string, password []byte) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), password)
}
