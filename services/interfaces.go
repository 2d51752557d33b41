package services

// PasswordHasher abstracts the one-way digest applied to client secrets and
// user passwords. Implementations must be deterministic to verify but
// infeasible to invert; the provided implementation is bcrypt
// (internal/auth).
type PasswordHasher interface {
	// Hash digests a raw secret.
	Hash(password string) (string, error)

	// Verify compares a stored digest with a candidate raw secret.
	// Returns nil on match.
	Verify(hashedPassword, password string) error
}
