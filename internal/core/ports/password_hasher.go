package ports

// PasswordHasher is a one-way hash with constant-time verification.
type PasswordHasher interface {
	Hash(raw string) (string, error)
	Verify(raw, hash string) bool
}
