package model

// PasswordHasher hashes and verifies password credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}
