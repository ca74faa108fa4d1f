package ports

// TokenService issues and verifies signed bearer tokens that carry a subject
// only. Verify fails with domain.ErrTokenMalformed, domain.ErrTokenBadSignature
// or domain.ErrTokenExpired.
type TokenService interface {
	Issue(subject string) (string, error)
	Verify(token string) (string, error)
	Validate(token, expectedSubject string) bool
}
