package core

// Borrower represents a registered library member, keyed by email.
// Password holds the bcrypt hash of the credential supplied at
// registration, never the plaintext. Borrowers are created once and
// never mutated or deleted by the lending core.
type Borrower struct {
	Email    string `json:"email"`
	Password string `json:"-"`
}
