package security

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrPINMismatch = errors.New("security: staff pin mismatch")

type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(pin string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(pin), h.cost())
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (h BcryptHasher) Compare(hash, pin string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin))
}

func (h BcryptHasher) cost() int {
	if h.Cost >= bcrypt.MinCost {
		return h.Cost
	}
	return bcrypt.DefaultCost
}

// PINVerifier checks the staff PIN against a single configured bcrypt hash.
// An empty hash disables staff gating.
type PINVerifier struct {
	Hash   string
	Hasher BcryptHasher
}

func (v PINVerifier) Enabled() bool {
	return strings.TrimSpace(v.Hash) != ""
}

func (v PINVerifier) Verify(pin string) error {
	if !v.Enabled() {
		return nil
	}
	if pin == "" {
		return ErrPINMismatch
	}
	if err := v.Hasher.Compare(v.Hash, pin); err != nil {
		return ErrPINMismatch
	}
	return nil
}
