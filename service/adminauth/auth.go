// Package adminauth protects the admin introspection endpoint with a single
// bootstrap bearer token, generated once at startup if the operator never
// configured one.
package adminauth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	tokenLength = 32 // 32 bytes = 64 hex characters
	bcryptCost  = 12
)

// Service hashes and verifies the bootstrap admin token. It holds no
// persistent state; the hash lives only for the process lifetime, matching
// the service's no-persistence design.
type Service struct {
	hash  []byte
	token string
}

// NewService hashes configuredToken, generating a fresh random token when
// configuredToken is empty. The plaintext token is returned so the caller
// can log it once at startup.
func NewService(configuredToken string) (*Service, string, error) {
	token := configuredToken
	if token == "" {
		generated, err := generateToken()
		if err != nil {
			return nil, "", fmt.Errorf("failed to generate bootstrap token: %w", err)
		}
		token = generated
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash bootstrap token: %w", err)
	}

	return &Service{hash: hash, token: token}, token, nil
}

// Validate reports whether presented matches the bootstrap token.
func (s *Service) Validate(presented string) bool {
	if presented == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword(s.hash, []byte(presented))
	return err == nil
}

func generateToken() (string, error) {
	bytes := make([]byte, tokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
