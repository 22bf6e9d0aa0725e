package passwords

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Cost fijo: lento a propósito. Cambiarlo no invalida hashes ya guardados
// (bcrypt embebe el cost en el digest).
const cost = 12

var ErrEmptyPassword = errors.New("password cannot be empty")

// Hash genera un digest bcrypt del password en texto plano.
func Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify compara en tiempo constante un password contra su digest.
func Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
