package users

import "time"

// User representa una cuenta del marketplace. Nunca se borra in-scope.
type User struct {
	ID    string
	Name  string
	Email string // único
	Phone string

	// PasswordHash es el digest bcrypt; nunca sale en respuestas.
	PasswordHash string

	// Image es el filename de la foto de perfil (vacío = sin foto).
	Image string

	CreatedAt time.Time
	UpdatedAt time.Time
}
