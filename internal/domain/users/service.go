package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-adoption/internal/platform/passwords"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("please use another e-mail")
	ErrInvalidCredentials = errors.New("invalid password")
	ErrInvalidID          = errors.New("invalid user id")
)

// ValidationError reporta el primer campo faltante/malformado (fail-fast,
// en el orden del payload; no agregamos todos los errores a propósito
// porque cambiaría los mensajes observables).
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func required(field string) error {
	return &ValidationError{msg: field + " is required"}
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Phone           string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	phone := strings.TrimSpace(in.Phone)

	if name == "" {
		return User{}, required("name")
	}
	if email == "" {
		return User{}, required("e-mail")
	}
	if in.Password == "" {
		return User{}, required("password")
	}
	if in.ConfirmPassword == "" {
		return User{}, required("password confirmation")
	}
	if phone == "" {
		return User{}, required("phone")
	}
	if in.Password != in.ConfirmPassword {
		return User{}, &ValidationError{msg: "password and password confirmation must match"}
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, fmt.Errorf("check e-mail: %w", err)
	}

	hash, err := passwords.Hash(in.Password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	u := User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Authenticate valida credenciales de login. Devuelve ErrNotFound si no hay
// cuenta con ese e-mail y ErrInvalidCredentials si el password no coincide.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return User{}, required("e-mail")
	}
	if password == "" {
		return User{}, required("password")
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}

	if !passwords.Verify(password, u.PasswordHash) {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Resolve carga la identidad completa para un subject ya verificado por el
// token. Un subject colgado (usuario borrado) devuelve ErrNotFound.
func (s *Service) Resolve(ctx context.Context, userID string) (User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return User{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, userID)
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	if uuid.Validate(strings.TrimSpace(id)) != nil {
		return User{}, ErrInvalidID
	}
	return s.repo.GetByID(ctx, strings.TrimSpace(id))
}

type UpdateProfileInput struct {
	Name  string
	Email string
	Phone string

	// Password solo se actualiza si password y confirmación vienen ambos
	// y coinciden; ambos vacíos = sin cambio.
	Password        string
	ConfirmPassword string

	// Image: filename ya almacenado; vacío = sin cambio.
	Image string
}

// UpdateProfile edita el perfil del usuario resuelto desde la credencial.
// El id del path no participa de la autorización.
func (s *Service) UpdateProfile(ctx context.Context, actingUserID string, in UpdateProfileInput) (User, error) {
	u, err := s.repo.GetByID(ctx, strings.TrimSpace(actingUserID))
	if err != nil {
		return User{}, err
	}

	if img := strings.TrimSpace(in.Image); img != "" {
		u.Image = img
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return User{}, required("name")
	}
	u.Name = name

	email := strings.TrimSpace(in.Email)
	if email == "" {
		return User{}, required("e-mail")
	}
	if email != u.Email {
		other, err := s.repo.GetByEmail(ctx, email)
		switch {
		case err == nil && other.ID != u.ID:
			// Corte duro: el e-mail nuevo ya pertenece a otra cuenta.
			return User{}, ErrDuplicateEmail
		case err != nil && !errors.Is(err, ErrNotFound):
			return User{}, fmt.Errorf("check e-mail: %w", err)
		}
		u.Email = email
	}

	if in.Password != "" || in.ConfirmPassword != "" {
		if in.Password != in.ConfirmPassword {
			return User{}, &ValidationError{msg: "password and password confirmation must match"}
		}
		hash, err := passwords.Hash(in.Password)
		if err != nil {
			return User{}, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}

	phone := strings.TrimSpace(in.Phone)
	if phone == "" {
		return User{}, required("phone")
	}
	u.Phone = phone

	u.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}
