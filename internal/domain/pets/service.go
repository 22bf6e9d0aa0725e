package pets

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("pet not found")
	ErrForbidden        = errors.New("only the pet owner can perform this action")
	ErrSelfSchedule     = errors.New("you cannot schedule a visit for your own pet")
	ErrAlreadyScheduled = errors.New("you have already scheduled a visit for this pet")
	ErrInvalidID        = errors.New("invalid pet id")
)

// ValidationError reporta el primer campo faltante (fail-fast, en orden).
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

type CreateInput struct {
	Name   string
	Age    string
	Weight string
	Color  string
	Images []string
}

// Create publica un pet. El snapshot del dueño es la identidad resuelta del
// request; estado inicial Listed (disponible, sin adopter).
func (s *Service) Create(ctx context.Context, owner OwnerRef, in CreateInput) (Pet, error) {
	if strings.TrimSpace(owner.ID) == "" {
		return Pet{}, &ValidationError{msg: "owner is required"}
	}
	if err := validateScalars(&in.Name, &in.Age, &in.Weight, &in.Color); err != nil {
		return Pet{}, err
	}
	if len(in.Images) == 0 {
		return Pet{}, required("at least one image")
	}

	now := s.now()
	p := Pet{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Age:       in.Age,
		Weight:    in.Weight,
		Color:     in.Color,
		Available: true,
		Images:    in.Images,
		Owner:     owner,
		Adopter:   nil,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

type UpdateInput struct {
	Name   string
	Age    string
	Weight string
	Color  string

	// Images reemplaza la secuencia completa solo si viene no vacía;
	// vacía = dejar las actuales.
	Images []string
}

// Update edita los campos de la publicación. Solo el dueño (Owner.ID
// persistido vs identidad resuelta, igualdad por valor).
func (s *Service) Update(ctx context.Context, petID, requesterID string, in UpdateInput) (Pet, error) {
	p, err := s.getOwned(ctx, petID, requesterID)
	if err != nil {
		return Pet{}, err
	}

	if err := validateScalars(&in.Name, &in.Age, &in.Weight, &in.Color); err != nil {
		return Pet{}, err
	}

	p.Name = in.Name
	p.Age = in.Age
	p.Weight = in.Weight
	p.Color = in.Color
	if len(in.Images) > 0 {
		p.Images = in.Images
	}
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

// Remove borra la publicación. Solo el dueño.
func (s *Service) Remove(ctx context.Context, petID, requesterID string) error {
	p, err := s.getOwned(ctx, petID, requesterID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, p.ID)
}

// Schedule agenda una visita: setea el snapshot del adopter.
// Reglas:
//   - el dueño no puede agendar su propio pet
//   - el mismo adopter no puede agendar dos veces
//   - otro adopter distinto pisa el snapshot anterior (last-scheduler wins,
//     sin waitlist)
func (s *Service) Schedule(ctx context.Context, petID string, adopter AdopterRef) (Pet, error) {
	if strings.TrimSpace(adopter.ID) == "" {
		return Pet{}, &ValidationError{msg: "adopter is required"}
	}

	p, err := s.get(ctx, petID)
	if err != nil {
		return Pet{}, err
	}

	if p.Owner.ID == adopter.ID {
		return Pet{}, ErrSelfSchedule
	}
	if p.Adopter != nil && p.Adopter.ID == adopter.ID {
		return Pet{}, ErrAlreadyScheduled
	}

	p.Adopter = &adopter
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

// Conclude cierra el ciclo de adopción: Available=false, terminal.
// Idempotente en efecto, pero chequea ownership en cada llamada.
func (s *Service) Conclude(ctx context.Context, petID, requesterID string) (Pet, error) {
	p, err := s.getOwned(ctx, petID, requesterID)
	if err != nil {
		return Pet{}, err
	}

	p.Available = false
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

// GetAll lista todas las publicaciones, newest-first. Lectura sin restricción.
func (s *Service) GetAll(ctx context.Context) ([]Pet, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Pet, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) ListByAdopter(ctx context.Context, adopterID string) ([]Pet, error) {
	return s.repo.ListByAdopter(ctx, adopterID)
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	return s.get(ctx, id)
}

// get valida el formato del id antes de tocar el store: un id malformado es
// ErrInvalidID, nunca una falla del adapter.
func (s *Service) get(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if uuid.Validate(id) != nil {
		return Pet{}, ErrInvalidID
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) getOwned(ctx context.Context, petID, requesterID string) (Pet, error) {
	p, err := s.get(ctx, petID)
	if err != nil {
		return Pet{}, err
	}
	if p.Owner.ID != strings.TrimSpace(requesterID) {
		return Pet{}, ErrForbidden
	}
	return p, nil
}

// validateScalars chequea los cuatro campos requeridos en orden y los
// normaliza in-place.
func validateScalars(name, age, weight, color *string) error {
	*name = strings.TrimSpace(*name)
	if *name == "" {
		return required("name")
	}
	*age = strings.TrimSpace(*age)
	if *age == "" {
		return required("age")
	}
	*weight = strings.TrimSpace(*weight)
	if *weight == "" {
		return required("weight")
	}
	*color = strings.TrimSpace(*color)
	if *color == "" {
		return required("color")
	}
	return nil
}
