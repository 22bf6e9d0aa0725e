package pets

import "time"

// OwnerRef es la copia denormalizada del dueño, embebida al crear el pet.
// Es inmutable: la autorización siempre compara contra Owner.ID persistido.
// Si el usuario edita su perfil después, el snapshot NO se actualiza
// (staleness aceptada, ver DESIGN.md).
type OwnerRef struct {
	ID    string
	Name  string
	Image string
	Phone string
}

// AdopterRef es la copia denormalizada de quien agendó visita.
// A lo sumo una a la vez; sin teléfono (el contacto fluye hacia el dueño).
type AdopterRef struct {
	ID    string
	Name  string
	Image string
}

// Pet es una publicación de adopción.
//
// Estados del ciclo de adopción:
//   - Listed:    Available=true, Adopter=nil
//   - Scheduled: Available=true, Adopter!=nil
//   - Concluded: Available=false (terminal; el registro persiste como historial)
type Pet struct {
	ID string

	Name   string
	Age    string
	Weight string
	Color  string

	Available bool

	// Images: secuencia ordenada de filenames; no vacía al crear.
	Images []string

	Owner   OwnerRef
	Adopter *AdopterRef

	CreatedAt time.Time
	UpdatedAt time.Time
}
