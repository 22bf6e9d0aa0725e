package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"pet-adoption/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

const petColumns = `
	id, name, age, weight, color, available, images,
	owner_id, owner_name, owner_image, owner_phone,
	adopter_id, adopter_name, adopter_image,
	created_at, updated_at
`

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	images, err := encodeImages(p.Images)
	if err != nil {
		return err
	}

	adopterID, adopterName, adopterImage := encodeAdopter(p.Adopter)

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO pets (`+petColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`,
		p.ID,
		p.Name,
		p.Age,
		p.Weight,
		p.Color,
		p.Available,
		images,
		p.Owner.ID,
		p.Owner.Name,
		p.Owner.Image,
		p.Owner.Phone,
		adopterID,
		adopterName,
		adopterImage,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

// Update no toca las columnas owner_*: el snapshot del dueño es inmutable.
func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	images, err := encodeImages(p.Images)
	if err != nil {
		return err
	}

	adopterID, adopterName, adopterImage := encodeAdopter(p.Adopter)

	res, err := r.db.ExecContext(ctx, `
		UPDATE pets
		SET
			name = $2,
			age = $3,
			weight = $4,
			color = $5,
			available = $6,
			images = $7,
			adopter_id = $8,
			adopter_name = $9,
			adopter_image = $10,
			updated_at = $11
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		p.Age,
		p.Weight,
		p.Color,
		p.Available,
		images,
		adopterID,
		adopterName,
		adopterImage,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pets.ErrNotFound
	}
	return nil
}

func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pets.ErrNotFound
	}
	return nil
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, pets.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+petColumns+`
		FROM pets
		WHERE id = $1
	`, id)

	p, err := scanPet(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return pets.Pet{}, pets.ErrNotFound
		}
		return pets.Pet{}, err
	}
	return p, nil
}

func (r *PetsRepo) ListAll(ctx context.Context) ([]pets.Pet, error) {
	return r.listWhere(ctx, ``)
}

func (r *PetsRepo) ListByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, nil
	}
	return r.listWhere(ctx, `WHERE owner_id = $1`, ownerID)
}

func (r *PetsRepo) ListByAdopter(ctx context.Context, adopterID string) ([]pets.Pet, error) {
	if strings.TrimSpace(adopterID) == "" {
		return nil, nil
	}
	return r.listWhere(ctx, `WHERE adopter_id = $1`, adopterID)
}

func (r *PetsRepo) listWhere(ctx context.Context, where string, args ...any) ([]pets.Pet, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+petColumns+`
		FROM pets
		`+where+`
		ORDER BY created_at DESC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPet(row rowScanner) (pets.Pet, error) {
	var (
		p      pets.Pet
		images []byte

		adopterID    sql.NullString
		adopterName  sql.NullString
		adopterImage sql.NullString
	)

	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Age,
		&p.Weight,
		&p.Color,
		&p.Available,
		&images,
		&p.Owner.ID,
		&p.Owner.Name,
		&p.Owner.Image,
		&p.Owner.Phone,
		&adopterID,
		&adopterName,
		&adopterImage,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return pets.Pet{}, err
	}

	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.Images); err != nil {
			return pets.Pet{}, fmt.Errorf("decode images: %w", err)
		}
	}

	if adopterID.Valid && adopterID.String != "" {
		p.Adopter = &pets.AdopterRef{
			ID:    adopterID.String,
			Name:  adopterName.String,
			Image: adopterImage.String,
		}
	}

	return p, nil
}

// images va como JSON en una columna text (secuencia ordenada, lectura
// siempre completa; no hace falta un tipo array nativo).
func encodeImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	b, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("encode images: %w", err)
	}
	return string(b), nil
}

func encodeAdopter(a *pets.AdopterRef) (sql.NullString, sql.NullString, sql.NullString) {
	if a == nil {
		return sql.NullString{}, sql.NullString{}, sql.NullString{}
	}
	return sql.NullString{String: a.ID, Valid: true},
		sql.NullString{String: a.Name, Valid: true},
		sql.NullString{String: a.Image, Valid: true}
}
