package pets

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Pet
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Pet{}}
}

func (r *testRepo) Create(ctx context.Context, p Pet) error {
	if p.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[p.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Update(ctx context.Context, p Pet) error {
	if _, ok := r.byID[p.ID]; !ok {
		return ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Pet, error) {
	p, ok := r.byID[id]
	if !ok {
		return Pet{}, ErrNotFound
	}
	return p, nil
}

func (r *testRepo) ListAll(ctx context.Context) ([]Pet, error) {
	return r.list(func(Pet) bool { return true }), nil
}

func (r *testRepo) ListByOwner(ctx context.Context, ownerID string) ([]Pet, error) {
	return r.list(func(p Pet) bool { return p.Owner.ID == ownerID }), nil
}

func (r *testRepo) ListByAdopter(ctx context.Context, adopterID string) ([]Pet, error) {
	return r.list(func(p Pet) bool { return p.Adopter != nil && p.Adopter.ID == adopterID }), nil
}

func (r *testRepo) list(keep func(Pet) bool) []Pet {
	out := make([]Pet, 0)
	for _, p := range r.byID {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// -------------------------
// Helpers
// -------------------------

var (
	owner   = OwnerRef{ID: "11111111-1111-1111-1111-111111111111", Name: "Ana", Phone: "555-0101"}
	adopter = AdopterRef{ID: "22222222-2222-2222-2222-222222222222", Name: "Bruno"}
	other   = AdopterRef{ID: "33333333-3333-3333-3333-333333333333", Name: "Carla"}
)

func validInput() CreateInput {
	return CreateInput{
		Name:   "Rex",
		Age:    "2",
		Weight: "10",
		Color:  "brown",
		Images: []string{"a.png"},
	}
}

func mustCreate(t *testing.T, svc *Service, o OwnerRef, in CreateInput) Pet {
	t.Helper()
	p, err := svc.Create(context.Background(), o, in)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	return p
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_InitialState(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	p := mustCreate(t, svc, owner, validInput())

	if !p.Available {
		t.Fatalf("expected new pet to be available")
	}
	if p.Adopter != nil {
		t.Fatalf("expected new pet without adopter")
	}
	if p.Owner != owner {
		t.Fatalf("expected owner snapshot %+v, got %+v", owner, p.Owner)
	}
	if p.CreatedAt != now || p.UpdatedAt != now {
		t.Fatalf("expected CreatedAt/UpdatedAt to be now")
	}

	// Round-trip: lo leído es igual a lo creado.
	got, err := svc.GetByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.ID != p.ID || got.Name != "Rex" || got.Age != "2" || got.Weight != "10" || got.Color != "brown" {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
	if len(got.Images) != 1 || got.Images[0] != "a.png" {
		t.Fatalf("expected images [a.png], got %v", got.Images)
	}
}

func TestService_Create_FailFastValidation(t *testing.T) {
	cases := []struct {
		field  string
		mutate func(*CreateInput)
	}{
		{"name", func(in *CreateInput) { in.Name = "" }},
		{"age", func(in *CreateInput) { in.Age = "  " }},
		{"weight", func(in *CreateInput) { in.Weight = "" }},
		{"color", func(in *CreateInput) { in.Color = "" }},
		{"image", func(in *CreateInput) { in.Images = nil }},
	}

	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			repo := newTestRepo()
			svc := NewService(repo)

			in := validInput()
			tc.mutate(&in)

			_, err := svc.Create(context.Background(), owner, in)

			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !strings.Contains(ve.Error(), tc.field) {
				t.Fatalf("expected message naming %q, got %q", tc.field, ve.Error())
			}
			if len(repo.byID) != 0 {
				t.Fatalf("expected nothing persisted after validation failure")
			}
		})
	}
}

func TestService_Update_OwnerOnly(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	p := mustCreate(t, svc, owner, validInput())

	in := UpdateInput{Name: "Rex II", Age: "3", Weight: "12", Color: "black"}

	if _, err := svc.Update(context.Background(), p.ID, adopter.ID, in); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}

	updated, err := svc.Update(context.Background(), p.ID, owner.ID, in)
	if err != nil {
		t.Fatalf("Update by owner error: %v", err)
	}
	if updated.Name != "Rex II" || updated.Age != "3" {
		t.Fatalf("expected updated fields, got %+v", updated)
	}
	// Sin imágenes nuevas: se conservan las actuales.
	if len(updated.Images) != 1 || updated.Images[0] != "a.png" {
		t.Fatalf("expected images untouched, got %v", updated.Images)
	}
}

func TestService_Update_ReplacesImagesWholesale(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	p := mustCreate(t, svc, owner, validInput())

	updated, err := svc.Update(context.Background(), p.ID, owner.ID, UpdateInput{
		Name: "Rex", Age: "2", Weight: "10", Color: "brown",
		Images: []string{"b.png", "c.png"},
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if len(updated.Images) != 2 || updated.Images[0] != "b.png" {
		t.Fatalf("expected images replaced, got %v", updated.Images)
	}
}

func TestService_Remove_OwnerOnly(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	p := mustCreate(t, svc, owner, validInput())

	if err := svc.Remove(context.Background(), p.ID, adopter.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}
	if err := svc.Remove(context.Background(), p.ID, owner.ID); err != nil {
		t.Fatalf("Remove by owner error: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
}

func TestService_Schedule_Rules(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	p := mustCreate(t, svc, owner, validInput())

	// El dueño no puede agendar su propio pet.
	ownerAsAdopter := AdopterRef{ID: owner.ID, Name: owner.Name}
	if _, err := svc.Schedule(context.Background(), p.ID, ownerAsAdopter); !errors.Is(err, ErrSelfSchedule) {
		t.Fatalf("expected ErrSelfSchedule, got %v", err)
	}

	// Primer agendamiento: Listed -> Scheduled.
	scheduled, err := svc.Schedule(context.Background(), p.ID, adopter)
	if err != nil {
		t.Fatalf("Schedule error: %v", err)
	}
	if scheduled.Adopter == nil || scheduled.Adopter.ID != adopter.ID {
		t.Fatalf("expected adopter snapshot, got %+v", scheduled.Adopter)
	}
	if !scheduled.Available {
		t.Fatalf("expected pet still available after schedule")
	}

	// Mismo adopter dos veces: AlreadyScheduled.
	if _, err := svc.Schedule(context.Background(), p.ID, adopter); !errors.Is(err, ErrAlreadyScheduled) {
		t.Fatalf("expected ErrAlreadyScheduled, got %v", err)
	}

	// Otro adopter pisa el snapshot (last-scheduler wins).
	rescheduled, err := svc.Schedule(context.Background(), p.ID, other)
	if err != nil {
		t.Fatalf("Schedule by other error: %v", err)
	}
	if rescheduled.Adopter == nil || rescheduled.Adopter.ID != other.ID {
		t.Fatalf("expected adopter overwritten by %s, got %+v", other.ID, rescheduled.Adopter)
	}
}

func TestService_Conclude_OwnerGatedAndIdempotent(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	p := mustCreate(t, svc, owner, validInput())

	if _, err := svc.Conclude(context.Background(), p.ID, adopter.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}

	concluded, err := svc.Conclude(context.Background(), p.ID, owner.ID)
	if err != nil {
		t.Fatalf("Conclude error: %v", err)
	}
	if concluded.Available {
		t.Fatalf("expected available=false after conclude")
	}

	// Repetir no cambia el efecto, pero sigue exigiendo ownership.
	if _, err := svc.Conclude(context.Background(), p.ID, adopter.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden on repeat by non-owner, got %v", err)
	}
	again, err := svc.Conclude(context.Background(), p.ID, owner.ID)
	if err != nil {
		t.Fatalf("Conclude repeat error: %v", err)
	}
	if again.Available {
		t.Fatalf("expected available to stay false")
	}
}

func TestService_Listings_NewestFirst(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	base := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		tick := base.Add(time.Duration(i) * time.Minute)
		svc.now = func() time.Time { return tick }
		in := validInput()
		in.Name = []string{"first", "second", "third"}[i]
		mustCreate(t, svc, owner, in)
	}

	all, err := svc.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 pets, got %d", len(all))
	}
	if all[0].Name != "third" || all[2].Name != "first" {
		t.Fatalf("expected newest-first order, got %s..%s", all[0].Name, all[2].Name)
	}

	mine, err := svc.ListByOwner(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("ListByOwner error: %v", err)
	}
	if len(mine) != 3 || mine[0].Name != "third" {
		t.Fatalf("expected owner listing newest-first, got %+v", mine)
	}
}

func TestService_ListByAdopter(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	p1 := mustCreate(t, svc, owner, validInput())
	mustCreate(t, svc, owner, validInput())

	if _, err := svc.Schedule(context.Background(), p1.ID, adopter); err != nil {
		t.Fatalf("Schedule error: %v", err)
	}

	got, err := svc.ListByAdopter(context.Background(), adopter.ID)
	if err != nil {
		t.Fatalf("ListByAdopter error: %v", err)
	}
	if len(got) != 1 || got[0].ID != p1.ID {
		t.Fatalf("expected only the scheduled pet, got %+v", got)
	}
}

func TestService_InvalidAndMissingIDs(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	if _, err := svc.GetByID(context.Background(), "not-a-uuid"); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := svc.Update(context.Background(), "not-a-uuid", owner.ID, UpdateInput{}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID on update, got %v", err)
	}

	missing := "44444444-4444-4444-4444-444444444444"
	if _, err := svc.GetByID(context.Background(), missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Schedule(context.Background(), missing, adopter); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on schedule, got %v", err)
	}
}

