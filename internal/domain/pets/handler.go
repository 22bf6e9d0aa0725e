package pets

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-adoption/internal/domain/users"
	"pet-adoption/internal/middleware"
	"pet-adoption/internal/platform/uploads"
)

const maxMultipartMemory = 32 << 20

func RegisterRoutes(r chi.Router, svc *Service, identities *users.Service, store *uploads.Storage) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc, identities, store))
		pr.Get("/", listPetsHandler(svc))

		// Mis publicaciones / mis visitas agendadas
		pr.Get("/mypets", listMyPetsHandler(svc, identities))
		pr.Get("/myadoptions", listMyAdoptionsHandler(svc, identities))

		pr.Get("/{id}", getPetHandler(svc))
		pr.Delete("/{id}", removePetHandler(svc, identities))
		pr.Patch("/{id}", updatePetHandler(svc, identities, store))

		pr.Patch("/schedule/{id}", schedulePetHandler(svc, identities))
		pr.Patch("/conclude/{id}", concludePetHandler(svc, identities))
	})
}

type petRequest struct {
	Name   string `json:"name"`
	Age    string `json:"age"`
	Weight string `json:"weight"`
	Color  string `json:"color"`

	// Images: filenames ya almacenados (clientes JSON). Por multipart se
	// suben archivos en el campo "images" y esto se llena con lo guardado.
	Images []string `json:"images"`
}

type userRefResponse struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type petResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Age       string           `json:"age"`
	Weight    string           `json:"weight"`
	Color     string           `json:"color"`
	Available bool             `json:"available"`
	Images    []string         `json:"images"`
	User      userRefResponse  `json:"user"`
	Adopter   *userRefResponse `json:"adopter,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func createPetHandler(svc *Service, identities *users.Service, store *uploads.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := resolveActingUser(w, r, identities)
		if !ok {
			return
		}

		req, err := decodePetRequest(r, store)
		if err != nil {
			writeUploadOrBodyError(w, err)
			return
		}

		p, err := svc.Create(r.Context(), OwnerRef{
			ID:    u.ID,
			Name:  u.Name,
			Image: u.Image,
			Phone: u.Phone,
		}, CreateInput{
			Name:   req.Name,
			Age:    req.Age,
			Weight: req.Weight,
			Color:  req.Color,
			Images: req.Images,
		})
		if err != nil {
			writePetError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"message": "pet registered successfully",
			"pet":     toPetResponse(p),
		})
	}
}

func listPetsHandler(svc *Service) http.HandlerFunc {
	// Listado público, newest-first.
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.GetAll(r.Context())
		if err != nil {
			writeMessage(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"pets": toPetResponses(items)})
	}
}

func listMyPetsHandler(svc *Service, identities *users.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := resolveActingUser(w, r, identities)
		if !ok {
			return
		}

		items, err := svc.ListByOwner(r.Context(), u.ID)
		if err != nil {
			writeMessage(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"pets": toPetResponses(items)})
	}
}

func listMyAdoptionsHandler(svc *Service, identities *users.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := resolveActingUser(w, r, identities)
		if !ok {
			return
		}

		items, err := svc.ListByAdopter(r.Context(), u.ID)
		if err != nil {
			writeMessage(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"pets": toPetResponses(items)})
	}
}

func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writePetError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"pet": toPetResponse(p)})
	}
}

func removePetHandler(svc *Service, identities *users.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := resolveActingUser(w, r, identities)
		if !ok {
			return
		}

		if err := svc.Remove(r.Context(), chi.URLParam(r, "id"), u.ID); err != nil {
			writePetError(w, err)
			return
		}

		writeMessage(w, http.StatusOK, "pet removed successfully")
	}
}

func updatePetHandler(svc *Service, identities *users.Service, store *uploads.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := resolveActingUser(w, r, identities)
		if !ok {
			return
		}

		req, err := decodePetRequest(r, store)
		if err != nil {
			writeUploadOrBodyError(w, err)
			return
		}

		p, err := svc.Update(r.Context(), chi.URLParam(r, "id"), u.ID, UpdateInput{
			Name:   req.Name,
			Age:    req.Age,
			Weight: req.Weight,
			Color:  req.Color,
			Images: req.Images,
		})
		if err != nil {
			writePetError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"message": "pet updated successfully",
			"pet":     toPetResponse(p),
		})
	}
}

func schedulePetHandler(svc *Service, identities *users.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := resolveActingUser(w, r, identities)
		if !ok {
			return
		}

		p, err := svc.Schedule(r.Context(), chi.URLParam(r, "id"), AdopterRef{
			ID:    u.ID,
			Name:  u.Name,
			Image: u.Image,
		})
		if err != nil {
			writePetError(w, err)
			return
		}

		// Divulgación de contacto cruzada a propósito: el adopter necesita
		// el teléfono del dueño para coordinar la visita.
		writeMessage(w, http.StatusOK, fmt.Sprintf(
			"the visit has been scheduled successfully, contact %s by phone %s",
			p.Owner.Name, p.Owner.Phone,
		))
	}
}

func concludePetHandler(svc *Service, identities *users.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := resolveActingUser(w, r, identities)
		if !ok {
			return
		}

		if _, err := svc.Conclude(r.Context(), chi.URLParam(r, "id"), u.ID); err != nil {
			writePetError(w, err)
			return
		}

		writeMessage(w, http.StatusOK, "congratulations, the adoption cycle was completed successfully")
	}
}

// resolveActingUser saca los claims del contexto y carga el registro completo
// del usuario (para armar snapshots). Escribe la respuesta de error y
// devuelve ok=false si no hay identidad utilizable.
func resolveActingUser(w http.ResponseWriter, r *http.Request, identities *users.Service) (users.User, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		writeMessage(w, http.StatusUnauthorized, "access denied")
		return users.User{}, false
	}

	u, err := identities.Resolve(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "user not found")
			return users.User{}, false
		}
		writeMessage(w, http.StatusInternalServerError, "internal error")
		return users.User{}, false
	}
	return u, true
}

// decodePetRequest acepta JSON o multipart. Por multipart, los archivos del
// campo "images" se guardan y la lista de filenames reemplaza req.Images.
func decodePetRequest(r *http.Request, store *uploads.Storage) (petRequest, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		var req petRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return petRequest{}, err
		}
		return req, nil
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return petRequest{}, err
	}

	req := petRequest{
		Name:   r.FormValue("name"),
		Age:    r.FormValue("age"),
		Weight: r.FormValue("weight"),
		Color:  r.FormValue("color"),
	}

	if files := r.MultipartForm.File["images"]; len(files) > 0 && store != nil {
		names, err := store.SaveAll(files, uploads.FolderPets)
		if err != nil {
			return petRequest{}, err
		}
		req.Images = names
	}

	return req, nil
}

func writeUploadOrBodyError(w http.ResponseWriter, err error) {
	if errors.Is(err, uploads.ErrUnsupportedType) {
		writeMessage(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeMessage(w, http.StatusBadRequest, "invalid request body")
}

func writePetError(w http.ResponseWriter, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		writeMessage(w, http.StatusUnprocessableEntity, ve.Error())
	case errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrSelfSchedule),
		errors.Is(err, ErrAlreadyScheduled):
		writeMessage(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	default:
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func toPetResponse(p Pet) petResponse {
	resp := petResponse{
		ID:        p.ID,
		Name:      p.Name,
		Age:       p.Age,
		Weight:    p.Weight,
		Color:     p.Color,
		Available: p.Available,
		Images:    p.Images,
		User: userRefResponse{
			ID:    p.Owner.ID,
			Name:  p.Owner.Name,
			Image: p.Owner.Image,
			Phone: p.Owner.Phone,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.Adopter != nil {
		resp.Adopter = &userRefResponse{
			ID:    p.Adopter.ID,
			Name:  p.Adopter.Name,
			Image: p.Adopter.Image,
		}
	}
	return resp
}

func toPetResponses(items []Pet) []petResponse {
	out := make([]petResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toPetResponse(p))
	}
	return out
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// (users/pets) para evitar crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
