package users

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-adoption/internal/middleware"
	"pet-adoption/internal/ports/auth"
	"pet-adoption/internal/platform/uploads"
)

const maxMultipartMemory = 32 << 20

func RegisterRoutes(r chi.Router, svc *Service, issuer auth.TokenIssuer, store *uploads.Storage) {
	r.Route("/users", func(ur chi.Router) {
		ur.Post("/register", registerHandler(svc, issuer))
		ur.Post("/login", loginHandler(svc, issuer))
		ur.Get("/checkuser", checkUserHandler(svc))
		ur.Get("/{id}", getUserHandler(svc))

		// El {id} del path se acepta por compatibilidad con el API original,
		// pero la autorización sale solo de la credencial.
		ur.Patch("/edit/{id}", editUserHandler(svc, store))
	})
}

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmpassword"`
	Phone           string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type editUserRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmpassword"`
	Image           string `json:"image"`
}

// authResponse es el resultado combinado de registro/login: señala éxito y
// transporta la credencial de sesión en una sola respuesta.
type authResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	UserID  string `json:"userId"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func registerHandler(svc *Service, issuer auth.TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid json")
			return
		}

		u, err := svc.Register(r.Context(), RegisterInput{
			Name:            req.Name,
			Email:           req.Email,
			Password:        req.Password,
			ConfirmPassword: req.ConfirmPassword,
			Phone:           req.Phone,
		})
		if err != nil {
			writeUserError(w, err)
			return
		}

		issueSession(w, issuer, u, http.StatusCreated)
	}
}

func loginHandler(svc *Service, issuer auth.TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid json")
			return
		}

		u, err := svc.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			// El login reporta la cuenta inexistente como 422, igual que el
			// resto de las fallas de credenciales (no es un lookup de entidad).
			if errors.Is(err, ErrNotFound) {
				writeMessage(w, http.StatusUnprocessableEntity, "there is no user registered with this e-mail")
				return
			}
			writeUserError(w, err)
			return
		}

		issueSession(w, issuer, u, http.StatusOK)
	}
}

func checkUserHandler(svc *Service) http.HandlerFunc {
	// Probe endpoint: sin credencial devuelve null, no error.
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeJSON(w, http.StatusOK, nil)
			return
		}

		u, err := svc.Resolve(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				writeMessage(w, http.StatusNotFound, "user not found")
				return
			}
			writeMessage(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

func getUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := svc.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeUserError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"user": toUserResponse(u)})
	}
}

func editUserHandler(svc *Service, store *uploads.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeMessage(w, http.StatusUnauthorized, "access denied")
			return
		}

		req, err := decodeEditRequest(r, store)
		if err != nil {
			if errors.Is(err, uploads.ErrUnsupportedType) {
				writeMessage(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			writeMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}

		u, err := svc.UpdateProfile(r.Context(), claims.UserID, UpdateProfileInput{
			Name:            req.Name,
			Email:           req.Email,
			Phone:           req.Phone,
			Password:        req.Password,
			ConfirmPassword: req.ConfirmPassword,
			Image:           req.Image,
		})
		if err != nil {
			writeUserError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"message": "user updated successfully",
			"user":    toUserResponse(u),
		})
	}
}

// decodeEditRequest acepta JSON o multipart (para subir foto de perfil).
func decodeEditRequest(r *http.Request, store *uploads.Storage) (editUserRequest, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		var req editUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return editUserRequest{}, err
		}
		return req, nil
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return editUserRequest{}, err
	}

	req := editUserRequest{
		Name:            r.FormValue("name"),
		Email:           r.FormValue("email"),
		Phone:           r.FormValue("phone"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirmpassword"),
	}

	if files := r.MultipartForm.File["image"]; len(files) > 0 && store != nil {
		name, err := store.Save(files[0], uploads.FolderUsers)
		if err != nil {
			return editUserRequest{}, err
		}
		req.Image = name
	}

	return req, nil
}

func issueSession(w http.ResponseWriter, issuer auth.TokenIssuer, u User, status int) {
	token, err := issuer.Issue(u.ID, u.Name)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, status, authResponse{
		Message: "you are authenticated",
		Token:   token,
		UserID:  u.ID,
	})
}

func writeUserError(w http.ResponseWriter, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		writeMessage(w, http.StatusUnprocessableEntity, ve.Error())
	case errors.Is(err, ErrDuplicateEmail),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidID):
		writeMessage(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	default:
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Image:     u.Image,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
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
