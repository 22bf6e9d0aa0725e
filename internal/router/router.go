package router

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	mem "pet-adoption/internal/adapters/storage/memory"
	pg "pet-adoption/internal/adapters/storage/postgres"
	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/domain/users"
	"pet-adoption/internal/middleware"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/platform/uploads"
	"pet-adoption/internal/ports/auth"
)

type Options struct {
	// Verifier puede ser nil (modo dev: header X-Debug-User-ID).
	Verifier auth.AuthVerifier

	// Issuer emite tokens en register/login.
	Issuer auth.TokenIssuer

	// Si viene DB, usa Postgres. Si no, repos in-memory.
	DB *sql.DB

	// Uploads: storage de imágenes; nil deshabilita multipart y /images.
	Uploads *uploads.Storage

	Log logger.Logger
}

func New(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.Verifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var (
		usersRepo users.Repository
		petsRepo  pets.Repository
	)

	if opts.DB != nil {
		usersRepo = pg.NewUsersRepo(opts.DB)
		petsRepo = pg.NewPetsRepo(opts.DB)
		if opts.Log != nil {
			opts.Log.Info("using postgres storage", nil)
		}
	} else {
		usersRepo = mem.NewUsersRepo()
		petsRepo = mem.NewPetsRepo()
		if opts.Log != nil {
			opts.Log.Warn("using in-memory storage (data is lost on restart)", nil)
		}
	}

	usersSvc := users.NewService(usersRepo)
	petsSvc := pets.NewService(petsRepo)

	users.RegisterRoutes(r, usersSvc, opts.Issuer, opts.Uploads)
	pets.RegisterRoutes(r, petsSvc, usersSvc, opts.Uploads)

	// Imágenes subidas, servidas estáticas (solo lectura).
	if opts.Uploads != nil {
		fs := http.StripPrefix("/images/", http.FileServer(http.Dir(opts.Uploads.Root())))
		r.Get("/images/*", fs.ServeHTTP)
	}

	return r
}
