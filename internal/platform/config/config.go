package config

import (
	"github.com/kelseyhightower/envconfig"
)

// Config concentra toda la configuración del servicio.
// El secret del token es configuración global de proceso: se carga una vez
// acá y se inyecta donde haga falta, nunca hardcodeado.
type Config struct {
	// HTTP
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":5000"`

	// DB (vacío => repos in-memory, modo dev)
	DBDSN string `envconfig:"DB_DSN"`

	// Sesiones
	JWTSecret    string `envconfig:"JWT_SECRET" required:"true"`
	JWTExpireMin int    `envconfig:"JWT_EXPIRE_MIN" default:"1440"`

	// Imágenes subidas
	UploadDir string `envconfig:"UPLOAD_DIR" default:"public/images"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	AppName   string `envconfig:"APP_NAME" default:"pet-adoption"`
}

func Load() (Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	return c, err
}
