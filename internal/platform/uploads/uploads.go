package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var ErrUnsupportedType = errors.New("only png and jpg images are allowed")

// Carpetas soportadas bajo el root de uploads.
const (
	FolderUsers = "users"
	FolderPets  = "pets"
)

// Storage guarda imágenes subidas por multipart en disco local y devuelve
// el filename almacenado. El core solo persiste ese string, nunca bytes.
type Storage struct {
	root string
}

func New(root string) (*Storage, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("uploads: root dir required")
	}
	for _, folder := range []string{FolderUsers, FolderPets} {
		if err := os.MkdirAll(filepath.Join(root, folder), 0o755); err != nil {
			return nil, fmt.Errorf("uploads: create dir: %w", err)
		}
	}
	return &Storage{root: root}, nil
}

// Root devuelve el directorio base (para servirlo estático desde el router).
func (s *Storage) Root() string {
	return s.root
}

// Save guarda un archivo y devuelve el nombre generado (timestamp + ext).
func (s *Storage) Save(fh *multipart.FileHeader, folder string) (string, error) {
	return s.save(fh, folder, 0)
}

// SaveAll guarda todos los archivos de un campo multipart, en orden.
func (s *Storage) SaveAll(fhs []*multipart.FileHeader, folder string) ([]string, error) {
	names := make([]string, 0, len(fhs))
	for i, fh := range fhs {
		name, err := s.save(fh, folder, i)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

func (s *Storage) save(fh *multipart.FileHeader, folder string, seq int) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg":
	default:
		return "", ErrUnsupportedType
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("uploads: open upload: %w", err)
	}
	defer src.Close()

	// seq evita colisiones entre archivos del mismo request.
	name := fmt.Sprintf("%d-%d%s", time.Now().UnixNano(), seq, ext)

	dst, err := os.Create(filepath.Join(s.root, folder, name))
	if err != nil {
		return "", fmt.Errorf("uploads: create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("uploads: write file: %w", err)
	}
	return name, nil
}
