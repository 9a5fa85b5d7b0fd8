// Package storage guarda los PDF de facturas en disco local o en Google Cloud Storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/ports"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
)

var _ ports.DocumentStore = (*LocalStore)(nil)

// LocalStore documentos bajo un directorio raíz. La ruta devuelta es relativa a la raíz.
type LocalStore struct {
	fs   afero.Fs
	root string
}

// NewLocalStore usa el sistema de archivos del SO.
func NewLocalStore(root string) *LocalStore {
	return NewLocalStoreFs(afero.NewOsFs(), root)
}

// NewLocalStoreFs permite inyectar otro afero.Fs (en pruebas, afero.NewMemMapFs()).
func NewLocalStoreFs(fsys afero.Fs, root string) *LocalStore {
	return &LocalStore{fs: fsys, root: root}
}

// clean normaliza el nombre a una ruta relativa y rechaza los que suben de directorio.
func clean(name string) (string, error) {
	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return "", domain.Validation("document", "ruta inválida "+name)
		}
	}
	p := path.Clean("/" + name)[1:]
	if p == "" {
		return "", domain.Validation("document", "ruta vacía")
	}
	return p, nil
}

func (s *LocalStore) Save(_ context.Context, name, _ string, data []byte) (string, error) {
	rel, err := clean(name)
	if err != nil {
		return "", err
	}
	full := path.Join(s.root, rel)
	if err := s.fs.MkdirAll(path.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("storage: crear directorio: %w", err)
	}
	if err := afero.WriteFile(s.fs, full, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: escribir %s: %w", rel, err)
	}
	return rel, nil
}

func (s *LocalStore) Open(_ context.Context, p string) ([]byte, error) {
	rel, err := clean(p)
	if err != nil {
		return nil, err
	}
	b, err := afero.ReadFile(s.fs, path.Join(s.root, rel))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: documento %s", domain.ErrNotFound, rel)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: leer %s: %w", rel, err)
	}
	return b, nil
}
