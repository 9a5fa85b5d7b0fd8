package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/ports"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
)

var _ ports.DocumentStore = (*GCSStore)(nil)

// GCSStore documentos como objetos de un bucket. La ruta devuelta es gs://bucket/objeto.
type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSStore sin credentialsFile usa las credenciales por defecto del entorno (ADC).
func NewGCSStore(ctx context.Context, bucket, prefix, credentialsFile string) (*GCSStore, error) {
	if bucket == "" {
		return nil, errors.New("storage: bucket GCS obligatorio")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: cliente GCS: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}, nil
}

// Close libera el cliente.
func (s *GCSStore) Close() error { return s.client.Close() }

func (s *GCSStore) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	rel, err := clean(name)
	if err != nil {
		return "", err
	}
	object := path.Join(s.prefix, rel)
	w := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("storage: subir %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("storage: subir %s: %w", object, err)
	}
	return "gs://" + s.bucket + "/" + object, nil
}

func (s *GCSStore) Open(ctx context.Context, p string) ([]byte, error) {
	object, ok := strings.CutPrefix(p, "gs://"+s.bucket+"/")
	if !ok {
		return nil, domain.Validation("document", "la ruta no pertenece al bucket "+s.bucket)
	}
	r, err := s.client.Bucket(s.bucket).Object(object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: documento %s", domain.ErrNotFound, object)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: abrir %s: %w", object, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}
