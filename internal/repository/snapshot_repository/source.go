package snapshot_repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"
)

const (
	ListingsFile = "offres.json"
	LeadsFile    = "contacts.json"
	DemandsFile  = "demandes.json"
)

// Source отдаёт содержимое JSON-снимков по имени файла.
// Отсутствующий файл — fs.ErrNotExist.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	String() string
}

// FileSource читает снимки из локального каталога.
type FileSource struct {
	Dir string
}

func NewFileSource(dir string) FileSource {
	return FileSource{Dir: dir}
}

func (s FileSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.Dir, name))
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s FileSource) String() string {
	return "dir:" + s.Dir
}

// MinioSource читает снимки из бакета MinIO (S3).
type MinioSource struct {
	client *minio.Client
	bucket string
	prefix string
}

func NewMinioSource(client *minio.Client, bucket, prefix string) *MinioSource {
	return &MinioSource{client: client, bucket: bucket, prefix: prefix}
}

func (s *MinioSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := path.Join(s.prefix, name)

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.mapErr(key, err)
	}

	// GetObject ленивый: ошибка "нет объекта" приходит только при первом обращении.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, s.mapErr(key, err)
	}

	return obj, nil
}

func (s *MinioSource) String() string {
	return fmt.Sprintf("minio:%s/%s", s.bucket, s.prefix)
}

func (s *MinioSource) mapErr(key string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%s: %w", key, fs.ErrNotExist)
	}
	return fmt.Errorf("%s: %w", key, err)
}

// readAll читает файл снимка целиком; отсутствие файла даёт nil без ошибки.
func readAll(ctx context.Context, src Source, name string) ([]byte, error) {
	rc, err := src.Open(ctx, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}
