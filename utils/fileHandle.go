package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"learnhub/config"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

// FileStore saves uploaded files and returns the URL they are served from.
type FileStore interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// LocalStore writes files under dir and serves them below urlPrefix.
type LocalStore struct {
	dir       string
	urlPrefix string
}

func NewLocalStore(dir, urlPrefix string) *LocalStore {
	return &LocalStore{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

func (s *LocalStore) Save(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	filePath := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return "", err
	}

	dst, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return "", err
	}
	return s.urlPrefix + "/" + key, nil
}

// MinioStore keeps files in a MinIO / S3 bucket.
type MinioStore struct {
	mc      *minio.Client
	bucket  string
	baseURL string
}

func NewMinioStore(cfg *config.Config) (*MinioStore, error) {
	if cfg.MinioEndpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "" {
		return nil, fmt.Errorf("minio access key and secret key are required")
	}

	mc, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	scheme := "http"
	if cfg.MinioUseSSL {
		scheme = "https"
	}
	return &MinioStore{
		mc:      mc,
		bucket:  cfg.MinioBucket,
		baseURL: fmt.Sprintf("%s://%s/%s", scheme, cfg.MinioEndpoint, cfg.MinioBucket),
	}, nil
}

// EnsureBucket creates the bucket when missing.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.mc.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := s.mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		log.Info().Str("bucket", s.bucket).Msg("[minio] Created bucket")
	}
	return nil
}

func (s *MinioStore) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.mc.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return s.baseURL + "/" + key, nil
}

// Files is the global upload store.
var Files FileStore = NewLocalStore("./uploads", "/uploads")

// InitFileStore uses MinIO when configured and falls back to UPLOAD_DIR.
func InitFileStore(cfg *config.Config) {
	Files = NewLocalStore(cfg.UploadDir, "/uploads")
	if cfg.MinioEndpoint == "" {
		return
	}

	store, err := NewMinioStore(cfg)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = store.EnsureBucket(ctx)
		cancel()
	}
	if err != nil {
		log.Warn().Err(err).Msg("MinIO unavailable, storing uploads locally")
		return
	}
	Files = store
}

// ErrUnsupportedImage is returned for uploads whose content is not an allowed image.
var ErrUnsupportedImage = errors.New("unsupported image type")

// imageExtensions maps the allowed sniffed types to the extension they are stored with.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// detectImage sniffs r and rewinds it. The client's filename and part
// Content-Type are never trusted.
func detectImage(r io.ReadSeeker) (contentType, ext string, err error) {
	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		return "", "", err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", "", err
	}
	for allowed, ext := range imageExtensions {
		if mtype.Is(allowed) {
			return allowed, ext, nil
		}
	}
	return "", "", ErrUnsupportedImage
}

// SaveUploadedImage stores an uploaded jpeg, png, webp or gif under folder with a
// unique name and an extension derived from its content, and returns its URL.
func SaveUploadedImage(ctx context.Context, file *multipart.FileHeader, folder string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	contentType, ext, err := detectImage(src)
	if err != nil {
		return "", err
	}
	key := path.Join(folder, time.Now().Format("20060102150405")+"-"+uuid.NewString()[:8]+ext)

	return Files.Save(ctx, key, src, file.Size, contentType)
}
