package uploadsvc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/kp7829294-create/libzone/util/apperr"
)

const (
	MaxImageSize = 5 << 20
	MaxPDFSize   = 20 << 20

	defaultImageFolder = "libzone/covers"
	defaultPDFFolder   = "libzone/books"

	previewTTL = 60 * time.Second
	sniffLen   = 3072
)

var (
	ErrNoFile    = apperr.New(apperr.Validation, "NO_FILE", "No file uploaded")
	ErrTooLarge  = apperr.New(apperr.Validation, "TOO_LARGE", "File too large")
	ErrBadType   = apperr.New(apperr.Validation, "BAD_TYPE", "Unsupported file type")
	ErrNoStorage = apperr.New(apperr.Unavailable, "NO_STORAGE", "File storage is not configured")
)

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type Storage interface {
	PutPublic(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	PutPrivate(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// File is one multipart part. Size comes from the part header.
type File struct {
	Name string
	Size int64
	Body io.Reader
}

type PDF struct {
	// URL is a short-lived preview link; PublicID is what a book stores.
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

type Service interface {
	// Image stores a cover (jpeg, png, webp, gif up to 5 MB) and returns its public URL.
	Image(ctx context.Context, f File, folder string) (string, error)
	// PDF stores a book file (up to 20 MB) privately.
	PDF(ctx context.Context, f File, folder string) (*PDF, error)
}

type service struct {
	store Storage
}

// New accepts a nil store; every upload then fails with ErrNoStorage.
func New(store Storage) Service { return &service{store: store} }

func (s *service) Image(ctx context.Context, f File, folder string) (string, error) {
	body, mime, err := s.check(f, MaxImageSize)
	if err != nil {
		return "", err
	}
	ext, ok := imageTypes[mime]
	if !ok {
		return "", ErrBadType
	}
	key := objectKey(folder, defaultImageFolder, ext)
	url, err := s.store.PutPublic(ctx, key, body, f.Size, mime)
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return url, nil
}

func (s *service) PDF(ctx context.Context, f File, folder string) (*PDF, error) {
	body, mime, err := s.check(f, MaxPDFSize)
	if err != nil {
		return nil, err
	}
	if mime != "application/pdf" {
		return nil, ErrBadType
	}
	key := objectKey(folder, defaultPDFFolder, ".pdf")
	if err := s.store.PutPrivate(ctx, key, body, f.Size, mime); err != nil {
		return nil, fmt.Errorf("put %s: %w", key, err)
	}
	url, err := s.store.PresignGet(ctx, key, previewTTL)
	if err != nil {
		return nil, fmt.Errorf("presign %s: %w", key, err)
	}
	return &PDF{URL: url, PublicID: key}, nil
}

// check enforces presence and size, then sniffs the real content type from
// the first bytes. The returned reader replays those bytes.
func (s *service) check(f File, limit int64) (io.Reader, string, error) {
	if s.store == nil {
		return nil, "", ErrNoStorage
	}
	if f.Body == nil || f.Size <= 0 {
		return nil, "", ErrNoFile
	}
	if f.Size > limit {
		return nil, "", ErrTooLarge
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, "", err
	}
	head = head[:n]
	mime := mimetype.Detect(head).String()
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return io.MultiReader(bytes.NewReader(head), f.Body), mime, nil
}

var unsafeFolder = regexp.MustCompile(`[^a-zA-Z0-9/_-]+`)

func objectKey(folder, fallback, ext string) string {
	folder = strings.Trim(unsafeFolder.ReplaceAllString(folder, ""), "/")
	if folder == "" {
		folder = fallback
	}
	return folder + "/" + uuid.NewString() + ext
}
