// Package objectstore talks to S3-compatible storage through minio-go. Covers
// go to a public-read bucket; book PDFs go to a private bucket and are only
// handed out as short-lived presigned URLs.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	Region        string
	PublicBucket  string
	PrivateBucket string
	// PublicBaseURL overrides the URL prefix of public objects (CDN, proxy).
	PublicBaseURL string
}

type Store struct {
	client *minio.Client
	cfg    Config
}

func New(cfg Config) (*Store, error) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	c, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("object storage client: %w", err)
	}
	return &Store{client: c, cfg: cfg}, nil
}

// PutPublic stores a publicly readable object and returns its URL.
func (s *Store) PutPublic(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.cfg.PublicBucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}
	return s.PublicURL(key), nil
}

// PutPrivate stores an object that is only reachable through PresignGet.
func (s *Store) PutPrivate(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.cfg.PrivateBucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

// PresignGet returns a GET URL for a private object valid for ttl.
func (s *Store) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	params := url.Values{}
	params.Set("response-content-type", "application/pdf")
	u, err := s.client.PresignedGetObject(ctx, s.cfg.PrivateBucket, key, ttl, params)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (s *Store) PublicURL(key string) string {
	return PublicURL(s.cfg, key)
}

// PublicURL builds the address of a public object without touching the network.
func PublicURL(cfg Config, key string) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimRight(cfg.PublicBaseURL, "/") + "/" + key
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, cfg.Endpoint, cfg.PublicBucket, key)
}
