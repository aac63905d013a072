package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const devSecret = "local_dev_secret"

// Load layers defaults, the optional YAML file at path and the environment,
// in that order, then validates the result.
func Load(path string) (App, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("LIBZONE_CONFIG")
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return App{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return App{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return App{}, err
	}

	if cfg.JWTSecret == "" && cfg.IsDev() {
		slog.Warn("JWT_SECRET not set, using development secret")
		cfg.JWTSecret = devSecret
	}
	return cfg, cfg.Validate()
}

func Default() App {
	return App{
		Port:          "8080",
		Env:           "dev",
		LogLevel:      "info",
		StoreDriver:   "postgres",
		MongoDatabase: "libzone",
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  60 * time.Second,
		Mail: Mail{
			Port: 587,
			From: "LibZone <no-reply@libzone.local>",
		},
		Storage: Storage{
			PublicBucket:  "libzone-public",
			PrivateBucket: "libzone-private",
		},
	}
}

func (a App) Validate() error {
	var errs []error
	switch a.StoreDriver {
	case "postgres":
		if a.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	case "mongo":
		if a.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo store"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", a.StoreDriver))
	}
	if a.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required outside dev"))
	}
	if _, err := ParseLevel(a.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
	return l, nil
}

func applyEnv(cfg *App) error {
	setString(&cfg.Port, "APP_PORT")
	// Platforms inject PORT; it wins over APP_PORT.
	setString(&cfg.Port, "PORT")
	setString(&cfg.Env, "APP_ENV")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.StoreDriver, "STORE_DRIVER")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.MongoURI, "MONGO_URI")
	setString(&cfg.MongoDatabase, "MONGO_DATABASE")
	setString(&cfg.JWTSecret, "JWT_SECRET")

	setString(&cfg.Mail.Host, "SMTP_HOST")
	setString(&cfg.Mail.Username, "SMTP_USER")
	setString(&cfg.Mail.Password, "SMTP_PASS")
	setString(&cfg.Mail.From, "MAIL_FROM")

	setString(&cfg.Storage.Endpoint, "STORAGE_ENDPOINT")
	setString(&cfg.Storage.AccessKey, "STORAGE_ACCESS_KEY")
	setString(&cfg.Storage.SecretKey, "STORAGE_SECRET_KEY")
	setString(&cfg.Storage.Region, "STORAGE_REGION")
	setString(&cfg.Storage.PublicBucket, "STORAGE_PUBLIC_BUCKET")
	setString(&cfg.Storage.PrivateBucket, "STORAGE_PRIVATE_BUCKET")
	setString(&cfg.Storage.PublicBaseURL, "STORAGE_PUBLIC_BASE_URL")

	return errors.Join(
		setInt(&cfg.Mail.Port, "SMTP_PORT"),
		setBool(&cfg.Mail.Secure, "SMTP_SECURE"),
		setBool(&cfg.Storage.UseSSL, "STORAGE_USE_SSL"),
	)
}

func setString(dst *string, k string) {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, k string) error {
	v := os.Getenv(k)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", k, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, k string) error {
	v := os.Getenv(k)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", k, err)
	}
	*dst = b
	return nil
}
