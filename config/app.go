package config

import "time"

type App struct {
	Port     string `yaml:"port" env:"APP_PORT" default:"8080"`
	Env      string `yaml:"env" env:"APP_ENV" default:"dev"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" default:"info"`

	// StoreDriver is postgres, mongo or memory.
	StoreDriver   string `yaml:"store_driver" env:"STORE_DRIVER" default:"postgres"`
	DatabaseURL   string `yaml:"database_url" env:"DATABASE_URL"`
	MongoURI      string `yaml:"mongo_uri" env:"MONGO_URI"`
	MongoDatabase string `yaml:"mongo_database" env:"MONGO_DATABASE" default:"libzone"`

	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET"`

	ReadTimeout  time.Duration `yaml:"read_timeout" default:"15s"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"60s"`

	Mail    Mail    `yaml:"mail"`
	Storage Storage `yaml:"storage"`
}

// Mail falls back to the log sender when Host is empty.
type Mail struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT" default:"587"`
	Username string `yaml:"username" env:"SMTP_USER"`
	Password string `yaml:"password" env:"SMTP_PASS"`
	Secure   bool   `yaml:"secure" env:"SMTP_SECURE"`
	From     string `yaml:"from" env:"MAIL_FROM" default:"LibZone <no-reply@libzone.local>"`
}

// Storage is disabled when Endpoint is empty; uploads and private reads then fail with 503.
type Storage struct {
	Endpoint      string `yaml:"endpoint" env:"STORAGE_ENDPOINT"`
	AccessKey     string `yaml:"access_key" env:"STORAGE_ACCESS_KEY"`
	SecretKey     string `yaml:"secret_key" env:"STORAGE_SECRET_KEY"`
	UseSSL        bool   `yaml:"use_ssl" env:"STORAGE_USE_SSL"`
	Region        string `yaml:"region" env:"STORAGE_REGION"`
	PublicBucket  string `yaml:"public_bucket" env:"STORAGE_PUBLIC_BUCKET" default:"libzone-public"`
	PrivateBucket string `yaml:"private_bucket" env:"STORAGE_PRIVATE_BUCKET" default:"libzone-private"`
	PublicBaseURL string `yaml:"public_base_url" env:"STORAGE_PUBLIC_BASE_URL"`
}

func (a App) IsDev() bool { return a.Env == "dev" }
