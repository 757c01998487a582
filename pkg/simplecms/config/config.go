// Package config loads server configuration from the environment and wires
// the repositories, media store and service together.
package config

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hokuto/simple-cms/pkg/simplecms"
	memoryrepo "github.com/hokuto/simple-cms/pkg/simplecms/repo/memory"
	"github.com/hokuto/simple-cms/pkg/simplecms/repo/postgres"
	fsstorage "github.com/hokuto/simple-cms/pkg/simplecms/storage/fs"
	memorystorage "github.com/hokuto/simple-cms/pkg/simplecms/storage/memory"
	s3storage "github.com/hokuto/simple-cms/pkg/simplecms/storage/s3"
)

// DatabaseConfig holds the Postgres connection settings.
type DatabaseConfig struct {
	Host     string `env:"DATABASE_HOST" env-default:"localhost"`
	Port     uint16 `env:"DATABASE_PORT" env-default:"5432"`
	User     string `env:"DATABASE_USER" env-default:"cms"`
	Password string `env:"DATABASE_PASSWORD" env-default:""`
	Name     string `env:"DATABASE_NAME" env-default:"cms"`
	Schema   string `env:"DATABASE_SCHEMA" env-default:""`
}

// URL assembles the connection string. Credentials are URL-escaped by
// construction.
func (c DatabaseConfig) URL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}
	q := u.Query()
	q.Set("sslmode", "disable")
	u.RawQuery = q.Encode()
	return u.String()
}

// StorageConfig holds the S3-compatible object storage settings.
type StorageConfig struct {
	AccessKeyID     string `env:"STORAGE_ACCESS_KEY_ID" env-default:""`
	SecretAccessKey string `env:"STORAGE_SECRET_ACCESS_KEY" env-default:""`
	Region          string `env:"STORAGE_REGION" env-default:"us-east-1"`
	Endpoint        string `env:"STORAGE_ENDPOINT" env-default:""`
	Bucket          string `env:"STORAGE_BUCKET" env-default:"cms-media"`
	UsePathStyle    bool   `env:"STORAGE_USE_PATH_STYLE" env-default:"true"`
	CreateBucket    bool   `env:"STORAGE_CREATE_BUCKET" env-default:"true"`

	// Filesystem backend settings, used when STORAGE_TYPE=fs.
	FSDir       string `env:"STORAGE_FS_DIR" env-default:"./data/media"`
	FSURLPrefix string `env:"STORAGE_FS_URL_PREFIX" env-default:""`
}

// AuthConfig holds the optional JWT settings. An empty secret disables
// authentication entirely.
type AuthConfig struct {
	JWTSecret string `env:"AUTH_JWT_SECRET" env-default:""`
}

// ServerConfig is the root configuration.
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	// DatabaseType selects "postgres" or "memory"; StorageType selects
	// "s3" or "memory". Memory backends exist for development and tests.
	DatabaseType string `env:"DATABASE_TYPE" env-default:"postgres"`
	StorageType  string `env:"STORAGE_TYPE" env-default:"s3"`

	Database DatabaseConfig
	Storage  StorageConfig
	Auth     AuthConfig
}

// Option mutates the configuration during Load.
type Option func(*ServerConfig) error

// WithPort overrides the listen port.
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		c.Port = port
		return nil
	}
}

// WithDatabaseType selects the repository backend.
func WithDatabaseType(t string) Option {
	return func(c *ServerConfig) error {
		c.DatabaseType = t
		return nil
	}
}

// WithStorageType selects the media storage backend.
func WithStorageType(t string) Option {
	return func(c *ServerConfig) error {
		c.StorageType = t
		return nil
	}
}

// Load reads the configuration from the environment and applies options on
// top.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := &ServerConfig{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *ServerConfig) Validate() error {
	switch c.DatabaseType {
	case "postgres":
		if c.Database.User == "" || c.Database.Name == "" {
			return fmt.Errorf("postgres database requires DATABASE_USER and DATABASE_NAME")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown database type %q", c.DatabaseType)
	}
	switch c.StorageType {
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("s3 storage requires STORAGE_BUCKET")
		}
	case "fs":
		if c.Storage.FSDir == "" {
			return fmt.Errorf("fs storage requires STORAGE_FS_DIR")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage type %q", c.StorageType)
	}
	return nil
}

// App is the composed application: the service plus the resources that need
// closing on shutdown.
type App struct {
	Service simplecms.Service
	Pool    *pgxpool.Pool
}

// Close releases the database pool if one was opened.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}

// BuildService wires repositories and storage into a Service according to
// the configuration. The Postgres path runs pending migrations first, so a
// fresh database is usable immediately.
func (c *ServerConfig) BuildService(ctx context.Context) (*App, error) {
	app := &App{}

	opts := make([]simplecms.Option, 0, 7)
	switch c.DatabaseType {
	case "memory":
		store := memoryrepo.NewStore()
		opts = append(opts,
			simplecms.WithCategoryRepository(store.CategoryRepository()),
			simplecms.WithContentRepository(store.ContentRepository()),
			simplecms.WithContentModelRepository(store.ContentModelRepository()),
			simplecms.WithTagRepository(store.TagRepository()),
			simplecms.WithUserRepository(store.UserRepository()),
			simplecms.WithRoleRepository(store.RoleRepository()),
		)
	case "postgres":
		if err := postgres.Migrate(c.Database.URL()); err != nil {
			return nil, err
		}
		pool, err := newPool(ctx, c.Database)
		if err != nil {
			return nil, err
		}
		app.Pool = pool
		opts = append(opts,
			simplecms.WithCategoryRepository(postgres.NewCategoryRepository(pool)),
			simplecms.WithContentRepository(postgres.NewContentRepository(pool)),
			simplecms.WithContentModelRepository(postgres.NewContentModelRepository(pool)),
			simplecms.WithTagRepository(postgres.NewTagRepository(pool)),
			simplecms.WithUserRepository(postgres.NewUserRepository(pool)),
			simplecms.WithRoleRepository(postgres.NewRoleRepository(pool)),
		)
	default:
		return nil, fmt.Errorf("unknown database type %q", c.DatabaseType)
	}

	switch c.StorageType {
	case "memory":
		opts = append(opts, simplecms.WithMediaStore(memorystorage.New()))
	case "fs":
		store, err := fsstorage.New(fsstorage.Config{
			BaseDir:   c.Storage.FSDir,
			URLPrefix: c.Storage.FSURLPrefix,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("build fs storage: %w", err)
		}
		opts = append(opts, simplecms.WithMediaStore(store))
	case "s3":
		store, err := s3storage.New(s3storage.Config{
			Region:                 c.Storage.Region,
			Bucket:                 c.Storage.Bucket,
			AccessKeyID:            c.Storage.AccessKeyID,
			SecretAccessKey:        c.Storage.SecretAccessKey,
			Endpoint:               c.Storage.Endpoint,
			UsePathStyle:           c.Storage.UsePathStyle,
			CreateBucketIfNotExist: c.Storage.CreateBucket,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("build s3 storage: %w", err)
		}
		opts = append(opts, simplecms.WithMediaStore(store))
	default:
		app.Close()
		return nil, fmt.Errorf("unknown storage type %q", c.StorageType)
	}

	svc, err := simplecms.New(opts...)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Service = svc
	return app, nil
}

// newPool opens the pgx pool. The pool handle is passed down to every
// repository constructor and closed on shutdown; there is no global
// singleton.
func newPool(ctx context.Context, cfg DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.Schema != "" {
		schema := cfg.Schema
		poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
