package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/caseificio/internal/storage"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverLocal    = "local"
	DriverMemory   = "memory"
)

// Backup drivers.
const (
	BackupFile = "file"
	BackupS3   = "s3"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Storage   StorageConfig     `yaml:"storage"`
	Scheduler SchedulerConfig   `yaml:"scheduler"`
	Events    EventsConfig      `yaml:"events"`
	Auth      AuthConfig        `yaml:"auth"`
	Backup    BackupConfig      `yaml:"backup"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Scheduler.Validate(); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	if err := c.Events.Validate(); err != nil {
		return fmt.Errorf("events: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Backup.Validate(); err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StorageConfig selects the primary backend and what happens when it fails.
//
// FallbackDir names a local JSON store that receives writes the primary
// rejected; it is only used in permissive mode. Watch enables change
// notifications for backends that support them (the local driver).
type StorageConfig struct {
	Driver      string       `yaml:"driver"`
	SQLitePath  string       `yaml:"sqlite_path"`
	PostgresDSN string       `yaml:"postgres_dsn"`
	LocalDir    string       `yaml:"local_dir"`
	Mode        storage.Mode `yaml:"mode"`
	FallbackDir string       `yaml:"fallback_dir"`
	Watch       bool         `yaml:"watch"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = storage.ModeStrict
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required,
			validation.In(DriverSQLite, DriverPostgres, DriverLocal, DriverMemory)),
		validation.Field(&c.SQLitePath, validation.When(c.Driver == DriverSQLite, validation.Required)),
		validation.Field(&c.PostgresDSN, validation.When(c.Driver == DriverPostgres, validation.Required)),
		validation.Field(&c.LocalDir, validation.When(c.Driver == DriverLocal, validation.Required)),
		validation.Field(&c.Mode, validation.In(storage.ModeStrict, storage.ModePermissive)),
	)
}

// Strict reports whether partial failures must fail the whole operation.
func (c *StorageConfig) Strict() bool {
	return c.Mode != storage.ModePermissive
}

// SchedulerConfig holds the timezone that decides which civil date is
// "today".
type SchedulerConfig struct {
	Timezone string `yaml:"timezone"`
}

// Validate validates the scheduler configuration.
func (c *SchedulerConfig) Validate() error {
	_, err := c.Location()
	return err
}

// Location resolves Timezone, defaulting to the host zone.
func (c *SchedulerConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// EventsConfig tunes the SSE stream.
type EventsConfig struct {
	AgendaThrottle time.Duration `yaml:"agenda_throttle"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.AgendaThrottle, validation.Min(time.Duration(0))),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): the API is open, suitable for a single-host install.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// BackupConfig selects where the backup command writes snapshots.
type BackupConfig struct {
	Driver string         `yaml:"driver"`
	Dir    string         `yaml:"dir"`
	S3     BackupS3Config `yaml:"s3"`
}

// BackupS3Config addresses an S3 bucket or an S3-compatible store.
// Without keys the default AWS credential chain applies.
type BackupS3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	Prefix          string `yaml:"prefix"`
	PathStyle       bool   `yaml:"path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// Validate validates the backup configuration.
func (c *BackupConfig) Validate() error {
	if c.Driver == "" {
		c.Driver = BackupFile
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.In(BackupFile, BackupS3)),
		validation.Field(&c.Dir, validation.When(c.Driver == BackupFile, validation.Required)),
	); err != nil {
		return err
	}
	if c.Driver == BackupS3 && c.S3.Bucket == "" {
		return errors.New("s3 bucket is required")
	}
	if (c.S3.AccessKeyID == "") != (c.S3.SecretAccessKey == "") {
		return errors.New("s3 access_key_id and secret_access_key must be set together")
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Storage: StorageConfig{
			Driver:      DriverSQLite,
			SQLitePath:  "./caseificio.db",
			LocalDir:    "./data",
			Mode:        storage.ModeStrict,
			FallbackDir: "./data/offline",
		},
		Events: EventsConfig{
			AgendaThrottle: 2 * time.Second,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Backup: BackupConfig{
			Driver: BackupFile,
			Dir:    "./backups",
		},
	}
}
