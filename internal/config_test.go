package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/caseificio/pkg/config"

	"github.com/starford/caseificio/internal/storage"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenMode(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}

	cfg.Token = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("empty token: err = %v", err)
	}
}

func TestStorageConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     StorageConfig
		wantErr bool
	}{
		{name: "sqlite", cfg: StorageConfig{Driver: DriverSQLite, SQLitePath: "x.db"}},
		{name: "sqlite without path", cfg: StorageConfig{Driver: DriverSQLite}, wantErr: true},
		{name: "postgres without dsn", cfg: StorageConfig{Driver: DriverPostgres, SQLitePath: "x.db"}, wantErr: true},
		{name: "postgres", cfg: StorageConfig{Driver: DriverPostgres, PostgresDSN: "postgres://localhost/db"}},
		{name: "local", cfg: StorageConfig{Driver: DriverLocal, LocalDir: "data"}},
		{name: "memory", cfg: StorageConfig{Driver: DriverMemory}},
		{name: "unknown driver", cfg: StorageConfig{Driver: "mongo"}, wantErr: true},
		{name: "bad mode", cfg: StorageConfig{Driver: DriverMemory, Mode: "relaxed"}, wantErr: true},
		{name: "permissive", cfg: StorageConfig{Driver: DriverMemory, Mode: storage.ModePermissive}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStorageConfig_EmptyModeIsStrict(t *testing.T) {
	cfg := StorageConfig{Driver: DriverMemory}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if !cfg.Strict() || cfg.Mode != storage.ModeStrict {
		t.Errorf("mode = %q", cfg.Mode)
	}
}

func TestSchedulerConfig(t *testing.T) {
	cfg := SchedulerConfig{Timezone: "Europe/Rome"}
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if loc.String() != "Europe/Rome" {
		t.Errorf("loc = %s", loc)
	}

	bad := SchedulerConfig{Timezone: "Mars/Olympus"}
	if err := bad.Validate(); err == nil {
		t.Error("unknown timezone should fail")
	}
}

func TestBackupConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     BackupConfig
		wantErr bool
	}{
		{name: "file", cfg: BackupConfig{Dir: "backups"}},
		{name: "file without dir", cfg: BackupConfig{Driver: BackupFile}, wantErr: true},
		{name: "s3", cfg: BackupConfig{Driver: BackupS3, S3: BackupS3Config{Bucket: "b"}}},
		{name: "s3 without bucket", cfg: BackupConfig{Driver: BackupS3}, wantErr: true},
		{name: "half keys", cfg: BackupConfig{Driver: BackupS3, S3: BackupS3Config{Bucket: "b", AccessKeyID: "k"}}, wantErr: true},
		{name: "unknown", cfg: BackupConfig{Driver: "ftp", Dir: "x"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}
	if cfg.Events.AgendaThrottle != 2*time.Second {
		t.Errorf("throttle = %v", cfg.Events.AgendaThrottle)
	}
}

func TestFullConfig_SectionErrorsSurface(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}

	cfg = NewDefaultConfig()
	cfg.Storage.Driver = DriverPostgres
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "storage") {
		t.Errorf("err = %v", err)
	}
}

func TestLoadYAMLOverDefaults(t *testing.T) {
	t.Setenv("CASEIFICIO_TEST_TOKEN", "s3cret")
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
app:
  http:
    port: 9090
storage:
  driver: local
  local_dir: ./dati
  mode: permissive
scheduler:
  timezone: Europe/Rome
events:
  agenda_throttle: 500ms
auth:
  mode: token
  token: ${CASEIFICIO_TEST_TOKEN}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.HTTP.Port != 9090 || cfg.Storage.Driver != DriverLocal || cfg.Storage.Strict() {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Auth.Token != "s3cret" {
		t.Errorf("token = %q, want expanded env value", cfg.Auth.Token)
	}
	if cfg.Events.AgendaThrottle != 500*time.Millisecond {
		t.Errorf("throttle = %v", cfg.Events.AgendaThrottle)
	}
	if cfg.Backup.Dir != "./backups" {
		t.Errorf("backup defaults lost: %+v", cfg.Backup)
	}
}

func TestShippedConfigLoads(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(filepath.Join("..", "config", "config.yaml"), cfg); err != nil {
		t.Fatalf("config/config.yaml: %v", err)
	}
	if cfg.Storage.Driver != DriverSQLite || cfg.Backup.Driver != BackupFile {
		t.Errorf("cfg = %+v", cfg)
	}
}
