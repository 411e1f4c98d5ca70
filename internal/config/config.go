package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	StoreBackendSheets   = "sheets"
	StoreBackendPostgres = "postgres"
	StoreBackendRedis    = "redis"
	StoreBackendMemory   = "memory"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// redis: login sessions, workout sessions, rate limiting
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// user database
	StoreBackend          string `toml:"store_backend"`
	GoogleCredentialsPath string `toml:"google_credentials_path"`
	SpreadsheetID         string `toml:"spreadsheet_id"`
	SpreadsheetName       string `toml:"spreadsheet_name"`
	SpreadsheetCell       string `toml:"spreadsheet_cell"`
	PostgresHost          string `toml:"postgres_host"`
	PostgresPort          string `toml:"postgres_port"`
	PostgresDBName        string `toml:"postgres_db_name"`
	RedisDocumentKey      string `toml:"redis_document_key"`

	// workout sessions
	WorkoutSessionsBackend string   `toml:"workout_sessions_backend"`
	WorkoutSessionTTL      Duration `toml:"workout_session_ttl"`

	// db backups to google drive
	BackupEnabled        bool   `toml:"backup_enabled"`
	BackupSchedule       string `toml:"backup_schedule"`
	BackupFolderName     string `toml:"backup_folder_name"`
	BackupShareWithEmail string `toml:"backup_share_with_email"`

	NarrationBaseURL string `toml:"narration_base_url"`
	NarrationLang    string `toml:"narration_lang"`

	SpotifyPlaylistID string `toml:"spotify_playlist_id"`

	LoginRateLimitAllowedPerMin int      `toml:"login_rate_limit_allowed_per_min"`
	AllowedOrigins              []string `toml:"allowed_origins"`
}

// Duration lets toml files carry values such as "12h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

type Toml struct {
	Development *Config
	Production  *Config
	DockerDev   *Config `toml:"dockerdev"`
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	case "ddev", "dockerdev":
		cfg = t.DockerDev
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}

	if cfg == nil {
		return nil, fmt.Errorf("config for env [%s] not found", env)
	}
	return cfg, nil
}

// Load reads the toml config file and returns the section for the given env,
// with defaults filled in.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode toml config %s: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	cfg.setDefaults(env)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config [%s]: %w", env, err)
	}

	return cfg, nil
}

func (c *Config) setDefaults(env string) {
	if c.Environment == "" {
		c.Environment = strings.ToLower(env)
	}
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.PrometheusMetricsHost == "" {
		c.PrometheusMetricsHost = "localhost"
	}
	if c.PrometheusMetricsPort == "" {
		c.PrometheusMetricsPort = "2112"
	}
	if c.RedisHost == "" {
		c.RedisHost = "localhost"
	}
	if c.RedisPort == "" {
		c.RedisPort = "6379"
	}
	if c.StoreBackend == "" {
		c.StoreBackend = StoreBackendSheets
	}
	if c.SpreadsheetName == "" {
		c.SpreadsheetName = "gym_database"
	}
	if c.SpreadsheetCell == "" {
		c.SpreadsheetCell = "A1"
	}
	if c.RedisDocumentKey == "" {
		c.RedisDocumentKey = "gymcoach-db"
	}
	if c.WorkoutSessionsBackend == "" {
		c.WorkoutSessionsBackend = StoreBackendRedis
	}
	if c.WorkoutSessionTTL.Duration == 0 {
		c.WorkoutSessionTTL.Duration = 12 * time.Hour
	}
	if c.BackupSchedule == "" {
		c.BackupSchedule = "0 0 4 * * *"
	}
	if c.BackupFolderName == "" {
		c.BackupFolderName = "gymcoach-backup"
	}
	if c.NarrationLang == "" {
		c.NarrationLang = "en"
	}
	if c.LoginRateLimitAllowedPerMin == 0 {
		c.LoginRateLimitAllowedPerMin = 15
	}
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case StoreBackendSheets, StoreBackendPostgres, StoreBackendRedis, StoreBackendMemory:
	default:
		return fmt.Errorf("unknown store backend: %s", c.StoreBackend)
	}

	switch c.WorkoutSessionsBackend {
	case StoreBackendRedis, StoreBackendMemory:
	default:
		return fmt.Errorf("unknown workout sessions backend: %s", c.WorkoutSessionsBackend)
	}

	return nil
}
