package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rpattn/nwreports/internal/db"
	"github.com/rpattn/nwreports/internal/ingestion"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. NWR_DATABASE_HOST.
const EnvPrefix = "NWR"

// Config is the full process configuration.
type Config struct {
	Database  db.Config
	Server    ServerConfig
	Scraper   ScraperConfig
	Ingestion IngestionConfig
}

type ServerConfig struct {
	Addr            string
	StaticDir       string
	AllowedOrigins  []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type ScraperConfig struct {
	OuterURL      string
	BaseHost      string
	FrameSelector string
	RowSelector   string
	CellSelector  string
	HeaderRows    int
	Timeout       time.Duration
	UserAgent     string
}

// Source converts the scraper section into pipeline source settings.
func (s ScraperConfig) Source() ingestion.Source {
	return ingestion.Source{
		OuterURL:      s.OuterURL,
		BaseHost:      s.BaseHost,
		FrameSelector: s.FrameSelector,
		RowSelector:   s.RowSelector,
		CellSelector:  s.CellSelector,
		HeaderRows:    s.HeaderRows,
	}
}

type IngestionConfig struct {
	Deadline      time.Duration
	Transactional bool
	// Schedule is a cron expression; empty disables scheduled reloads.
	Schedule string
}

// Loader reads configuration from config.yaml, .env and the environment.
type Loader struct {
	v        *viper.Viper
	fileUsed bool

	mu sync.Mutex
}

// Load reads the configuration found in configPath.
func Load(configPath string) (Config, error) {
	loader, err := NewLoader(configPath)
	if err != nil {
		return Config{}, err
	}
	return loader.Config()
}

// NewLoader prepares a viper instance for configPath. A missing config.yaml or
// .env is not an error; defaults and environment variables still apply.
func NewLoader(configPath string) (*Loader, error) {
	if configPath == "" {
		configPath = "."
	}

	if err := godotenv.Load(filepath.Join(configPath, ".env")); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	} else {
		log.Printf("[CONFIG] loaded %s", filepath.Join(configPath, ".env"))
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	loader := &Loader{v: v}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("[CONFIG] no config.yaml found in %s, using defaults and env vars", configPath)
	} else {
		loader.fileUsed = true
		log.Printf("[CONFIG] loaded %s", v.ConfigFileUsed())
	}
	return loader, nil
}

func setDefaults(v *viper.Viper) {
	dbDefaults := db.DefaultConfig()
	v.SetDefault("database.host", dbDefaults.Host)
	v.SetDefault("database.port", dbDefaults.Port)
	v.SetDefault("database.user", dbDefaults.User)
	v.SetDefault("database.password", dbDefaults.Password)
	v.SetDefault("database.dbname", dbDefaults.DBName)
	v.SetDefault("database.sslmode", dbDefaults.SSLMode)
	v.SetDefault("database.max_conns", dbDefaults.MaxConns)
	v.SetDefault("database.migrate", dbDefaults.Migrate)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.static_dir", "./static")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	source := ingestion.DefaultSource()
	v.SetDefault("scraper.outer_url", source.OuterURL)
	v.SetDefault("scraper.base_host", source.BaseHost)
	v.SetDefault("scraper.frame_selector", source.FrameSelector)
	v.SetDefault("scraper.row_selector", source.RowSelector)
	v.SetDefault("scraper.cell_selector", source.CellSelector)
	v.SetDefault("scraper.header_rows", source.HeaderRows)
	v.SetDefault("scraper.timeout", 30*time.Second)
	v.SetDefault("scraper.user_agent", "nwreports/1.0")

	v.SetDefault("ingestion.deadline", 2*time.Minute)
	v.SetDefault("ingestion.transactional", true)
	v.SetDefault("ingestion.schedule", "")
}

// Config decodes and validates the current settings.
func (l *Loader) Config() (Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	v := l.v
	cfg := Config{
		Database: db.Config{
			Host:     v.GetString("database.host"),
			Port:     v.GetInt("database.port"),
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
			DBName:   v.GetString("database.dbname"),
			SSLMode:  v.GetString("database.sslmode"),
			MaxConns: v.GetInt32("database.max_conns"),
			Migrate:  v.GetBool("database.migrate"),
		},
		Server: ServerConfig{
			Addr:            v.GetString("server.addr"),
			StaticDir:       v.GetString("server.static_dir"),
			AllowedOrigins:  v.GetStringSlice("server.allowed_origins"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			IdleTimeout:     v.GetDuration("server.idle_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Scraper: ScraperConfig{
			OuterURL:      v.GetString("scraper.outer_url"),
			BaseHost:      v.GetString("scraper.base_host"),
			FrameSelector: v.GetString("scraper.frame_selector"),
			RowSelector:   v.GetString("scraper.row_selector"),
			CellSelector:  v.GetString("scraper.cell_selector"),
			HeaderRows:    v.GetInt("scraper.header_rows"),
			Timeout:       v.GetDuration("scraper.timeout"),
			UserAgent:     v.GetString("scraper.user_agent"),
		},
		Ingestion: IngestionConfig{
			Deadline:      v.GetDuration("ingestion.deadline"),
			Transactional: v.GetBool("ingestion.transactional"),
			Schedule:      strings.TrimSpace(v.GetString("ingestion.schedule")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Database.Port <= 0 {
		errs = append(errs, fmt.Errorf("database.port must be positive, got %d", c.Database.Port))
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if strings.TrimSpace(c.Scraper.OuterURL) == "" {
		errs = append(errs, errors.New("scraper.outer_url is required"))
	}
	if strings.TrimSpace(c.Scraper.FrameSelector) == "" {
		errs = append(errs, errors.New("scraper.frame_selector is required"))
	}
	if c.Scraper.HeaderRows < 0 {
		errs = append(errs, fmt.Errorf("scraper.header_rows must not be negative, got %d", c.Scraper.HeaderRows))
	}
	if c.Ingestion.Deadline <= 0 {
		errs = append(errs, errors.New("ingestion.deadline must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// Watch re-reads config.yaml on change and passes the scraper section to
// onChange. Invalid edits are logged and ignored. Without a config file there
// is nothing to watch and Watch returns false.
func (l *Loader) Watch(onChange func(ScraperConfig)) bool {
	if !l.fileUsed {
		return false
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		l.handleChange(e, onChange)
	})
	l.v.WatchConfig()
	return true
}

func (l *Loader) handleChange(e fsnotify.Event, onChange func(ScraperConfig)) {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
		return
	}
	cfg, err := l.Config()
	if err != nil {
		log.Printf("[CONFIG] ignoring change to %s: %v", e.Name, err)
		return
	}
	log.Printf("[CONFIG] %s changed, applying scraper settings", e.Name)
	onChange(cfg.Scraper)
}
