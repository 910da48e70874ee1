package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// StationConfig seeds one bookable station.
type StationConfig struct {
	ID          int64   `yaml:"id"`
	Name        string  `yaml:"name"`
	Specs       string  `yaml:"specs"`
	RatePerHour float64 `yaml:"rate_per_hour"`
}

// BackupConfig controls periodic sqlite file backups.
type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	IntervalHours int    `yaml:"interval_hours"`
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Backup BackupConfig `yaml:"backup"`

	Redis struct {
		Address          string `yaml:"address"`
		Password         string `yaml:"password"`
		DB               int    `yaml:"db"`
		StatusTTLSeconds int    `yaml:"status_ttl_seconds"`
	} `yaml:"redis"`

	Sheets struct {
		CredentialsFile string `yaml:"credentials_file"`
		SpreadsheetID   string `yaml:"spreadsheet_id"`
		SheetName       string `yaml:"sheet_name"`
	} `yaml:"sheets"`

	Telegram struct {
		BotToken string  `yaml:"bot_token"`
		ChatIDs  []int64 `yaml:"chat_ids"`
	} `yaml:"telegram"`

	Sync struct {
		IntervalSeconds int     `yaml:"interval_seconds"`
		RatePerSecond   float64 `yaml:"rate_per_second"`
		Burst           int     `yaml:"burst"`
		MaxRetries      int     `yaml:"max_retries"`
	} `yaml:"sync"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Stations []StationConfig `yaml:"stations"`
}

// Load reads the YAML config at path. ${ENV_VAR} placeholders are expanded
// before parsing so credentials can stay out of the file.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/stationbook.db"
	}
	if cfg.Sheets.SheetName == "" {
		cfg.Sheets.SheetName = "Bookings"
	}
	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	if err := cfg.validateStations(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validateStations() error {
	seen := make(map[int64]struct{}, len(c.Stations))
	for _, st := range c.Stations {
		if st.ID <= 0 {
			return fmt.Errorf("station %q: id must be positive", st.Name)
		}
		if st.Name == "" {
			return fmt.Errorf("station %d: name is required", st.ID)
		}
		if st.RatePerHour < 0 {
			return fmt.Errorf("station %q: rate_per_hour must not be negative", st.Name)
		}
		if _, dup := seen[st.ID]; dup {
			return fmt.Errorf("duplicate station id %d", st.ID)
		}
		seen[st.ID] = struct{}{}
	}
	return nil
}

// SyncInterval returns how often the mirror worker polls the queue.
func (c *Config) SyncInterval() time.Duration {
	if c.Sync.IntervalSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.Sync.IntervalSeconds) * time.Second
}

// StatusCacheTTL returns how long cached station statuses stay fresh.
func (c *Config) StatusCacheTTL() time.Duration {
	if c.Redis.StatusTTLSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Redis.StatusTTLSeconds) * time.Second
}
