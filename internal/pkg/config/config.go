package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// TelegramConfig — учетные данные и сессия Telegram API.
type TelegramConfig struct {
	APIID       int    `yaml:"api_id" env:"API_ID"`
	APIHash     string `yaml:"api_hash" env:"API_HASH"`
	PhoneNumber string `yaml:"phone_number" env:"PHONE_NUMBER"`
	SessionFile string `yaml:"session_file" env:"SESSION_FILE"`
}

// CleaningConfig — параметры массовой очистки аккаунта.
type CleaningConfig struct {
	DryRun        bool `yaml:"dry_run" env:"DRY_RUN"`
	DialogLimit   int  `yaml:"dialog_limit" env:"DIALOG_LIMIT"`
	MaxRetries    int  `yaml:"max_retries" env:"MAX_RETRIES"`
	ActionPauseMS int  `yaml:"action_pause_ms" env:"ACTION_PAUSE_MS"`
	PageSize      int  `yaml:"page_size" env:"PAGE_SIZE"`
}

// BackupConfig — параметры резервного копирования диалогов.
type BackupConfig struct {
	OutputDir string `yaml:"output_dir" env:"OUTPUT_DIR"`
	PageSize  int    `yaml:"page_size" env:"PAGE_SIZE"`
}

// LoggingConfig — параметры логирования.
type LoggingConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
}

// Config — полная конфигурация приложения.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram" envPrefix:"TELEGRAM_"`
	Cleaning CleaningConfig `yaml:"cleaning" envPrefix:"CLEANING_"`
	Backup   BackupConfig   `yaml:"backup" envPrefix:"BACKUP_"`
	Logging  LoggingConfig  `yaml:"logging" envPrefix:"LOG_"`
}

// Load читает конфигурацию в три слоя: значения по умолчанию,
// YAML-файл по пути path (отсутствие файла не является ошибкой)
// и переменные окружения, которые имеют высший приоритет.
// Перед разбором окружения подхватывается .env, если он есть.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Telegram: TelegramConfig{
			SessionFile: DefaultSessionFile,
		},
		Cleaning: CleaningConfig{
			MaxRetries:    DefaultMaxRetries,
			ActionPauseMS: DefaultActionPauseMS,
			PageSize:      DefaultDialogPageSize,
		},
		Backup: BackupConfig{
			OutputDir: DefaultBackupDir,
			PageSize:  DefaultHistoryPageSize,
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Файл необязателен: конфигурация может приходить из окружения.
	default:
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	_ = godotenv.Load()

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	return cfg, nil
}

// Validate проверяет согласованность конфигурации.
func (c *Config) Validate() error {
	if c.Telegram.APIID <= 0 {
		return fmt.Errorf("telegram api_id is required")
	}
	if c.Telegram.APIHash == "" {
		return fmt.Errorf("telegram api_hash is required")
	}
	if c.Telegram.PhoneNumber == "" {
		return fmt.Errorf("telegram phone_number is required")
	}
	if c.Telegram.SessionFile == "" {
		return fmt.Errorf("telegram session_file must not be empty")
	}

	if c.Cleaning.DialogLimit < 0 {
		return fmt.Errorf("cleaning dialog_limit must not be negative")
	}
	if c.Cleaning.MaxRetries < 1 {
		return fmt.Errorf("cleaning max_retries must be at least 1")
	}
	if c.Cleaning.ActionPauseMS < 0 {
		return fmt.Errorf("cleaning action_pause_ms must not be negative")
	}
	if c.Cleaning.PageSize < 1 {
		return fmt.Errorf("cleaning page_size must be at least 1")
	}

	if c.Backup.OutputDir == "" {
		return fmt.Errorf("backup output_dir must not be empty")
	}
	if c.Backup.PageSize < 1 {
		return fmt.Errorf("backup page_size must be at least 1")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}

	return nil
}

// ActionPause возвращает паузу между действиями как time.Duration.
func (c *Config) ActionPause() time.Duration {
	return time.Duration(c.Cleaning.ActionPauseMS) * time.Millisecond
}
