package config

// Значения по умолчанию для необязательных параметров конфигурации.
const (
	DefaultConfigFile = "config.yml"

	DefaultSessionFile = "tg.session"

	DefaultMaxRetries    = 5
	DefaultActionPauseMS = 350

	DefaultDialogPageSize  = 100
	DefaultHistoryPageSize = 100

	DefaultBackupDir = "backups"

	DefaultLogLevel = "info"
)
