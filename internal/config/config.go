package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		Device
		Export
		Context
		History
		HTTP
		Watch
		Logging
	}

	Device struct {
		AdbPath   string // Explicit adb binary; empty means discover (bundled dir, then PATH)
		UseRoot   bool   // Try the root-access tier before falling back to backups
		BackupDir string // Remote directory holding .mrpro backup archives
		BooksDir  string // Remote root scanned into the file index
	}
	Export struct {
		Dir     string // Directory receiving per-book HTML pages
		TempDir string // Local scratch dir for pulled files
	}
	Context struct {
		Disabled bool // Skip book pulls and excerpt extraction entirely
		Padding  int  // Characters of surrounding text on each side of a match
	}
	History struct {
		Path string // Watermark store location
	}
	HTTP struct {
		Host string
		Port int32
	}
	Watch struct {
		Schedule string // Cron format: "0 * * * *" = hourly
	}
	Logging struct {
		Enabled bool
		File    string
	}
)

// ShutdownTimeout bounds graceful shutdown of the serve command.
const ShutdownTimeout = 2 * time.Second

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("adb_path", "")
	v.SetDefault("use_root", true)
	v.SetDefault("backup_dir", DefaultBackupDir)
	v.SetDefault("books_dir", DefaultBooksDir)

	v.SetDefault("export_dir", "./MoonReader_notes")
	v.SetDefault("temp_dir", "./temp")

	v.SetDefault("disable_context", false)
	v.SetDefault("context_chars", 400)

	v.SetDefault("history_path", DefaultHistoryPath)

	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 8189)

	v.SetDefault("watch_schedule", "0 * * * *") // Hourly at :00

	v.SetDefault("enable_logging", true)
	v.SetDefault("log_file", "./moonexport.log")

	return &Config{
		Device: Device{
			AdbPath:   v.GetString("ADB_PATH"),
			UseRoot:   v.GetBool("USE_ROOT"),
			BackupDir: v.GetString("BACKUP_DIR"),
			BooksDir:  v.GetString("BOOKS_DIR"),
		},
		Export: Export{
			Dir:     v.GetString("EXPORT_DIR"),
			TempDir: v.GetString("TEMP_DIR"),
		},
		Context: Context{
			Disabled: v.GetBool("DISABLE_CONTEXT"),
			Padding:  v.GetInt("CONTEXT_CHARS"),
		},
		History: History{
			Path: v.GetString("HISTORY_PATH"),
		},
		HTTP: HTTP{
			Host: v.GetString("HOST"),
			Port: v.GetInt32("PORT"),
		},
		Watch: Watch{
			Schedule: v.GetString("WATCH_SCHEDULE"),
		},
		Logging: Logging{
			Enabled: v.GetBool("ENABLE_LOGGING"),
			File:    v.GetString("LOG_FILE"),
		},
	}
}
