/*
Package logger provides named logrus loggers with file rotation.
Every named logger writes to its own rotating file under the log
directory (app.log, jobs.log, server.log, ...) and optionally to the
console. Rotation is handled by lumberjack.
*/
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds the logger configuration, read from environment variables.
type Config struct {
	Level         string // debug, info, warn, error, fatal (default: info)
	Format        string // json or text (default: text)
	LogDir        string // directory for log files (default: ./logs)
	EnableConsole string // log to stdout as well (default: true)
	EnableFile    string // log to rotating files (default: true)
	MaxSize       string // max file size in MB before rotation (default: 100)
	MaxBackups    string // number of rotated files to keep (default: 10)
	MaxAge        string // days to keep rotated files (default: 30)
	Compress      string // gzip rotated files (default: true)
}

// NewConfig builds a Config from environment variables with defaults.
func NewConfig() *Config {
	return &Config{
		Level:         getEnv("LOG_LEVEL", "info"),
		Format:        getEnv("LOG_FORMAT", "text"),
		LogDir:        getEnv("LOG_DIR", "./logs"),
		EnableConsole: getEnv("LOG_ENABLE_CONSOLE", "true"),
		EnableFile:    getEnv("LOG_ENABLE_FILE", "true"),
		MaxSize:       getEnv("LOG_MAX_SIZE", "100"),
		MaxBackups:    getEnv("LOG_MAX_BACKUPS", "10"),
		MaxAge:        getEnv("LOG_MAX_AGE", "30"),
		Compress:      getEnv("LOG_COMPRESS", "true"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

var (
	loggers   = make(map[string]*logrus.Logger)
	loggersMu sync.Mutex
	globalCfg *Config
)

// InitLogger stores the configuration used by all subsequently created loggers.
func InitLogger(cfg *Config) error {
	if cfg == nil {
		cfg = &Config{}
	}
	globalCfg = cfg
	return nil
}

// GetLogger returns the logger for the given name, creating it on first use.
// Each name gets its own rotating log file.
func GetLogger(name string) *logrus.Logger {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if l, ok := loggers[name]; ok {
		return l
	}

	cfg := globalCfg
	if cfg == nil {
		cfg = &Config{}
	}

	l := logrus.New()
	l.SetLevel(parseLogLevel(cfg.Level))
	l.SetFormatter(createFormatter(cfg.Format))

	var writers []io.Writer
	if parseBool(cfg.EnableConsole, true) {
		writers = append(writers, os.Stdout)
	}
	if parseBool(cfg.EnableFile, true) {
		logDir := cfg.LogDir
		if logDir == "" {
			logDir = "./logs"
		}
		if err := os.MkdirAll(logDir, 0o755); err == nil {
			writers = append(writers, &lumberjack.Logger{
				Filename:   filepath.Join(logDir, fmt.Sprintf("%s.log", name)),
				MaxSize:    parseInt(cfg.MaxSize, 100),
				MaxBackups: parseInt(cfg.MaxBackups, 10),
				MaxAge:     parseInt(cfg.MaxAge, 30),
				Compress:   parseBool(cfg.Compress, true),
				LocalTime:  true,
			})
		} else {
			l.WithError(err).Warnf("cannot create log directory %s, file logging disabled", logDir)
		}
	}
	if len(writers) == 1 {
		l.SetOutput(writers[0])
	} else if len(writers) > 1 {
		l.SetOutput(io.MultiWriter(writers...))
	}

	loggers[name] = l
	return l
}

// GetAppLogger returns the main application logger (app.log).
func GetAppLogger() *logrus.Logger {
	return GetLogger("app")
}

func parseLogLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

func parseBool(s string, defaultValue bool) bool {
	if s == "" {
		return defaultValue
	}
	switch strings.ToLower(s) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}

func parseInt(s string, defaultValue int) int {
	if s == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return n
}

func createFormatter(format string) logrus.Formatter {
	if strings.ToLower(format) == "json" {
		return &logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		}
	}
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	}
}
