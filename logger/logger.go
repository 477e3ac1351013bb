package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity of a log message.
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelNames = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
	FATAL: "FATAL",
}

var levelColors = map[LogLevel]string{
	DEBUG: "\033[36m", // Cyan
	INFO:  "\033[32m", // Green
	WARN:  "\033[33m", // Yellow
	ERROR: "\033[31m", // Red
	FATAL: "\033[35m", // Magenta
}

const resetColor = "\033[0m"

// ParseLevel maps a level name from configuration to a LogLevel.
// Unknown names fall back to INFO.
func ParseLevel(name string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return DEBUG
	case "WARN":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

// Logger writes leveled log entries to one or more destinations.
type Logger struct {
	level    LogLevel
	writers  []io.Writer
	mu       sync.Mutex
	useColor bool
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Config describes how the logger should be initialised.
type Config struct {
	Level    LogLevel
	LogDir   string
	MaxAge   int // days to keep daily log files
	UseColor bool
}

// Initialize boots the global logger instance if it has not been created yet.
func Initialize(config Config) error {
	var err error
	once.Do(func() {
		defaultLogger = &Logger{
			level:    config.Level,
			writers:  []io.Writer{os.Stdout},
			useColor: config.UseColor,
		}

		if config.LogDir != "" {
			if err = os.MkdirAll(config.LogDir, 0755); err != nil {
				return
			}

			logFile, fileErr := openDailyFile(config.LogDir)
			if fileErr != nil {
				err = fileErr
				return
			}

			defaultLogger.writers = append(defaultLogger.writers, logFile)

			go pruneOldFiles(config.LogDir, config.MaxAge)
		}
	})

	return err
}

// openDailyFile opens (or creates) the log file for the current day.
func openDailyFile(logDir string) (*os.File, error) {
	day := time.Now().UTC().Format("2006-01-02")
	logPath := filepath.Join(logDir, fmt.Sprintf("telemetry-%s.log", day))
	return os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// pruneOldFiles removes daily log files older than the retention period.
func pruneOldFiles(logDir string, maxAge int) {
	if maxAge <= 0 {
		return
	}

	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		files, _ := filepath.Glob(filepath.Join(logDir, "telemetry-*.log"))
		for _, file := range files {
			info, err := os.Stat(file)
			if err != nil {
				continue
			}
			if time.Since(info.ModTime()) > time.Duration(maxAge)*24*time.Hour {
				os.Remove(file)
			}
		}
	}
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().UTC().Format("2006-01-02 15:04:05.000")
	levelName := levelNames[level]
	message := fmt.Sprintf(format, args...)

	for i, writer := range l.writers {
		var line string
		if i == 0 && l.useColor { // colour only on stdout
			line = fmt.Sprintf("%s [%s] %s%s%s\n",
				timestamp, levelName, levelColors[level], message, resetColor)
		} else {
			line = fmt.Sprintf("%s [%s] %s\n", timestamp, levelName, message)
		}
		writer.Write([]byte(line))
	}

	if level == FATAL {
		os.Exit(1)
	}
}

// Package-level helpers for the default logger. They fall back to the
// standard library logger when Initialize has not been called (tests).

func Debug(format string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.log(DEBUG, format, args...)
	}
}

func Info(format string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.log(INFO, format, args...)
	} else {
		log.Printf("[INFO] "+format, args...)
	}
}

func Warn(format string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.log(WARN, format, args...)
	} else {
		log.Printf("[WARN] "+format, args...)
	}
}

func Error(format string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.log(ERROR, format, args...)
	} else {
		log.Printf("[ERROR] "+format, args...)
	}
}

func Fatal(format string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.log(FATAL, format, args...)
	} else {
		log.Fatalf("[FATAL] "+format, args...)
	}
}

// WithFields attaches structured fields to the next log entry.
func WithFields(fields map[string]interface{}) *LogEntry {
	return &LogEntry{fields: fields, logger: defaultLogger}
}

// LogEntry is a structured log entry builder.
type LogEntry struct {
	fields map[string]interface{}
	logger *Logger
}

func (e *LogEntry) Debug(format string, args ...interface{}) { e.emit(DEBUG, format, args...) }
func (e *LogEntry) Info(format string, args ...interface{})  { e.emit(INFO, format, args...) }
func (e *LogEntry) Warn(format string, args ...interface{})  { e.emit(WARN, format, args...) }
func (e *LogEntry) Error(format string, args ...interface{}) { e.emit(ERROR, format, args...) }

// Log emits a message with an explicit level.
func (e *LogEntry) Log(level LogLevel, format string, args ...interface{}) {
	e.emit(level, format, args...)
}

func (e *LogEntry) emit(level LogLevel, format string, args ...interface{}) {
	if e.logger == nil || level < e.logger.level {
		return
	}

	message := fmt.Sprintf(format, args...)

	if len(e.fields) > 0 {
		var fieldStrs []string
		for k, v := range e.fields {
			fieldStrs = append(fieldStrs, fmt.Sprintf("%s=%v", k, v))
		}
		message = fmt.Sprintf("%s | %s", message, strings.Join(fieldStrs, ", "))
	}

	e.logger.log(level, "%s", message)
}

// SetLevel updates the global logging level.
func SetLevel(level LogLevel) {
	if defaultLogger != nil {
		defaultLogger.mu.Lock()
		defaultLogger.level = level
		defaultLogger.mu.Unlock()
	}
}
