package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	WarningLog *log.Logger
	InfoLog    *log.Logger
	ErrorLog   *log.Logger

	// writer shared by the global and scoped loggers
	output io.Writer = os.Stderr

	scopedMu sync.Mutex
	scoped   map[string]*Loggers
)

// LogConfig holds logging configuration
type LogConfig struct {
	LogsEnabled bool
	LogsDir     string
	LogMaxSize  int
	LogMaxFiles int
	LogMaxAge   int
	LogCompress bool
}

// DefaultLogConfig returns the default logging configuration
func DefaultLogConfig() *LogConfig {
	return &LogConfig{
		LogsEnabled: true,
		LogsDir:     "",
		LogMaxSize:  10, // 10MB
		LogMaxFiles: 5,
		LogMaxAge:   30, // days
		LogCompress: true,
	}
}

// Default log filename, used when the configured directory is unusable.
var logFileName = filepath.Join(os.TempDir(), "bizdesk.log")

// GetConfigDir returns the path to the application's configuration directory
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".bizdesk"), nil
}

// GetLogDir returns the directory where logs should be stored
func GetLogDir(cfg *LogConfig) (string, error) {
	if cfg != nil && !cfg.LogsEnabled {
		return os.TempDir(), nil
	}

	if cfg != nil && cfg.LogsDir != "" {
		return cfg.LogsDir, nil
	}

	configDir, err := GetConfigDir()
	if err != nil {
		return os.TempDir(), fmt.Errorf("failed to get config directory: %w", err)
	}

	logDir := filepath.Join(configDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return os.TempDir(), fmt.Errorf("failed to create log directory: %w", err)
	}

	return logDir, nil
}

// GetLogFilePath returns the full path to the log file
func GetLogFilePath(cfg *LogConfig) (string, error) {
	logDir, err := GetLogDir(cfg)
	if err != nil {
		return logFileName, err
	}
	return filepath.Join(logDir, "bizdesk.log"), nil
}

// Loggers is a prefixed logger triplet for one component, e.g. a list page.
type Loggers struct {
	InfoLog    *log.Logger
	WarningLog *log.Logger
	ErrorLog   *log.Logger
}

// Scoped returns loggers whose lines are prefixed with [name]. They share the
// global writer, so they follow Initialize and Close.
func Scoped(name string) *Loggers {
	scopedMu.Lock()
	defer scopedMu.Unlock()

	if l, ok := scoped[name]; ok {
		return l
	}
	l := newLoggers(output, fmt.Sprintf("[%s] ", name))
	scoped[name] = l
	return l
}

func newLoggers(w io.Writer, prefix string) *Loggers {
	return &Loggers{
		InfoLog:    log.New(w, prefix+"INFO: ", log.Ldate|log.Ltime|log.Lshortfile),
		WarningLog: log.New(w, prefix+"WARNING: ", log.Ldate|log.Ltime|log.Lshortfile),
		ErrorLog:   log.New(w, prefix+"ERROR: ", log.Ldate|log.Ltime|log.Lshortfile),
	}
}

var globalLogFile io.Closer

func init() {
	scoped = make(map[string]*Loggers)

	// Default loggers so log calls don't panic in tests or before Initialize.
	InfoLog = log.New(os.Stderr, "INFO: ", log.Ldate|log.Ltime)
	WarningLog = log.New(os.Stderr, "WARNING: ", log.Ldate|log.Ltime)
	ErrorLog = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime)
}

// Initialize should be called once at the beginning of the program to set up logging.
// defer Close() after calling this function. A nil cfg uses DefaultLogConfig.
func Initialize(cfg *LogConfig) {
	if cfg == nil {
		cfg = DefaultLogConfig()
	}

	logFilePath, err := GetLogFilePath(cfg)
	if err != nil {
		fmt.Printf("Warning: Using default log file location due to error: %v\n", err)
		logFilePath = logFileName
	}

	writer := createRotatingWriter(logFilePath, cfg)
	SetOutput(writer)

	if closer, ok := writer.(io.Closer); ok {
		globalLogFile = closer
	}
	logFileName = logFilePath
}

// SetOutput points every logger, scoped ones included, at w.
func SetOutput(w io.Writer) {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	output = w
	InfoLog = log.New(w, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	WarningLog = log.New(w, "WARNING: ", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLog = log.New(w, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)

	scopedMu.Lock()
	defer scopedMu.Unlock()
	for _, l := range scoped {
		l.InfoLog.SetOutput(w)
		l.WarningLog.SetOutput(w)
		l.ErrorLog.SetOutput(w)
	}
}

// createRotatingWriter creates a writer that handles log rotation based on config
func createRotatingWriter(logFilePath string, cfg *LogConfig) io.Writer {
	if cfg == nil || cfg.LogMaxSize <= 0 {
		logDir := filepath.Dir(logFilePath)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			panic(fmt.Sprintf("could not create log directory: %s", err))
		}

		f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			panic(fmt.Sprintf("could not open log file: %s", err))
		}
		return f
	}

	return &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    cfg.LogMaxSize,  // megabytes
		MaxBackups: cfg.LogMaxFiles, // number of backups
		MaxAge:     cfg.LogMaxAge,   // days
		Compress:   cfg.LogCompress, // compress rotated files
		LocalTime:  true,
	}
}

// Close flushes and closes the log file and reports where logs went.
func Close() {
	if globalLogFile != nil {
		_ = globalLogFile.Close()
		globalLogFile = nil
	}
	fmt.Println("wrote logs to " + logFileName)
}

// Every is used to log at most once every timeout duration.
type Every struct {
	timeout time.Duration
	timer   *time.Timer
}

func NewEvery(timeout time.Duration) *Every {
	return &Every{timeout: timeout}
}

// ShouldLog returns true if the timeout has passed since the last log.
func (e *Every) ShouldLog() bool {
	if e.timer == nil {
		e.timer = time.NewTimer(e.timeout)
		return true
	}

	select {
	case <-e.timer.C:
		e.timer.Reset(e.timeout)
		return true
	default:
		return false
	}
}
