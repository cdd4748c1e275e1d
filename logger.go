package phonecrawler

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// defaultLogger writes to both a dated file under storage/logs/<name> and the
// terminal.
type defaultLogger struct {
	logger *log.Logger
}

// newDefaultLogger creates a new instance of defaultLogger.
func newDefaultLogger(name string) *defaultLogger {
	currentDate := time.Now().Format("2006-01-02")
	directory := filepath.Join("storage", "logs", name)
	err := os.MkdirAll(directory, 0755)
	if err != nil {
		log.Fatalf("Failed to create log directory: %v", err)
	}

	logFilePath := filepath.Join(directory, currentDate+"_application.log")

	// Open the log file in append mode, create if it doesn't exist.
	file, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	multiWriter := io.MultiWriter(file, os.Stdout)

	return &defaultLogger{
		logger: log.New(multiWriter, "⏱️ ", log.LstdFlags),
	}
}

func (l *defaultLogger) Info(format string, args ...interface{}) {
	l.logger.Printf("📢 INFO: "+format, args...)
}

func (l *defaultLogger) Warn(format string, args ...interface{}) {
	l.logger.Printf("⚠️ WARN: "+format, args...)
}

func (l *defaultLogger) Error(format string, args ...interface{}) {
	l.logger.Printf("🛑 ERROR: "+format, args...)
}

func (l *defaultLogger) Fatal(format string, args ...interface{}) {
	l.logger.Fatalf("🚨 FATAL: "+format, args...)
}

func (l *defaultLogger) Printf(format string, args ...interface{}) {
	l.logger.Printf(format, args...)
}
