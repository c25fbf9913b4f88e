package config

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

// InitLogging points the standard logger at stdout, or at stdout plus a
// log file when LOG_FILE is set. The returned file is nil when logging
// only to stdout.
func InitLogging(cfg *Config) (*os.File, io.Writer) {
	if cfg.LogFile == "" {
		log.SetOutput(os.Stdout)
		return nil, os.Stdout
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), os.ModePerm); err != nil {
		log.Printf("Warning: failed to create log directory: %v", err)
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("Warning: failed to open log file: %v", err)
		log.SetOutput(os.Stdout)
		return nil, os.Stdout
	}

	writer := io.MultiWriter(os.Stdout, logFile)
	log.SetOutput(writer)
	return logFile, writer
}
