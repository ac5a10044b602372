package config

import (
	"errors"
	"time"
)

// ErrInvalidConfig Returned when the configuration is missing required
// values or cannot be parsed. Always fatal at startup.
var ErrInvalidConfig = errors.New("invalid configuration")

// Folder A watched folder and the printer its documents are sent to
type Folder struct {
	Path    string `yaml:"folder"`
	Printer string `yaml:"printer"`
}

// Config Global config for the application
//
// Built once by New and read-only afterwards.
type Config struct {
	Folders                []Folder      `yaml:"folders"`
	ArchiveFolder          string        `yaml:"archiveFolder"`
	PrinterAgent           string        `yaml:"printerAgent"`
	SettleDelayInSeconds   time.Duration `yaml:"settleDelayInSeconds"`
	DispatchTimeoutSeconds time.Duration `yaml:"dispatchTimeoutInSeconds"`
	Extension              string        `yaml:"extension"`
	PrintSettings          string        `yaml:"printSettings"`
	Watcher                string        `yaml:"watcher"`
	MaxWorkers             int           `yaml:"maxWorkers"`
	ShutdownGraceInSeconds time.Duration `yaml:"shutdownGraceInSeconds"`
	StrictExitCode         bool          `yaml:"strictExitCode"`
	RequireMimeType        string        `yaml:"requireMimeType"`
	ArchiveMode            string        `yaml:"archiveMode"`
	Notifications          bool          `yaml:"notifications"`
	LockFile               string        `yaml:"lockFile"`
	LogLevel               string        `yaml:"logLevel"`
	LogFile                string        `yaml:"logFile"`

	printers map[string]string
}

// Settings The scalar values every stage of the pipeline reads
type Settings struct {
	ArchiveFolder   string
	PrinterAgent    string
	SettleDelay     time.Duration
	DispatchTimeout time.Duration
}
