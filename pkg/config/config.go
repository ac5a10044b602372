package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v2"
)

// DefaultDispatchTimeout How long the printing tool is given to exit
const DefaultDispatchTimeout = 10 * time.Second

// DefaultExtension Only files with this extension are picked up when none is configured
const DefaultExtension = ".pdf"

// DefaultPrintSettings Passed to the printing tool as -print-settings
const DefaultPrintSettings = "noscale"

// Watcher backends
const (
	WatcherNotify   = "notify"
	WatcherFSNotify = "fsnotify"
)

const lockFileName = ".printagent.lock"

// New Create a new Config object
//
// Arguments:
//
// - configFile  string  The full path to the config file to load
//
// Return:
//
// - *Config A pointer to the loaded, validated configuration
// - error   wraps ErrInvalidConfig when the file is unusable
func New(configFile string) (c *Config, err error) {
	var f []byte
	if f, err = os.ReadFile(configFile); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}
	return Parse(f)
}

// Parse Build a Config from raw YAML
func Parse(data []byte) (c *Config, err error) {
	c = &Config{}
	if err = yaml.UnmarshalStrict(data, c); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}

	c.defaults()
	c.normalise()
	if err = c.Validate(); err != nil {
		return nil, err
	}

	c.printers = make(map[string]string, len(c.Folders))
	for _, f := range c.Folders {
		c.printers[f.Path] = f.Printer
	}
	return c, nil
}

func (c *Config) defaults() {
	if c.DispatchTimeoutSeconds == 0 {
		c.DispatchTimeoutSeconds = DefaultDispatchTimeout / time.Second
	}
	if c.Extension == "" {
		c.Extension = DefaultExtension
	}
	if !strings.HasPrefix(c.Extension, ".") {
		c.Extension = "." + c.Extension
	}
	if c.PrintSettings == "" {
		c.PrintSettings = DefaultPrintSettings
	}
	if c.Watcher == "" {
		c.Watcher = WatcherNotify
	}
}

func (c *Config) normalise() {
	for i := range c.Folders {
		expandHome(&c.Folders[i].Path)
		c.Folders[i].Path = NormalisePath(c.Folders[i].Path)
	}
	expandHome(&c.ArchiveFolder)
	c.ArchiveFolder = NormalisePath(c.ArchiveFolder)
	expandHome(&c.PrinterAgent)
	expandHome(&c.LogFile)
	expandHome(&c.LockFile)
	if c.LockFile == "" && c.ArchiveFolder != "" {
		c.LockFile = filepath.Join(c.ArchiveFolder, lockFileName)
	}
}

// NormalisePath Cleans the path and converts it to forward slashes so that
// folder lookups do not depend on how the path was written
func NormalisePath(path string) string {
	if path == "" {
		return ""
	}
	return filepath.ToSlash(filepath.Clean(strings.ReplaceAll(path, "\\", "/")))
}

func expandHome(path *string) {
	var p string = (*path)
	if len(p) == 0 || p[0] != '~' {
		return
	}
	if len(p) > 1 && p[1] != '/' {
		p = "~/" + p[1:]
	}

	dirname, _ := os.UserHomeDir()
	p = filepath.Join(dirname, strings.TrimPrefix(p, "~"))
	*path = p
}

// PrinterFor Look up the printer configured for the given folder
//
// The folder is normalised before lookup. An unknown folder returns an
// empty printer and false.
func (c *Config) PrinterFor(folder string) (printer string, ok bool) {
	printer, ok = c.printers[NormalisePath(folder)]
	return
}

// Settings The scalar settings in their runtime units
func (c *Config) Settings() Settings {
	return Settings{
		ArchiveFolder:   c.ArchiveFolder,
		PrinterAgent:    c.PrinterAgent,
		SettleDelay:     c.SettleDelayInSeconds * time.Second,
		DispatchTimeout: c.DispatchTimeoutSeconds * time.Second,
	}
}

// ShutdownGrace How long shutdown waits for in-flight workers
func (c *Config) ShutdownGrace() time.Duration {
	return c.ShutdownGraceInSeconds * time.Second
}

// SetupLogging Configure the global logger from the loaded configuration
func (c *Config) SetupLogging() (err error) {
	log.SetFormatter(&log.TextFormatter{
		DisableColors: !isatty.IsTerminal(os.Stderr.Fd()),
		FullTimestamp: true,
	})

	switch c.LogLevel {
	case "trace":
		log.SetReportCaller(true)
		log.SetLevel(log.TraceLevel)
	case "debug":
		log.SetReportCaller(true)
		log.SetLevel(log.DebugLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	if c.LogFile != "" {
		var f *os.File
		if f, err = os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640); err != nil {
			return fmt.Errorf("unable to open log file %s: %w", c.LogFile, err)
		}
		log.SetOutput(f)
	}
	return
}
