package config

import (
	"fmt"
	"strings"

	m "hg.sr.ht/~dchapes/mode"
)

// Validate Checks the configuration for values that would prevent the
// service from running
//
// Duplicate folders are rejected rather than resolved with a precedence
// rule. The archive folder must not be watched itself.
//
// Return:
//
// - error wraps ErrInvalidConfig and lists every problem found
func (c *Config) Validate() error {
	var problems []string = make([]string, 0)

	if len(c.Folders) == 0 {
		problems = append(problems, "at least one watched folder is required")
	}

	var seen map[string]int = make(map[string]int)
	for i, f := range c.Folders {
		if f.Path == "" {
			problems = append(problems, fmt.Sprintf("folders[%d]: folder is required", i))
			continue
		}
		if j, ok := seen[f.Path]; ok {
			problems = append(problems, fmt.Sprintf("folders[%d]: %s duplicates folders[%d]", i, f.Path, j))
			continue
		}
		seen[f.Path] = i
		if c.ArchiveFolder != "" && f.Path == c.ArchiveFolder {
			problems = append(problems, fmt.Sprintf("folders[%d]: %s is also the archive folder", i, f.Path))
		}
	}

	if c.ArchiveFolder == "" {
		problems = append(problems, "archiveFolder is required")
	}
	if c.PrinterAgent == "" {
		problems = append(problems, "printerAgent is required")
	}
	if c.SettleDelayInSeconds < 0 {
		problems = append(problems, "settleDelayInSeconds must not be negative")
	}
	if c.DispatchTimeoutSeconds < 0 {
		problems = append(problems, "dispatchTimeoutInSeconds must not be negative")
	}
	if c.ShutdownGraceInSeconds < 0 {
		problems = append(problems, "shutdownGraceInSeconds must not be negative")
	}
	if c.MaxWorkers < 0 {
		problems = append(problems, "maxWorkers must not be negative")
	}

	switch c.Watcher {
	case WatcherNotify, WatcherFSNotify:
	default:
		problems = append(problems, fmt.Sprintf("unknown watcher backend %q", c.Watcher))
	}

	if c.ArchiveMode != "" {
		if _, err := m.Parse(c.ArchiveMode); err != nil {
			problems = append(problems, fmt.Sprintf("archiveMode %q: %s", c.ArchiveMode, err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
