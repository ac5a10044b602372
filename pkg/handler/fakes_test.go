package handler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	c "github.com/mproffitt/printagent/pkg/config"
	"github.com/mproffitt/printagent/pkg/watcher"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// fakeSource hands out subscriptions whose events are injected by the test
type fakeSource struct {
	mu   sync.Mutex
	subs map[string]*fakeSubscription
}

func newFakeSource() *fakeSource {
	return &fakeSource{subs: make(map[string]*fakeSubscription)}
}

func (f *fakeSource) Subscribe(path, extension string) (watcher.Subscription, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", watcher.ErrFolderNotFound, err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &fakeSubscription{
		events: make(chan watcher.Event, 16),
		errors: make(chan error, 16),
	}
	f.subs[path] = s
	return s, nil
}

func (f *fakeSource) sub(path string) *fakeSubscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs[path]
}

type fakeSubscription struct {
	events chan watcher.Event
	errors chan error
	once   sync.Once
}

func (s *fakeSubscription) Events() <-chan watcher.Event { return s.events }
func (s *fakeSubscription) Errors() <-chan error         { return s.errors }
func (s *fakeSubscription) Close() error {
	s.once.Do(func() {
		close(s.events)
		close(s.errors)
	})
	return nil
}

// create writes name into folder and raises the matching creation event
func (s *fakeSubscription) create(t *testing.T, folder, name, content string) {
	t.Helper()
	full := filepath.Join(folder, name)
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	s.events <- watcher.Event{FileName: name, FullPath: full}
}

type call struct {
	path    string
	printer string
	timeout time.Duration
}

// fakePrinter records every dispatch and answers with result
type fakePrinter struct {
	mu     sync.Mutex
	calls  []call
	result func(path string) error
}

func (f *fakePrinter) Dispatch(ctx context.Context, path, printer string, timeout time.Duration) error {
	f.mu.Lock()
	f.calls = append(f.calls, call{path, printer, timeout})
	f.mu.Unlock()
	if f.result == nil {
		return nil
	}
	return f.result(path)
}

func (f *fakePrinter) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeNotifier) Notify(msg string) {
	f.mu.Lock()
	f.messages = append(f.messages, msg)
	f.mu.Unlock()
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

type fixture struct {
	gate    string
	archive string
	config  *c.Config
}

// newFixture builds a gate folder mapped to HP-1, an archive folder and a
// parsed configuration. extra is appended to the YAML.
func newFixture(t *testing.T, extra string) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{
		gate:    filepath.Join(root, "gate1"),
		archive: filepath.Join(root, "archive"),
	}
	for _, d := range []string{f.gate, f.archive} {
		if err := os.Mkdir(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	yaml := fmt.Sprintf("folders:\n  - folder: %s\n    printer: HP-1\narchiveFolder: %s\nprinterAgent: /usr/bin/true\n%s",
		f.gate, f.archive, extra)
	config, err := c.Parse([]byte(yaml))
	if err != nil {
		t.Fatal(err)
	}
	f.config = config
	return f
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func hasEntry(hook *test.Hook, level log.Level, fragment string) bool {
	for _, e := range hook.AllEntries() {
		if e.Level == level && strings.Contains(e.Message, fragment) {
			return true
		}
	}
	return false
}
