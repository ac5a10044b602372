package processing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeTool creates an executable shell script that records its arguments
// to args.txt next to it before running body
func writeTool(t *testing.T, body string) (tool, argsFile string) {
	t.Helper()
	dir := t.TempDir()
	tool = filepath.Join(dir, "printtool")
	argsFile = filepath.Join(dir, "args.txt")
	script := "#!/bin/sh\nfor a in \"$@\"; do echo \"$a\"; done > " + argsFile + "\n" + body + "\n"
	if err := os.WriteFile(tool, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return tool, argsFile
}

func readArgs(t *testing.T, argsFile string) []string {
	t.Helper()
	data, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestDispatchSuccess(t *testing.T) {
	tool, argsFile := writeTool(t, "exit 0")
	a := &Agent{Executable: tool, Settings: "noscale"}

	if err := a.Dispatch(context.Background(), "/gate1/doc.pdf", "HP-1", 5*time.Second); err != nil {
		t.Fatal(err)
	}

	got := readArgs(t, argsFile)
	want := []string{"/gate1/doc.pdf", "-print-to", "HP-1", "-print-settings", "noscale"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("args = %q, want %q", got, want)
	}
}

func TestDispatchWithoutPrinterOmitsPrintTo(t *testing.T) {
	tool, argsFile := writeTool(t, "exit 0")
	a := &Agent{Executable: tool, Settings: "noscale"}

	if err := a.Dispatch(context.Background(), "/gate9/doc.pdf", "", 5*time.Second); err != nil {
		t.Fatal(err)
	}
	for _, arg := range readArgs(t, argsFile) {
		if arg == "-print-to" {
			t.Fatal("unexpected -print-to for unmapped folder")
		}
	}
}

func TestDispatchTimeout(t *testing.T) {
	tool, _ := writeTool(t, "exec sleep 3")
	a := &Agent{Executable: tool, Settings: "noscale"}

	start := time.Now()
	err := a.Dispatch(context.Background(), "/gate1/doc.pdf", "HP-1", 100*time.Millisecond)
	if !errors.Is(err, ErrDispatchTimeout) {
		t.Fatalf("expected ErrDispatchTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("dispatch blocked for %s past its timeout", elapsed)
	}
}

func TestDispatchLaunchFailure(t *testing.T) {
	a := &Agent{Executable: filepath.Join(t.TempDir(), "missing"), Settings: "noscale"}
	err := a.Dispatch(context.Background(), "/gate1/doc.pdf", "HP-1", time.Second)
	if !errors.Is(err, ErrDispatchLaunch) {
		t.Fatalf("expected ErrDispatchLaunch, got %v", err)
	}
}

func TestDispatchCancelledContextDoesNotLaunch(t *testing.T) {
	tool, argsFile := writeTool(t, "exit 0")
	a := &Agent{Executable: tool, Settings: "noscale"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := a.Dispatch(ctx, "/gate1/doc.pdf", "HP-1", time.Second); !errors.Is(err, ErrDispatchLaunch) {
		t.Fatalf("expected ErrDispatchLaunch, got %v", err)
	}
	if _, err := os.Stat(argsFile); !os.IsNotExist(err) {
		t.Fatal("printing tool should not have run")
	}
}

func TestDispatchExitStatus(t *testing.T) {
	tool, _ := writeTool(t, "exit 3")

	lenient := &Agent{Executable: tool, Settings: "noscale"}
	if err := lenient.Dispatch(context.Background(), "/g/doc.pdf", "P", 5*time.Second); err != nil {
		t.Fatalf("non-strict agent should confirm any exit, got %v", err)
	}

	strict := &Agent{Executable: tool, Settings: "noscale", StrictExit: true}
	if err := strict.Dispatch(context.Background(), "/g/doc.pdf", "P", 5*time.Second); !errors.Is(err, ErrDispatchFailed) {
		t.Fatalf("expected ErrDispatchFailed, got %v", err)
	}
}

func TestDispatchToolExitsWhileHelperHoldsOutput(t *testing.T) {
	tool, _ := writeTool(t, "sleep 3 &\nexit 0")
	a := &Agent{Executable: tool, Settings: "noscale"}

	start := time.Now()
	if err := a.Dispatch(context.Background(), "/gate1/doc.pdf", "HP-1", 2*time.Second); err != nil {
		t.Fatalf("tool exited immediately, expected success, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("dispatch waited %s for a helper process", elapsed)
	}
}

func TestDispatchLongOutputLine(t *testing.T) {
	tool, _ := writeTool(t, "head -c 200000 /dev/zero | tr '\\000' 'a'\necho\nexit 0")
	a := &Agent{Executable: tool, Settings: "noscale"}

	if err := a.Dispatch(context.Background(), "/gate1/doc.pdf", "HP-1", 5*time.Second); err != nil {
		t.Fatalf("expected success with long output, got %v", err)
	}
}
