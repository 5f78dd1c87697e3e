package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// TestFunctional runs `check` over every testdata/<case> package and
// compares the exit code and report with the case's want file.
func TestFunctional(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	entries, err := os.ReadDir("testdata")
	if err != nil {
		t.Fatalf("Failed to read testdata: %v", err)
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		t.Run(name, func(t *testing.T) {
			dir, err := filepath.Abs(filepath.Join("testdata", name))
			if err != nil {
				t.Fatalf("Failed to get absolute path: %v", err)
			}
			wantBytes, err := os.ReadFile(filepath.Join(dir, "want"))
			if err != nil {
				t.Fatalf("Failed to read want file: %v", err)
			}
			want := strings.TrimSpace(string(wantBytes))

			var stdout, stderr bytes.Buffer
			code := runCheck([]string{dir}, &stdout, &stderr)

			// Diagnostics carry absolute paths
			out := strings.ReplaceAll(stdout.String(), dir+string(filepath.Separator), "")
			got := strings.TrimSpace("exit: " + strconv.Itoa(code) + "\n" + out)
			if got != want {
				t.Errorf("Output mismatch\n--- got ---\n%s\n--- want ---\n%s\n--- stderr ---\n%s", got, want, stderr.String())
			}
		})
	}
}

func TestCheckJSONReport(t *testing.T) {
	dir, err := filepath.Abs(filepath.Join("testdata", "not_found"))
	if err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer
	if code := runCheck([]string{"-format", "json", dir}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit code 1, got %d\n%s", code, stderr.String())
	}
	for _, s := range []string{`"package": "nf"`, `"code": "A001"`, `"failed": true`} {
		if !strings.Contains(stdout.String(), s) {
			t.Errorf("expected %s in report:\n%s", s, stdout.String())
		}
	}
}

func TestCheckWarningsAsErrors(t *testing.T) {
	dir, err := filepath.Abs(filepath.Join("testdata", "native"))
	if err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer
	if code := runCheck([]string{"-Werror", dir}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit code 1 with -Werror, got %d", code)
	}
}

func TestCheckSQLiteHistory(t *testing.T) {
	dir, err := filepath.Abs(filepath.Join("testdata", "hello"))
	if err != nil {
		t.Fatal(err)
	}
	db := filepath.Join(t.TempDir(), "history.db")
	for i := 0; i < 2; i++ {
		var stdout, stderr bytes.Buffer
		if code := runCheck([]string{"-sqlite", db, dir}, &stdout, &stderr); code != 0 {
			t.Fatalf("run %d: exit code %d\n%s", i, code, stderr.String())
		}
	}
	if _, err := os.Stat(db); err != nil {
		t.Fatalf("expected history database: %v", err)
	}
}

func TestCheckMissingDirectory(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := runCheck([]string{filepath.Join(t.TempDir(), "nope")}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stdout.String(), "fatal") {
		t.Errorf("expected a fatal line, got:\n%s", stdout.String())
	}
}
