// Package e2e contains end-to-end tests for the shortgen CLI.
package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// getBinaryName returns the test binary name with platform-specific extension
func getBinaryName() string {
	if runtime.GOOS == "windows" {
		return "shortgen-test.exe"
	}
	return "shortgen-test"
}

// buildCLI returns the binary to run. SHORTGEN_BINARY points at a pre-built
// one; otherwise the CLI is built into the project root and removed on cleanup.
func buildCLI(t *testing.T) string {
	t.Helper()
	if os.Getenv("SHORTGEN_E2E") != "1" {
		t.Skip("Skipping E2E test (set SHORTGEN_E2E=1 to run)")
	}
	if path := os.Getenv("SHORTGEN_BINARY"); path != "" {
		return path
	}

	root := getProjectRoot(t)
	buildCmd := exec.Command("go", "build", "-o", getBinaryName(), "./cmd/shortgen")
	buildCmd.Dir = root
	if out, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build CLI: %v\n%s", err, out)
	}
	binary := filepath.Join(root, getBinaryName())
	t.Cleanup(func() { os.Remove(binary) })
	return binary
}

func requireFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available")
	}
}

// run executes the CLI in dir and returns stdout, stderr and the exit error.
func run(t *testing.T, binary, dir string, args ...string) (string, string, error) {
	t.Helper()
	cmd := exec.Command(binary, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "LANG=C")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// writeConfig writes a config that keeps every path inside dir and only
// enables the mock platform.
func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	cfg := `video:
  output_directory: ` + filepath.Join(dir, "output") + `
  temp_directory: ` + filepath.Join(dir, "temp") + `
  duration_seconds: 10
  font_size: 72
platforms:
  youtube:
    enabled: false
  tiktok:
    enabled: false
  mock:
    enabled: true
    max_daily_uploads: 1
content:
  catalog_path: ` + filepath.Join(dir, "catalog.csv") + `
  history_path: ` + filepath.Join(dir, "history.db") + `
`
	path := filepath.Join(dir, "shortgen.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestVersionCommand tests the version subcommand
func TestVersionCommand(t *testing.T) {
	binary := buildCLI(t)

	stdout, stderr, err := run(t, binary, t.TempDir(), "version")
	if err != nil {
		t.Fatalf("Version command failed: %v\nstderr: %s", err, stderr)
	}
	if !strings.Contains(stdout, "shortgen") {
		t.Errorf("Version output should contain 'shortgen': %s", stdout)
	}
}

// TestGenerateAndValidate generates a video and validates it with a second invocation
func TestGenerateAndValidate(t *testing.T) {
	binary := buildCLI(t)
	requireFFmpeg(t)

	dir := t.TempDir()
	cfg := writeConfig(t, dir)

	stdout, stderr, err := run(t, binary, dir, "-c", cfg, "generate", "--duration", "10", "E2E Title")
	if err != nil {
		t.Fatalf("Generate command failed: %v\nstdout: %s\nstderr: %s", err, stdout, stderr)
	}
	if !strings.HasPrefix(stdout, "VALID") {
		t.Errorf("Generate output = %q, want VALID summary", stdout)
	}

	output := filepath.Join(dir, "output", "E2ETitle.mp4")
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("Output file not found: %v", err)
	}
	if len(data) < 8 || string(data[4:8]) != "ftyp" {
		t.Error("Invalid MP4 file")
	}

	stdout, stderr, err = run(t, binary, dir, "-c", cfg, "validate", output)
	if err != nil {
		t.Fatalf("Validate command failed: %v\nstdout: %s\nstderr: %s", err, stdout, stderr)
	}
	if !strings.Contains(stdout, "1080x1920") {
		t.Errorf("Validate output = %q", stdout)
	}
}

// TestValidateRejectsGarbage checks the exit status for an unreadable file
func TestValidateRejectsGarbage(t *testing.T) {
	binary := buildCLI(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "garbage.mp4")
	if err := os.WriteFile(path, []byte("not a video"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := run(t, binary, dir, "validate", path); err == nil {
		t.Error("Expected validate to fail for garbage input")
	}
}

// TestBatchCommand runs a batch with one supported and one unsupported template
func TestBatchCommand(t *testing.T) {
	binary := buildCLI(t)
	requireFFmpeg(t)

	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	specs := `specs:
  - title: Batch One
    duration_seconds: 10
  - title: Batch Two
    template: title_card
`
	specsPath := filepath.Join(dir, "specs.yaml")
	if err := os.WriteFile(specsPath, []byte(specs), 0644); err != nil {
		t.Fatal(err)
	}
	report := filepath.Join(dir, "report.md")

	_, stderr, err := run(t, binary, dir, "-c", cfg, "batch", "-r", report, specsPath)
	if err == nil {
		t.Error("Expected non-zero exit when a spec fails")
	}

	data, rerr := os.ReadFile(report)
	if rerr != nil {
		t.Fatalf("Report not written: %v\nstderr: %s", rerr, stderr)
	}
	text := string(data)
	if !strings.Contains(text, "1 succeeded, 1 failed") {
		t.Errorf("Report missing counts:\n%s", text)
	}
	if !strings.Contains(text, "FAILED") {
		t.Errorf("Report missing failed row:\n%s", text)
	}
}

// TestScheduleNow runs one daily cycle against the mock platform
func TestScheduleNow(t *testing.T) {
	binary := buildCLI(t)
	requireFFmpeg(t)

	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	catalog := "id,platform,schedule_type,template,title,background_color,text_color,audio_file,tags\n" +
		"tip-1,all,daily,simple_text,Daily Tip,#1E1E1E,#FFFFFF,,go;shorts\n"
	if err := os.WriteFile(filepath.Join(dir, "catalog.csv"), []byte(catalog), 0644); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, err := run(t, binary, dir, "-c", cfg, "schedule", "--now")
	if err != nil {
		t.Fatalf("Schedule command failed: %v\nstdout: %s\nstderr: %s", err, stdout, stderr)
	}
	if !strings.Contains(stdout, "UPLOADED") || !strings.Contains(stdout, "tip-1") {
		t.Errorf("Schedule output = %q", stdout)
	}

	// The daily limit is one, so a second run skips.
	stdout, _, err = run(t, binary, dir, "-c", cfg, "schedule", "--now")
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if !strings.Contains(stdout, "SKIPPED") {
		t.Errorf("Second run output = %q, want SKIPPED", stdout)
	}
}

func getProjectRoot(t *testing.T) string {
	// Start from current working directory and find go.mod
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("Could not find project root (go.mod)")
		}
		dir = parent
	}
}
