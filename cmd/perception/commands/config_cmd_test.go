package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitAndShow(t *testing.T) {
	dir := setupTestEnv(t)

	stdout, stderr, code := runCmd(t, "config", "init")
	if code != 0 {
		t.Fatalf("config init failed: %s", stderr)
	}
	if !strings.Contains(stdout, "wrote") {
		t.Fatalf("expected confirmation, got: %s", stdout)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	// A second init must refuse to clobber.
	_, stderr, code = runCmd(t, "config", "init")
	if code == 0 {
		t.Fatal("expected non-zero exit for existing config")
	}
	if !strings.Contains(stderr, "already exists") {
		t.Fatalf("expected overwrite refusal, got: %s", stderr)
	}

	_, _, code = runCmd(t, "config", "init", "--force")
	if code != 0 {
		t.Fatal("config init --force failed")
	}

	stdout, _, code = runCmd(t, "config", "show")
	if code != 0 {
		t.Fatal("config show failed")
	}
	if !strings.Contains(stdout, "Configuration") || !strings.Contains(stdout, "localhost:8080") {
		t.Fatalf("expected config summary, got: %s", stdout)
	}
}

func TestConfigShowMasksAPIKey(t *testing.T) {
	dir := setupTestEnv(t)
	content := strings.Join([]string{
		"classifier:",
		"  backend: gemini",
		"  api_key: sk-1234567890abcdef",
		"",
	}, "\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := runCmd(t, "config", "show")
	if code != 0 {
		t.Fatalf("config show failed: %s", stderr)
	}
	if strings.Contains(stdout, "sk-1234567890abcdef") {
		t.Fatalf("api key leaked in output: %s", stdout)
	}
	if !strings.Contains(stdout, "sk-1") {
		t.Fatalf("expected masked key, got: %s", stdout)
	}
}

func TestConfigFlagOverridesPath(t *testing.T) {
	setupTestEnv(t)
	path := filepath.Join(t.TempDir(), "alt.yaml")
	content := "transcriber:\n  url: http://alt:9999\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := runCmd(t, "--config", path, "config", "show")
	if code != 0 {
		t.Fatalf("config show failed: %s", stderr)
	}
	if !strings.Contains(stdout, "http://alt:9999") {
		t.Fatalf("expected alternate config, got: %s", stdout)
	}
}
