package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/newsletter-ops/deployctl/internal/env"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "deploy.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "project: newsletter\n")

	cfg, _, err := Load(path, LoadOptions{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Template != filepath.Join(dir, "spec.yaml.tpl") {
		t.Fatalf("template=%q", cfg.Template)
	}
	if cfg.Output != filepath.Join(dir, "spec.yaml") {
		t.Fatalf("output=%q", cfg.Output)
	}
	if cfg.Secrets.AppPath != "kv/newsletter" {
		t.Fatalf("appPath=%q, want kv/newsletter", cfg.Secrets.AppPath)
	}
	if cfg.Secrets.AppIDField != "app_id" {
		t.Fatalf("appIdField=%q, want app_id", cfg.Secrets.AppIDField)
	}
	if cfg.Renderer.Engine != EngineBuiltin {
		t.Fatalf("engine=%q, want builtin", cfg.Renderer.Engine)
	}
	if cfg.Platform.Binary != "doctl" {
		t.Fatalf("platform binary=%q, want doctl", cfg.Platform.Binary)
	}
}

func TestLoadRequiresProject(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "template: spec.yaml.tpl\n")

	_, _, err := Load(path, LoadOptions{})
	if err == nil || !strings.Contains(err.Error(), "project is required") {
		t.Fatalf("err=%v, want project requirement", err)
	}
}

func TestLoadRejectsUnknownEngine(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "project: newsletter\nrenderer:\n  engine: watcher\n")

	_, _, err := Load(path, LoadOptions{})
	if err == nil || !strings.Contains(err.Error(), "not supported") {
		t.Fatalf("err=%v, want unsupported engine error", err)
	}
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "project: newsletter\nplatform:\n  timeout: soon\n")

	_, _, err := Load(path, LoadOptions{})
	if err == nil {
		t.Fatalf("expected timeout parse error")
	}
}

func TestLoadMergeOrder(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("DEPLOYCTL_TEST_A=from-file\nDEPLOYCTL_TEST_B=from-file\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	path := writeConfig(t, dir, "project: newsletter\nenvFiles:\n  - .env\n")

	t.Setenv("DEPLOYCTL_TEST_A", "from-os")
	t.Setenv("DEPLOYCTL_TEST_C", "from-os")

	_, vars, err := Load(path, LoadOptions{UserVars: env.Vars{"DEPLOYCTL_TEST_B": "from-user"}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// env files override the OS; user vars override both.
	if got := vars["DEPLOYCTL_TEST_A"]; got != "from-file" {
		t.Fatalf("A=%q, want from-file", got)
	}
	if got := vars["DEPLOYCTL_TEST_B"]; got != "from-user" {
		t.Fatalf("B=%q, want from-user", got)
	}
	if got := vars["DEPLOYCTL_TEST_C"]; got != "from-os" {
		t.Fatalf("C=%q, want from-os", got)
	}
}

func TestLoadMissingEnvFileFails(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "project: newsletter\nenvFiles:\n  - absent.env\n")

	_, _, err := Load(path, LoadOptions{})
	if err == nil {
		t.Fatalf("expected error for missing env file")
	}
}
