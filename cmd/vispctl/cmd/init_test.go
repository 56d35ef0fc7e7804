package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/humlab-speech/vispctl/internal/config"
)

func TestInitCreatesLoadableConfig(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "vispctl.yaml")

	old := configPath
	configPath = outPath
	defer func() { configPath = old }()

	initForce = false
	if err := initCmd.RunE(initCmd, nil); err != nil {
		t.Fatalf("init: %v", err)
	}

	cfg, err := config.Load(outPath)
	if err != nil {
		t.Fatalf("load generated config: %v", err)
	}
	want := config.Default()
	if cfg.ComponentsDir != want.ComponentsDir || cfg.VersionsFile != want.VersionsFile {
		t.Errorf("generated config %+v differs from defaults %+v", cfg, want)
	}
	if cfg.Git.Host != want.Git.Host || cfg.Git.Org != want.Git.Org {
		t.Errorf("generated git config %+v differs from defaults %+v", cfg.Git, want.Git)
	}
}

func TestInitRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "vispctl.yaml")
	if err := os.WriteFile(outPath, []byte("existing"), 0644); err != nil {
		t.Fatal(err)
	}

	old := configPath
	configPath = outPath
	defer func() { configPath = old }()

	initForce = false
	err := initCmd.RunE(initCmd, nil)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected overwrite refusal, got %v", err)
	}

	data, _ := os.ReadFile(outPath)
	if string(data) != "existing" {
		t.Error("existing file was overwritten")
	}
}

func TestInitForceOverwrites(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "vispctl.yaml")
	if err := os.WriteFile(outPath, []byte("existing"), 0644); err != nil {
		t.Fatal(err)
	}

	old := configPath
	configPath = outPath
	defer func() { configPath = old }()

	initForce = true
	defer func() { initForce = false }()
	if err := initCmd.RunE(initCmd, nil); err != nil {
		t.Fatalf("init --force: %v", err)
	}

	if _, err := config.Load(outPath); err != nil {
		t.Fatalf("load generated config: %v", err)
	}
}
