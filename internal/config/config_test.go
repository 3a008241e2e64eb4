package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/simonhull/mediasniff/internal/config"
	"github.com/simonhull/mediasniff/internal/types"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".config", "mediasniff", "config.toml"); resolved != want {
		t.Errorf("resolved = %q, want %q", resolved, want)
	}

	if want := filepath.Join(tempHome, ".local", "share", "mediasniff", "catalog.db"); cfg.Catalog.Path != want {
		t.Errorf("catalog path = %q, want %q", cfg.Catalog.Path, want)
	}
	if !cfg.Parse.WebPFeatureScan {
		t.Error("expected webp feature scan on by default")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Errorf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoad_ProjectFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)

	if err := os.WriteFile("mediasniff.toml", []byte("[scan]\nworkers = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if !exists || filepath.Base(resolved) != "mediasniff.toml" {
		t.Errorf("expected project file, got %q (exists=%v)", resolved, exists)
	}
	if cfg.Scan.Workers != 3 {
		t.Errorf("workers = %d, want 3", cfg.Scan.Workers)
	}
}

func TestLoad_CustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	content := `
[parse]
max_bytes = 65536
formats = [" FLAC ", "webp", "flac", ""]
webp_feature_scan = false

[scan]
extensions = ["MP3", ".flac"]

[catalog]
path = "catalog.db"

[logging]
level = "DEBUG"
format = "json"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Errorf("resolved = %q exists = %v", resolved, exists)
	}

	if cfg.Parse.MaxBytes != 65536 {
		t.Errorf("max_bytes = %d", cfg.Parse.MaxBytes)
	}
	if got := cfg.Formats(); len(got) != 2 || got[0] != types.FormatFLAC || got[1] != types.FormatWebP {
		t.Errorf("formats = %v, want [flac webp]", got)
	}
	if cfg.Parse.WebPFeatureScan {
		t.Error("expected webp feature scan disabled")
	}
	if strings.Join(cfg.Scan.Extensions, ",") != ".mp3,.flac" {
		t.Errorf("extensions = %v", cfg.Scan.Extensions)
	}
	if !filepath.IsAbs(cfg.Catalog.Path) {
		t.Errorf("expected absolute catalog path, got %q", cfg.Catalog.Path)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoad_MissingCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("expected exists=false")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected defaults, got %+v", cfg.Logging)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[parse\n", "parse config"},
		{"unknown key", "[parse]\nmax_byte = 1\n", "parse config"},
		{"unknown format", "[parse]\nformats = [\"gif\"]\n", "parse.formats"},
		{"negative max bytes", "[parse]\nmax_bytes = -1\n", "parse.max_bytes"},
		{"negative workers", "[scan]\nworkers = -2\n", "scan.workers"},
		{"bad level", "[logging]\nlevel = \"loud\"\n", "logging.level"},
		{"bad format", "[logging]\nformat = \"xml\"\n", "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path, false); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if err := config.CreateSample(path, false); err == nil {
		t.Error("expected error when the file exists")
	}
	if err := config.CreateSample(path, true); err != nil {
		t.Errorf("overwrite failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if string(contents) != config.Sample() {
		t.Error("written sample differs from Sample()")
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !cfg.Parse.WebPFeatureScan || cfg.Logging.Format != "console" {
		t.Errorf("sample disagrees with defaults: %+v", cfg)
	}

	// The sample must load cleanly too.
	if _, _, _, err := config.Load(path); err != nil {
		t.Errorf("sample does not validate: %v", err)
	}
}

func TestEncode(t *testing.T) {
	cfg := config.Default()
	data, err := cfg.Encode()
	if err != nil {
		t.Fatal(err)
	}

	var back config.Config
	if err := toml.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Catalog.Path != cfg.Catalog.Path || back.Logging != cfg.Logging {
		t.Errorf("round trip mismatch: %+v vs %+v", back, cfg)
	}
}
