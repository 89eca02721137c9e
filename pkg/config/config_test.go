package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/dasmlab/vartrans/pkg/translate"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaultsWhenFilesMissing(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "missing.yaml"), filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFileThenEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "engine: deepl\nlog_level: debug\ndeepl_api_key: from-file\nargos_url: http://argos:5001\n")
	t.Setenv("VARTRANS_DEEPL_API_KEY", "from-env")

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatal(err)
	}
	want := Config{
		Engine:      "deepl",
		LogLevel:    "debug",
		DeepLAPIKey: "from-env",
		ArgosURL:    "http://argos:5001",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEnvFileDoesNotOverrideProcessEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "VARTRANS_ENGINE=argos\nVARTRANS_REMOTE_ADDR=gateway:50051\n")
	t.Setenv("VARTRANS_ENGINE", "libretranslate")
	// godotenv sets variables for the whole process; make sure the test
	// leaves no trace.
	t.Setenv("VARTRANS_REMOTE_ADDR", "")
	os.Unsetenv("VARTRANS_REMOTE_ADDR")

	cfg, err := Load("", envFile)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine != "libretranslate" {
		t.Errorf("Engine = %q, want process env to win", cfg.Engine)
	}
	if cfg.RemoteAddr != "gateway:50051" {
		t.Errorf("RemoteAddr = %q, want value from env file", cfg.RemoteAddr)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(writeFile(t, dir, "a.yaml", "log_level: loud\n"), ""); err == nil {
		t.Error("expected invalid log level error")
	}
	if _, err := Load(writeFile(t, dir, "b.yaml", "engine: [\n"), ""); err == nil {
		t.Error("expected parse error")
	}
}

func TestStoreEngine(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "engine: argos\n")
	logger, _ := test.NewNullLogger()

	s, err := NewStore(path, "", logger)
	if err != nil {
		t.Fatal(err)
	}
	var _ translate.EngineSource = s

	if s.Engine() != "argos" {
		t.Fatalf("Engine = %q", s.Engine())
	}

	writeFile(t, dir, "config.yaml", "engine: deepl\n")
	if err := s.Reload(); err != nil {
		t.Fatal(err)
	}
	if s.Engine() != "deepl" {
		t.Errorf("Engine after reload = %q", s.Engine())
	}

	s.SetEngine("google")
	writeFile(t, dir, "config.yaml", "engine: argos\n")
	if err := s.Reload(); err != nil {
		t.Fatal(err)
	}
	if s.Engine() != "google" {
		t.Errorf("Engine with override = %q", s.Engine())
	}

	writeFile(t, dir, "config.yaml", "log_level: nope\n")
	if err := s.Reload(); err == nil {
		t.Error("expected reload error")
	}
	if s.Config().Engine != "argos" {
		t.Errorf("failed reload replaced config: %+v", s.Config())
	}
}

func TestStoreSaveEngine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	logger, _ := test.NewNullLogger()

	s, err := NewStore(path, "", logger)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveEngine("libretranslate"); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine != "libretranslate" {
		t.Errorf("saved engine = %q", cfg.Engine)
	}
}

func TestNewLoggerQuietDiscards(t *testing.T) {
	cfg := Default()
	logger, closer, err := cfg.NewLogger(true)
	if err != nil {
		t.Fatal(err)
	}
	defer closer.Close()
	if logger.Out == os.Stderr {
		t.Error("quiet logger writes to stderr")
	}

	cfg.LogFile = filepath.Join(t.TempDir(), "vartrans.log")
	logger, closer, err = cfg.NewLogger(true)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hello")
	closer.Close()

	data, err := os.ReadFile(cfg.LogFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("log file is empty")
	}
}
