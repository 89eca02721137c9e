package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// execute runs the root command with args against a config in a temp dir.
func execute(t *testing.T, configBody string, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if configBody != "" {
		if err := os.WriteFile(configPath, []byte(configBody), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	rootFlags.engine, rootFlags.logLevel, rootFlags.logFile = "", "", ""
	convertFlags.noRetry, translateFlags.noRetry = false, false
	enginesFlags.check = false

	var out bytes.Buffer
	full := append([]string{"--config", configPath, "--env-file", filepath.Join(dir, ".env"), "--log-level", "error"}, args...)
	rootCmd.SetArgs(full)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(""))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConvertStyle(t *testing.T) {
	out, err := execute(t, "", "convert", "snakeCase", "userName")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "user_name" {
		t.Errorf("output = %q", out)
	}
}

func TestConvertAll(t *testing.T) {
	out, err := execute(t, "", "convert", "all", "orderId")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"order_id", "OrderId", "ORDER_ID", "order/id"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestConvertUnknownStyle(t *testing.T) {
	if _, err := execute(t, "", "convert", "screamCase", "x"); err == nil {
		t.Error("expected unknown style error")
	}
}

func TestEnginesList(t *testing.T) {
	out, err := execute(t, "engine: argos\n", "engines")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "* argos") {
		t.Errorf("argos not marked current:\n%s", out)
	}
	for _, name := range []string{"deepl", "google", "libretranslate"} {
		if !strings.Contains(out, name) {
			t.Errorf("output lacks %q:\n%s", name, out)
		}
	}
}

func TestEnginesUse(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	rootFlags.engine, rootFlags.logLevel, rootFlags.logFile = "", "", ""
	rootCmd.SetArgs([]string{"--config", configPath, "--env-file", filepath.Join(dir, ".env"), "engines", "use", "DeepL"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "engine: deepl") {
		t.Errorf("config = %s", data)
	}
}

func TestConsolePrompter(t *testing.T) {
	var out bytes.Buffer
	p := newConsolePrompter(strings.NewReader("y\nn\n"), &out, false)
	if !p.ConfirmRetry(context.Background(), "translation failed, retry?") {
		t.Error("first answer should be yes")
	}
	if p.ConfirmRetry(context.Background(), "translation failed, retry?") {
		t.Error("second answer should be no")
	}
	if p.ConfirmRetry(context.Background(), "translation failed, retry?") {
		t.Error("EOF should be no")
	}

	got := p.Progress(context.Background(), "translating", func(context.Context) string { return "ok" })
	if got != "ok" || !strings.Contains(out.String(), "translating…") {
		t.Errorf("Progress = %q, out = %q", got, out.String())
	}

	if newConsolePrompter(strings.NewReader("y\n"), &out, true).ConfirmRetry(context.Background(), "retry?") {
		t.Error("noRetry prompter should decline")
	}
}
