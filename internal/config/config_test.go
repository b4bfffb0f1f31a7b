package config

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CASHFLOW_STRATEGY", "")
	t.Setenv("DISCORD_REDIRECT_URI", "")
	t.Setenv("WEB_BIND", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Strategy != "greedy" {
		t.Errorf("Strategy = %q, want greedy", cfg.Strategy)
	}
	if cfg.WebBind != "0.0.0.0:3000" {
		t.Errorf("WebBind = %q", cfg.WebBind)
	}
	if cfg.WebUIBaseURL != "http://localhost:3000" {
		t.Errorf("WebUIBaseURL = %q", cfg.WebUIBaseURL)
	}
}

func TestLoadRejectsUnknownStrategy(t *testing.T) {
	t.Setenv("CASHFLOW_STRATEGY", "cheapest")
	if _, err := Load(); err == nil {
		t.Error("Load() accepted an unknown strategy")
	}
}

func TestRequireDiscord(t *testing.T) {
	cfg := &Config{DiscordToken: "t", DiscordClientID: "id"}
	if err := cfg.RequireDiscord(); err == nil {
		t.Error("RequireDiscord() accepted a config without client secret")
	}
	cfg.DiscordClientSecret = "s"
	if err := cfg.RequireDiscord(); err != nil {
		t.Errorf("RequireDiscord() error: %v", err)
	}
}

func TestExtractBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://cashflow.example.com/api/auth/callback", "https://cashflow.example.com"},
		{"http://127.0.0.1:8080/cb", "http://127.0.0.1:8080"},
		{"not a url", "http://localhost:3000"},
	}
	for _, tt := range tests {
		if got := extractBaseURL(tt.in); got != tt.want {
			t.Errorf("extractBaseURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	cfg := &Config{LogLevel: "debug"}
	logger, err := cfg.NewLogger()
	if err != nil {
		t.Fatalf("NewLogger() error: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level not enabled")
	}
	cfg.LogLevel = "loud"
	if _, err := cfg.NewLogger(); err == nil {
		t.Error("NewLogger() accepted an unknown level")
	}
}
