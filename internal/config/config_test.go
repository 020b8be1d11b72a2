package config

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FINADVISOR_API_URL", "")
	t.Setenv("FINADVISOR_SESSION_DB", "/tmp/finadvisor-test.db")
	t.Setenv("REQUEST_TIMEOUT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("ENV", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "http://localhost:8000" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.LogLevel != zapcore.WarnLevel {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q", cfg.Env)
	}
}

func TestLoad_TrimsTrailingSlash(t *testing.T) {
	t.Setenv("FINADVISOR_API_URL", "https://advisor.example.com/")
	t.Setenv("FINADVISOR_SESSION_DB", "/tmp/finadvisor-test.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "https://advisor.example.com" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"bad scheme", map[string]string{"FINADVISOR_API_URL": "ftp://x"}, "scheme"},
		{"no host", map[string]string{"FINADVISOR_API_URL": "http://"}, "missing host"},
		{"bad timeout", map[string]string{"REQUEST_TIMEOUT": "soon"}, "REQUEST_TIMEOUT"},
		{"negative timeout", map[string]string{"REQUEST_TIMEOUT": "-1s"}, "positive"},
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}, "LOG_LEVEL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("FINADVISOR_API_URL", "")
			t.Setenv("FINADVISOR_SESSION_DB", "/tmp/finadvisor-test.db")
			t.Setenv("REQUEST_TIMEOUT", "")
			t.Setenv("LOG_LEVEL", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"":      zapcore.WarnLevel,
		"debug": zapcore.DebugLevel,
		"INFO":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	}
	for in, want := range tests {
		got, err := parseLogLevel(in)
		if err != nil {
			t.Errorf("parseLogLevel(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
