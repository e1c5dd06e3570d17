package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != 8002 {
		t.Errorf("Port = %d, want 8002", cfg.Port)
	}

	if cfg.DropletID != "dashboard" {
		t.Errorf("DropletID = %q, want dashboard", cfg.DropletID)
	}

	if cfg.HeartbeatInterval != 60*time.Second {
		t.Errorf("HeartbeatInterval = %v, want 60s", cfg.HeartbeatInterval)
	}

	if cfg.CacheTTL != 25*time.Second {
		t.Errorf("CacheTTL = %v, want 25s", cfg.CacheTTL)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("REGISTRY_URL", "http://registry.internal:8000")
	t.Setenv("HEARTBEAT_INTERVAL", "15s")

	cfg := Load()

	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}

	if cfg.RegistryURL != "http://registry.internal:8000" {
		t.Errorf("RegistryURL = %q", cfg.RegistryURL)
	}

	if cfg.HeartbeatInterval != 15*time.Second {
		t.Errorf("HeartbeatInterval = %v, want 15s", cfg.HeartbeatInterval)
	}
}

func TestLoadDurationAcceptsBareSeconds(t *testing.T) {
	t.Setenv("CACHE_TTL", "10")

	cfg := Load()

	if cfg.CacheTTL != 10*time.Second {
		t.Errorf("CacheTTL = %v, want 10s", cfg.CacheTTL)
	}
}

func TestCacheTTLClampedToPollInterval(t *testing.T) {
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("STATUS_POLL_INTERVAL", "30s")

	cfg := Load()

	if cfg.CacheTTL != 30*time.Second {
		t.Errorf("CacheTTL = %v, want clamp to poll interval 30s", cfg.CacheTTL)
	}
}

func TestAllowedOriginsList(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("AllowedOrigins = %v, want 2 entries", cfg.AllowedOrigins)
	}

	if cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins[1] = %q", cfg.AllowedOrigins[1])
	}
}
