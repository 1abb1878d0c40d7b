package config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("turismap-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("expected port 3000, got %d", cfg.Server.Port)
	}
	if cfg.Overpass.Timeout().Seconds() != 15 {
		t.Errorf("expected 15s overpass timeout, got %s", cfg.Overpass.Timeout())
	}
	if cfg.Places.DefaultRadius != 5000 || cfg.Places.MaxRadius != 50000 {
		t.Errorf("unexpected radius bounds: %+v", cfg.Places)
	}
	if cfg.Auth.TokenTTL().Hours() != 168 {
		t.Errorf("expected 7-day token TTL, got %s", cfg.Auth.TokenTTL())
	}
	if cfg.Telemetry.ServiceName != "turismap-test" {
		t.Errorf("expected service name from argument, got %q", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TURISMAP_SERVER_PORT", "8081")
	t.Setenv("TURISMAP_OVERPASS_URL", "http://overpass.local/api/interpreter")
	t.Setenv("TURISMAP_SERVER_ENVIRONMENT", "Production")

	cfg, err := Load("turismap-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8081 {
		t.Errorf("expected port 8081, got %d", cfg.Server.Port)
	}
	if cfg.Overpass.URL != "http://overpass.local/api/interpreter" {
		t.Errorf("unexpected overpass url %q", cfg.Overpass.URL)
	}
	if !cfg.Server.IsProduction() {
		t.Error("expected production environment")
	}
}

func TestValidate_AggregatesErrors(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: 0, ReadTimeout: 1, WriteTimeout: 1},
		Overpass: OverpassConfig{URL: "", TimeoutSeconds: 15},
		Places:   PlacesConfig{DefaultRadius: 5000, MaxRadius: 1000},
		Auth:     AuthConfig{JWTSecret: "s", TokenTTLHours: 1},
		Database: DatabaseConfig{Host: "h", Port: 5432, User: "u", DBName: "d"},
		NATS:     NATSConfig{URL: "nats://x"},
		Valkey:   ValkeyConfig{Addr: "x:6379"},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "overpass.url", "places.max_radius"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in error, got: %v", want, err)
		}
	}
}
