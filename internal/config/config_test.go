package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.PollTTLHours != 24 {
		t.Fatalf("PollTTLHours = %d, want 24", cfg.PollTTLHours)
	}
	if cfg.SweepRedisURL != "" {
		t.Fatalf("SweepRedisURL = %q, want empty", cfg.SweepRedisURL)
	}
}

func TestLoadReadsEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("POLL_TTL_HOURS", "48")
	t.Setenv("DATA_DIR", "/tmp/syukei-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "9000" {
		t.Fatalf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.PollTTLHours != 48 {
		t.Fatalf("PollTTLHours = %d, want 48", cfg.PollTTLHours)
	}
	if cfg.DataDir != "/tmp/syukei-test" {
		t.Fatalf("DataDir = %q", cfg.DataDir)
	}
}

func TestLoadIgnoresInvalidInt(t *testing.T) {
	t.Setenv("POLL_TTL_HOURS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.PollTTLHours != 24 {
		t.Fatalf("PollTTLHours = %d, want default 24", cfg.PollTTLHours)
	}
}

func TestValidateReleaseRequiresSessionSecret(t *testing.T) {
	cfg := &Config{
		GinMode:      "release",
		DataDir:      "data",
		PollTTLHours: 24,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing SESSION_SECRET in release mode")
	}

	cfg.SessionSecret = "secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
}

func TestValidateRejectsBadTTL(t *testing.T) {
	cfg := &Config{
		GinMode:      "debug",
		DataDir:      "data",
		PollTTLHours: 0,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive TTL")
	}
}
