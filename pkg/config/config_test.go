package config

import "testing"

func TestDefaultConfigNeedsRateLimit(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Fatal("Default() config without a rate limit should be invalid")
	}
	cfg.RateLimit = "250ms"
	if err := cfg.Resolve(); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
}
