package config

import (
	"testing"
	"time"

	"github.com/georgemunganga/tablepos/internal/domain"
)

func TestLoadAPI(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("CANCEL_FROM", "pending,preparing")
	t.Setenv("AUTO_MIGRATE", "false")
	t.Setenv("AMQP_URL", "")

	cfg, err := LoadAPI()
	if err != nil {
		t.Fatalf("LoadAPI: %v", err)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Errorf("TokenTTL = %v, want 2h", cfg.TokenTTL)
	}
	if cfg.AutoMigrate {
		t.Errorf("AutoMigrate should be false")
	}
	if cfg.Sync.Exchange != "pos.updates" {
		t.Errorf("Exchange = %q", cfg.Sync.Exchange)
	}
	if err := cfg.Policy.Check(domain.StatusPreparing, domain.StatusCancelled); err != nil {
		t.Errorf("policy should allow cancelling from preparing: %v", err)
	}
}

func TestLoadAPI_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := LoadAPI(); err == nil {
		t.Fatal("expected an error without JWT_SECRET")
	}
}

func TestLoadTerminal_Defaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://api.local:8080/")
	t.Setenv("HTTP_TIMEOUT", "not-a-duration")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("CANCEL_FROM", "")

	cfg, err := LoadTerminal()
	if err != nil {
		t.Fatalf("LoadTerminal: %v", err)
	}
	if cfg.APIBaseURL != "http://api.local:8080" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("HTTPTimeout = %v, want 10s", cfg.HTTPTimeout)
	}
	if cfg.Location != time.UTC {
		t.Errorf("Location = %v", cfg.Location)
	}
}

func TestLoadTerminal_BadCancelList(t *testing.T) {
	t.Setenv("CANCEL_FROM", "pending,nope")
	if _, err := LoadTerminal(); err == nil {
		t.Fatal("expected an error for an unknown status")
	}
}
