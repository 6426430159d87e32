package config

import (
	"testing"
	"time"
)

func TestGetGameConfigDefaults(t *testing.T) {
	// No config file is loaded in unit tests, so every field falls back.
	cfg := GetGameConfig()

	if cfg.BotMinDelayMillis != 1000 {
		t.Errorf("min delay = %d, want 1000", cfg.BotMinDelayMillis)
	}
	if cfg.BotMaxDelayMillis != 3000 {
		t.Errorf("max delay = %d, want 3000", cfg.BotMaxDelayMillis)
	}
	if cfg.BotLockTimeoutSeconds != 30 {
		t.Errorf("lock timeout = %d, want 30", cfg.BotLockTimeoutSeconds)
	}
	if cfg.BotAutoFillDelaySeconds != 5 {
		t.Errorf("auto fill delay = %d, want 5", cfg.BotAutoFillDelaySeconds)
	}

	if cfg.BotMinDelay() != time.Second {
		t.Errorf("BotMinDelay() = %v, want 1s", cfg.BotMinDelay())
	}
	if cfg.BotMaxDelay() != 3*time.Second {
		t.Errorf("BotMaxDelay() = %v, want 3s", cfg.BotMaxDelay())
	}
	if cfg.BotLockTimeout() != 30*time.Second {
		t.Errorf("BotLockTimeout() = %v, want 30s", cfg.BotLockTimeout())
	}
}

func TestGetGameConfigClampsMaxDelay(t *testing.T) {
	cfg = &GameConfig{BotMinDelayMillis: 500, BotMaxDelayMillis: 100}
	defer func() { cfg = nil }()

	got := GetGameConfig()
	if got.BotMaxDelayMillis != 2500 {
		t.Errorf("max delay = %d, want clamped above the minimum", got.BotMaxDelayMillis)
	}
	if got.BotMinDelayMillis != 500 {
		t.Errorf("min delay = %d, want 500", got.BotMinDelayMillis)
	}
}
