package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// GameConfig tunes platform-level behavior of the Sea Battle module.
type GameConfig struct {
	// BotMinDelayMillis / BotMaxDelayMillis bound the randomized "thinking"
	// delay a bot waits before each action.
	BotMinDelayMillis int `json:"bot_min_delay_millis"`
	BotMaxDelayMillis int `json:"bot_max_delay_millis"`
	// BotLockTimeoutSeconds is how long a bot's soft lock is honored before
	// it is treated as stale and forcibly reacquired.
	BotLockTimeoutSeconds int `json:"bot_lock_timeout_seconds"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before
	// adding bots to a solo human lobby.
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration with safe defaults
// applied for any unset field.
func GetGameConfig() GameConfig {
	c := GameConfig{}
	if cfg != nil {
		c = *cfg
	}
	if c.BotMinDelayMillis <= 0 {
		c.BotMinDelayMillis = 1000
	}
	if c.BotMaxDelayMillis < c.BotMinDelayMillis {
		c.BotMaxDelayMillis = c.BotMinDelayMillis + 2000
	}
	if c.BotLockTimeoutSeconds <= 0 {
		c.BotLockTimeoutSeconds = 30
	}
	if c.BotAutoFillDelaySeconds <= 0 {
		c.BotAutoFillDelaySeconds = 5
	}
	return c
}

// BotMinDelay returns the minimum bot thinking delay.
func (c GameConfig) BotMinDelay() time.Duration {
	return time.Duration(c.BotMinDelayMillis) * time.Millisecond
}

// BotMaxDelay returns the maximum bot thinking delay.
func (c GameConfig) BotMaxDelay() time.Duration {
	return time.Duration(c.BotMaxDelayMillis) * time.Millisecond
}

// BotLockTimeout returns the stale-lock override threshold.
func (c GameConfig) BotLockTimeout() time.Duration {
	return time.Duration(c.BotLockTimeoutSeconds) * time.Second
}
