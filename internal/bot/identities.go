package bot

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

// BotPrefix marks bot-controlled participant ids. Bots are not a separate
// type anywhere in the platform; the orchestrator and the driver both
// recognize them purely by this prefix.
const BotPrefix = "bot:"

// IsBot reports whether the given user id is bot-controlled.
func IsBot(userID string) bool {
	return strings.HasPrefix(userID, BotPrefix)
}

// Identity is one profile from the bot pool. UserID must carry BotPrefix.
type Identity struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarIndex int    `json:"avatar_index"`
}

var (
	identities     []Identity
	displayNameMap map[string]string
	loadOnce       sync.Once
	loadErr        error
)

// LoadIdentities loads the bot profiles from the given path.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}

		var loaded []Identity
		if err := json.Unmarshal(data, &loaded); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal bot identities: %w", err)
			return
		}

		displayNameMap = make(map[string]string)
		for _, identity := range loaded {
			if !IsBot(identity.UserID) {
				loadErr = fmt.Errorf("bot identity %q lacks the %q prefix", identity.UserID, BotPrefix)
				return
			}
			identities = append(identities, identity)
			displayNameMap[identity.UserID] = identity.DisplayName
		}
	})
	return loadErr
}

// GetIdentity returns the pooled identity at index. Indices beyond the
// pool (or any index, when no pool is loaded) yield a synthesized identity
// whose id embeds the index, so callers scanning for an unseated bot
// always reach a fresh id instead of cycling through taken ones.
func GetIdentity(index int) Identity {
	if index < len(identities) {
		return identities[index]
	}
	return Identity{
		UserID:      fmt.Sprintf("%s%d", BotPrefix, index),
		Username:    fmt.Sprintf("bot_%d", index),
		DisplayName: fmt.Sprintf("AI Player %d", index),
	}
}

// GetDisplayName returns the display name for a bot id, or an empty string
// if the id is not in the pool.
func GetDisplayName(userID string) string {
	if displayNameMap == nil {
		return ""
	}
	return displayNameMap[userID]
}
