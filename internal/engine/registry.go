package engine

import (
	"fmt"
	"sort"
	"sync"
)

// Descriptor advertises a registered game to the platform layer so that
// matchmaking and RPCs stay game-agnostic.
type Descriptor struct {
	Metadata  Metadata
	MatchName string // authoritative match handler name registered with the runtime
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Descriptor{}
)

// Register adds a game descriptor to the platform registry. Registration
// happens explicitly during module init wiring; duplicate game ids are a
// programming error.
func Register(d Descriptor) error {
	if d.Metadata.GameID == "" {
		return fmt.Errorf("engine: descriptor has empty game id")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[d.Metadata.GameID]; exists {
		return fmt.Errorf("engine: game %q already registered", d.Metadata.GameID)
	}
	registry[d.Metadata.GameID] = d
	return nil
}

// Lookup returns the descriptor for a game id.
func Lookup(gameID string) (Descriptor, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[gameID]
	return d, ok
}

// All returns every registered descriptor, ordered by game id.
func All() []Descriptor {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]Descriptor, 0, len(registry))
	for _, d := range registry {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Metadata.GameID < out[j].Metadata.GameID })
	return out
}
