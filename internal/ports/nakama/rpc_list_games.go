package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"

	"seabattle/internal/engine"
)

// ListGamesResponse enumerates every game registered with the platform.
type ListGamesResponse struct {
	Games []engine.Metadata `json:"games"`
}

func rpcListGames(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	resp := ListGamesResponse{}
	for _, d := range engine.All() {
		resp.Games = append(resp.Games, d.Metadata)
	}
	b, err := json.Marshal(resp)
	if err != nil {
		logger.Error("list games marshal error: %v", err)
		return "", err
	}
	return string(b), nil
}
