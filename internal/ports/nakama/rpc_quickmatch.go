package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"

	"seabattle/internal/domain"
	"seabattle/internal/engine"
)

// QuickMatchRequest optionally names the game to match into; it defaults
// to Sea Battle.
type QuickMatchRequest struct {
	GameID string `json:"game_id"`
}

// QuickMatchResponse is the payload returned to clients when requesting a
// lobby-capable match.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	request := QuickMatchRequest{GameID: domain.GameID}
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &request); err != nil {
			return "", runtime.NewError("invalid quick match payload", 3)
		}
		if request.GameID == "" {
			request.GameID = domain.GameID
		}
	}

	descriptor, ok := engine.Lookup(request.GameID)
	if !ok {
		return "", runtime.NewError(fmt.Sprintf("unknown game %q", request.GameID), 3)
	}

	// Find any open lobby for this game.
	query := fmt.Sprintf("+label.open:>=1 +label.game:%s +label.phase:lobby", request.GameID)
	limit := 10
	authoritative := true
	minSize := 1
	maxSize := descriptor.Metadata.MaxPlayers - 1

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, query)
	if err != nil {
		logger.Error("MatchList error: %v", err)
		return "", err
	}

	if len(matches) > 0 {
		resp := QuickMatchResponse{MatchID: matches[0].MatchId, IsNew: false}
		b, _ := json.Marshal(resp)
		return string(b), nil
	}

	// Create a new match; seat and owner assignment happen in MatchJoin
	// (server-authoritative).
	matchID, err := nk.MatchCreate(ctx, descriptor.MatchName, map[string]interface{}{})
	if err != nil {
		logger.Error("MatchCreate error: %v", err)
		return "", err
	}

	resp := QuickMatchResponse{MatchID: matchID, IsNew: true}
	b, _ := json.Marshal(resp)
	return string(b), nil
}
