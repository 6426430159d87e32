package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/heroiclabs/nakama-common/runtime"

	"seabattle/internal/app"
	"seabattle/internal/bot"
	"seabattle/internal/config"
	"seabattle/internal/domain"
)

// MatchState holds the authoritative runtime state for the Nakama match
// handler. The game session itself lives in the orchestrator; this state
// only tracks the room roster and broadcast bookkeeping.
type MatchState struct {
	RoomID    string                      `json:"room_id"`
	Joined    []string                    `json:"joined"` // join order, humans and bots
	OwnerID   string                      `json:"owner_id"`
	Started   bool                        `json:"started"`
	Tick      int64                       `json:"tick"`
	Presences map[string]runtime.Presence `json:"-"`

	BotsEnabled   bool  `json:"bots_enabled"`
	AutoFillDelay int64 `json:"auto_fill_delay"` // ticks before bots fill a solo lobby
	LastSoloTick  int64 `json:"last_solo_tick"`

	// Broadcast watermarks: bot routines mutate the session outside the
	// match loop, so each tick compares these against the live snapshot.
	LastLogCount int          `json:"last_log_count"`
	LastPhase    domain.Phase `json:"last_phase"`
	LastTurnID   string       `json:"last_turn_id"`
}

// humanCount reports how many humans are still part of the match: seated
// humans before the game starts, connected human presences after. A
// started match keeps departed players' seats so they can reconnect, which
// makes the seat list useless for telling who is actually here.
func (ms *MatchState) humanCount() int {
	n := 0
	if ms.Started {
		for id := range ms.Presences {
			if !bot.IsBot(id) {
				n++
			}
		}
		return n
	}
	for _, id := range ms.Joined {
		if !bot.IsBot(id) {
			n++
		}
	}
	return n
}

func (ms *MatchState) isJoined(userID string) bool {
	for _, id := range ms.Joined {
		if id == userID {
			return true
		}
	}
	return false
}

type matchHandler struct {
	svc    *app.Service
	driver *bot.Driver
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	roomID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)

	cfg := config.GetGameConfig()
	state := &MatchState{
		RoomID:        roomID,
		Presences:     make(map[string]runtime.Presence),
		BotsEnabled:   true,
		AutoFillDelay: int64(cfg.BotAutoFillDelaySeconds),
	}

	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		if val, ok := env["seabattle_bots_enabled"]; ok {
			state.BotsEnabled = val == "true"
		}
		if val, ok := env["seabattle_bot_auto_fill_delay_sec"]; ok {
			if i, err := strconv.Atoi(val); err == nil && i > 0 {
				state.AutoFillDelay = int64(i)
			}
		}
	}

	logger.Debug("MatchInit: room %s ready (bots=%v)", roomID, state.BotsEnabled)

	tickRate := 1
	return state, tickRate, mh.label(state)
}

// MatchJoinAttempt admits players while seats remain; once the game has
// started only existing participants may reconnect.
func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	userID := presence.GetUserId()
	if matchState.isJoined(userID) {
		return state, true, ""
	}
	if matchState.Started {
		return state, false, "match in progress"
	}

	maxPlayers := mh.svc.Metadata().MaxPlayers
	if len(matchState.Joined) < maxPlayers {
		return state, true, ""
	}
	// A full lobby can still admit a human by displacing a bot.
	for _, id := range matchState.Joined {
		if bot.IsBot(id) {
			return state, true, ""
		}
	}
	return state, false, "match full"
}

// MatchJoin seats new presences and rebroadcasts the lobby roster.
func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p

		if matchState.isJoined(userID) {
			// Reconnect: resend this viewer's redacted state.
			if matchState.Started {
				mh.sendStateTo(ctx, matchState, dispatcher, logger, userID)
			}
			continue
		}

		maxPlayers := mh.svc.Metadata().MaxPlayers
		if len(matchState.Joined) < maxPlayers {
			matchState.Joined = append(matchState.Joined, userID)
		} else if !mh.replaceBotSeat(matchState, userID, logger) {
			logger.Warn("MatchJoin: user %s joined but no seat was available", userID)
			continue
		}

		if matchState.OwnerID == "" && !bot.IsBot(userID) {
			matchState.OwnerID = userID
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastLobby(matchState, dispatcher, logger)
	return matchState
}

// replaceBotSeat swaps the first bot seat for the given human, pre-start.
func (mh *matchHandler) replaceBotSeat(ms *MatchState, userID string, logger runtime.Logger) bool {
	if ms.Started {
		return false
	}
	for i, id := range ms.Joined {
		if bot.IsBot(id) {
			logger.Info("MatchJoin: replacing bot %s with human %s", id, userID)
			ms.Joined[i] = userID
			return true
		}
	}
	return false
}

// MatchLeave frees lobby seats before the game starts; once started the
// departing player is marked eliminated in the session instead.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)

		if !matchState.Started {
			for i, id := range matchState.Joined {
				if id == userID {
					matchState.Joined = append(matchState.Joined[:i], matchState.Joined[i+1:]...)
					break
				}
			}
		} else {
			if _, err := mh.svc.RemovePlayer(ctx, matchState.RoomID, userID); err != nil {
				logger.Warn("MatchLeave: failed to remove %s from session: %v", userID, err)
			}
		}

		if matchState.OwnerID == userID {
			matchState.OwnerID = ""
			for _, id := range matchState.Joined {
				if !bot.IsBot(id) {
					matchState.OwnerID = id
					break
				}
			}
		}
	}

	if matchState.humanCount() == 0 {
		logger.Info("MatchLeave: terminating match %s with no humans", matchState.RoomID)
		if matchState.Started {
			if err := mh.svc.EndSession(ctx, matchState.RoomID); err != nil {
				logger.Warn("MatchLeave: failed to end session: %v", err)
			}
		}
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	if !matchState.Started {
		mh.broadcastLobby(matchState, dispatcher, logger)
	}
	return matchState
}

// MatchLoop processes client messages, fills solo lobbies with bots, pumps
// the bot driver, and broadcasts redacted state whenever the session moved.
func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}
	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpGameAction:
			mh.handleGameAction(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if !matchState.Started && matchState.BotsEnabled {
		mh.autoFillBots(matchState, dispatcher, logger)
	}

	if matchState.Started {
		snapshot, err := mh.svc.FindSessionByRoom(ctx, matchState.RoomID)
		if err != nil {
			logger.Error("MatchLoop: session %s lost: %v", matchState.RoomID, err)
			return nil
		}

		if mh.sessionMoved(matchState, snapshot) {
			mh.broadcastStates(ctx, matchState, dispatcher, logger)
		}

		if snapshot.Phase == domain.PhaseCompleted {
			mh.finishGame(ctx, matchState, dispatcher, logger, snapshot)
			return nil
		}

		if matchState.BotsEnabled {
			mh.driver.CheckAndPlay(ctx, matchState.RoomID, snapshot)
		}
	}

	return matchState
}

// sessionMoved compares the snapshot against the last broadcast watermarks
// and updates them when the session has visibly changed.
func (mh *matchHandler) sessionMoved(ms *MatchState, snapshot *domain.GameState) bool {
	turnID := snapshot.CurrentTurnID()
	if len(snapshot.Logs) == ms.LastLogCount && snapshot.Phase == ms.LastPhase && turnID == ms.LastTurnID {
		return false
	}
	ms.LastLogCount = len(snapshot.Logs)
	ms.LastPhase = snapshot.Phase
	ms.LastTurnID = turnID
	return true
}

// autoFillBots adds bot players to a lobby holding a single human, once
// the configured delay has elapsed.
func (mh *matchHandler) autoFillBots(ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if ms.humanCount() != 1 {
		ms.LastSoloTick = 0
		return
	}
	minPlayers := mh.svc.Metadata().MinPlayers
	if len(ms.Joined) >= minPlayers {
		ms.LastSoloTick = 0
		return
	}
	if ms.LastSoloTick == 0 {
		ms.LastSoloTick = ms.Tick
		logger.Debug("autoFillBots: single player detected, starting auto-fill timer")
		return
	}
	if ms.Tick-ms.LastSoloTick < ms.AutoFillDelay {
		return
	}

	for i := 0; len(ms.Joined) < minPlayers; i++ {
		identity := bot.GetIdentity(i)
		if ms.isJoined(identity.UserID) {
			continue
		}
		ms.Joined = append(ms.Joined, identity.UserID)
		logger.Info("autoFillBots: added bot %s (%s)", identity.DisplayName, identity.UserID)
	}
	ms.LastSoloTick = 0
	mh.updateLabel(ms, dispatcher, logger)
	mh.broadcastLobby(ms, dispatcher, logger)
}

// handleStartGame creates the game session. Only the owner may start.
func (mh *matchHandler) handleStartGame(ctx context.Context, ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if ms.Started {
		logger.Warn("StartGame: match already started")
		return
	}
	if senderID != ms.OwnerID {
		logger.Warn("StartGame: user %s tried to start game but is not owner", senderID)
		return
	}

	if _, err := mh.svc.CreateSession(ctx, ms.RoomID, ms.Joined); err != nil {
		logger.Warn("StartGame: cannot start: %v", err)
		mh.sendRejected(ms, dispatcher, logger, senderID, "start_game", err.Error())
		return
	}

	ms.Started = true
	logger.Info("StartGame: game started in room %s with %d players", ms.RoomID, len(ms.Joined))
	mh.updateLabel(ms, dispatcher, logger)
	mh.broadcastStates(ctx, ms, dispatcher, logger)
}

// handleGameAction routes one client action through the orchestrator.
func (mh *matchHandler) handleGameAction(ctx context.Context, ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if !ms.Started {
		logger.Warn("handleGameAction: game not started")
		return
	}

	var envelope ActionEnvelope
	if err := json.Unmarshal(msg.GetData(), &envelope); err != nil {
		logger.Warn("handleGameAction: invalid envelope from %s: %v", senderID, err)
		return
	}

	res, err := mh.svc.SubmitAction(ctx, ms.RoomID, senderID, envelope.Action, envelope.Payload)
	switch {
	case errors.Is(err, app.ErrActionRejected):
		// Expected outcome, resolved entirely by validation.
		mh.sendRejected(ms, dispatcher, logger, senderID, envelope.Action, "action not allowed")
	case err != nil:
		logger.Error("handleGameAction: %s/%s failed: %v", senderID, envelope.Action, err)
		mh.sendRejected(ms, dispatcher, logger, senderID, envelope.Action, "internal error")
	case !res.Success:
		mh.sendRejected(ms, dispatcher, logger, senderID, envelope.Action, res.Message)
	}
	// Successful actions are picked up by the watermark broadcast in
	// MatchLoop, together with any concurrent bot moves.
}

// finishGame announces the result and tears the session down.
func (mh *matchHandler) finishGame(ctx context.Context, ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, snapshot *domain.GameState) {
	bytes, err := json.Marshal(GameEndedEvent{WinnerID: snapshot.WinnerID})
	if err == nil {
		dispatcher.BroadcastMessage(OpGameEnded, bytes, nil, nil, true)
	}
	if err := mh.svc.EndSession(ctx, ms.RoomID); err != nil {
		logger.Warn("finishGame: failed to end session %s: %v", ms.RoomID, err)
	}
	logger.Info("finishGame: room %s completed, winner %s", ms.RoomID, snapshot.WinnerID)
}

// broadcastLobby sends the roster to everyone in the lobby.
func (mh *matchHandler) broadcastLobby(ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	meta := mh.svc.Metadata()
	event := LobbyStateEvent{MinPlayers: meta.MinPlayers, MaxPlayers: meta.MaxPlayers}
	for _, id := range ms.Joined {
		seat := LobbySeat{UserID: id, IsBot: bot.IsBot(id), Owner: id == ms.OwnerID}
		if p, ok := ms.Presences[id]; ok {
			seat.DisplayName = p.GetUsername()
		} else if name := bot.GetDisplayName(id); name != "" {
			seat.DisplayName = name
		} else {
			seat.DisplayName = id
		}
		event.Seats = append(event.Seats, seat)
	}

	bytes, err := json.Marshal(event)
	if err != nil {
		logger.Error("broadcastLobby: marshal failed: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpLobbyState, bytes, nil, nil, true)
}

// broadcastStates sends every connected viewer their own redacted state.
// Redaction runs before any state crosses to a client, never after.
func (mh *matchHandler) broadcastStates(ctx context.Context, ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	for _, id := range ms.Joined {
		if bot.IsBot(id) {
			continue
		}
		mh.sendStateTo(ctx, ms, dispatcher, logger, id)
	}
}

func (mh *matchHandler) sendStateTo(ctx context.Context, ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) {
	presence, ok := ms.Presences[userID]
	if !ok {
		return
	}
	view, actions, err := mh.svc.SanitizeForViewer(ctx, ms.RoomID, userID)
	if err != nil {
		logger.Warn("sendStateTo: no view for %s: %v", userID, err)
		return
	}
	bytes, err := json.Marshal(StateUpdateEvent{State: view, Actions: actions})
	if err != nil {
		logger.Error("sendStateTo: marshal failed: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpStateUpdate, bytes, []runtime.Presence{presence}, nil, true)
}

// sendRejected tells one client their action was not applied.
func (mh *matchHandler) sendRejected(ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID, action, message string) {
	presence, ok := ms.Presences[userID]
	if !ok {
		return
	}
	bytes, err := json.Marshal(ActionRejectedEvent{Action: action, Message: message})
	if err != nil {
		logger.Error("sendRejected: marshal failed: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpActionRejected, bytes, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) label(ms *MatchState) string {
	meta := mh.svc.Metadata()
	phase := "lobby"
	if ms.Started {
		phase = "playing"
	}
	open := 0
	if !ms.Started && len(ms.Joined) < meta.MaxPlayers {
		open = meta.MaxPlayers - len(ms.Joined)
	}
	bytes, _ := json.Marshal(Label{Open: open, Game: meta.GameID, Phase: phase})
	return string(bytes)
}

func (mh *matchHandler) updateLabel(ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if err := dispatcher.MatchLabelUpdate(mh.label(ms)); err != nil {
		logger.Error("updateLabel: failed to update: %v", err)
	}
}

// MatchTerminate runs on match shutdown.
func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: match terminated for reason %d", reason)
	return state
}

// MatchSignal handles out-of-band signals; unused.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
