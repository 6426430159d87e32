package bot

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"seabattle/internal/domain"
	"seabattle/internal/engine"
)

// SessionFinder is the session query boundary the driver polls. The driver
// never trusts a snapshot for long: every step of a routine re-fetches the
// live session before acting.
type SessionFinder interface {
	FindSessionByRoom(ctx context.Context, roomID string) (*domain.GameState, error)
}

// ActionAPI is the same public action gate human clients go through.
type ActionAPI interface {
	SubmitAction(ctx context.Context, roomID, userID, action string, payload json.RawMessage) (engine.Result[*domain.GameState], error)
}

// Config tunes the driver's timing.
type Config struct {
	// MinDelay and MaxDelay bound the randomized thinking pause before
	// each bot step.
	MinDelay time.Duration
	MaxDelay time.Duration
	// LockTimeout is the stale threshold for the per-bot soft lock.
	LockTimeout time.Duration
}

// Driver acts as a synthetic client for bot-controlled participants,
// driving both the placement and battle phases through the public action
// API. All coordination is per (room, bot); rooms share nothing but the
// lock table itself.
type Driver struct {
	finder SessionFinder
	api    ActionAPI
	logger runtime.Logger
	locks  *LockTable
	cfg    Config

	rngMu sync.Mutex
	rng   *rand.Rand

	// inflight counts running routines per room. A WaitGroup cannot take
	// Add concurrently with Wait once its counter reaches zero, and rooms
	// dispatch and wait independently of each other, so the counter is
	// guarded by a mutex and a condition variable instead.
	inflightMu   sync.Mutex
	inflightCond *sync.Cond
	inflight     map[string]int
}

// NewDriver constructs a bot driver with the provided rng or a time-seeded
// default.
func NewDriver(finder SessionFinder, api ActionAPI, logger runtime.Logger, cfg Config, rng *rand.Rand) *Driver {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = 30 * time.Second
	}
	d := &Driver{
		finder:   finder,
		api:      api,
		logger:   logger,
		locks:    NewLockTable(cfg.LockTimeout),
		cfg:      cfg,
		rng:      rng,
		inflight: make(map[string]int),
	}
	d.inflightCond = sync.NewCond(&d.inflightMu)
	return d
}

// Locks exposes the lock table, for tests that simulate stuck tasks.
func (d *Driver) Locks() *LockTable { return d.locks }

// Wait blocks until every in-flight bot routine, across all rooms, has
// finished. New routines dispatched while Wait blocks are waited on too.
func (d *Driver) Wait() {
	d.inflightMu.Lock()
	for len(d.inflight) > 0 {
		d.inflightCond.Wait()
	}
	d.inflightMu.Unlock()
}

func (d *Driver) begin(roomID string) {
	d.inflightMu.Lock()
	d.inflight[roomID]++
	d.inflightMu.Unlock()
}

func (d *Driver) finish(roomID string) {
	d.inflightMu.Lock()
	d.inflight[roomID]--
	if d.inflight[roomID] <= 0 {
		delete(d.inflight, roomID)
	}
	d.inflightCond.Broadcast()
	d.inflightMu.Unlock()
}

// CheckAndPlay scans a point-in-time session snapshot for bots that must
// act and kicks off one asynchronous routine per actionable, unlocked bot.
// It returns immediately; per-bot work proceeds independently.
func (d *Driver) CheckAndPlay(ctx context.Context, roomID string, snapshot *domain.GameState) {
	if snapshot == nil {
		return
	}
	for i := range snapshot.Players {
		p := &snapshot.Players[i]
		if !IsBot(p.PlayerID) || !p.Alive {
			continue
		}

		needsPlacement := snapshot.Phase == domain.PhasePlacement && !p.PlacementComplete
		needsBattle := snapshot.Phase == domain.PhaseBattle && snapshot.CurrentTurnID() == p.PlayerID
		if !needsPlacement && !needsBattle {
			continue
		}
		if !d.locks.TryAcquire(roomID, p.PlayerID) {
			continue
		}

		d.begin(roomID)
		if needsPlacement {
			go d.runPlacement(ctx, roomID, p.PlayerID)
		} else {
			go d.runBattle(ctx, roomID, p.PlayerID)
		}
	}
}

// runPlacement auto-places and confirms the bot's fleet. Placement is not
// guarded by turn order and can race with human actions, so every step
// re-validates against the freshest state instead of trusting the snapshot
// this routine was dispatched from.
func (d *Driver) runPlacement(ctx context.Context, roomID, botID string) {
	// Registered first so it runs after the re-dispatch defer below: a
	// newly dispatched routine is counted before this one finishes.
	defer d.finish(roomID)
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("bot %s placement routine panicked in room %s: %v", botID, roomID, r)
		}
		d.locks.Release(roomID, botID)
		// The phase may have moved to battle while this bot held its lock;
		// give it an immediate chance to act again.
		if snap, err := d.finder.FindSessionByRoom(ctx, roomID); err == nil {
			d.CheckAndPlay(ctx, roomID, snap)
		}
	}()

	d.think()
	snap, err := d.finder.FindSessionByRoom(ctx, roomID)
	if err != nil {
		return
	}
	if !placementPending(snap, botID) {
		return
	}
	if _, err := d.api.SubmitAction(ctx, roomID, botID, domain.ActionAutoPlace, nil); err != nil {
		d.logger.Debug("bot %s auto place in room %s not applied: %v", botID, roomID, err)
		return
	}

	d.think()
	snap, err = d.finder.FindSessionByRoom(ctx, roomID)
	if err != nil {
		return
	}
	if !placementPending(snap, botID) {
		return
	}
	if _, err := d.api.SubmitAction(ctx, roomID, botID, domain.ActionConfirmPlacement, nil); err != nil {
		d.logger.Debug("bot %s confirm placement in room %s not applied: %v", botID, roomID, err)
	}
}

func placementPending(s *domain.GameState, botID string) bool {
	if s.Phase != domain.PhasePlacement {
		return false
	}
	p := s.Player(botID)
	return p != nil && p.Alive && !p.PlacementComplete
}

// runBattle attacks for as long as the turn-advancement rule keeps the
// turn with this bot: a hit or sunk grants another action, a miss ends the
// loop. Every iteration re-reads the authoritative session, since the
// bot's own prior action, another bot, or a human may have changed it.
func (d *Driver) runBattle(ctx context.Context, roomID, botID string) {
	defer d.finish(roomID)
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("bot %s battle routine panicked in room %s: %v", botID, roomID, r)
		}
		d.locks.Release(roomID, botID)
	}()

	for {
		d.think()
		snap, err := d.finder.FindSessionByRoom(ctx, roomID)
		if err != nil {
			return
		}
		if snap.Phase != domain.PhaseBattle || snap.CurrentTurnID() != botID {
			return
		}
		me := snap.Player(botID)
		if me == nil || !me.Alive {
			return
		}

		targetID, cell, ok := d.chooseTarget(snap, botID)
		if !ok {
			return
		}
		payload, err := json.Marshal(domain.AttackPayload{TargetPlayerID: targetID, Row: cell.Row, Col: cell.Col})
		if err != nil {
			return
		}

		res, err := d.api.SubmitAction(ctx, roomID, botID, domain.ActionAttack, payload)
		if err != nil {
			// The state moved between fetch and submit; re-check the
			// preconditions on the next pass around the loop.
			d.logger.Debug("bot %s attack in room %s not applied: %v", botID, roomID, err)
			continue
		}
		if !res.Success || res.State.LastAttack == nil || res.State.LastAttack.Outcome == domain.OutcomeMiss {
			return
		}
	}
}

func (d *Driver) chooseTarget(s *domain.GameState, botID string) (string, domain.Coord, bool) {
	d.rngMu.Lock()
	defer d.rngMu.Unlock()
	return ChooseTarget(d.rng, s, botID)
}

// think pauses for a randomized delay inside the configured bounds. A
// maximum below the minimum is treated as equal to the minimum.
func (d *Driver) think() {
	delay := d.cfg.MinDelay
	if spread := d.cfg.MaxDelay - d.cfg.MinDelay; spread > 0 {
		d.rngMu.Lock()
		delay += time.Duration(d.rng.Int63n(int64(spread) + 1))
		d.rngMu.Unlock()
	}
	if delay > 0 {
		time.Sleep(delay)
	}
}
