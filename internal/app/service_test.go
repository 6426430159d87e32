package app

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"

	"seabattle/internal/domain"
	"seabattle/internal/ports"
	"seabattle/internal/ports/memory"
)

func newTestService(seed int64) (*Service, *memory.Store) {
	store := memory.NewStore()
	svc := NewService(domain.NewEngine(rand.New(rand.NewSource(seed))), store)
	return svc, store
}

func mustJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return b
}

// placeAndConfirm walks one player through auto placement and confirmation.
func placeAndConfirm(t *testing.T, svc *Service, roomID, userID string) {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.SubmitAction(ctx, roomID, userID, domain.ActionAutoPlace, nil); err != nil {
		t.Fatalf("auto place for %s failed: %v", userID, err)
	}
	if _, err := svc.SubmitAction(ctx, roomID, userID, domain.ActionConfirmPlacement, nil); err != nil {
		t.Fatalf("confirm for %s failed: %v", userID, err)
	}
}

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name    string
		players []string
		wantErr error
	}{
		{
			name:    "TwoPlayers",
			players: []string{"p1", "p2"},
		},
		{
			name:    "TooFew",
			players: []string{"p1"},
			wantErr: ErrTooFewPlayers,
		},
		{
			name:    "TooMany",
			players: []string{"p1", "p2", "p3", "p4", "p5"},
			wantErr: ErrTooManyPlayers,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestService(1)
			state, err := svc.CreateSession(context.Background(), "room-1", tt.players)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateSession failed: %v", err)
			}
			if state.Phase != domain.PhasePlacement {
				t.Errorf("phase = %s, want %s", state.Phase, domain.PhasePlacement)
			}

			rec, err := store.FindSessionByRoom(context.Background(), "room-1")
			if err != nil {
				t.Fatalf("session was not persisted: %v", err)
			}
			if rec.GameID != domain.GameID || rec.State.Phase != domain.PhasePlacement {
				t.Errorf("persisted record = %+v", rec)
			}
		})
	}
}

func TestCreateSessionDuplicateRoom(t *testing.T) {
	svc, _ := newTestService(1)
	ctx := context.Background()
	if _, err := svc.CreateSession(ctx, "room-1", []string{"p1", "p2"}); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if _, err := svc.CreateSession(ctx, "room-1", []string{"p3", "p4"}); !errors.Is(err, ErrSessionExists) {
		t.Fatalf("error = %v, want %v", err, ErrSessionExists)
	}
}

func TestSubmitActionUnknownRoom(t *testing.T) {
	svc, _ := newTestService(1)
	_, err := svc.SubmitAction(context.Background(), "nowhere", "p1", domain.ActionAutoPlace, nil)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("error = %v, want %v", err, ErrSessionNotFound)
	}
}

func TestSubmitActionRejectedLeavesStateUntouched(t *testing.T) {
	svc, _ := newTestService(1)
	ctx := context.Background()
	if _, err := svc.CreateSession(ctx, "room-1", []string{"p1", "p2"}); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	// Attacking during placement is a rule violation, not an error.
	payload := mustJSON(t, domain.AttackPayload{TargetPlayerID: "p2", Row: 0, Col: 0})
	_, err := svc.SubmitAction(ctx, "room-1", "p1", domain.ActionAttack, payload)
	if !errors.Is(err, ErrActionRejected) {
		t.Fatalf("error = %v, want %v", err, ErrActionRejected)
	}

	snap, err := svc.FindSessionByRoom(ctx, "room-1")
	if err != nil {
		t.Fatalf("FindSessionByRoom failed: %v", err)
	}
	if snap.Phase != domain.PhasePlacement || len(snap.Player("p1").Ships) != 0 {
		t.Errorf("rejected action mutated the session")
	}
}

func TestSubmitActionDrivesGameToBattle(t *testing.T) {
	svc, _ := newTestService(7)
	ctx := context.Background()
	if _, err := svc.CreateSession(ctx, "room-1", []string{"p1", "p2"}); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	placeAndConfirm(t, svc, "room-1", "p1")
	placeAndConfirm(t, svc, "room-1", "p2")

	snap, err := svc.FindSessionByRoom(ctx, "room-1")
	if err != nil {
		t.Fatalf("FindSessionByRoom failed: %v", err)
	}
	if snap.Phase != domain.PhaseBattle || snap.CurrentTurnID() != "p1" {
		t.Errorf("phase=%s turn=%s, want battle with p1 first", snap.Phase, snap.CurrentTurnID())
	}
}

func TestRemovePlayerCompletesSession(t *testing.T) {
	svc, store := newTestService(7)
	ctx := context.Background()
	if _, err := svc.CreateSession(ctx, "room-1", []string{"p1", "p2"}); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	placeAndConfirm(t, svc, "room-1", "p1")
	placeAndConfirm(t, svc, "room-1", "p2")

	res, err := svc.RemovePlayer(ctx, "room-1", "p2")
	if err != nil {
		t.Fatalf("RemovePlayer failed: %v", err)
	}
	if res.State.Phase != domain.PhaseCompleted || res.State.WinnerID != "p1" {
		t.Fatalf("phase=%s winner=%s, want completed with p1", res.State.Phase, res.State.WinnerID)
	}

	// The terminal snapshot is persisted and further actions are refused.
	rec, err := store.FindSessionByRoom(ctx, "room-1")
	if err != nil {
		t.Fatalf("terminal state not persisted: %v", err)
	}
	if rec.State.Phase != domain.PhaseCompleted {
		t.Errorf("persisted phase = %s, want completed", rec.State.Phase)
	}
	if _, err := svc.SubmitAction(ctx, "room-1", "p1", domain.ActionChat, mustJSON(t, domain.ChatPayload{Message: "gg"})); !errors.Is(err, ErrSessionCompleted) {
		t.Errorf("error = %v, want %v", err, ErrSessionCompleted)
	}
}

func TestSnapshotsAreIsolated(t *testing.T) {
	svc, _ := newTestService(1)
	ctx := context.Background()
	if _, err := svc.CreateSession(ctx, "room-1", []string{"p1", "p2"}); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	snap, err := svc.FindSessionByRoom(ctx, "room-1")
	if err != nil {
		t.Fatalf("FindSessionByRoom failed: %v", err)
	}
	snap.Phase = domain.PhaseCompleted
	snap.Players[0].Alive = false

	again, err := svc.FindSessionByRoom(ctx, "room-1")
	if err != nil {
		t.Fatalf("FindSessionByRoom failed: %v", err)
	}
	if again.Phase != domain.PhasePlacement || !again.Players[0].Alive {
		t.Errorf("mutating a snapshot leaked into the session")
	}
}

func TestSanitizeForViewer(t *testing.T) {
	svc, _ := newTestService(7)
	ctx := context.Background()
	if _, err := svc.CreateSession(ctx, "room-1", []string{"p1", "p2"}); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	placeAndConfirm(t, svc, "room-1", "p1")
	placeAndConfirm(t, svc, "room-1", "p2")

	view, actions, err := svc.SanitizeForViewer(ctx, "room-1", "p2")
	if err != nil {
		t.Fatalf("SanitizeForViewer failed: %v", err)
	}
	for r := 0; r < domain.BoardSize; r++ {
		for c := 0; c < domain.BoardSize; c++ {
			if view.Player("p1").Board[r][c] == domain.CellShip {
				t.Fatalf("viewer p2 can see p1's ship at (%d,%d)", r, c)
			}
		}
	}
	// It is p1's turn, so p2 only gets chat.
	if len(actions) != 1 || actions[0] != domain.ActionChat {
		t.Errorf("actions = %v, want [chat]", actions)
	}
}

func TestEndSession(t *testing.T) {
	svc, store := newTestService(1)
	ctx := context.Background()
	if _, err := svc.CreateSession(ctx, "room-1", []string{"p1", "p2"}); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if err := svc.EndSession(ctx, "room-1"); err != nil {
		t.Fatalf("EndSession failed: %v", err)
	}
	if _, err := svc.FindSessionByRoom(ctx, "room-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("error = %v, want %v", err, ErrSessionNotFound)
	}
	if _, err := store.FindSessionByRoom(ctx, "room-1"); !errors.Is(err, ports.ErrSessionNotFound) {
		t.Errorf("store error = %v, want %v", err, ports.ErrSessionNotFound)
	}
}
