package arena

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/fastprodman/battlearena/internal/models"
)

// pendingBattle sets up scenario A: user2's request matched against user1.
func pendingBattle(t *testing.T, s *Service) (battleID uuid.UUID, p1, p2 models.Prediction) {
	t.Helper()

	p1 = mustSubmit(t, s, "user1", models.DirectionUp, "10")
	p2 = mustSubmit(t, s, "user2", models.DirectionDown, "10")

	return mustMatch(t, s, p2.ID), p1, p2
}

func TestAccept_ScenarioB(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{}
	s, _ := newTestService(t, WithPublisher(pub))
	battleID, _, _ := pendingBattle(t, s)

	res, err := s.Accept(testCtx(t), battleID, "user1")
	if err != nil {
		t.Fatalf("user1 accept: %v", err)
	}
	want := AcceptResult{UserAccepted: true, BothAccepted: false, BattleStatus: models.BattlePendingAcceptance}
	if res != want {
		t.Fatalf("user1 accept: want %+v, got %+v", want, res)
	}

	res, err = s.Accept(testCtx(t), battleID, "user2")
	if err != nil {
		t.Fatalf("user2 accept: %v", err)
	}
	want = AcceptResult{UserAccepted: true, BothAccepted: true, BattleStatus: models.BattleActive}
	if res != want {
		t.Fatalf("user2 accept: want %+v, got %+v", want, res)
	}

	v, err := s.GetBattle(testCtx(t), battleID, "user2")
	if err != nil {
		t.Fatalf("get battle: %v", err)
	}
	if v.Battle.ActivatedAt == nil || v.Battle.UserAAcceptAt == nil || v.Battle.UserBAcceptAt == nil {
		t.Fatalf("timestamps not set: %+v", v.Battle)
	}
	if v.Invitation.Status != models.InvitationAccepted || !v.Invitation.BothResponded() {
		t.Fatalf("invitation: %+v", v.Invitation)
	}

	wantEvents := []models.BattleEventType{
		models.EventBattleCreated,
		models.EventBattleAccepted,
		models.EventBattleAccepted,
		models.EventBattleActivated,
	}
	got := pub.types()
	if len(got) != len(wantEvents) {
		t.Fatalf("events: want %v, got %v", wantEvents, got)
	}
	for i := range got {
		if got[i] != wantEvents[i] {
			t.Fatalf("events: want %v, got %v", wantEvents, got)
		}
	}
}

func TestAccept_Idempotent(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	battleID, _, _ := pendingBattle(t, s)

	first, err := s.Accept(testCtx(t), battleID, "user1")
	if err != nil {
		t.Fatalf("first accept: %v", err)
	}

	second, err := s.Accept(testCtx(t), battleID, "user1")
	if err != nil {
		t.Fatalf("second accept: %v", err)
	}
	if first != second {
		t.Fatalf("repeat accept changed result: %+v vs %+v", first, second)
	}

	active, err := s.Accept(testCtx(t), battleID, "user2")
	if err != nil {
		t.Fatalf("user2 accept: %v", err)
	}

	again, err := s.Accept(testCtx(t), battleID, "user2")
	if err != nil {
		t.Fatalf("accept on active: %v", err)
	}
	if again != active {
		t.Fatalf("accept on active: want %+v, got %+v", active, again)
	}
}

// Both sides accepting at once activates the battle exactly once.
func TestAccept_Concurrent(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{}
	s, _ := newTestService(t, WithPublisher(pub))
	battleID, _, _ := pendingBattle(t, s)

	var wg sync.WaitGroup
	start := make(chan struct{})
	results := make([]AcceptResult, 2)
	errs := make([]error, 2)

	for i, user := range []string{"user1", "user2"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results[i], errs[i] = s.Accept(testCtx(t), battleID, user)
		}()
	}

	close(start)
	wg.Wait()

	activeSeen := 0
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("accept %d: %v", i, errs[i])
		}
		if results[i].BattleStatus == models.BattleActive {
			activeSeen++
		}
	}
	if activeSeen != 1 {
		t.Fatalf("want exactly one caller to see activation, got %d", activeSeen)
	}

	activated := 0
	for _, typ := range pub.types() {
		if typ == models.EventBattleActivated {
			activated++
		}
	}
	if activated != 1 {
		t.Fatalf("activated events: %d", activated)
	}
}

func TestDecline_ScenarioC(t *testing.T) {
	t.Parallel()

	s, db := newTestService(t)
	battleID, p1, p2 := pendingBattle(t, s)

	res, err := s.Decline(testCtx(t), battleID, "user2")
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if !res.BattleCancelled || !res.PredictionsReset {
		t.Fatalf("decline result: %+v", res)
	}

	for _, id := range []uuid.UUID{p1.ID, p2.ID} {
		if st := predictionStatus(t, db, id); st != models.PredictionSearching {
			t.Fatalf("prediction %s after decline: %s", id, st)
		}
	}

	v, err := s.GetBattle(testCtx(t), battleID, "user1")
	if err != nil {
		t.Fatalf("get battle: %v", err)
	}
	if v.Battle.Status != models.BattleCancelled {
		t.Fatalf("battle status: %s", v.Battle.Status)
	}
	// decliner is side A
	if v.Invitation.Status != models.InvitationDeclined ||
		v.Invitation.UserAResponse != models.ResponseDeclined ||
		v.Invitation.UserARespondedAt == nil {
		t.Fatalf("invitation: %+v", v.Invitation)
	}

	// user1's prediction is back in the pool and matches again
	again := mustMatch(t, s, p1.ID)
	if again == battleID {
		t.Fatal("rematch reused the cancelled battle")
	}
}

// A side that accepted may still decline while the battle is pending; the
// invitation then records the decline.
func TestDecline_AfterAccept(t *testing.T) {
	t.Parallel()

	s, db := newTestService(t)
	battleID, p1, p2 := pendingBattle(t, s)

	_, err := s.Accept(testCtx(t), battleID, "user2")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	_, err = s.Decline(testCtx(t), battleID, "user2")
	if err != nil {
		t.Fatalf("decline: %v", err)
	}

	v, err := s.GetBattle(testCtx(t), battleID, "user2")
	if err != nil {
		t.Fatalf("get battle: %v", err)
	}
	if v.Battle.Status != models.BattleCancelled {
		t.Fatalf("battle status: %s", v.Battle.Status)
	}
	// user2 requested the match, so plays side A
	if v.Invitation.Status != models.InvitationDeclined ||
		v.Invitation.UserAResponse != models.ResponseDeclined ||
		v.Invitation.UserBResponse != models.ResponsePending {
		t.Fatalf("invitation: %+v", v.Invitation)
	}
	if v.Invitation.UserARespondedAt == nil || v.Battle.UserAAcceptAt == nil ||
		!v.Invitation.UserARespondedAt.After(*v.Battle.UserAAcceptAt) {
		t.Fatalf("decline time not recorded: invitation %+v, battle %+v", v.Invitation, v.Battle)
	}

	for _, id := range []uuid.UUID{p1.ID, p2.ID} {
		if st := predictionStatus(t, db, id); st != models.PredictionSearching {
			t.Fatalf("prediction %s after decline: %s", id, st)
		}
	}
}

func TestLifecycle_Errors(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	ctx := testCtx(t)

	cancelled, _, _ := pendingBattle(t, s)
	_, err := s.Decline(ctx, cancelled, "user1")
	if err != nil {
		t.Fatalf("decline: %v", err)
	}

	active, _, _ := pendingBattle(t, s)
	for _, u := range []string{"user1", "user2"} {
		_, err = s.Accept(ctx, active, u)
		if err != nil {
			t.Fatalf("accept %s: %v", u, err)
		}
	}

	pending, _, _ := pendingBattle(t, s)

	tests := []struct {
		name    string
		op      func() error
		wantErr error
	}{
		{"accept_unknown", func() error { _, err := s.Accept(ctx, uuid.New(), "user1"); return err }, ErrNotFound},
		{"decline_unknown", func() error { _, err := s.Decline(ctx, uuid.New(), "user1"); return err }, ErrNotFound},
		{"accept_stranger", func() error { _, err := s.Accept(ctx, pending, "user9"); return err }, ErrForbidden},
		{"decline_stranger", func() error { _, err := s.Decline(ctx, pending, "user9"); return err }, ErrForbidden},
		{"accept_cancelled", func() error { _, err := s.Accept(ctx, cancelled, "user2"); return err }, ErrConflict},
		{"decline_cancelled", func() error { _, err := s.Decline(ctx, cancelled, "user2"); return err }, ErrConflict},
		{"decline_active", func() error { _, err := s.Decline(ctx, active, "user1"); return err }, ErrConflict},
		{"accept_anonymous", func() error { _, err := s.Accept(ctx, pending, ""); return err }, ErrAuthRequired},
		{"get_stranger", func() error { _, err := s.GetBattle(ctx, pending, "user9"); return err }, ErrForbidden},
		{"get_unknown", func() error { _, err := s.BattleStatus(ctx, uuid.New(), "user1"); return err }, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("want %v, got %v", tt.wantErr, err)
			}
		})
	}
}
