package arena

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/fastprodman/battlearena/internal/models"
)

func TestSubmit_Validation(t *testing.T) {
	t.Parallel()

	// validation runs before any database access
	s := New(nil)

	valid := func() SubmitInput {
		return SubmitInput{
			UserID:         "u1",
			PredictedPrice: dec("50000"),
			Direction:      models.DirectionUp,
			Stake:          dec("10"),
			ReferencePrice: dec("49000.5"),
		}
	}

	tests := []struct {
		name    string
		mutate  func(in *SubmitInput)
		wantErr error
	}{
		{"missing_user", func(in *SubmitInput) { in.UserID = "" }, ErrAuthRequired},
		{"blank_user", func(in *SubmitInput) { in.UserID = "   " }, ErrAuthRequired},
		{"zero_stake", func(in *SubmitInput) { in.Stake = dec("0") }, ErrValidation},
		{"negative_stake", func(in *SubmitInput) { in.Stake = dec("-1") }, ErrValidation},
		{"bad_direction", func(in *SubmitInput) { in.Direction = "sideways" }, ErrValidation},
		{"empty_direction", func(in *SubmitInput) { in.Direction = "" }, ErrValidation},
		{"zero_price", func(in *SubmitInput) { in.PredictedPrice = dec("0") }, ErrValidation},
		{"negative_reference", func(in *SubmitInput) { in.ReferencePrice = dec("-3") }, ErrValidation},
		{"too_many_decimals", func(in *SubmitInput) { in.Stake = dec("0.123456789") }, ErrValidation},
		{"too_large", func(in *SubmitInput) { in.PredictedPrice = dec("1000000000000") }, ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := valid()
			tt.mutate(&in)

			_, err := s.Submit(t.Context(), in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("want %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSubmit_StoresSearchingPrediction(t *testing.T) {
	t.Parallel()

	s, db := newTestService(t)

	p := mustSubmit(t, s, "u1", models.DirectionUp, "10.5")

	if p.Status != models.PredictionSearching {
		t.Fatalf("status: want searching, got %s", p.Status)
	}
	if p.ID == uuid.Nil {
		t.Fatal("expected id to be set")
	}

	got, err := s.GetPrediction(testCtx(t), p.ID, "u1")
	if err != nil {
		t.Fatalf("get prediction: %v", err)
	}
	if !got.Stake.Equal(p.Stake) || got.Direction != p.Direction || !got.CreatedAt.Equal(p.CreatedAt) {
		t.Fatalf("stored prediction mismatch: want %+v, got %+v", p, got)
	}
	if st := predictionStatus(t, db, p.ID); st != models.PredictionSearching {
		t.Fatalf("db status: %s", st)
	}
}

func TestCancel(t *testing.T) {
	t.Parallel()

	s, db := newTestService(t)
	ctx := testCtx(t)

	searching := mustSubmit(t, s, "owner", models.DirectionUp, "10")
	matched := mustSubmit(t, s, "owner", models.DirectionUp, "20")
	counter := mustSubmit(t, s, "other", models.DirectionDown, "20")
	mustMatch(t, s, counter.ID)

	tests := []struct {
		name    string
		id      uuid.UUID
		user    string
		wantErr error
	}{
		{"unknown_id", uuid.New(), "owner", ErrNotFound},
		{"not_owner", searching.ID, "other", ErrForbidden},
		{"already_matched", matched.ID, "owner", ErrConflict},
		{"no_identity", searching.ID, "", ErrAuthRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Cancel(ctx, tt.id, tt.user)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("want %v, got %v", tt.wantErr, err)
			}
		})
	}

	p, err := s.Cancel(ctx, searching.ID, "owner")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if p.Status != models.PredictionCancelled {
		t.Fatalf("returned status: %s", p.Status)
	}
	if st := predictionStatus(t, db, searching.ID); st != models.PredictionCancelled {
		t.Fatalf("db status: %s", st)
	}

	_, err = s.Cancel(ctx, searching.ID, "owner")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("second cancel: want conflict, got %v", err)
	}

	// cancelled predictions leave the pool
	late := mustSubmit(t, s, "late", models.DirectionDown, "10")

	res, err := s.FindOrCreateMatch(ctx, late.ID)
	if err != nil {
		t.Fatalf("find match: %v", err)
	}
	if res.Matched {
		t.Fatalf("matched against a cancelled prediction: %+v", res)
	}
}

func TestGetPrediction_Errors(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	p := mustSubmit(t, s, "owner", models.DirectionUp, "10")

	_, err := s.GetPrediction(testCtx(t), uuid.New(), "owner")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown: want not found, got %v", err)
	}

	_, err = s.GetPrediction(testCtx(t), p.ID, "intruder")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("intruder: want forbidden, got %v", err)
	}
}

func TestListSearching_NewestFirst(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)

	first := mustSubmit(t, s, "u1", models.DirectionUp, "1")
	second := mustSubmit(t, s, "u1", models.DirectionUp, "2")
	mustSubmit(t, s, "u2", models.DirectionUp, "3")

	got, err := s.ListSearching(testCtx(t), "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 predictions, got %d", len(got))
	}
	if got[0].ID != second.ID || got[1].ID != first.ID {
		t.Fatalf("order: want [%s %s], got [%s %s]", second.ID, first.ID, got[0].ID, got[1].ID)
	}
}
