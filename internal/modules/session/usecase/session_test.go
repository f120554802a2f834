package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	sessionout "yomite/internal/modules/session/adapter/out"
	sessiondto "yomite/internal/modules/session/dto"
	sessionin "yomite/internal/modules/session/port/in"
	"yomite/internal/modules/session/service"
	"yomite/internal/modules/session/usecase"
	apperrors "yomite/internal/platform/errors"
)

type fakeClock struct {
	values []time.Time
	idx    int
}

func (f *fakeClock) Now() time.Time {
	if f.idx >= len(f.values) {
		return f.values[len(f.values)-1]
	}
	v := f.values[f.idx]
	f.idx++
	return v
}

type fakeID struct{ next int }

func (f *fakeID) New() string {
	f.next++
	return "sess-" + string(rune('0'+f.next))
}

func newSessionUsecase(fs afero.Fs, clk *fakeClock) sessionin.Usecase {
	return usecase.NewInteractor(
		service.NewSessionService(clk, &fakeID{}, sessionout.NewNoteSessionStore(fs, "/data")),
		sessionout.NewFileActiveSessionStore(fs, "/data"),
		nil,
	)
}

func TestSessionLifecycleCountsCyclesAndWritesNote(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	clk := &fakeClock{values: []time.Time{
		time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 25, 10, 12, 0, 0, time.UTC),
	}}
	uc := newSessionUsecase(fs, clk)
	ctx := context.Background()

	start, err := uc.Start(ctx, sessiondto.StartInput{Title: "むすめふさほせ", DeckSize: 7, UnitSeconds: 1.2})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := uc.RecordCycle(ctx); err != nil {
			t.Fatalf("record cycle: %v", err)
		}
	}
	active, err := uc.GetActive(ctx)
	if err != nil || active.SessionID != start.SessionID || active.Cycles != 3 || active.UnitSeconds != 1.2 {
		t.Fatalf("unexpected active session %+v (%v)", active, err)
	}

	end, err := uc.End(ctx, sessiondto.EndInput{Outcome: "all seven read", CardsRead: 9})
	if err != nil {
		t.Fatalf("end session: %v", err)
	}
	if end.DurationMin != 12 || end.Cycles != 3 || end.CardsRead != 7 {
		t.Fatalf("unexpected end output %+v", end)
	}
	if !strings.HasSuffix(end.Path, "sessions/2026/02/25/100000-むすめふさほせ.md") {
		t.Fatalf("unexpected note path %s", end.Path)
	}
	raw, err := afero.ReadFile(fs, end.Path)
	if err != nil {
		t.Fatalf("read note: %v", err)
	}
	note := string(raw)
	for _, want := range []string{"schema_version: 1", "cycles: 3", "cards_read: 7", "unit_seconds: 1.2", "## Outcome\n\nall seven read"} {
		if !strings.Contains(note, want) {
			t.Fatalf("note missing %q:\n%s", want, note)
		}
	}
	if _, err := uc.GetActive(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session after end, got %v", err)
	}

	history, err := uc.History(ctx, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].Cycles != 3 || history[0].Title != "むすめふさほせ" || !history[0].StartedAt.Equal(clk.values[0]) {
		t.Fatalf("unexpected history %+v", history)
	}
}

func TestStartRefusesSecondActiveSession(t *testing.T) {
	t.Parallel()
	clk := &fakeClock{values: []time.Time{time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC)}}
	uc := newSessionUsecase(afero.NewMemMapFs(), clk)
	if _, err := uc.Start(context.Background(), sessiondto.StartInput{DeckSize: 3}); err != nil {
		t.Fatalf("first start: %v", err)
	}
	active, _ := uc.GetActive(context.Background())
	if active.Title != "practice" {
		t.Fatalf("blank title should default, got %q", active.Title)
	}
	if _, err := uc.Start(context.Background(), sessiondto.StartInput{DeckSize: 3}); !errors.Is(err, apperrors.ErrActiveSessionExists) {
		t.Fatalf("expected active session exists, got %v", err)
	}
}

func TestEndAndRecordCycleErrors(t *testing.T) {
	t.Parallel()
	clk := &fakeClock{values: []time.Time{time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC)}}
	uc := newSessionUsecase(afero.NewMemMapFs(), clk)
	ctx := context.Background()
	if _, err := uc.RecordCycle(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("record without session: %v", err)
	}
	if _, err := uc.End(ctx, sessiondto.EndInput{}); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("end without session: %v", err)
	}
	if _, err := uc.End(ctx, sessiondto.EndInput{CardsRead: -1}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("negative cards read: %v", err)
	}
	if _, err := uc.Start(ctx, sessiondto.StartInput{DeckSize: -2}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("negative deck size: %v", err)
	}
	if _, err := uc.Start(ctx, sessiondto.StartInput{DeckSize: 2}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := uc.End(ctx, sessiondto.EndInput{SessionID: "other"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("mismatched id should fail, got %v", err)
	}
}

func TestHistoryOrderAndLimit(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	clk := &fakeClock{values: []time.Time{
		time.Date(2026, 2, 24, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 24, 9, 5, 0, 0, time.UTC),
		time.Date(2026, 2, 25, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 25, 9, 20, 0, 0, time.UTC),
	}}
	uc := newSessionUsecase(fs, clk)
	ctx := context.Background()
	if h, err := uc.History(ctx, 5); err != nil || len(h) != 0 {
		t.Fatalf("empty history: %v %v", h, err)
	}
	for _, title := range []string{"first", "second"} {
		if _, err := uc.Start(ctx, sessiondto.StartInput{Title: title, DeckSize: 1}); err != nil {
			t.Fatalf("start %s: %v", title, err)
		}
		if _, err := uc.End(ctx, sessiondto.EndInput{CardsRead: 1}); err != nil {
			t.Fatalf("end %s: %v", title, err)
		}
	}
	history, _ := uc.History(ctx, 0)
	if len(history) != 2 || history[0].Title != "second" || history[1].DurationMin != 5 {
		t.Fatalf("history should be newest first: %+v", history)
	}
	if limited, _ := uc.History(ctx, 1); len(limited) != 1 || limited[0].Title != "second" {
		t.Fatalf("limit not applied: %+v", limited)
	}
}
