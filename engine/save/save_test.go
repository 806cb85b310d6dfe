package save

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bxcodec/faker/v4"
	"github.com/bxcodec/faker/v4/pkg/options"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pkg/errors"

	"github.com/nathoo/atelier/engine/events"
	"github.com/nathoo/atelier/engine/state"
	"github.com/nathoo/atelier/storage"
	"github.com/nathoo/atelier/types"
)

func testDefs() *state.Defs {
	return &state.Defs{
		Game: types.GameDef{
			Title:        "Test Atelier",
			Version:      "1.0.0",
			MaxDays:      30,
			StartingGold: 500,
			ActionPoints: 3,
		},
		Ranks: []types.RankDef{{Rank: types.RankG, GaugeMax: 100, Days: 10}},
	}
}

type fixture struct {
	store *storage.Memory
	state *state.Manager
	bus   *events.Bus
	mgr   *Manager
	lock  *sync.Mutex
	got   []events.Event
}

func newFixture(t *testing.T, quota int) *fixture {
	t.Helper()
	f := &fixture{
		store: storage.NewMemory(quota),
		state: state.NewManager(testDefs()),
		bus:   events.NewBus(nil),
		lock:  &sync.Mutex{},
	}
	f.bus.On(events.Any, func(ev events.Event) { f.got = append(f.got, ev) })
	f.mgr = NewManager(f.store, f.state, f.bus,
		WithLocker(f.lock),
		WithClock(func() time.Time { return time.UnixMilli(1_700_000_000_000) }))
	return f
}

func (f *fixture) count(name events.Name) int {
	n := 0
	for _, ev := range f.got {
		if ev.Name() == name {
			n++
		}
	}
	return n
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	f := newFixture(t, 0)
	d := 2
	f.state.Game.CurrentDay = 9
	f.state.Game.CurrentPhase = types.PhaseAlchemy
	f.state.Player.Gold = 777
	f.state.Player.Rank = types.RankE
	f.state.Quests.ActiveQuests = []types.Quest{{ID: "q1", Title: "Potion", Deadline: &d}}
	f.state.Inventory.Materials = []types.MaterialStack{{ID: "herb", Quantity: 3, Quality: 40}}
	f.state.RNG = types.RNGState{Seed: 5, Position: 12}
	f.mgr.Playtime().Set(95)
	want := f.state.Snapshot()

	if err := f.mgr.Save(2); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if f.count(events.NameSaveComplete) != 1 {
		t.Errorf("expected save:complete, got %d", f.count(events.NameSaveComplete))
	}

	f.state.Reset()
	f.mgr.Playtime().Set(0)
	if err := f.mgr.Load(2); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if diff := cmp.Diff(want, f.state.Snapshot()); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
	if f.mgr.Playtime().Seconds() != 95 {
		t.Errorf("expected playtime 95, got %d", f.mgr.Playtime().Seconds())
	}
	if f.count(events.NameLoadComplete) != 1 {
		t.Errorf("expected load:complete, got %d", f.count(events.NameLoadComplete))
	}
}

func TestSaveLoad_RandomSnapshots(t *testing.T) {
	for i := 0; i < 20; i++ {
		f := newFixture(t, 0)
		var snap types.Snapshot
		if err := faker.FakeData(&snap, options.WithRandomMapAndSliceMaxSize(5)); err != nil {
			t.Fatalf("FakeData: %v", err)
		}
		f.state.Restore(snap)

		if err := f.mgr.Save(1); err != nil {
			t.Fatalf("Save: %v", err)
		}
		f.state.Reset()
		if err := f.mgr.Load(1); err != nil {
			t.Fatalf("Load: %v", err)
		}

		if diff := cmp.Diff(snap, f.state.Snapshot(), cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("round %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestSave_InvalidSlot(t *testing.T) {
	f := newFixture(t, 0)
	for _, slot := range []int{0, 4, -1} {
		if err := f.mgr.Save(slot); !errors.Is(err, ErrInvalidSlot) {
			t.Errorf("Save(%d): expected ErrInvalidSlot, got %v", slot, err)
		}
		if err := f.mgr.Load(slot); !errors.Is(err, ErrInvalidSlot) {
			t.Errorf("Load(%d): expected ErrInvalidSlot, got %v", slot, err)
		}
	}
	if f.count(events.NameSaveFailed) != 3 {
		t.Errorf("expected 3 save:failed events, got %d", f.count(events.NameSaveFailed))
	}
}

func TestSave_QuotaExceeded(t *testing.T) {
	f := newFixture(t, 64)

	err := f.mgr.Save(1)
	if !errors.Is(err, storage.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
	if f.count(events.NameSaveFailed) != 1 || f.count(events.NameSaveComplete) != 0 {
		t.Errorf("expected only save:failed, got %d failed %d complete",
			f.count(events.NameSaveFailed), f.count(events.NameSaveComplete))
	}
}

func TestLoad_Missing(t *testing.T) {
	f := newFixture(t, 0)
	if err := f.mgr.Load(3); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestLoad_CorruptLeavesStateUntouched(t *testing.T) {
	f := newFixture(t, 0)
	f.state.Player.Gold = 42
	f.store.Set(DefaultPrefix+"1", []byte("{broken"))
	f.store.Set(DefaultPrefix+"2", []byte(`{"version":"1.0.0","state":{"player":"nope"}}`))

	for _, slot := range []int{1, 2} {
		if err := f.mgr.Load(slot); err == nil {
			t.Errorf("expected error loading corrupt slot %d", slot)
		}
	}
	if f.state.Player.Gold != 42 {
		t.Errorf("expected gold untouched, got %d", f.state.Player.Gold)
	}
	if f.count(events.NameLoadComplete) != 0 {
		t.Error("unexpected load:complete")
	}
}

func TestLoad_VersionMismatchStillLoads(t *testing.T) {
	f := newFixture(t, 0)
	f.store.Set(DefaultPrefix+"1", []byte(`{"version":"0.9.0","timestamp":1,"playtime":3,"state":{"game":{"currentDay":4,"currentPhase":"gathering","maxDays":30},"player":{"rank":"F","gold":10}}}`))

	if err := f.mgr.Load(1); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.state.Game.CurrentDay != 4 || f.state.Player.Rank != types.RankF {
		t.Errorf("unexpected state %+v %+v", f.state.Game, f.state.Player)
	}
}

func TestSlots(t *testing.T) {
	f := newFixture(t, 0)
	f.state.Game.CurrentDay = 6
	f.mgr.Playtime().Set(125)
	if err := f.mgr.Save(1); err != nil {
		t.Fatalf("Save: %v", err)
	}
	f.store.Set(DefaultPrefix+"2", []byte("garbage"))

	slots := f.mgr.Slots()
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	s1 := slots[0]
	if !s1.Exists || s1.Day != 6 || s1.Rank != types.RankG || s1.Playtime != 125*time.Second {
		t.Errorf("unexpected slot 1 %+v", s1)
	}
	if s1.Timestamp.UnixMilli() != 1_700_000_000_000 {
		t.Errorf("unexpected timestamp %v", s1.Timestamp)
	}
	if slots[1].Exists || slots[2].Exists {
		t.Errorf("expected slots 2 and 3 empty, got %+v", slots[1:])
	}
	if got := slots[2].Describe(); got != "Slot 3: empty" {
		t.Errorf("unexpected description %q", got)
	}
	if got := s1.Describe(); !strings.Contains(got, "day 6") {
		t.Errorf("unexpected description %q", got)
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t, 0)
	f.mgr.Save(1)

	if err := f.mgr.Delete(1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if f.mgr.Slots()[0].Exists {
		t.Error("expected slot 1 empty after delete")
	}
	if f.count(events.NameSaveDeleted) != 1 {
		t.Errorf("expected save:deleted, got %d", f.count(events.NameSaveDeleted))
	}
	if err := f.mgr.Delete(7); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("expected ErrInvalidSlot, got %v", err)
	}
}

func TestDelete_EmptySlot(t *testing.T) {
	f := newFixture(t, 0)

	if err := f.mgr.Delete(2); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
	if f.count(events.NameSaveDeleted) != 0 {
		t.Errorf("expected no save:deleted for an empty slot, got %d", f.count(events.NameSaveDeleted))
	}
}

func TestAutoSave_OnPhaseChange(t *testing.T) {
	f := newFixture(t, 0)
	f.mgr.EnableAutoSave(0)
	f.state.Game.CurrentDay = 3

	f.bus.Emit(events.PhaseChanged{Phase: types.PhaseGathering, Previous: types.PhaseQuestAccept, Day: 3})

	if f.count(events.NameAutosaveComplete) != 1 {
		t.Fatalf("expected autosave:complete, got %d", f.count(events.NameAutosaveComplete))
	}
	f.state.Reset()
	if err := f.mgr.LoadAuto(); err != nil {
		t.Fatalf("LoadAuto: %v", err)
	}
	if f.state.Game.CurrentDay != 3 {
		t.Errorf("expected day 3 from auto slot, got %d", f.state.Game.CurrentDay)
	}

	f.mgr.DisableAutoSave()
	f.bus.Emit(events.PhaseChanged{Phase: types.PhaseAlchemy})
	if f.count(events.NameAutosaveComplete) != 1 {
		t.Errorf("expected no auto-save after disable, got %d", f.count(events.NameAutosaveComplete))
	}
}

func TestAutoSave_Timer(t *testing.T) {
	f := newFixture(t, 0)
	done := make(chan struct{}, 1)
	f.bus.On(events.NameAutosaveComplete, func(events.Event) {
		select {
		case done <- struct{}{}:
		default:
		}
	})

	f.lock.Lock()
	f.mgr.EnableAutoSave(10 * time.Millisecond)
	f.lock.Unlock()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for auto-save")
	}

	f.lock.Lock()
	f.mgr.DisableAutoSave()
	_, err := f.store.Get(DefaultPrefix + "auto")
	f.lock.Unlock()
	if err != nil {
		t.Errorf("expected auto slot written, got %v", err)
	}
}

func TestLoadAuto_Missing(t *testing.T) {
	f := newFixture(t, 0)
	if err := f.mgr.LoadAuto(); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestUIRequests(t *testing.T) {
	f := newFixture(t, 0)
	f.state.Game.CurrentDay = 8

	f.bus.Emit(events.GameSaveRequested{SlotID: 2})
	if !f.mgr.Slots()[1].Exists {
		t.Fatal("expected slot 2 written by UI request")
	}

	f.state.Game.CurrentDay = 1
	f.bus.Emit(events.GameLoadRequested{SlotID: 2})
	if f.state.Game.CurrentDay != 8 {
		t.Errorf("expected day 8 after UI load, got %d", f.state.Game.CurrentDay)
	}

	f.got = nil
	f.bus.Emit(events.GameLoadRequested{SlotID: 3})
	f.bus.Emit(events.GameSaveRequested{SlotID: 9})
	var codes []string
	for _, ev := range f.got {
		if eo, ok := ev.(events.ErrorOccurred); ok {
			codes = append(codes, eo.Code)
		}
	}
	want := []string{events.CodeLoadFailed, events.CodeSaveFailed}
	if diff := cmp.Diff(want, codes); diff != "" {
		t.Errorf("error codes mismatch (-want +got):\n%s", diff)
	}
}

func TestPlaytime(t *testing.T) {
	var p Playtime
	p.tick()
	p.tick()
	if p.Seconds() != 2 {
		t.Errorf("expected 2 seconds, got %d", p.Seconds())
	}
	p.Set(-5)
	if p.Seconds() != 0 {
		t.Errorf("expected negative set clamped to 0, got %d", p.Seconds())
	}

	p.Start()
	p.Start()
	if !p.Running() {
		t.Error("expected running after Start")
	}
	p.Stop()
	p.Stop()
	if p.Running() {
		t.Error("expected stopped after Stop")
	}
}
