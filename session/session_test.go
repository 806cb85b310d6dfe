package session

import (
	"testing"

	"github.com/nathoo/atelier/config"
	"github.com/nathoo/atelier/content"
	"github.com/nathoo/atelier/engine/events"
	"github.com/nathoo/atelier/engine/state"
	"github.com/nathoo/atelier/storage"
	"github.com/nathoo/atelier/types"
)

func newTestSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	defs, err := content.Default()
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	s := New(defs, storage.NewMemory(0), append([]Option{WithSeed(11)}, opts...)...)
	t.Cleanup(func() { s.Close() })
	return s
}

func day(s *Session) int {
	var d int
	s.View(func(m *state.Manager) { d = m.Game.CurrentDay })
	return d
}

func testConfig(t *testing.T, backend string) config.Config {
	return config.Config{
		DataDir:    t.TempDir(),
		Backend:    backend,
		SavePrefix: "test_",
		LogLevel:   "debug",
		Seed:       5,
	}
}

func TestSession_SaveAndLoad(t *testing.T) {
	s := newTestSession(t)

	if err := s.Save(1); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Send(events.DayEndRequested{}); err != nil {
		t.Fatal(err)
	}
	if day(s) != 2 {
		t.Fatalf("day = %d, want 2", day(s))
	}
	if err := s.Load(1); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if day(s) != 1 {
		t.Errorf("day after load = %d, want 1", day(s))
	}

	slots := s.Slots()
	if len(slots) != 3 || !slots[0].Exists || slots[1].Exists {
		t.Errorf("slots = %+v", slots)
	}
}

func TestSession_Delete(t *testing.T) {
	s := newTestSession(t)
	if err := s.Save(2); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(2); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s.Slots()[1].Exists {
		t.Error("slot 2 should be empty after delete")
	}
	if err := s.Delete(9); err == nil {
		t.Error("expected error for invalid slot")
	}
}

func TestSession_ContinueFromAutoSave(t *testing.T) {
	s := newTestSession(t, WithAutoSave(0))

	if err := s.Send(events.PhaseCompleted{Phase: types.PhaseQuestAccept}); err != nil {
		t.Fatal(err)
	}
	// Each rollover changes phase, so the auto slot follows the latest day.
	for i := 0; i < 2; i++ {
		if err := s.Send(events.DayEndRequested{}); err != nil {
			t.Fatal(err)
		}
	}
	if day(s) != 3 {
		t.Fatalf("day = %d, want 3", day(s))
	}
	if err := s.Continue(); err != nil {
		t.Fatalf("Continue: %v", err)
	}
	if day(s) != 3 {
		t.Errorf("day after continue = %d, want 3 (latest auto-save)", day(s))
	}
}

func TestSession_ContinueWithoutAutoSave(t *testing.T) {
	s := newTestSession(t)
	if err := s.Continue(); err == nil {
		t.Error("expected error when no auto-save exists")
	}
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(testConfig(t, config.BackendMemory))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if s.Defs.Game.Title == "" {
		t.Error("expected default content")
	}
	if err := s.Save(1); err != nil {
		t.Errorf("Save: %v", err)
	}
}

func TestOpen_SQLitePersists(t *testing.T) {
	cfg := testConfig(t, config.BackendSQLite)

	s, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Send(events.DayEndRequested{}); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(3); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	info := s.Slots()[2]
	if !info.Exists || info.Day != 2 {
		t.Errorf("slot 3 = %+v, want day 2", info)
	}
}

func TestOpen_InvalidConfig(t *testing.T) {
	cfg := testConfig(t, "tape")
	if _, err := Open(cfg); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestOpen_ContentDir(t *testing.T) {
	cfg := testConfig(t, config.BackendMemory)
	cfg.ContentDir = "../loader/testdata/minimal"
	s, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if s.Defs.Game.Title != "Minimal Guild" {
		t.Errorf("Title = %q", s.Defs.Game.Title)
	}
}

func TestOpenStore(t *testing.T) {
	cfg := testConfig(t, config.BackendMemory)
	cfg.StorageQuota = 10
	st, err := OpenStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if err := st.Set("key", []byte("too long value")); err == nil {
		t.Error("expected quota error")
	}
}
