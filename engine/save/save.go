// Package save persists game state into numbered slots of a key-value
// store and runs the auto-save timer.
package save

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	goccy "github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/nathoo/atelier/engine/events"
	"github.com/nathoo/atelier/engine/state"
	"github.com/nathoo/atelier/storage"
	"github.com/nathoo/atelier/types"
)

const (
	// Version is written into every record. Loading a record with a
	// different version logs a warning and proceeds.
	Version = "1.0.0"

	// DefaultPrefix is prepended to every storage key.
	DefaultPrefix = "atelier_save_"

	// Slots is the number of manual save slots, numbered from 1.
	Slots = 3
)

var (
	ErrInvalidSlot = errors.New("invalid save slot")
	ErrNoData      = errors.New("no save data")
)

// Record is the persisted save format.
type Record struct {
	Version   string           `json:"version"`
	Timestamp int64            `json:"timestamp"` // unix milliseconds
	Playtime  int64            `json:"playtime"`  // seconds
	State     goccy.RawMessage `json:"state"`
}

// SlotInfo summarizes one save slot for a load menu.
type SlotInfo struct {
	SlotID    int
	Exists    bool
	Day       int
	Rank      types.Rank
	Timestamp time.Time
	Playtime  time.Duration
}

// Manager reads and writes save slots for one session.
type Manager struct {
	store    storage.Store
	state    *state.Manager
	bus      *events.Bus
	playtime *Playtime
	lock     sync.Locker
	prefix   string
	log      *slog.Logger
	now      func() time.Time

	autoMu  sync.Mutex
	autoSub *events.Subscription
	autoEnd chan struct{}
}

// Option configures a Manager.
type Option func(*Manager)

// WithPrefix sets the storage key prefix.
func WithPrefix(p string) Option {
	return func(m *Manager) { m.prefix = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithLocker sets the lock the auto-save timer holds while it saves. It
// must be the same lock that guards event dispatch.
func WithLocker(l sync.Locker) Option {
	return func(m *Manager) { m.lock = l }
}

func WithPlaytime(p *Playtime) Option {
	return func(m *Manager) { m.playtime = p }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager and routes the UI save and load requests on
// bus to it.
func NewManager(store storage.Store, st *state.Manager, bus *events.Bus, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		state:    st,
		bus:      bus,
		playtime: &Playtime{},
		lock:     &sync.Mutex{},
		prefix:   DefaultPrefix,
		log:      slog.New(slog.DiscardHandler),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	events.On(bus, func(ev events.GameSaveRequested) {
		if err := m.Save(ev.SlotID); err != nil {
			m.emit(events.ErrorOccurred{Message: err.Error(), Code: events.CodeSaveFailed, Recoverable: true})
		}
	})
	events.On(bus, func(ev events.GameLoadRequested) {
		if err := m.Load(ev.SlotID); err != nil {
			m.emit(events.ErrorOccurred{Message: err.Error(), Code: events.CodeLoadFailed, Recoverable: true})
		}
	})
	return m
}

// Playtime returns the playtime counter persisted with each save.
func (m *Manager) Playtime() *Playtime {
	return m.playtime
}

func (m *Manager) key(slot int) string {
	return m.prefix + strconv.Itoa(slot)
}

func (m *Manager) autoKey() string {
	return m.prefix + "auto"
}

func validSlot(slot int) bool {
	return slot >= 1 && slot <= Slots
}

// Save writes the current state to slot. The caller must hold the
// dispatch lock.
func (m *Manager) Save(slot int) error {
	if !validSlot(slot) {
		m.emit(events.SaveFailed{SlotID: slot, Reason: ErrInvalidSlot.Error()})
		return errors.Wrapf(ErrInvalidSlot, "slot %d", slot)
	}
	if err := m.write(m.key(slot)); err != nil {
		m.log.Warn("save failed", "slot", slot, "err", err)
		m.emit(events.SaveFailed{SlotID: slot, Reason: err.Error()})
		return err
	}
	m.log.Info("game saved", "slot", slot)
	m.emit(events.SaveComplete{SlotID: slot})
	return nil
}

// Load restores the state saved in slot. Missing and corrupt slots return
// an error and leave the current state untouched.
func (m *Manager) Load(slot int) error {
	if !validSlot(slot) {
		return errors.Wrapf(ErrInvalidSlot, "slot %d", slot)
	}
	return m.loadKey(m.key(slot), slot)
}

// LoadAuto restores the auto-save slot.
func (m *Manager) LoadAuto() error {
	return m.loadKey(m.autoKey(), events.AutoSlot)
}

// Delete removes the save in slot. An empty slot returns ErrNoData and
// emits nothing.
func (m *Manager) Delete(slot int) error {
	if !validSlot(slot) {
		return errors.Wrapf(ErrInvalidSlot, "slot %d", slot)
	}
	key := m.key(slot)
	if _, err := m.store.Get(key); errors.Is(err, storage.ErrNotFound) {
		return errors.Wrapf(ErrNoData, "slot %d", slot)
	} else if err != nil {
		return errors.Wrapf(err, "reading slot %d", slot)
	}
	if err := m.store.Delete(key); err != nil {
		return errors.Wrapf(err, "deleting slot %d", slot)
	}
	m.emit(events.SaveDeleted{SlotID: slot})
	return nil
}

// Slots describes every manual slot. Slots whose record cannot be decoded
// are reported as empty.
func (m *Manager) Slots() []SlotInfo {
	out := make([]SlotInfo, 0, Slots)
	for slot := 1; slot <= Slots; slot++ {
		info := SlotInfo{SlotID: slot}
		rec, err := m.read(m.key(slot))
		if err == nil {
			if snap, err := state.Decode(rec.State); err == nil {
				info.Exists = true
				info.Day = snap.Game.CurrentDay
				info.Rank = snap.Player.Rank
				info.Timestamp = time.UnixMilli(rec.Timestamp)
				info.Playtime = time.Duration(rec.Playtime) * time.Second
			}
		}
		out = append(out, info)
	}
	return out
}

// EnableAutoSave saves to the auto slot on every phase change and, when
// interval is positive, on a timer. Calling it again replaces the previous
// schedule.
func (m *Manager) EnableAutoSave(interval time.Duration) {
	m.DisableAutoSave()

	m.autoMu.Lock()
	defer m.autoMu.Unlock()
	m.autoSub = events.On(m.bus, func(events.PhaseChanged) { m.autoSave() })
	if interval <= 0 {
		return
	}
	end := make(chan struct{})
	m.autoEnd = end
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-end:
				return
			case <-t.C:
				m.lock.Lock()
				select {
				case <-end:
				default:
					m.autoSave()
				}
				m.lock.Unlock()
			}
		}
	}()
}

// DisableAutoSave stops both auto-save triggers. A tick already waiting
// for the lock is dropped.
func (m *Manager) DisableAutoSave() {
	m.autoMu.Lock()
	defer m.autoMu.Unlock()
	if m.autoSub != nil {
		m.autoSub.Unsubscribe()
		m.autoSub = nil
	}
	if m.autoEnd != nil {
		close(m.autoEnd)
		m.autoEnd = nil
	}
}

func (m *Manager) autoSave() {
	if err := m.write(m.autoKey()); err != nil {
		m.log.Warn("auto-save failed", "err", err)
		m.emit(events.SaveFailed{SlotID: events.AutoSlot, Reason: err.Error()})
		return
	}
	m.log.Debug("auto-saved")
	m.emit(events.AutosaveComplete{SlotID: events.AutoSlot})
}

func (m *Manager) write(key string) error {
	data, err := m.state.Serialize()
	if err != nil {
		return err
	}
	rec := Record{
		Version:   Version,
		Timestamp: m.now().UnixMilli(),
		Playtime:  m.playtime.Seconds(),
		State:     data,
	}
	b, err := goccy.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "encoding save record")
	}
	if err := m.store.Set(key, b); err != nil {
		return errors.Wrapf(err, "writing %s", key)
	}
	return nil
}

func (m *Manager) read(key string) (*Record, error) {
	b, err := m.store.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", key)
	}
	var rec Record
	if err := goccy.Unmarshal(b, &rec); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", key)
	}
	if len(rec.State) == 0 {
		return nil, errors.Errorf("decoding %s: record has no state", key)
	}
	return &rec, nil
}

func (m *Manager) loadKey(key string, slot int) error {
	rec, err := m.read(key)
	if err != nil {
		return err
	}
	if rec.Version != Version {
		m.log.Warn("save version mismatch", "slot", slot, "saved", rec.Version, "current", Version)
	}
	if err := m.state.Deserialize(rec.State); err != nil {
		return errors.Wrapf(err, "slot %d", slot)
	}
	m.playtime.Set(rec.Playtime)
	m.log.Info("game loaded", "slot", slot)
	m.emit(events.LoadComplete{SlotID: slot})
	return nil
}

func (m *Manager) emit(ev events.Event) {
	if err := m.bus.Emit(ev); err != nil {
		m.log.Warn("event delivery failed", "event", string(ev.Name()), "err", err)
	}
}

// Describe renders a slot for menus, e.g. "Slot 2: day 14, rank D".
func (s SlotInfo) Describe() string {
	if !s.Exists {
		return fmt.Sprintf("Slot %d: empty", s.SlotID)
	}
	return fmt.Sprintf("Slot %d: day %d, rank %s", s.SlotID, s.Day, s.Rank)
}
