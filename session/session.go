// Package session wires one playable game: content, engine, storage, the
// save manager and the playtime clock.
package session

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/nathoo/atelier/config"
	"github.com/nathoo/atelier/content"
	"github.com/nathoo/atelier/engine"
	"github.com/nathoo/atelier/engine/events"
	"github.com/nathoo/atelier/engine/save"
	"github.com/nathoo/atelier/engine/state"
	"github.com/nathoo/atelier/logging"
	"github.com/nathoo/atelier/storage"
)

// Session is a running game. Front ends talk to it through Send and the
// slot helpers; all of them serialize on the engine's lock.
type Session struct {
	Defs   *state.Defs
	Engine *engine.Engine
	Saves  *save.Manager

	store   storage.Store
	log     *slog.Logger
	closers []io.Closer
}

// Option configures New.
type Option func(*options)

type options struct {
	log      *slog.Logger
	seed     int64
	prefix   string
	autoSave bool
	interval time.Duration
	clock    func() time.Time
}

// WithLogger sets the logger shared by the engine and the save manager.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithSeed fixes the game RNG seed.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithSavePrefix sets the storage key prefix for save slots.
func WithSavePrefix(p string) Option {
	return func(o *options) { o.prefix = p }
}

// WithAutoSave enables auto-save on phase changes and, for a positive
// interval, on a timer.
func WithAutoSave(interval time.Duration) Option {
	return func(o *options) {
		o.autoSave = true
		o.interval = interval
	}
}

// WithClock overrides the save timestamp clock.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// New starts a session over defs and store. The session takes ownership of
// store and closes it in Close.
func New(defs *state.Defs, store storage.Store, opts ...Option) *Session {
	o := options{log: logging.Discard(), prefix: save.DefaultPrefix}
	for _, opt := range opts {
		opt(&o)
	}
	if o.seed == 0 {
		o.seed = time.Now().UnixNano()
	}

	eng := engine.New(defs, engine.WithLogger(o.log), engine.WithSeed(o.seed))
	saveOpts := []save.Option{
		save.WithPrefix(o.prefix),
		save.WithLogger(o.log),
		save.WithLocker(eng.Locker()),
	}
	if o.clock != nil {
		saveOpts = append(saveOpts, save.WithClock(o.clock))
	}
	s := &Session{
		Defs:    defs,
		Engine:  eng,
		Saves:   save.NewManager(store, eng.State, eng.Bus, saveOpts...),
		store:   store,
		log:     o.log,
		closers: []io.Closer{store},
	}
	if o.autoSave {
		s.locked(func() { s.Saves.EnableAutoSave(o.interval) })
	}
	s.Saves.Playtime().Start()
	s.log.Info("session started", "title", defs.Game.Title, "seed", o.seed)
	return s
}

// Open builds a session from configuration: it sets up logging, loads
// content and opens the configured store.
func Open(cfg config.Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating data dir")
	}
	log, logCloser, err := logging.New(cfg.LogPath(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	defs, err := content.Load(cfg.ContentDir, log)
	if err != nil {
		logCloser.Close()
		return nil, err
	}
	store, err := OpenStore(cfg)
	if err != nil {
		logCloser.Close()
		return nil, err
	}

	opts := []Option{
		WithLogger(log),
		WithSeed(cfg.Seed),
		WithSavePrefix(cfg.SavePrefix),
	}
	if cfg.AutoSave {
		opts = append(opts, WithAutoSave(cfg.AutoSaveInterval))
	}
	s := New(defs, store, opts...)
	s.closers = append(s.closers, logCloser)
	return s, nil
}

// OpenStore opens the storage backend named by cfg.
func OpenStore(cfg config.Config) (storage.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return storage.NewMemory(cfg.StorageQuota), nil
	case config.BackendSQLite:
		db, err := storage.OpenSQLite(cfg.DatabasePath())
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, errors.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// Send delivers a UI request to the engine.
func (s *Session) Send(ev events.UIEvent) error {
	return s.Engine.Send(ev)
}

// View reads the game state under the session lock.
func (s *Session) View(fn func(*state.Manager)) {
	s.Engine.View(fn)
}

// Save writes slot.
func (s *Session) Save(slot int) (err error) {
	s.locked(func() { err = s.Saves.Save(slot) })
	return err
}

// Load restores slot.
func (s *Session) Load(slot int) (err error) {
	s.locked(func() { err = s.Saves.Load(slot) })
	return err
}

// Continue restores the auto-save slot.
func (s *Session) Continue() (err error) {
	s.locked(func() { err = s.Saves.LoadAuto() })
	return err
}

// Delete clears slot.
func (s *Session) Delete(slot int) (err error) {
	s.locked(func() { err = s.Saves.Delete(slot) })
	return err
}

// Slots lists the manual save slots.
func (s *Session) Slots() []save.SlotInfo {
	return s.Saves.Slots()
}

// Playtime is the time played in this session, including time carried
// over from a loaded save.
func (s *Session) Playtime() time.Duration {
	return time.Duration(s.Saves.Playtime().Seconds()) * time.Second
}

// Close stops auto-save and the playtime clock and releases the store and
// log file.
func (s *Session) Close() error {
	s.locked(func() { s.Saves.DisableAutoSave() })
	s.Saves.Playtime().Stop()
	s.log.Info("session closed", "playtime_s", s.Saves.Playtime().Seconds())

	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = errors.WithStack(err)
		}
	}
	return first
}

func (s *Session) locked(fn func()) {
	l := s.Engine.Locker()
	l.Lock()
	defer l.Unlock()
	fn()
}
