// Package engine provides the application layer: it subscribes to UI
// requests on the event bus, mutates the state manager, and reports the
// results as application events.
package engine

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/nathoo/atelier/engine/events"
	"github.com/nathoo/atelier/engine/state"
	"github.com/nathoo/atelier/types"
)

// Engine holds the game definitions, the mutable state and the bus that
// connects them to a front end. One Engine is one game session.
type Engine struct {
	Defs  *state.Defs
	State *state.Manager
	Bus   *events.Bus
	RNG   *RNG

	log  *slog.Logger
	seed int64
	mu   sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used by the engine and its bus.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithSeed sets the RNG seed.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

// New creates a new engine from definitions, registers its handlers and
// deals the starting hand and quest board.
func New(defs *state.Defs, opts ...Option) *Engine {
	e := &Engine{
		Defs:  defs,
		State: state.NewManager(defs),
		log:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Bus = events.NewBus(e.log)
	e.RNG = NewRNG(e.seed)
	e.register()
	e.deal()
	return e
}

// Send delivers a UI request and runs the resulting cascade to completion.
// It is the only entry point front ends should use; it serializes access
// with other callers such as the auto-save timer.
func (e *Engine) Send(ev events.UIEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Bus.Emit(ev)
}

// View runs fn with the session lock held, for reading state outside a
// handler.
func (e *Engine) View(fn func(s *state.Manager)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.State)
}

// Locker exposes the session lock to collaborators that act on their own
// goroutine.
func (e *Engine) Locker() sync.Locker {
	return &e.mu
}

func (e *Engine) register() {
	events.On(e.Bus, func(ev events.PhaseCompleted) { e.advancePhase(ev.Phase) })
	events.On(e.Bus, func(ev events.PhaseSkipRequested) { e.advancePhase(ev.Phase) })
	events.On(e.Bus, func(events.DayEndRequested) { e.rollover() })
	events.On(e.Bus, func(events.DayAdvanceRequested) { e.rollover() })
	events.On(e.Bus, e.acceptQuest)
	events.On(e.Bus, e.deliverQuest)
	events.On(e.Bus, e.challengeRank)
	events.On(e.Bus, e.purchase)
	events.On(e.Bus, e.gather)
	events.On(e.Bus, e.craft)
	events.On(e.Bus, func(events.GameRestartRequested) { e.restart() })
	events.On(e.Bus, func(events.LoadComplete) { e.restoreRNG() })
}

// deal fills a freshly reset state: shuffled starter deck, opening hand
// and the first quest board.
func (e *Engine) deal() {
	s := e.State
	for _, id := range e.Defs.StarterDeck {
		s.Deck.Cards = append(s.Deck.Cards, e.newCard(id))
	}
	cards := s.Deck.Cards
	e.RNG.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	for i := 0; i < e.Defs.Game.HandSize; i++ {
		if _, ok := s.Draw(e.RNG.Shuffle); !ok {
			break
		}
	}
	for i := 0; i < e.Defs.Game.InitialQuests; i++ {
		e.generateQuest()
	}
	e.syncRNG()
}

func (e *Engine) restart() {
	e.State.Reset()
	e.deal()
	e.log.Info("game restarted")
	e.emit(events.GameRestarted{})
	e.emit(events.PlayerDataUpdated{Player: e.State.Player})
	e.emit(events.HandUpdated{Hand: e.hand()})
}

// emit publishes an application event. The RNG position is copied into the
// state first so that anything saving in response sees a consistent state.
func (e *Engine) emit(ev events.Event) {
	e.syncRNG()
	if err := e.Bus.Emit(ev); err != nil {
		e.log.Warn("event delivery failed", "event", string(ev.Name()), "err", err)
	}
}

func (e *Engine) reject(code, msg string) {
	e.log.Debug("request rejected", "code", code, "message", msg)
	e.emit(events.ErrorOccurred{Message: msg, Code: code, Recoverable: true})
}

func (e *Engine) syncRNG() {
	e.State.RNG = types.RNGState{Seed: e.RNG.Seed(), Position: e.RNG.Position()}
}

func (e *Engine) restoreRNG() {
	e.RNG = RestoreRNG(e.State.RNG.Seed, e.State.RNG.Position)
}

// newID draws a UUID from the game RNG so that replays are deterministic.
func (e *Engine) newID() string {
	return uuid.Must(uuid.NewRandomFromReader(e.RNG)).String()
}

func (e *Engine) newCard(defID string) types.Card {
	def := e.Defs.Cards[defID]
	name := def.Name
	if name == "" {
		name = defID
	}
	return types.Card{ID: e.newID(), DefID: defID, Name: name, Type: def.Type}
}

func (e *Engine) hand() []types.Card {
	return append([]types.Card(nil), e.State.Deck.Hand...)
}

func (e *Engine) deckCounts() events.DeckUpdated {
	return events.DeckUpdated{
		CardsRemaining: len(e.State.Deck.Cards),
		DiscardCount:   len(e.State.Deck.DiscardPile),
	}
}
