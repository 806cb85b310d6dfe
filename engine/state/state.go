// Package state owns the mutable game state: calendar, player standing,
// quests, deck and inventory. It holds plain data and knows nothing about
// the event bus.
package state

import (
	goccy "github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/nathoo/atelier/types"
)

// MaxActiveQuests caps how many quests the player can hold at once.
const MaxActiveQuests = 3

// Defs holds the immutable game content loaded from Lua.
type Defs struct {
	Game        types.GameDef
	Ranks       []types.RankDef // ordered lowest to highest
	Cards       map[string]types.CardDef
	Materials   map[string]types.MaterialDef
	Items       map[string]types.ItemDef
	Quests      []types.QuestTemplate
	Shop        map[string]types.ShopItem
	StarterDeck []string // card definition IDs
	RewardCards []string // card definition IDs granted on promotion
}

// RankDef returns the definition row for r.
func (d *Defs) RankDef(r types.Rank) (types.RankDef, bool) {
	for _, rd := range d.Ranks {
		if rd.Rank == r {
			return rd, true
		}
	}
	return types.RankDef{}, false
}

// Manager holds the five state entities for one session.
type Manager struct {
	Defs      *Defs
	Game      types.GameState
	Player    types.PlayerState
	Quests    types.QuestState
	Deck      types.DeckState
	Inventory types.InventoryState
	RNG       types.RNGState
}

// NewManager creates a manager initialised to the content's starting values.
func NewManager(defs *Defs) *Manager {
	m := &Manager{Defs: defs}
	m.Reset()
	return m
}

// Reset restores the starting values. The deck and the quest board start
// empty; the engine deals them.
func (m *Manager) Reset() {
	first := types.RankG
	gaugeMax, days := 100, 0
	if len(m.Defs.Ranks) > 0 {
		first = m.Defs.Ranks[0].Rank
		gaugeMax = m.Defs.Ranks[0].GaugeMax
		days = m.Defs.Ranks[0].Days
	}
	m.Game = types.GameState{
		CurrentDay:   1,
		CurrentPhase: types.PhaseQuestAccept,
		MaxDays:      m.Defs.Game.MaxDays,
	}
	m.Player = types.PlayerState{
		Rank:              first,
		PromotionGauge:    0,
		PromotionGaugeMax: gaugeMax,
		Gold:              m.Defs.Game.StartingGold,
		ActionPoints:      m.Defs.Game.ActionPoints,
		ActionPointsMax:   m.Defs.Game.ActionPoints,
		RankDaysRemaining: days,
	}
	m.Quests = types.QuestState{
		AvailableQuests:   []types.Quest{},
		ActiveQuests:      []types.Quest{},
		CompletedQuestIDs: []string{},
	}
	m.Deck = types.DeckState{
		Cards:       []types.Card{},
		Hand:        []types.Card{},
		DiscardPile: []types.Card{},
	}
	m.Inventory = types.InventoryState{
		Materials: []types.MaterialStack{},
		Items:     []types.Item{},
	}
	m.RNG = types.RNGState{}
}

// Snapshot returns a deep copy of the current state.
func (m *Manager) Snapshot() types.Snapshot {
	return types.Snapshot{
		Game:      m.Game,
		Player:    m.Player,
		Quests:    copyQuests(m.Quests),
		Deck:      copyDeck(m.Deck),
		Inventory: copyInventory(m.Inventory),
		RNG:       m.RNG,
	}
}

// Restore replaces the current state with a deep copy of s.
func (m *Manager) Restore(s types.Snapshot) {
	m.Game = s.Game
	m.Player = s.Player
	m.Quests = copyQuests(s.Quests)
	m.Deck = copyDeck(s.Deck)
	m.Inventory = copyInventory(s.Inventory)
	m.RNG = s.RNG
}

// Serialize encodes the current state as JSON.
func (m *Manager) Serialize() ([]byte, error) {
	b, err := goccy.Marshal(m.Snapshot())
	if err != nil {
		return nil, errors.Wrap(err, "encoding snapshot")
	}
	return b, nil
}

// Deserialize decodes a snapshot and restores it. The current state is left
// untouched on error.
func (m *Manager) Deserialize(data []byte) error {
	s, err := Decode(data)
	if err != nil {
		return err
	}
	m.Restore(*s)
	return nil
}

// Decode parses a serialized snapshot without applying it.
func Decode(data []byte) (*types.Snapshot, error) {
	var s types.Snapshot
	if err := goccy.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "decoding snapshot")
	}
	return &s, nil
}

func copyQuests(q types.QuestState) types.QuestState {
	return types.QuestState{
		AvailableQuests:   cloneQuests(q.AvailableQuests),
		ActiveQuests:      cloneQuests(q.ActiveQuests),
		CompletedQuestIDs: cloneSlice(q.CompletedQuestIDs),
	}
}

func cloneQuests(qs []types.Quest) []types.Quest {
	if qs == nil {
		return nil
	}
	out := make([]types.Quest, len(qs))
	for i, q := range qs {
		if q.Deadline != nil {
			d := *q.Deadline
			q.Deadline = &d
		}
		out[i] = q
	}
	return out
}

func copyDeck(d types.DeckState) types.DeckState {
	return types.DeckState{
		Cards:       cloneSlice(d.Cards),
		Hand:        cloneSlice(d.Hand),
		DiscardPile: cloneSlice(d.DiscardPile),
	}
}

func copyInventory(inv types.InventoryState) types.InventoryState {
	return types.InventoryState{
		Materials: cloneSlice(inv.Materials),
		Items:     cloneSlice(inv.Items),
	}
}

// cloneSlice copies s, keeping nil distinct from empty.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}
