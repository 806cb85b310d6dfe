package state

import "github.com/nathoo/atelier/types"

// RankOrder lists every rank from lowest to highest.
var RankOrder = []types.Rank{
	types.RankG, types.RankF, types.RankE, types.RankD,
	types.RankC, types.RankB, types.RankA, types.RankS,
}

// RankIndex returns the position of r in RankOrder, or -1 if unknown.
func RankIndex(r types.Rank) int {
	for i, rr := range RankOrder {
		if rr == r {
			return i
		}
	}
	return -1
}

// NextRank returns the rank one step above r.
func NextRank(r types.Rank) (types.Rank, bool) {
	i := RankIndex(r)
	if i < 0 || i+1 >= len(RankOrder) {
		return "", false
	}
	return RankOrder[i+1], true
}

// RankAtLeast reports whether have is the same as or above need. An empty
// need is always satisfied.
func RankAtLeast(have, need types.Rank) bool {
	if need == "" {
		return true
	}
	return RankIndex(have) >= RankIndex(need)
}

// RanksUpTo returns every rank at or below r. An unrecognized rank yields
// only the lowest rank.
func RanksUpTo(r types.Rank) []types.Rank {
	i := RankIndex(r)
	if i < 0 {
		return RankOrder[:1]
	}
	return RankOrder[:i+1]
}

// FindAvailable returns the index of quest id on the board, or -1.
func (m *Manager) FindAvailable(id string) int {
	return indexQuest(m.Quests.AvailableQuests, id)
}

// FindActive returns the index of quest id in the active list, or -1.
func (m *Manager) FindActive(id string) int {
	return indexQuest(m.Quests.ActiveQuests, id)
}

func indexQuest(qs []types.Quest, id string) int {
	for i, q := range qs {
		if q.ID == id {
			return i
		}
	}
	return -1
}

// AddMaterial adds qty of material id. An existing stack grows and its
// quality becomes the quantity-weighted mean.
func (m *Manager) AddMaterial(id string, qty, quality int) {
	if qty <= 0 {
		return
	}
	for i, st := range m.Inventory.Materials {
		if st.ID != id {
			continue
		}
		total := st.Quantity + qty
		m.Inventory.Materials[i].Quality = (st.Quality*st.Quantity + quality*qty) / total
		m.Inventory.Materials[i].Quantity = total
		return
	}
	m.Inventory.Materials = append(m.Inventory.Materials, types.MaterialStack{ID: id, Quantity: qty, Quality: quality})
}

// MaterialQuantity returns how many of material id the player holds.
func (m *Manager) MaterialQuantity(id string) int {
	for _, st := range m.Inventory.Materials {
		if st.ID == id {
			return st.Quantity
		}
	}
	return 0
}

// RemoveMaterial takes qty of material id, dropping the stack when it
// empties. It returns the removed stack, or false if there are not enough.
func (m *Manager) RemoveMaterial(id string, qty int) (types.MaterialStack, bool) {
	for i, st := range m.Inventory.Materials {
		if st.ID != id {
			continue
		}
		if st.Quantity < qty {
			return types.MaterialStack{}, false
		}
		if st.Quantity == qty {
			m.Inventory.Materials = append(m.Inventory.Materials[:i:i], m.Inventory.Materials[i+1:]...)
		} else {
			m.Inventory.Materials[i].Quantity -= qty
		}
		return types.MaterialStack{ID: id, Quantity: qty, Quality: st.Quality}, true
	}
	return types.MaterialStack{}, false
}

// FindItem returns the index of item instance id, or -1.
func (m *Manager) FindItem(id string) int {
	for i, it := range m.Inventory.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// RemoveItem removes item instance id.
func (m *Manager) RemoveItem(id string) (types.Item, bool) {
	i := m.FindItem(id)
	if i < 0 {
		return types.Item{}, false
	}
	it := m.Inventory.Items[i]
	m.Inventory.Items = append(m.Inventory.Items[:i:i], m.Inventory.Items[i+1:]...)
	return it, true
}

// HandIndex returns the index of card id in the hand, or -1.
func (m *Manager) HandIndex(id string) int {
	for i, c := range m.Deck.Hand {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Discard moves card id from the hand to the discard pile.
func (m *Manager) Discard(id string) bool {
	i := m.HandIndex(id)
	if i < 0 {
		return false
	}
	c := m.Deck.Hand[i]
	m.Deck.Hand = append(m.Deck.Hand[:i:i], m.Deck.Hand[i+1:]...)
	m.Deck.DiscardPile = append(m.Deck.DiscardPile, c)
	return true
}

// Draw moves one card into the hand. When the draw pile is empty the
// discard pile is shuffled into it first. It reports false when no card is
// left anywhere.
func (m *Manager) Draw(shuffle func(n int, swap func(i, j int))) (types.Card, bool) {
	if len(m.Deck.Cards) == 0 {
		if len(m.Deck.DiscardPile) == 0 {
			return types.Card{}, false
		}
		pile := m.Deck.DiscardPile
		shuffle(len(pile), func(i, j int) { pile[i], pile[j] = pile[j], pile[i] })
		m.Deck.Cards = pile
		m.Deck.DiscardPile = []types.Card{}
	}
	c := m.Deck.Cards[0]
	m.Deck.Cards = m.Deck.Cards[1:]
	m.Deck.Hand = append(m.Deck.Hand, c)
	return c, true
}

// TotalCards counts cards across the draw pile, hand and discard pile.
func (m *Manager) TotalCards() int {
	return len(m.Deck.Cards) + len(m.Deck.Hand) + len(m.Deck.DiscardPile)
}
