package engine

import (
	"fmt"
	"slices"

	"github.com/nathoo/atelier/engine/events"
	"github.com/nathoo/atelier/types"
)

// qualitySpread is how far a gathered material's quality may stray from the
// card's base quality in either direction.
const qualitySpread = 10

// handCard looks up the definition behind hand card id. It rejects the
// request when the card is absent or of the wrong type.
func (e *Engine) handCard(id string, want types.CardType) (types.CardDef, bool) {
	i := e.State.HandIndex(id)
	if i < 0 {
		e.reject(events.CodeCardNotInHand, fmt.Sprintf("card %q is not in your hand", id))
		return types.CardDef{}, false
	}
	def, ok := e.Defs.Cards[e.State.Deck.Hand[i].DefID]
	if !ok || def.Type != want {
		e.reject(events.CodeWrongCardType, fmt.Sprintf("%s is not a %s card", e.State.Deck.Hand[i].Name, want))
		return types.CardDef{}, false
	}
	return def, true
}

func (e *Engine) gather(ev events.GatheringExecuteRequested) {
	s := e.State
	def, ok := e.handCard(ev.CardID, types.CardGathering)
	if !ok {
		return
	}
	if s.Player.ActionPoints < def.APCost {
		e.reject(events.CodeInsufficientAP,
			fmt.Sprintf("%s needs %d AP, you have %d", def.Name, def.APCost, s.Player.ActionPoints))
		return
	}
	for _, id := range ev.SelectedMaterialIDs {
		if !slices.Contains(def.Drops, id) {
			e.reject(events.CodeInvalidMaterial, fmt.Sprintf("%s cannot yield %q", def.Name, id))
			return
		}
	}

	s.Player.ActionPoints -= def.APCost
	var got []types.MaterialStack
	for _, id := range ev.SelectedMaterialIDs {
		q := def.BaseQuality + e.RNG.Roll(2*qualitySpread+1) - qualitySpread - 1
		q = min(max(q, 1), 100)
		s.AddMaterial(id, 1, q)
		got = mergeStack(got, types.MaterialStack{ID: id, Quantity: 1, Quality: q})
	}
	s.Discard(ev.CardID)

	e.log.Debug("gathered", "card", def.ID, "materials", len(ev.SelectedMaterialIDs))
	e.emit(events.GatheringComplete{CardID: ev.CardID, Materials: got, APSpent: def.APCost})
	e.emit(events.InventoryUpdated{Inventory: s.Snapshot().Inventory})
	e.emit(events.HandUpdated{Hand: e.hand()})
	e.emit(events.PlayerDataUpdated{Player: s.Player})
}

func (e *Engine) craft(ev events.AlchemyCraftRequested) {
	s := e.State
	def, ok := e.handCard(ev.RecipeCardID, types.CardRecipe)
	if !ok {
		return
	}
	for _, ing := range def.Ingredients {
		if len(ev.MaterialIDs) > 0 && !slices.Contains(ev.MaterialIDs, ing.MaterialID) {
			e.reject(events.CodeMissingMaterials, fmt.Sprintf("%s needs %s", def.Name, ing.MaterialID))
			return
		}
		if s.MaterialQuantity(ing.MaterialID) < ing.Quantity {
			e.reject(events.CodeMissingMaterials,
				fmt.Sprintf("%s needs %d %s, you have %d", def.Name, ing.Quantity, ing.MaterialID, s.MaterialQuantity(ing.MaterialID)))
			return
		}
	}

	var consumed []types.MaterialStack
	weighted, units := 0, 0
	for _, ing := range def.Ingredients {
		st, _ := s.RemoveMaterial(ing.MaterialID, ing.Quantity)
		consumed = append(consumed, st)
		weighted += st.Quality * st.Quantity
		units += st.Quantity
	}
	quality := e.Defs.Items[def.Result].Quality
	if units > 0 {
		quality = weighted / units
	}
	name := e.Defs.Items[def.Result].Name
	if name == "" {
		name = def.Result
	}
	item := types.Item{ID: e.newID(), ItemID: def.Result, Name: name, Quality: quality}
	s.Inventory.Items = append(s.Inventory.Items, item)
	s.Discard(ev.RecipeCardID)

	e.log.Info("crafted", "item", item.ItemID, "quality", item.Quality)
	e.emit(events.AlchemyCrafted{Item: item, Consumed: consumed})
	e.emit(events.InventoryUpdated{Inventory: s.Snapshot().Inventory})
	e.emit(events.HandUpdated{Hand: e.hand()})
}

// mergeStack folds st into stacks, combining quantities of the same
// material with a weighted-mean quality.
func mergeStack(stacks []types.MaterialStack, st types.MaterialStack) []types.MaterialStack {
	for i, cur := range stacks {
		if cur.ID == st.ID {
			total := cur.Quantity + st.Quantity
			stacks[i].Quality = (cur.Quality*cur.Quantity + st.Quality*st.Quantity) / total
			stacks[i].Quantity = total
			return stacks
		}
	}
	return append(stacks, st)
}
