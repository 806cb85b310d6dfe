package engine

import (
	"fmt"

	"github.com/nathoo/atelier/engine/events"
	"github.com/nathoo/atelier/engine/state"
	"github.com/nathoo/atelier/types"
)

// MaxPurchaseQuantity caps a single shop order.
const MaxPurchaseQuantity = 99

func (e *Engine) purchase(ev events.ShopPurchaseRequested) {
	s := e.State
	item, ok := e.Defs.Shop[ev.ItemID]
	if !ok || (ev.Category != "" && ev.Category != item.Category) {
		e.reject(events.CodeUnknownItem, fmt.Sprintf("the shop does not sell %q", ev.ItemID))
		return
	}
	qty := ev.Quantity
	if qty < 1 || qty > MaxPurchaseQuantity {
		e.reject(events.CodeInvalidQuantity,
			fmt.Sprintf("invalid quantity %d (1-%d)", ev.Quantity, MaxPurchaseQuantity))
		return
	}
	price := ev.Price
	if price <= 0 {
		price = item.Price
	}
	if price <= 0 {
		e.reject(events.CodeUnknownItem, fmt.Sprintf("%s has no price", item.Name))
		return
	}
	// Compare by division so price*qty is only computed once it fits in gold.
	if s.Player.Gold < 0 || qty > s.Player.Gold/price {
		e.reject(events.CodeInsufficientGold,
			fmt.Sprintf("%d x %s at %d gold each is more than your %d gold",
				qty, item.Name, price, s.Player.Gold))
		return
	}
	total := price * qty
	if !state.RankAtLeast(s.Player.Rank, item.RequiredRank) {
		e.reject(events.CodeRankTooLow,
			fmt.Sprintf("%s requires rank %s", item.Name, item.RequiredRank))
		return
	}

	s.Player.Gold -= total
	ref := item.Ref
	if ref == "" {
		ref = item.ID
	}
	switch item.Category {
	case types.ShopCard:
		for range qty {
			s.Deck.Cards = append(s.Deck.Cards, e.newCard(ref))
		}
	case types.ShopMaterial:
		s.AddMaterial(ref, qty, e.Defs.Materials[ref].Quality)
	case types.ShopArtifact:
		def := e.Defs.Items[ref]
		name := def.Name
		if name == "" {
			name = item.Name
		}
		for range qty {
			s.Inventory.Items = append(s.Inventory.Items, types.Item{
				ID:      e.newID(),
				ItemID:  ref,
				Name:    name,
				Quality: def.Quality,
			})
		}
	}

	e.log.Info("purchase", "item", item.ID, "quantity", qty, "total", total)
	e.emit(events.ShopPurchased{Category: item.Category, ItemID: item.ID, Quantity: qty, TotalPrice: total})
	e.emit(events.PlayerDataUpdated{Player: s.Player})
	if item.Category == types.ShopCard {
		e.emit(e.deckCounts())
	} else {
		e.emit(events.InventoryUpdated{Inventory: s.Snapshot().Inventory})
	}
}
