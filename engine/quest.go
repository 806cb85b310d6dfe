package engine

import (
	"fmt"

	"github.com/nathoo/atelier/engine/events"
	"github.com/nathoo/atelier/engine/state"
	"github.com/nathoo/atelier/types"
)

func (e *Engine) acceptQuest(ev events.QuestAcceptRequested) {
	s := e.State
	i := s.FindAvailable(ev.QuestID)
	if i < 0 {
		return
	}
	if len(s.Quests.ActiveQuests) >= state.MaxActiveQuests {
		e.reject(events.CodeQuestLimit,
			fmt.Sprintf("You can only hold %d quests at a time.", state.MaxActiveQuests))
		return
	}
	q := s.Quests.AvailableQuests[i]
	s.Quests.AvailableQuests = append(s.Quests.AvailableQuests[:i:i], s.Quests.AvailableQuests[i+1:]...)
	s.Quests.ActiveQuests = append(s.Quests.ActiveQuests, q)

	e.emit(events.QuestAccepted{Quest: q})
	e.emit(events.QuestsAcceptedUpdated{ActiveQuests: append([]types.Quest(nil), s.Quests.ActiveQuests...)})
}

func (e *Engine) deliverQuest(ev events.QuestDeliveryRequested) {
	s := e.State
	i := s.FindActive(ev.QuestID)
	if i < 0 {
		return
	}
	q := s.Quests.ActiveQuests[i]

	var handedIn []string
	if q.Requirements.ItemID != "" {
		ids, ok := e.pickDeliveryItems(q.Requirements, ev.ItemIDs)
		if !ok {
			e.reject(events.CodeRequirementsUnmet, fmt.Sprintf("%q needs %s", q.Title, describeRequirement(q.Requirements)))
			return
		}
		for _, id := range ids {
			s.RemoveItem(id)
		}
		handedIn = ids
	}

	s.Quests.ActiveQuests = append(s.Quests.ActiveQuests[:i:i], s.Quests.ActiveQuests[i+1:]...)
	s.Quests.CompletedQuestIDs = append(s.Quests.CompletedQuestIDs, q.ID)
	s.Player.PromotionGauge += q.Reward.Exp
	s.Player.Gold += q.Reward.Gold

	e.log.Info("quest delivered", "quest", q.ID, "gold", q.Reward.Gold, "exp", q.Reward.Exp)
	e.emit(events.QuestDelivered{Quest: q, Reward: q.Reward, PromotionGauge: s.Player.PromotionGauge})
	e.emit(events.PlayerDataUpdated{Player: s.Player})
	e.emit(events.QuestsAcceptedUpdated{ActiveQuests: append([]types.Quest(nil), s.Quests.ActiveQuests...)})
	if len(handedIn) > 0 {
		e.emit(events.InventoryUpdated{Inventory: s.Snapshot().Inventory})
	}
	if s.Player.PromotionGauge >= s.Player.PromotionGaugeMax && s.Player.Rank != types.RankS {
		if next, ok := state.NextRank(s.Player.Rank); ok {
			e.emit(events.RankupAvailable{CurrentRank: s.Player.Rank, NextRank: next})
		}
	}
}

// pickDeliveryItems chooses the item instances handed in for req. Explicit
// ids must all qualify; otherwise qualifying items are taken in inventory
// order.
func (e *Engine) pickDeliveryItems(req types.Requirement, ids []string) ([]string, bool) {
	need := max(req.Quantity, 1)
	qualifies := func(it types.Item) bool {
		return it.ItemID == req.ItemID && it.Quality >= req.MinQuality
	}

	var picked []string
	if len(ids) > 0 {
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			j := e.State.FindItem(id)
			if j < 0 || seen[id] || !qualifies(e.State.Inventory.Items[j]) {
				return nil, false
			}
			seen[id] = true
			picked = append(picked, id)
		}
		if len(picked) < need {
			return nil, false
		}
		return picked[:need], true
	}

	for _, it := range e.State.Inventory.Items {
		if qualifies(it) {
			picked = append(picked, it.ID)
			if len(picked) == need {
				return picked, true
			}
		}
	}
	return nil, false
}

func describeRequirement(r types.Requirement) string {
	s := fmt.Sprintf("%d x %s", max(r.Quantity, 1), r.ItemID)
	if r.MinQuality > 0 {
		s += fmt.Sprintf(" (quality %d+)", r.MinQuality)
	}
	return s
}
