package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rodaine/table"

	"github.com/nathoo/atelier/engine/events"
	"github.com/nathoo/atelier/engine/save"
	"github.com/nathoo/atelier/engine/state"
	"github.com/nathoo/atelier/types"
)

// observe runs on the bus for every event.
func (in *Interpreter) observe(ev events.Event) {
	var lines []string
	if in.Tracing() {
		lines = append(lines, "[trace] "+events.Format(ev))
	}
	lines = append(lines, in.render(ev)...)
	if len(lines) > 0 {
		in.say(lines...)
	}
}

// render describes an event for the player. State snapshots such as
// PlayerDataUpdated have no text; front ends redraw from state instead.
func (in *Interpreter) render(ev events.Event) []string {
	switch ev := ev.(type) {
	case events.QuestAccepted:
		return []string{fmt.Sprintf("Accepted %q.", ev.Quest.Title)}
	case events.QuestDelivered:
		return []string{fmt.Sprintf("Delivered %q: +%s, +%d exp (gauge %d).",
			ev.Quest.Title, in.gold(ev.Reward.Gold), ev.Reward.Exp, ev.PromotionGauge)}
	case events.QuestFailed:
		return []string{fmt.Sprintf("Quest %s failed: %s.", shortID(ev.QuestID), ev.Reason)}
	case events.GatheringComplete:
		return []string{fmt.Sprintf("Gathered %s (%d AP).", in.stacks(ev.Materials), ev.APSpent)}
	case events.AlchemyCrafted:
		return []string{fmt.Sprintf("Crafted %s (quality %d) from %s.", ev.Item.Name, ev.Item.Quality, in.stacks(ev.Consumed))}
	case events.ShopPurchased:
		return []string{fmt.Sprintf("Bought %d x %s for %s.", ev.Quantity, in.shopName(ev.ItemID), in.gold(ev.TotalPrice))}
	case events.PhaseChanged:
		return []string{fmt.Sprintf("== Day %d: %s ==", ev.Day, phaseTitle(ev.Phase))}
	case events.DayEnded:
		return []string{fmt.Sprintf("Day %d is over.", ev.PreviousDay)}
	case events.DayWarning:
		return []string{fmt.Sprintf("Only %d day(s) remain in the season!", ev.RemainingDays)}
	case events.RankupAvailable:
		return []string{fmt.Sprintf("Your promotion gauge is full. Type 'rankup' to challenge rank %s.", ev.NextRank)}
	case events.RankupSuccess:
		return []string{fmt.Sprintf("Promoted from rank %s to rank %s! Reward: %s and %d card(s).",
			ev.PreviousRank, ev.NewRank, in.gold(ev.RewardGold), ev.RewardCards)}
	case events.RankupFailed:
		return []string{fmt.Sprintf("Promotion to rank %s failed: %s.", ev.TargetRank, ev.Reason)}
	case events.GameOver:
		return append([]string{"GAME OVER: " + ev.Reason + "."}, in.scoreLines(ev.Stats)...)
	case events.GameClear:
		return append([]string{"You reached rank S. The guild is yours!"}, in.scoreLines(ev.Stats)...)
	case events.GameRestarted:
		return []string{"A new season begins."}
	case events.ErrorOccurred:
		return []string{"! " + ev.Message}
	case events.SaveComplete:
		return []string{fmt.Sprintf("[Game saved to slot %d.]", ev.SlotID)}
	case events.SaveFailed:
		if ev.SlotID == events.AutoSlot {
			return []string{"[Auto-save failed: " + ev.Reason + "]"}
		}
		return []string{fmt.Sprintf("[Save to slot %d failed: %s]", ev.SlotID, ev.Reason)}
	case events.SaveDeleted:
		return []string{fmt.Sprintf("[Slot %d deleted.]", ev.SlotID)}
	case events.LoadComplete:
		if ev.SlotID == events.AutoSlot {
			return []string{"[Auto-save loaded.]"}
		}
		return []string{fmt.Sprintf("[Game loaded from slot %d.]", ev.SlotID)}
	}
	return nil
}

func (in *Interpreter) gold(n int) string {
	return in.money.Sprintf("%d G", n)
}

func (in *Interpreter) scoreLines(s events.Stats) []string {
	return []string{
		fmt.Sprintf("Final rank %s on day %d with %s and %d quest(s) completed.",
			s.FinalRank, s.Day, in.gold(s.Gold), s.CompletedQuests),
		in.money.Sprintf("Score: %d (days %d + gold %d + quests %d)",
			s.TotalScore, s.DayBonus, s.GoldBonus, s.QuestBonus),
	}
}

func (in *Interpreter) materialName(id string) string {
	if m, ok := in.defs.Materials[id]; ok && m.Name != "" {
		return m.Name
	}
	return id
}

func (in *Interpreter) itemName(id string) string {
	if it, ok := in.defs.Items[id]; ok && it.Name != "" {
		return it.Name
	}
	return id
}

func (in *Interpreter) shopName(id string) string {
	if s, ok := in.defs.Shop[id]; ok && s.Name != "" {
		return s.Name
	}
	return id
}

func (in *Interpreter) stacks(ms []types.MaterialStack) string {
	if len(ms) == 0 {
		return "nothing"
	}
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = fmt.Sprintf("%s x%d (q%d)", in.materialName(m.ID), m.Quantity, m.Quality)
	}
	return strings.Join(parts, ", ")
}

func (in *Interpreter) requirement(r types.Requirement) string {
	if r.ItemID == "" {
		return "nothing"
	}
	s := fmt.Sprintf("%s x%d", in.itemName(r.ItemID), max(r.Quantity, 1))
	if r.MinQuality > 0 {
		s += fmt.Sprintf(" q%d+", r.MinQuality)
	}
	return s
}

func (in *Interpreter) statusLines() []string {
	var lines []string
	in.sess.View(func(m *state.Manager) {
		p := m.Player
		lines = []string{
			fmt.Sprintf("Day %d/%d, %s. Rank %s (%d/%d exp), %d day(s) left at this rank.",
				m.Game.CurrentDay, m.Game.MaxDays, phaseTitle(m.Game.CurrentPhase),
				p.Rank, p.PromotionGauge, p.PromotionGaugeMax, p.RankDaysRemaining),
			fmt.Sprintf("Gold %s, AP %d/%d, %d quest(s) accepted.",
				in.gold(p.Gold), p.ActionPoints, p.ActionPointsMax, len(m.Quests.ActiveQuests)),
		}
	})
	return lines
}

func (in *Interpreter) questLines(snap types.Snapshot) []string {
	lines := []string{"Quest board:"}
	if len(snap.Quests.AvailableQuests) == 0 {
		lines = append(lines, "  (empty)")
	}
	for i, q := range snap.Quests.AvailableQuests {
		lines = append(lines, fmt.Sprintf("  %d. %s", i+1, in.questSummary(q)))
	}
	lines = append(lines, fmt.Sprintf("Accepted (%d/%d):", len(snap.Quests.ActiveQuests), state.MaxActiveQuests))
	for i, q := range snap.Quests.ActiveQuests {
		lines = append(lines, fmt.Sprintf("  %d. %s", i+1, in.questSummary(q)))
	}
	return lines
}

func (in *Interpreter) questSummary(q types.Quest) string {
	s := fmt.Sprintf("%s [%s] %s / %d exp, needs %s",
		q.Title, q.RequiredRank, in.gold(q.Reward.Gold), q.Reward.Exp, in.requirement(q.Requirements))
	if q.Deadline != nil {
		s += fmt.Sprintf(", %d day(s) left", *q.Deadline)
	}
	return s
}

func (in *Interpreter) handLines(snap types.Snapshot) []string {
	lines := []string{"Hand:"}
	if len(snap.Deck.Hand) == 0 {
		lines = append(lines, "  (empty)")
	}
	for i, c := range snap.Deck.Hand {
		def := in.defs.Cards[c.DefID]
		var detail string
		switch def.Type {
		case types.CardGathering:
			names := make([]string, len(def.Drops))
			for j, id := range def.Drops {
				names[j] = in.materialName(id)
			}
			detail = fmt.Sprintf("gathering, %d AP: %s", def.APCost, strings.Join(names, ", "))
		case types.CardRecipe:
			parts := make([]string, len(def.Ingredients))
			for j, ing := range def.Ingredients {
				parts[j] = fmt.Sprintf("%s x%d", in.materialName(ing.MaterialID), ing.Quantity)
			}
			detail = fmt.Sprintf("recipe: %s -> %s", strings.Join(parts, ", "), in.itemName(def.Result))
		}
		lines = append(lines, fmt.Sprintf("  %d. %s (%s)", i+1, c.Name, detail))
	}
	lines = append(lines, fmt.Sprintf("Deck %d, discard %d.", len(snap.Deck.Cards), len(snap.Deck.DiscardPile)))
	return lines
}

func (in *Interpreter) inventoryLines(snap types.Snapshot) []string {
	inv := snap.Inventory
	if len(inv.Materials) == 0 && len(inv.Items) == 0 {
		return []string{"Your workshop shelves are empty."}
	}
	var lines []string
	if len(inv.Materials) > 0 {
		lines = append(lines, "Materials: "+in.stacks(inv.Materials))
	}
	if len(inv.Items) > 0 {
		lines = append(lines, "Items:")
		for i, it := range inv.Items {
			lines = append(lines, fmt.Sprintf("  %d. %s (q%d)", i+1, it.Name, it.Quality))
		}
	}
	return lines
}

func (in *Interpreter) shopLines(snap types.Snapshot) []string {
	var b strings.Builder
	t := table.New("ID", "Name", "Category", "Price", "Rank").WithWriter(&b)
	for _, id := range slices.Sorted(maps.Keys(in.defs.Shop)) {
		s := in.defs.Shop[id]
		rank := string(s.RequiredRank)
		if rank != "" && !state.RankAtLeast(snap.Player.Rank, s.RequiredRank) {
			rank += " (locked)"
		}
		t.AddRow(id, in.shopName(id), s.Category, in.gold(s.Price), rank)
	}
	t.Print()
	return splitLines(b.String())
}

// SlotTable renders save slot descriptions as a table.
func SlotTable(slots []save.SlotInfo) []string {
	var b strings.Builder
	t := table.New("Slot", "Day", "Rank", "Saved", "Playtime").WithWriter(&b)
	for _, s := range slots {
		if !s.Exists {
			t.AddRow(s.SlotID, "-", "-", "empty", "-")
			continue
		}
		t.AddRow(s.SlotID, s.Day, s.Rank, humanize.Time(s.Timestamp), s.Playtime.Round(time.Second))
	}
	t.Print()
	return splitLines(b.String())
}

func phaseTitle(p types.Phase) string {
	switch p {
	case types.PhaseQuestAccept:
		return "quest board"
	case types.PhaseGathering:
		return "gathering"
	case types.PhaseAlchemy:
		return "alchemy"
	case types.PhaseDelivery:
		return "delivery"
	case types.PhaseEvening:
		return "evening"
	}
	return string(p)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func splitLines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}
