package engine

import (
	"fmt"
	"math"

	"github.com/nathoo/atelier/engine/events"
	"github.com/nathoo/atelier/engine/state"
	"github.com/nathoo/atelier/types"
)

// nextPhase maps each phase to its successor within a day. Delivery and
// evening have no entry: finishing them rolls the day over.
var nextPhase = map[types.Phase]types.Phase{
	types.PhaseQuestAccept: types.PhaseGathering,
	types.PhaseGathering:   types.PhaseAlchemy,
	types.PhaseAlchemy:     types.PhaseDelivery,
}

// warningWindow is how many remaining days trigger app:day:warning.
const warningWindow = 5

func (e *Engine) advancePhase(from types.Phase) {
	if from == types.PhaseDelivery || from == types.PhaseEvening {
		e.rollover()
		return
	}
	next, ok := nextPhase[from]
	if !ok {
		e.reject(events.CodeUnknownPhase, fmt.Sprintf("unknown phase %q", from))
		return
	}
	prev := e.State.Game.CurrentPhase
	e.State.Game.CurrentPhase = next
	e.log.Debug("phase changed", "from", prev, "to", next, "day", e.State.Game.CurrentDay)
	e.emit(events.PhaseChanged{Phase: next, Previous: prev, Day: e.State.Game.CurrentDay})
}

// rollover ends the current day. The steps run in a fixed order because
// later steps read what earlier ones wrote.
func (e *Engine) rollover() {
	s := e.State
	prevDay := s.Game.CurrentDay
	prevPhase := s.Game.CurrentPhase

	s.Game.CurrentDay++
	s.Game.CurrentPhase = types.PhaseQuestAccept

	s.Player.ActionPoints = s.Player.ActionPointsMax
	if s.Player.RankDaysRemaining > 0 {
		s.Player.RankDaysRemaining--
	}

	var expired []string
	kept := make([]types.Quest, 0, len(s.Quests.ActiveQuests))
	for _, q := range s.Quests.ActiveQuests {
		if q.Deadline != nil && *q.Deadline <= 1 {
			expired = append(expired, q.ID)
			continue
		}
		kept = append(kept, q)
	}
	s.Quests.ActiveQuests = kept
	for _, id := range expired {
		e.emit(events.QuestFailed{QuestID: id, Reason: "expired"})
	}

	for i, q := range s.Quests.ActiveQuests {
		if q.Deadline != nil {
			d := *q.Deadline - 1
			s.Quests.ActiveQuests[i].Deadline = &d
		}
	}

	e.generateQuest()

	_, drew := s.Draw(e.RNG.Shuffle)

	remaining := s.Game.MaxDays - s.Game.CurrentDay
	if remaining > 0 && remaining <= warningWindow {
		e.emit(events.DayWarning{RemainingDays: remaining})
	}

	if s.Game.CurrentDay > s.Game.MaxDays && s.Player.Rank != types.RankS {
		e.log.Info("game over", "day", s.Game.CurrentDay, "rank", s.Player.Rank)
		e.emit(events.GameOver{Reason: "day limit exceeded", Stats: e.stats()})
	}

	e.log.Info("day ended", "previous", prevDay, "day", s.Game.CurrentDay)
	e.emit(events.DayEnded{PreviousDay: prevDay, Day: s.Game.CurrentDay})
	e.emit(events.PhaseChanged{Phase: types.PhaseQuestAccept, Previous: prevPhase, Day: s.Game.CurrentDay})
	e.emit(events.PlayerDataUpdated{Player: s.Player})
	if drew {
		e.emit(events.HandUpdated{Hand: e.hand()})
	}
	e.emit(e.deckCounts())
}

// generateQuest adds one quest to the board from a weighted template. The
// quest's rank is drawn uniformly from the ranks the player has reached,
// and its reward scales with that rank.
func (e *Engine) generateQuest() (types.Quest, bool) {
	tpls := e.Defs.Quests
	if len(tpls) == 0 {
		return types.Quest{}, false
	}
	weights := make([]int, len(tpls))
	for i, t := range tpls {
		weights[i] = max(t.Weight, 1)
	}
	tpl := tpls[e.RNG.WeightedSelect(weights)]

	ranks := state.RanksUpTo(e.State.Player.Rank)
	rank := ranks[e.RNG.Intn(len(ranks))]
	tier := state.RankIndex(rank) + 1

	q := types.Quest{
		ID:    e.newID(),
		Title: tpl.Title,
		Reward: types.Reward{
			Gold: tpl.Reward.Gold * tier,
			Exp:  tpl.Reward.Exp * tier,
		},
		Requirements: tpl.Requirement,
		RequiredRank: rank,
	}
	if tpl.Deadline > 0 {
		d := tpl.Deadline
		q.Deadline = &d
	}
	e.State.Quests.AvailableQuests = append(e.State.Quests.AvailableQuests, q)
	return q, true
}

// stats computes the end-of-game score breakdown.
func (e *Engine) stats() events.Stats {
	s := e.State
	st := events.Stats{
		FinalRank:       s.Player.Rank,
		Day:             s.Game.CurrentDay,
		Gold:            s.Player.Gold,
		CompletedQuests: len(s.Quests.CompletedQuestIDs),
		DayBonus:        (s.Game.MaxDays - s.Game.CurrentDay) * 100,
		GoldBonus:       int(math.Floor(float64(s.Player.Gold) / 100)),
	}
	st.QuestBonus = st.CompletedQuests * 50
	st.TotalScore = st.DayBonus + st.GoldBonus + st.QuestBonus
	return st
}
