package engine

import (
	"fmt"

	"github.com/nathoo/atelier/engine/events"
	"github.com/nathoo/atelier/engine/state"
	"github.com/nathoo/atelier/types"
)

func (e *Engine) challengeRank(ev events.RankupChallengeRequested) {
	s := e.State
	cur := s.Player.Rank
	next, ok := state.NextRank(cur)
	if !ok || ev.TargetRank != next {
		e.reject(events.CodeInvalidRankStep,
			fmt.Sprintf("cannot challenge rank %s from rank %s", ev.TargetRank, cur))
		return
	}
	if s.Player.PromotionGauge < s.Player.PromotionGaugeMax {
		e.emit(events.RankupFailed{
			TargetRank: ev.TargetRank,
			Reason: fmt.Sprintf("promotion gauge %d/%d is not full",
				s.Player.PromotionGauge, s.Player.PromotionGaugeMax),
		})
		return
	}

	rd, ok := e.Defs.RankDef(next)
	if !ok {
		e.log.Warn("rank has no definition", "rank", next)
		e.reject(events.CodeUnknownRank, fmt.Sprintf("rank %s is not defined by this game", next))
		return
	}
	s.Player.Rank = next
	s.Player.PromotionGauge = 0
	if rd.GaugeMax > 0 {
		s.Player.PromotionGaugeMax = rd.GaugeMax
	}
	s.Player.RankDaysRemaining = rd.Days
	s.Player.Gold += rd.RewardGold

	granted := 0
	if pool := e.Defs.RewardCards; len(pool) > 0 {
		for ; granted < rd.RewardCards; granted++ {
			id := pool[e.RNG.Intn(len(pool))]
			s.Deck.Cards = append(s.Deck.Cards, e.newCard(id))
		}
	}

	e.log.Info("rank up", "from", cur, "to", next, "gold", rd.RewardGold, "cards", granted)
	e.emit(events.RankupSuccess{
		PreviousRank: cur,
		NewRank:      next,
		RewardGold:   rd.RewardGold,
		RewardCards:  granted,
	})
	e.emit(events.PlayerDataUpdated{Player: s.Player})
	if granted > 0 {
		e.emit(e.deckCounts())
	}
	if next == types.RankS {
		e.emit(events.GameClear{Stats: e.stats()})
	}
}
