package loader

import (
	"fmt"
	"strings"

	"github.com/nathoo/atelier/engine/state"
	"github.com/nathoo/atelier/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

// validate checks the compiled defs for completeness and referential
// integrity. Problems found earlier (duplicates) are reported alongside.
// Warnings are returned even when validation passes.
func validate(defs *state.Defs, problems ...string) ([]string, error) {
	ve := &ValidationError{Errors: append([]string(nil), problems...)}

	validateGame(defs.Game, ve)
	validateRanks(defs.Ranks, ve)

	for id, c := range defs.Cards {
		switch c.Type {
		case types.CardGathering:
			if len(c.Drops) == 0 {
				ve.errorf("gathering card %q has no drops", id)
			}
			for _, m := range c.Drops {
				if _, ok := defs.Materials[m]; !ok {
					ve.errorf("card %q drops undefined material %q", id, m)
				}
			}
			if c.APCost < 0 {
				ve.errorf("card %q has negative AP cost", id)
			}
		case types.CardRecipe:
			if _, ok := defs.Items[c.Result]; !ok {
				ve.errorf("recipe %q produces undefined item %q", id, c.Result)
			}
			if len(c.Ingredients) == 0 {
				ve.errorf("recipe %q has no ingredients", id)
			}
			for _, ing := range c.Ingredients {
				if _, ok := defs.Materials[ing.MaterialID]; !ok {
					ve.errorf("recipe %q needs undefined material %q", id, ing.MaterialID)
				}
				if ing.Quantity <= 0 {
					ve.errorf("recipe %q needs a positive quantity of %q", id, ing.MaterialID)
				}
			}
		default:
			ve.errorf("card %q has unknown type %q", id, c.Type)
		}
	}

	for _, q := range defs.Quests {
		if item := q.Requirement.ItemID; item != "" {
			if _, ok := defs.Items[item]; !ok {
				ve.errorf("quest %q requires undefined item %q", q.ID, item)
			}
		}
		if q.Weight < 0 {
			ve.errorf("quest %q has negative weight", q.ID)
		}
		if q.Deadline < 0 {
			ve.errorf("quest %q has negative deadline", q.ID)
		}
	}
	if len(defs.Quests) == 0 {
		ve.warnf("no Quest definitions; the quest board will stay empty")
	}

	for id, s := range defs.Shop {
		validateShopItem(id, s, defs, ve)
	}

	for _, id := range defs.StarterDeck {
		if _, ok := defs.Cards[id]; !ok {
			ve.errorf("starter deck lists undefined card %q", id)
		}
	}
	if len(defs.StarterDeck) < defs.Game.HandSize {
		ve.warnf("starter deck has %d cards, fewer than the hand size %d", len(defs.StarterDeck), defs.Game.HandSize)
	}
	for _, id := range defs.RewardCards {
		if _, ok := defs.Cards[id]; !ok {
			ve.errorf("reward cards list undefined card %q", id)
		}
	}
	if len(defs.RewardCards) == 0 {
		for _, rd := range defs.Ranks {
			if rd.RewardCards > 0 {
				ve.warnf("rank %s grants cards but RewardCards{} is empty", rd.Rank)
				break
			}
		}
	}

	if len(ve.Errors) > 0 {
		return ve.Warnings, ve
	}
	return ve.Warnings, nil
}

func validateGame(g types.GameDef, ve *ValidationError) {
	if g.Title == "" {
		ve.errorf("Game.title is required")
	}
	if g.MaxDays <= 0 {
		ve.errorf("Game.max_days must be positive")
	}
	if g.ActionPoints <= 0 {
		ve.errorf("Game.action_points must be positive")
	}
	if g.StartingGold < 0 {
		ve.errorf("Game.starting_gold must not be negative")
	}
	if g.HandSize < 0 || g.InitialQuests < 0 {
		ve.errorf("Game.hand_size and Game.initial_quests must not be negative")
	}
}

// validateRanks requires every rank to be defined and rewards to never
// shrink on the way up. defs.Ranks is already ordered.
func validateRanks(ranks []types.RankDef, ve *ValidationError) {
	have := map[types.Rank]bool{}
	for _, rd := range ranks {
		have[rd.Rank] = true
		if rd.GaugeMax <= 0 {
			ve.errorf("rank %s needs a positive gauge", rd.Rank)
		}
		if rd.Days < 0 || rd.RewardGold < 0 || rd.RewardCards < 0 {
			ve.errorf("rank %s has negative values", rd.Rank)
		}
	}
	for _, r := range state.RankOrder {
		if !have[r] {
			ve.errorf("rank %s is not defined", r)
		}
	}
	for i := 1; i < len(ranks); i++ {
		prev, cur := ranks[i-1], ranks[i]
		if cur.RewardGold < prev.RewardGold {
			ve.errorf("rank %s reward_gold %d is lower than rank %s (%d)", cur.Rank, cur.RewardGold, prev.Rank, prev.RewardGold)
		}
		if cur.RewardCards < prev.RewardCards {
			ve.errorf("rank %s reward_cards %d is lower than rank %s (%d)", cur.Rank, cur.RewardCards, prev.Rank, prev.RewardCards)
		}
	}
}

func validateShopItem(id string, s types.ShopItem, defs *state.Defs, ve *ValidationError) {
	if s.Price <= 0 {
		ve.errorf("shop entry %q needs a positive price", id)
	}
	if s.RequiredRank != "" && state.RankIndex(s.RequiredRank) < 0 {
		ve.errorf("shop entry %q requires unknown rank %q", id, s.RequiredRank)
	}
	var found bool
	switch s.Category {
	case types.ShopCard:
		_, found = defs.Cards[s.Ref]
	case types.ShopMaterial:
		_, found = defs.Materials[s.Ref]
	case types.ShopArtifact:
		_, found = defs.Items[s.Ref]
	default:
		ve.errorf("shop entry %q has unknown category %q", id, s.Category)
		return
	}
	if !found {
		ve.errorf("shop entry %q sells undefined %s %q", id, s.Category, s.Ref)
	}
}
