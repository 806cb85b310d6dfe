// Package loader loads Lua game content into Go structs at startup.
// The Lua VM is discarded after loading; no Lua runs during play.
package loader

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/atelier/engine/state"
	"github.com/nathoo/atelier/types"
)

// rawDef holds a named definition table before compilation.
type rawDef struct {
	id    string
	table *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getStringOr returns a string field, or def if missing or empty.
func getStringOr(tbl *lua.LTable, key, def string) string {
	if s := getString(tbl, key); s != "" {
		return s
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getIntOr returns an int field, or def if the field is absent.
func getIntOr(tbl *lua.LTable, key string, def int) int {
	if _, ok := tbl.RawGetString(key).(lua.LNumber); !ok {
		return def
	}
	return getInt(tbl, key)
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	if t, ok := tbl.RawGetString(key).(*lua.LTable); ok {
		return t
	}
	return nil
}

// stringList returns the string elements of a Lua array in order.
func stringList(tbl *lua.LTable) []string {
	if tbl == nil {
		return nil
	}
	var out []string
	for i := 1; i <= tbl.MaxN(); i++ {
		if s, ok := tbl.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// compile converts all collected Lua data into a Defs struct.
func compile(coll *collector) (*state.Defs, error) {
	if coll.game == nil {
		return nil, errors.New("no Game{} definition found")
	}
	defs := &state.Defs{
		Game:        compileGame(coll.game),
		Cards:       map[string]types.CardDef{},
		Materials:   map[string]types.MaterialDef{},
		Items:       map[string]types.ItemDef{},
		Shop:        map[string]types.ShopItem{},
		StarterDeck: coll.starterDeck,
		RewardCards: coll.rewardCards,
	}

	for _, raw := range coll.ranks {
		rd, err := compileRank(raw)
		if err != nil {
			return nil, err
		}
		defs.Ranks = append(defs.Ranks, rd)
	}
	sort.SliceStable(defs.Ranks, func(i, j int) bool {
		return state.RankIndex(defs.Ranks[i].Rank) < state.RankIndex(defs.Ranks[j].Rank)
	})

	for _, raw := range coll.cards {
		defs.Cards[raw.id] = compileCard(raw)
	}
	for _, raw := range coll.materials {
		defs.Materials[raw.id] = types.MaterialDef{
			ID:      raw.id,
			Name:    getStringOr(raw.table, "name", raw.id),
			Quality: getInt(raw.table, "quality"),
		}
	}
	for _, raw := range coll.items {
		defs.Items[raw.id] = types.ItemDef{
			ID:      raw.id,
			Name:    getStringOr(raw.table, "name", raw.id),
			Quality: getInt(raw.table, "quality"),
		}
	}
	for _, raw := range coll.quests {
		defs.Quests = append(defs.Quests, compileQuest(raw))
	}
	for _, raw := range coll.shop {
		defs.Shop[raw.id] = compileShopItem(raw)
	}
	return defs, nil
}

func compileGame(tbl *lua.LTable) types.GameDef {
	return types.GameDef{
		Title:         getString(tbl, "title"),
		Author:        getString(tbl, "author"),
		Version:       getString(tbl, "version"),
		Intro:         getString(tbl, "intro"),
		MaxDays:       getInt(tbl, "max_days"),
		StartingGold:  getInt(tbl, "starting_gold"),
		ActionPoints:  getInt(tbl, "action_points"),
		HandSize:      getIntOr(tbl, "hand_size", 5),
		InitialQuests: getIntOr(tbl, "initial_quests", 3),
	}
}

func compileRank(raw rawDef) (types.RankDef, error) {
	r := types.Rank(strings.ToUpper(raw.id))
	if state.RankIndex(r) < 0 {
		return types.RankDef{}, errors.Errorf("unknown rank %q", raw.id)
	}
	return types.RankDef{
		Rank:        r,
		GaugeMax:    getInt(raw.table, "gauge"),
		Days:        getInt(raw.table, "days"),
		RewardGold:  getInt(raw.table, "reward_gold"),
		RewardCards: getInt(raw.table, "reward_cards"),
	}, nil
}

func compileCard(raw rawDef) types.CardDef {
	tbl := raw.table
	return types.CardDef{
		ID:          raw.id,
		Name:        getStringOr(tbl, "name", raw.id),
		Type:        types.CardType(getString(tbl, "type")),
		APCost:      getInt(tbl, "ap"),
		Drops:       stringList(getTable(tbl, "drops")),
		BaseQuality: getInt(tbl, "quality"),
		Result:      getString(tbl, "result"),
		Ingredients: compileIngredients(getTable(tbl, "ingredients")),
	}
}

// compileIngredients reads { herb = 2, water = 1 }, ordered by material ID.
func compileIngredients(tbl *lua.LTable) []types.Ingredient {
	if tbl == nil {
		return nil
	}
	var out []types.Ingredient
	tbl.ForEach(func(k, v lua.LValue) {
		ks, ok := k.(lua.LString)
		if !ok {
			return
		}
		n, _ := v.(lua.LNumber)
		out = append(out, types.Ingredient{MaterialID: string(ks), Quantity: int(n)})
	})
	sort.Slice(out, func(i, j int) bool { return out[i].MaterialID < out[j].MaterialID })
	return out
}

func compileQuest(raw rawDef) types.QuestTemplate {
	tbl := raw.table
	q := types.QuestTemplate{
		ID:       raw.id,
		Title:    getStringOr(tbl, "title", raw.id),
		Reward:   types.Reward{Gold: getInt(tbl, "gold"), Exp: getInt(tbl, "exp")},
		Deadline: getInt(tbl, "deadline"),
		Weight:   getIntOr(tbl, "weight", 1),
	}
	if req := getTable(tbl, "requires"); req != nil {
		q.Requirement = types.Requirement{
			ItemID:     getString(req, "item"),
			Quantity:   getIntOr(req, "quantity", 1),
			MinQuality: getInt(req, "min_quality"),
		}
	}
	return q
}

func compileShopItem(raw rawDef) types.ShopItem {
	tbl := raw.table
	return types.ShopItem{
		ID:           raw.id,
		Name:         getStringOr(tbl, "name", raw.id),
		Category:     types.ShopCategory(getString(tbl, "category")),
		Price:        getInt(tbl, "price"),
		RequiredRank: types.Rank(strings.ToUpper(getString(tbl, "rank"))),
		Ref:          getStringOr(tbl, "ref", raw.id),
	}
}

// sortedLuaFiles returns .lua files with game.lua first and the rest
// sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}
