package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers the content constructors as Lua globals.
//
//	Game { title = "...", max_days = 30, ... }
//	Rank "F" { gauge = 150, days = 10, reward_gold = 100, reward_cards = 1 }
//	Card "forest" { type = "gathering", ap = 1, drops = { "herb" }, quality = 50 }
//	Material "herb" { name = "Herb", quality = 40 }
//	Item "potion" { name = "Potion", quality = 50 }
//	Quest "brew" { title = "...", gold = 100, exp = 40, requires = { item = "potion" } }
//	Shop "herb" { category = "material", price = 10, rank = "G" }
//	StarterDeck { "forest", "forest", "potion_recipe" }
//	RewardCards { "cave" }
func registerAPI(L *lua.LState, coll *collector) {
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		if coll.game != nil {
			coll.problems = append(coll.problems, "Game{} declared more than once")
		}
		coll.game = L.CheckTable(1)
		return 0
	}))

	curried(L, "Rank", func(id string, tbl *lua.LTable) { coll.add(&coll.ranks, "rank", id, tbl) })
	curried(L, "Card", func(id string, tbl *lua.LTable) { coll.add(&coll.cards, "card", id, tbl) })
	curried(L, "Material", func(id string, tbl *lua.LTable) { coll.add(&coll.materials, "material", id, tbl) })
	curried(L, "Item", func(id string, tbl *lua.LTable) { coll.add(&coll.items, "item", id, tbl) })
	curried(L, "Quest", func(id string, tbl *lua.LTable) { coll.add(&coll.quests, "quest", id, tbl) })
	curried(L, "Shop", func(id string, tbl *lua.LTable) { coll.add(&coll.shop, "shop entry", id, tbl) })

	L.SetGlobal("StarterDeck", L.NewFunction(func(L *lua.LState) int {
		coll.starterDeck = append(coll.starterDeck, stringList(L.CheckTable(1))...)
		return 0
	}))
	L.SetGlobal("RewardCards", L.NewFunction(func(L *lua.LState) int {
		coll.rewardCards = append(coll.rewardCards, stringList(L.CheckTable(1))...)
		return 0
	}))
}

// curried registers a constructor of the form Name "id" { ... }: the first
// call takes the id and returns a function that takes the body table.
func curried(L *lua.LState, name string, fn func(id string, tbl *lua.LTable)) {
	L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			fn(id, L.CheckTable(1))
			return 0
		}))
		return 1
	}))
}
