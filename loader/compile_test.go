package loader

import (
	"testing"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/atelier/types"
)

// newTestVM creates a sandboxed Lua VM with the API registered and a fresh collector.
func newTestVM() (*lua.LState, *collector) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(L)
	sandbox(L)
	coll := &collector{}
	registerAPI(L, coll)
	return L, coll
}

// evalTable runs src, which must return a table, and returns it.
func evalTable(t *testing.T, L *lua.LState, src string) *lua.LTable {
	t.Helper()
	if err := L.DoString(src); err != nil {
		t.Fatal(err)
	}
	return L.CheckTable(-1)
}

func TestCompileGame(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()

	game := compileGame(evalTable(t, L, `
		return {
			title = "Test Guild",
			author = "Author",
			version = "1.0",
			intro = "Welcome!",
			max_days = 60,
			starting_gold = 300,
			action_points = 5,
			hand_size = 4,
			initial_quests = 0,
		}
	`))

	want := types.GameDef{
		Title: "Test Guild", Author: "Author", Version: "1.0", Intro: "Welcome!",
		MaxDays: 60, StartingGold: 300, ActionPoints: 5, HandSize: 4, InitialQuests: 0,
	}
	if game != want {
		t.Errorf("game = %+v, want %+v", game, want)
	}
}

func TestCompileRank(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()

	tbl := evalTable(t, L, `return { gauge = 150, days = 12, reward_gold = 100, reward_cards = 1 }`)

	rd, err := compileRank(rawDef{id: "f", table: tbl})
	if err != nil {
		t.Fatal(err)
	}
	want := types.RankDef{Rank: types.RankF, GaugeMax: 150, Days: 12, RewardGold: 100, RewardCards: 1}
	if rd != want {
		t.Errorf("rank = %+v, want %+v", rd, want)
	}

	if _, err := compileRank(rawDef{id: "X", table: tbl}); err == nil {
		t.Error("expected error for unknown rank letter")
	}
}

func TestCompileCard_Gathering(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()

	c := compileCard(rawDef{id: "forest", table: evalTable(t, L, `
		return { name = "Forest", type = "gathering", ap = 2, drops = { "herb", 7, "water" }, quality = 55 }
	`)})

	if c.ID != "forest" || c.Name != "Forest" || c.Type != types.CardGathering {
		t.Errorf("card = %+v", c)
	}
	if c.APCost != 2 || c.BaseQuality != 55 {
		t.Errorf("ap/quality = %d/%d", c.APCost, c.BaseQuality)
	}
	// Non-string entries are skipped.
	if len(c.Drops) != 2 || c.Drops[0] != "herb" || c.Drops[1] != "water" {
		t.Errorf("drops = %v", c.Drops)
	}
	if c.Ingredients != nil {
		t.Errorf("gathering card should have no ingredients, got %v", c.Ingredients)
	}
}

func TestCompileCard_RecipeIngredientsSorted(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()

	c := compileCard(rawDef{id: "elixir", table: evalTable(t, L, `
		return { type = "recipe", result = "elixir", ingredients = { water = 1, ash = 3, herb = 2 } }
	`)})

	want := []types.Ingredient{
		{MaterialID: "ash", Quantity: 3},
		{MaterialID: "herb", Quantity: 2},
		{MaterialID: "water", Quantity: 1},
	}
	if len(c.Ingredients) != len(want) {
		t.Fatalf("ingredients = %v", c.Ingredients)
	}
	for i := range want {
		if c.Ingredients[i] != want[i] {
			t.Errorf("ingredient %d = %+v, want %+v", i, c.Ingredients[i], want[i])
		}
	}
	if c.Name != "elixir" {
		t.Errorf("name should default to id, got %q", c.Name)
	}
}

func TestCompileQuest(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()

	q := compileQuest(rawDef{id: "brew", table: evalTable(t, L, `
		return { title = "Brew", gold = 100, exp = 30, requires = { item = "potion", min_quality = 40 }, deadline = 4 }
	`)})

	if q.Reward != (types.Reward{Gold: 100, Exp: 30}) {
		t.Errorf("reward = %+v", q.Reward)
	}
	if q.Requirement != (types.Requirement{ItemID: "potion", Quantity: 1, MinQuality: 40}) {
		t.Errorf("requirement = %+v", q.Requirement)
	}
	if q.Deadline != 4 || q.Weight != 1 {
		t.Errorf("deadline/weight = %d/%d", q.Deadline, q.Weight)
	}

	zero := compileQuest(rawDef{id: "rare", table: evalTable(t, L, `return { weight = 0 }`)})
	if zero.Weight != 0 {
		t.Errorf("explicit zero weight should be kept, got %d", zero.Weight)
	}
}

func TestCompileShopItem(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()

	s := compileShopItem(rawDef{id: "charm", table: evalTable(t, L, `
		return { category = "artifact", price = 300, rank = "c" }
	`)})
	want := types.ShopItem{
		ID: "charm", Name: "charm", Category: types.ShopArtifact,
		Price: 300, RequiredRank: types.RankC, Ref: "charm",
	}
	if s != want {
		t.Errorf("shop item = %+v, want %+v", s, want)
	}
}

func TestCompile_RanksSorted(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Game { title = "x" }
		Rank "S" { gauge = 3 }
		Rank "G" { gauge = 1 }
		Rank "C" { gauge = 2 }
	`); err != nil {
		t.Fatal(err)
	}
	defs, err := compile(coll)
	if err != nil {
		t.Fatal(err)
	}
	if len(defs.Ranks) != 3 ||
		defs.Ranks[0].Rank != types.RankG || defs.Ranks[1].Rank != types.RankC || defs.Ranks[2].Rank != types.RankS {
		t.Errorf("ranks = %+v", defs.Ranks)
	}
}

func TestCollector_Duplicates(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Game { title = "a" }
		Game { title = "b" }
		Card "x" {}
		Card "x" {}
		Item "x" {}
	`); err != nil {
		t.Fatal(err)
	}
	if len(coll.cards) != 1 || len(coll.items) != 1 {
		t.Errorf("cards = %d, items = %d", len(coll.cards), len(coll.items))
	}
	assertContains(t, coll.problems, `duplicate card "x"`)
	assertContains(t, coll.problems, "Game{} declared more than once")
	if len(coll.problems) != 2 {
		t.Errorf("problems = %v", coll.problems)
	}
}

func TestStarterDeckAndRewardCards_Accumulate(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		StarterDeck { "a", "b" }
		StarterDeck { "a" }
		RewardCards { "c" }
	`); err != nil {
		t.Fatal(err)
	}
	if len(coll.starterDeck) != 3 || coll.starterDeck[2] != "a" {
		t.Errorf("starterDeck = %v", coll.starterDeck)
	}
	if len(coll.rewardCards) != 1 {
		t.Errorf("rewardCards = %v", coll.rewardCards)
	}
}
