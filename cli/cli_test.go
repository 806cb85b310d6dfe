package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nathoo/atelier/engine/state"
	"github.com/nathoo/atelier/session"
	"github.com/nathoo/atelier/storage"
	"github.com/nathoo/atelier/types"
)

// testDefs returns minimal game definitions for CLI testing.
func testDefs() *state.Defs {
	defs := &state.Defs{
		Game: types.GameDef{
			Title:         "Test Guild",
			Author:        "Test",
			Version:       "1.0",
			Intro:         "Welcome to the guild.",
			MaxDays:       30,
			StartingGold:  500,
			ActionPoints:  3,
			HandSize:      3,
			InitialQuests: 2,
		},
		Cards: map[string]types.CardDef{
			"forest": {ID: "forest", Name: "Forest", Type: types.CardGathering, APCost: 1,
				Drops: []string{"herb", "water"}, BaseQuality: 50},
			"recipe": {ID: "recipe", Name: "Potion Recipe", Type: types.CardRecipe, Result: "potion",
				Ingredients: []types.Ingredient{{MaterialID: "herb", Quantity: 2}, {MaterialID: "water", Quantity: 1}}},
		},
		Materials: map[string]types.MaterialDef{
			"herb":  {ID: "herb", Name: "Herb", Quality: 40},
			"water": {ID: "water", Name: "Water", Quality: 60},
		},
		Items: map[string]types.ItemDef{
			"potion": {ID: "potion", Name: "Potion", Quality: 50},
		},
		Quests: []types.QuestTemplate{{
			ID: "brew", Title: "Brew a potion", Weight: 1,
			Reward:      types.Reward{Gold: 100, Exp: 60},
			Requirement: types.Requirement{ItemID: "potion", Quantity: 1},
		}},
		Shop: map[string]types.ShopItem{
			"herb":  {ID: "herb", Name: "Herb Bundle", Category: types.ShopMaterial, Price: 10, Ref: "herb"},
			"water": {ID: "water", Name: "Water Jug", Category: types.ShopMaterial, Price: 5, Ref: "water"},
			"charm": {ID: "charm", Name: "Charm", Category: types.ShopArtifact, Price: 300, RequiredRank: types.RankC, Ref: "potion"},
		},
		StarterDeck: []string{"forest", "forest", "recipe"},
	}
	for i, r := range state.RankOrder {
		defs.Ranks = append(defs.Ranks, types.RankDef{Rank: r, GaugeMax: 100, Days: 10, RewardGold: i * 100})
	}
	return defs
}

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	s := session.New(testDefs(), storage.NewMemory(0), session.WithSeed(1))
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestCLI(t *testing.T, input string) (*CLI, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	c := &CLI{
		Interp: NewInterpreter(newTestSession(t)),
		In:     strings.NewReader(input),
		Out:    &out,
	}
	return c, &out
}

func assertOutput(t *testing.T, output string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(output, w) {
			t.Errorf("expected %q in output:\n%s", w, output)
		}
	}
}

func TestCLI_Intro(t *testing.T) {
	c, out := newTestCLI(t, "/quit\n")
	c.Run()

	assertOutput(t, out.String(),
		"Test Guild v1.0 by Test",
		"Welcome to the guild.",
		"Day 1/30, quest board.",
		"Gold 500 G, AP 3/3",
		"[Goodbye.]",
	)
}

func TestCLI_QuestLoop(t *testing.T) {
	c, out := newTestCLI(t, strings.Join([]string{
		"quests",
		"accept 1",
		"buy herb 2",
		"buy water",
		"craft recipe",
		"inv",
		"deliver 1",
		"status",
	}, "\n")+"\n")
	c.Run()

	assertOutput(t, out.String(),
		"Quest board:",
		"1. Brew a potion [G] 100 G / 60 exp, needs Potion x1",
		`Accepted "Brew a potion".`,
		"Bought 2 x Herb Bundle for 20 G.",
		"Bought 1 x Water Jug for 5 G.",
		"Crafted Potion",
		"1. Potion (q",
		`Delivered "Brew a potion": +100 G, +60 exp (gauge 60).`,
		"Gold 575 G",
	)
}

func TestCLI_NaturalCommands(t *testing.T) {
	c, out := newTestCLI(t, strings.Join([]string{
		"take 1",
		"buy 2 herb",
		"purchase water",
		"brew the recipe",
		"i",
		"turn in 1",
		"end day",
	}, "\n")+"\n")
	c.Run()

	assertOutput(t, out.String(),
		`Accepted "Brew a potion".`,
		"Bought 2 x Herb Bundle for 20 G.",
		"Bought 1 x Water Jug for 5 G.",
		"Crafted Potion",
		`Delivered "Brew a potion"`,
		"Day 1 is over.",
	)
}

func TestCLI_GatherAndEndDay(t *testing.T) {
	c, out := newTestCLI(t, "hand\ngather forest\nend\n")
	c.Run()

	assertOutput(t, out.String(),
		"Hand:",
		"Forest (gathering, 1 AP: Herb, Water)",
		"Potion Recipe (recipe: Herb x2, Water x1 -> Potion)",
		"Gathered Herb x1",
		"Day 1 is over.",
		"== Day 2: quest board ==",
	)
}

func TestCLI_PhaseCommands(t *testing.T) {
	c, out := newTestCLI(t, "done\nskip\ndone\n")
	c.Run()

	assertOutput(t, out.String(),
		"== Day 1: gathering ==",
		"== Day 1: alchemy ==",
		"== Day 1: delivery ==",
	)
}

func TestCLI_Rejections(t *testing.T) {
	c, out := newTestCLI(t, strings.Join([]string{
		"accept 9",
		"buy charm",
		"buy nothing",
		"buy herb x",
		"buy herb 4611686018427387905",
		"craft recipe",
		"gather 7",
		"rankup",
		"dance",
	}, "\n")+"\n")
	c.Run()

	assertOutput(t, out.String(),
		"No such quest on the board.",
		"! Charm requires rank C",
		`! the shop does not sell "nothing"`,
		`Bad quantity "x".`,
		"! invalid quantity 4611686018427387905 (1-99)",
		"! Potion Recipe needs 2 herb, you have 0",
		`No card "7" in your hand.`,
		"Promotion to rank F failed",
		`Unknown command "dance"`,
	)
}

func TestCLI_Again(t *testing.T) {
	c, out := newTestCLI(t, "again\ndone\ng\n")
	c.Run()

	assertOutput(t, out.String(),
		"Nothing to repeat.",
		"== Day 1: gathering ==",
		"== Day 1: alchemy ==",
	)
}

func TestCLI_SaveSlots(t *testing.T) {
	c, out := newTestCLI(t, strings.Join([]string{
		"/save 2",
		"/slots",
		"end",
		"/load 2",
		"status",
		"/delete 2",
		"/delete 2",
		"/save 7",
		"/load 3",
		"/save x",
	}, "\n")+"\n")
	c.Run()

	output := out.String()
	assertOutput(t, output,
		"[Game saved to slot 2.]",
		"Slot",
		"empty",
		"[Game loaded from slot 2.]",
		"Day 1/30",
		"[Slot 2 deleted.]",
		"[Delete failed: slot 2: no save data]",
		"[Save to slot 7 failed: invalid save slot]",
		"! ", // failed load of an empty slot
		"[Usage: /save <1-3>]",
	)
}

func TestCLI_Continue(t *testing.T) {
	c, out := newTestCLI(t, "/continue\n")
	c.Run()
	assertOutput(t, out.String(), "[No auto-save to continue from:")
}

func TestCLI_Trace(t *testing.T) {
	c, out := newTestCLI(t, "/trace\nend\n/trace\n")
	c.Run()

	assertOutput(t, out.String(),
		"[Trace output enabled.]",
		"[trace] ui:day:end:requested",
		"[trace] app:day:ended {",
		"[Trace output disabled.]",
	)
}

func TestCLI_State(t *testing.T) {
	c, out := newTestCLI(t, "/state\n")
	c.Run()
	assertOutput(t, out.String(), `"currentDay": 1`, `"rank": "G"`)
}

func TestCLI_HelpAndUnknownMeta(t *testing.T) {
	c, out := newTestCLI(t, "/help\n/bogus\n")
	c.Run()
	assertOutput(t, out.String(), "Game commands:", "/save [n]", "[Unknown command: /bogus.")
}

func TestCLI_EchoAndComments(t *testing.T) {
	c, out := newTestCLI(t, "# a comment\nstatus\n")
	c.EchoInput = true
	c.Run()

	output := out.String()
	if !strings.Contains(output, "> status\n") {
		t.Errorf("expected echoed input, got:\n%s", output)
	}
}

func TestCLI_Restart(t *testing.T) {
	c, out := newTestCLI(t, "end\nrestart\nstatus\n")
	c.Run()
	assertOutput(t, out.String(), "A new season begins.", "Day 1/30")
}

func TestSlotTable(t *testing.T) {
	s := newTestSession(t)
	if err := s.Save(1); err != nil {
		t.Fatal(err)
	}
	lines := SlotTable(s.Slots())
	if !strings.Contains(lines[0], "Slot") || !strings.Contains(lines[0], "Playtime") {
		t.Errorf("header = %q", lines[0])
	}
	empty := 0
	for _, l := range lines {
		if strings.Contains(l, "empty") {
			empty++
		}
	}
	if empty != 2 {
		t.Errorf("expected 2 empty slots, got %d:\n%s", empty, strings.Join(lines, "\n"))
	}
}

func TestPickers(t *testing.T) {
	qs := []types.Quest{{ID: "a"}, {ID: "b"}}
	if id, ok := pickQuest(qs, "2"); !ok || id != "b" {
		t.Errorf("pickQuest(2) = %q, %v", id, ok)
	}
	if id, ok := pickQuest(qs, "a"); !ok || id != "a" {
		t.Errorf("pickQuest(a) = %q, %v", id, ok)
	}
	if _, ok := pickQuest(qs, "0"); ok {
		t.Error("pickQuest(0) should fail")
	}

	hand := []types.Card{{ID: "c1", DefID: "forest"}, {ID: "c2", DefID: "recipe"}}
	if c, ok := pickCard(hand, "recipe"); !ok || c.ID != "c2" {
		t.Errorf("pickCard(recipe) = %+v, %v", c, ok)
	}
	if c, ok := pickCard(hand, "1"); !ok || c.ID != "c1" {
		t.Errorf("pickCard(1) = %+v, %v", c, ok)
	}

	items := []types.Item{{ID: "i1"}}
	if id, ok := pickItem(items, "1"); !ok || id != "i1" {
		t.Errorf("pickItem(1) = %q, %v", id, ok)
	}
	if _, ok := pickItem(items, "i9"); ok {
		t.Error("pickItem(i9) should fail")
	}
}
