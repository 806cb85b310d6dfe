package cli

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	goccy "github.com/goccy/go-json"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nathoo/atelier/engine/events"
	"github.com/nathoo/atelier/engine/parser"
	"github.com/nathoo/atelier/engine/save"
	"github.com/nathoo/atelier/engine/state"
	"github.com/nathoo/atelier/session"
	"github.com/nathoo/atelier/types"
)

// Interpreter turns command lines into UI requests and renders the events
// they cause as text. The plain CLI and the TUI each drive one.
type Interpreter struct {
	sess    *session.Session
	defs    *state.Defs
	money   *message.Printer
	lastCmd string

	mu    sync.Mutex // guards out and trace; events can arrive from the auto-save timer
	out   []string
	trace bool
	sub   *events.Subscription
}

// NewInterpreter subscribes to every event on the session's bus.
func NewInterpreter(s *session.Session) *Interpreter {
	in := &Interpreter{
		sess:  s,
		defs:  s.Defs,
		money: message.NewPrinter(language.English),
	}
	s.View(func(*state.Manager) {
		in.sub = s.Engine.Bus.On(events.Any, in.observe)
	})
	return in
}

// Close detaches the interpreter from the bus.
func (in *Interpreter) Close() {
	in.sess.View(func(*state.Manager) { in.sub.Unsubscribe() })
}

// SetTrace turns raw event tracing on or off.
func (in *Interpreter) SetTrace(on bool) {
	in.mu.Lock()
	in.trace = on
	in.mu.Unlock()
}

// Tracing reports whether raw event tracing is on.
func (in *Interpreter) Tracing() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.trace
}

// Intro returns the title banner, the game intro and the opening status.
func (in *Interpreter) Intro() []string {
	g := in.defs.Game
	lines := []string{fmt.Sprintf("%s v%s by %s", g.Title, g.Version, g.Author), ""}
	if g.Intro != "" {
		lines = append(lines, g.Intro, "")
	}
	lines = append(lines, in.statusLines()...)
	lines = append(lines, "", "Type /help for commands.")
	return lines
}

// Exec runs one line of input and returns the output it produced. quit is
// true when the player asked to leave.
func (in *Interpreter) Exec(line string) (out []string, quit bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, false
	}
	if strings.HasPrefix(line, "/") {
		quit = in.meta(line)
		return in.Drain(), quit
	}

	lower := strings.ToLower(line)
	if lower == "again" || lower == "g" {
		if in.lastCmd == "" {
			return []string{"Nothing to repeat."}, false
		}
		line = in.lastCmd
	} else {
		in.lastCmd = line
	}
	in.command(line)
	return in.Drain(), false
}

// Drain returns and clears pending output, including lines produced by
// events raised outside Exec such as timed auto-saves.
func (in *Interpreter) Drain() []string {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := in.out
	in.out = nil
	return out
}

func (in *Interpreter) say(lines ...string) {
	in.mu.Lock()
	in.out = append(in.out, lines...)
	in.mu.Unlock()
}

func (in *Interpreter) system(format string, args ...any) {
	in.say("[" + fmt.Sprintf(format, args...) + "]")
}

func (in *Interpreter) send(ev events.UIEvent) {
	if err := in.sess.Send(ev); err != nil {
		in.system("Internal error: %v", err)
	}
}

func (in *Interpreter) command(line string) {
	cmd := parser.Parse(line)
	args := cmd.Args

	var snap types.Snapshot
	in.sess.View(func(m *state.Manager) { snap = m.Snapshot() })

	switch cmd.Verb {
	case "accept":
		in.cmdAccept(snap, args)
	case "deliver":
		in.cmdDeliver(snap, args)
	case "gather":
		in.cmdGather(snap, args)
	case "craft":
		in.cmdCraft(snap, args)
	case "buy":
		in.cmdBuy(args)
	case "done":
		in.send(events.PhaseCompleted{Phase: snap.Game.CurrentPhase})
	case "skip":
		in.send(events.PhaseSkipRequested{Phase: snap.Game.CurrentPhase})
	case "end":
		in.send(events.DayEndRequested{})
	case "advance":
		in.send(events.DayAdvanceRequested{})
	case "rankup":
		next, ok := state.NextRank(snap.Player.Rank)
		if !ok {
			in.say("You already hold the highest rank.")
			return
		}
		if len(args) > 0 {
			next = types.Rank(strings.ToUpper(args[0]))
		}
		in.send(events.RankupChallengeRequested{TargetRank: next})
	case "restart":
		in.send(events.GameRestartRequested{})
	case "hand":
		in.say(in.handLines(snap)...)
	case "quests":
		in.say(in.questLines(snap)...)
	case "inventory":
		in.say(in.inventoryLines(snap)...)
	case "shop":
		in.say(in.shopLines(snap)...)
	case "status":
		in.say(in.statusLines()...)
	default:
		in.say(fmt.Sprintf("Unknown command %q. Type /help for commands.", cmd.Verb))
	}
}

func (in *Interpreter) cmdAccept(snap types.Snapshot, args []string) {
	if len(args) != 1 {
		in.say("Usage: accept <quest number>")
		return
	}
	id, ok := pickQuest(snap.Quests.AvailableQuests, args[0])
	if !ok {
		in.say("No such quest on the board.")
		return
	}
	in.send(events.QuestAcceptRequested{QuestID: id})
}

func (in *Interpreter) cmdDeliver(snap types.Snapshot, args []string) {
	if len(args) < 1 {
		in.say("Usage: deliver <quest number> [item number...]")
		return
	}
	id, ok := pickQuest(snap.Quests.ActiveQuests, args[0])
	if !ok {
		in.say("You have not accepted that quest.")
		return
	}
	var items []string
	for _, ref := range args[1:] {
		itemID, ok := pickItem(snap.Inventory.Items, ref)
		if !ok {
			in.say(fmt.Sprintf("No item %q in your inventory.", ref))
			return
		}
		items = append(items, itemID)
	}
	in.send(events.QuestDeliveryRequested{QuestID: id, ItemIDs: items})
}

func (in *Interpreter) cmdGather(snap types.Snapshot, args []string) {
	if len(args) < 1 {
		in.say("Usage: gather <card> [material...]")
		return
	}
	card, ok := pickCard(snap.Deck.Hand, args[0])
	if !ok {
		in.say(fmt.Sprintf("No card %q in your hand.", args[0]))
		return
	}
	materials := args[1:]
	if len(materials) == 0 {
		materials = in.defs.Cards[card.DefID].Drops
	}
	in.send(events.GatheringExecuteRequested{CardID: card.ID, SelectedMaterialIDs: materials})
}

func (in *Interpreter) cmdCraft(snap types.Snapshot, args []string) {
	if len(args) < 1 {
		in.say("Usage: craft <recipe card> [material...]")
		return
	}
	card, ok := pickCard(snap.Deck.Hand, args[0])
	if !ok {
		in.say(fmt.Sprintf("No card %q in your hand.", args[0]))
		return
	}
	in.send(events.AlchemyCraftRequested{RecipeCardID: card.ID, MaterialIDs: args[1:]})
}

func (in *Interpreter) cmdBuy(args []string) {
	if len(args) < 1 || len(args) > 2 {
		in.say("Usage: buy <shop id> [quantity]")
		return
	}
	// Accept both "buy herb 2" and "buy 2 herb".
	if len(args) == 2 {
		if _, err := strconv.Atoi(args[0]); err == nil {
			args = []string{args[1], args[0]}
		}
	}
	qty := 1
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			in.say(fmt.Sprintf("Bad quantity %q.", args[1]))
			return
		}
		qty = n
	}
	entry := in.defs.Shop[args[0]]
	in.send(events.ShopPurchaseRequested{Category: entry.Category, ItemID: args[0], Quantity: qty})
}

// meta handles slash commands. It returns true on /quit.
func (in *Interpreter) meta(line string) bool {
	parts := strings.Fields(line)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		in.system("Goodbye.")
		return true
	case "/save":
		if slot, ok := in.slotArg(cmd, arg); ok {
			in.send(events.GameSaveRequested{SlotID: slot})
		}
	case "/load":
		if slot, ok := in.slotArg(cmd, arg); ok {
			in.send(events.GameLoadRequested{SlotID: slot})
		}
	case "/continue":
		if err := in.sess.Continue(); err != nil {
			in.system("No auto-save to continue from: %v", err)
		}
	case "/delete":
		if slot, ok := in.slotArg(cmd, arg); ok {
			if err := in.sess.Delete(slot); err != nil {
				in.system("Delete failed: %v", err)
			}
		}
	case "/slots":
		in.say(SlotTable(in.sess.Slots())...)
	case "/state":
		in.cmdState()
	case "/trace":
		on := !in.Tracing()
		in.SetTrace(on)
		if on {
			in.system("Trace output enabled.")
		} else {
			in.system("Trace output disabled.")
		}
	case "/help":
		in.say(helpLines...)
	default:
		in.system("Unknown command: %s. Type /help for available commands.", cmd)
	}
	return false
}

// slotArg parses a slot number, defaulting to slot 1.
func (in *Interpreter) slotArg(cmd, arg string) (int, bool) {
	if arg == "" {
		return 1, true
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		in.system("Usage: %s <1-%d>", cmd, save.Slots)
		return 0, false
	}
	return n, true
}

func (in *Interpreter) cmdState() {
	var data []byte
	var err error
	in.sess.View(func(m *state.Manager) { data, err = goccy.MarshalIndent(m.Snapshot(), "", "  ") })
	if err != nil {
		in.system("State unavailable: %v", err)
		return
	}
	in.say(strings.Split(string(data), "\n")...)
}

var helpLines = []string{
	"Game commands:",
	"  status (s)                     Day, phase, rank, gold and AP",
	"  quests (q) / hand (h) / inv    Show the quest board, your hand, your inventory",
	"  shop                           Show the shop catalog",
	"  accept <n>                     Accept quest n from the board",
	"  deliver <n> [item...]          Deliver accepted quest n",
	"  gather <card> [material...]    Play a gathering card",
	"  craft <card> [material...]     Play a recipe card",
	"  buy <id> [qty]                 Buy from the shop",
	"  done / skip                    Finish or skip the current phase",
	"  end / advance                  End the day, or force the next one",
	"  rankup                         Challenge the next rank",
	"  restart                        Start a new game",
	"  again (g)                      Repeat your last command",
	"",
	"System:",
	"  /save [n]  /load [n]  /delete [n]   Manage save slots 1-3",
	"  /continue                           Load the auto-save",
	"  /slots                              List save slots",
	"  /state                              Dump the game state",
	"  /trace                              Toggle raw event output",
	"  /help  /quit",
}

// pickQuest resolves a 1-based board position or a quest ID.
func pickQuest(qs []types.Quest, ref string) (string, bool) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(qs) {
			return qs[n-1].ID, true
		}
		return "", false
	}
	for _, q := range qs {
		if q.ID == ref {
			return q.ID, true
		}
	}
	return "", false
}

// pickCard resolves a 1-based hand position, a card ID or a card
// definition ID.
func pickCard(hand []types.Card, ref string) (types.Card, bool) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(hand) {
			return hand[n-1], true
		}
		return types.Card{}, false
	}
	for _, c := range hand {
		if c.ID == ref || c.DefID == ref {
			return c, true
		}
	}
	return types.Card{}, false
}

// pickItem resolves a 1-based inventory position or an item ID.
func pickItem(items []types.Item, ref string) (string, bool) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(items) {
			return items[n-1].ID, true
		}
		return "", false
	}
	for _, it := range items {
		if it.ID == ref {
			return it.ID, true
		}
	}
	return "", false
}
