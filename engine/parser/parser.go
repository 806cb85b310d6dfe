// Package parser converts command lines into Commands.
// Intentionally dumb: no NLP, just aliases and filler removal.
package parser

import (
	"strings"
)

// Command is a normalized player command: a canonical verb and its
// arguments in order.
type Command struct {
	Verb string
	Args []string
}

// Empty reports whether the input held no command.
func (c Command) Empty() bool { return c.Verb == "" }

var verbAliases = map[string]string{
	// Quest board
	"a":      "accept",
	"take":   "accept",
	"board":  "quests",
	"q":      "quests",
	"submit": "deliver",
	"turnin": "deliver",
	"give":   "deliver",

	// Gathering
	"forage":  "gather",
	"collect": "gather",
	"harvest": "gather",
	"explore": "gather",

	// Alchemy
	"brew":       "craft",
	"make":       "craft",
	"mix":        "craft",
	"synthesize": "craft",

	// Shop
	"purchase": "buy",
	"store":    "shop",

	// Phases and days
	"next":  "done",
	"rest":  "end",
	"sleep": "end",
	"wait":  "advance",

	// Rank
	"promote":   "rankup",
	"challenge": "rankup",

	// Views
	"s":     "status",
	"look":  "status",
	"l":     "status",
	"h":     "hand",
	"cards": "hand",
	"deck":  "hand",
	"i":     "inventory",
	"inv":   "inventory",
	"bag":   "inventory",
	"items": "inventory",
}

// fillers are dropped from argument lists: "craft potion with herb and water".
var fillers = map[string]bool{
	"the": true, "a": true, "an": true,
	"with": true, "using": true, "from": true, "for": true,
	"to": true, "and": true, "of": true, "quest": true, "card": true,
}

// Parse converts a raw command line into a Command. Words are lowercased;
// content IDs are lowercase by convention.
func Parse(input string) Command {
	words := strings.Fields(strings.ToLower(input))
	if len(words) == 0 {
		return Command{}
	}

	// Handle multi-word verb phrases before general parsing.
	words = expandMultiWordVerbs(words)

	// Apply verb aliases.
	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	return Command{Verb: words[0], Args: stripFillers(words[1:])}
}

// expandMultiWordVerbs handles "turn in", "rank up", "end day" etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "turn", "hand":
		if words[1] == "in" {
			return append([]string{"deliver"}, words[2:]...)
		}
	case "rank":
		if words[1] == "up" {
			return append([]string{"rankup"}, words[2:]...)
		}
	case "end", "finish":
		if words[1] == "day" {
			return append([]string{"end"}, words[2:]...)
		}
		if words[1] == "phase" {
			return append([]string{"done"}, words[2:]...)
		}
	case "next":
		if words[1] == "day" {
			return append([]string{"advance"}, words[2:]...)
		}
		if words[1] == "phase" {
			return append([]string{"done"}, words[2:]...)
		}
	case "skip":
		if words[1] == "phase" {
			return append([]string{"skip"}, words[2:]...)
		}
	case "new":
		if words[1] == "game" {
			return append([]string{"restart"}, words[2:]...)
		}
	}

	return words
}

// stripFillers removes articles and connecting words from the argument list.
func stripFillers(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !fillers[w] {
			result = append(result, w)
		}
	}
	return result
}
