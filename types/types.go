// Package types defines the shared data structures for the Atelier engine.
// This package contains only type definitions: no logic, no methods.
package types

// Phase is one of the named sub-states of a game day.
type Phase string

const (
	PhaseQuestAccept Phase = "quest-accept"
	PhaseGathering   Phase = "gathering"
	PhaseAlchemy     Phase = "alchemy"
	PhaseDelivery    Phase = "delivery"
	PhaseEvening     Phase = "evening"
)

// Rank is a guild tier. Ordering lives in the state package.
type Rank string

const (
	RankG Rank = "G"
	RankF Rank = "F"
	RankE Rank = "E"
	RankD Rank = "D"
	RankC Rank = "C"
	RankB Rank = "B"
	RankA Rank = "A"
	RankS Rank = "S"
)

// CardType classifies what a card does when played.
type CardType string

const (
	CardGathering CardType = "gathering"
	CardRecipe    CardType = "recipe"
)

// ShopCategory is the collection a purchase lands in.
type ShopCategory string

const (
	ShopCard     ShopCategory = "card"
	ShopMaterial ShopCategory = "material"
	ShopArtifact ShopCategory = "artifact"
)

// GameState tracks calendar progress.
type GameState struct {
	CurrentDay   int   `json:"currentDay"`
	CurrentPhase Phase `json:"currentPhase"`
	MaxDays      int   `json:"maxDays"`
}

// PlayerState is the player's guild standing and resources.
type PlayerState struct {
	Rank              Rank `json:"rank"`
	PromotionGauge    int  `json:"promotionGauge"`
	PromotionGaugeMax int  `json:"promotionGaugeMax"`
	Gold              int  `json:"gold"` // negative signals game over
	ActionPoints      int  `json:"actionPoints"`
	ActionPointsMax   int  `json:"actionPointsMax"`
	RankDaysRemaining int  `json:"rankDaysRemaining"`
}

// Reward is paid out when a quest is delivered.
type Reward struct {
	Gold int `json:"gold"`
	Exp  int `json:"exp"`
}

// Requirement names the crafted item a quest wants. Zero value means none.
type Requirement struct {
	ItemID     string `json:"itemId,omitempty"`
	Quantity   int    `json:"quantity,omitempty"`
	MinQuality int    `json:"minQuality,omitempty"`
}

// Quest is a guild request.
type Quest struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Reward       Reward      `json:"reward"`
	Requirements Requirement `json:"requirements"`
	Deadline     *int        `json:"deadline,omitempty"` // days left, nil = no deadline
	RequiredRank Rank        `json:"requiredRank,omitempty"`
}

// QuestState holds the quest board and the player's quest log.
type QuestState struct {
	AvailableQuests   []Quest  `json:"availableQuests"`
	ActiveQuests      []Quest  `json:"activeQuests"`
	CompletedQuestIDs []string `json:"completedQuestIds"`
}

// Card is one card instance in the player's deck.
type Card struct {
	ID    string   `json:"id"`
	DefID string   `json:"defId"`
	Name  string   `json:"name"`
	Type  CardType `json:"type"`
}

// DeckState partitions the player's cards.
type DeckState struct {
	Cards       []Card `json:"cards"`
	Hand        []Card `json:"hand"`
	DiscardPile []Card `json:"discardPile"`
}

// MaterialStack is a quantity of one material at one quality.
type MaterialStack struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
	Quality  int    `json:"quality"`
}

// Item is a crafted or purchased item instance.
type Item struct {
	ID      string `json:"id"`
	ItemID  string `json:"itemId"`
	Name    string `json:"name"`
	Quality int    `json:"quality"`
}

// InventoryState holds materials and items.
type InventoryState struct {
	Materials []MaterialStack `json:"materials"`
	Items     []Item          `json:"items"`
}

// RNGState is the persisted position of the deterministic RNG.
type RNGState struct {
	Seed     int64 `json:"seed"`
	Position int64 `json:"position"`
}

// Snapshot is the complete serializable game state.
type Snapshot struct {
	Game      GameState      `json:"game"`
	Player    PlayerState    `json:"player"`
	Quests    QuestState     `json:"quests"`
	Deck      DeckState      `json:"deck"`
	Inventory InventoryState `json:"inventory"`
	RNG       RNGState       `json:"rng"`
}

// GameDef holds game metadata and starting values from content.
type GameDef struct {
	Title         string
	Author        string
	Version       string
	Intro         string
	MaxDays       int
	StartingGold  int
	ActionPoints  int
	HandSize      int
	InitialQuests int
}

// RankDef is one row of the rank table. Reward fields are paid on
// promotion into this rank.
type RankDef struct {
	Rank        Rank
	GaugeMax    int
	Days        int
	RewardGold  int
	RewardCards int
}

// Ingredient is one line of a recipe.
type Ingredient struct {
	MaterialID string
	Quantity   int
}

// CardDef is the base definition of a card.
type CardDef struct {
	ID          string
	Name        string
	Type        CardType
	APCost      int          // gathering only
	Drops       []string     // gathering only: material IDs
	BaseQuality int          // gathering only
	Result      string       // recipe only: item ID
	Ingredients []Ingredient // recipe only
}

// MaterialDef is the base definition of a material.
type MaterialDef struct {
	ID      string
	Name    string
	Quality int
}

// ItemDef is the base definition of a craftable or purchasable item.
type ItemDef struct {
	ID      string
	Name    string
	Quality int
}

// QuestTemplate is used to generate quests for the board.
type QuestTemplate struct {
	ID          string
	Title       string
	Reward      Reward
	Requirement Requirement
	Deadline    int // 0 = none
	Weight      int
}

// ShopItem is one entry of the shop catalog.
type ShopItem struct {
	ID           string
	Name         string
	Category     ShopCategory
	Price        int
	RequiredRank Rank
	Ref          string // card, material or item definition ID
}
