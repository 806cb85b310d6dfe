package events

import "github.com/nathoo/atelier/types"

// AppEvent reports a state change made by the application layer. The set
// is closed.
type AppEvent interface {
	Event
	appEvent()
}

const (
	NameQuestAccepted         Name = "app:quest:accepted"
	NameQuestsAcceptedUpdated Name = "app:quests:accepted:updated"
	NameQuestDelivered        Name = "app:quest:delivered"
	NameQuestFailed           Name = "app:quest:failed"
	NameGatheringComplete     Name = "app:gathering:complete"
	NameAlchemyCrafted        Name = "app:alchemy:crafted"
	NameShopPurchased         Name = "app:shop:purchased"
	NamePlayerDataUpdated     Name = "app:player:data:updated"
	NameInventoryUpdated      Name = "app:inventory:updated"
	NameHandUpdated           Name = "app:hand:updated"
	NameDeckUpdated           Name = "app:deck:updated"
	NamePhaseChanged          Name = "app:phase:changed"
	NameDayEnded              Name = "app:day:ended"
	NameDayWarning            Name = "app:day:warning"
	NameRankupSuccess         Name = "app:rankup:success"
	NameRankupFailed          Name = "app:rankup:failed"
	NameRankupAvailable       Name = "app:rankup:available"
	NameGameOver              Name = "app:game:over"
	NameGameClear             Name = "app:game:clear"
	NameGameRestarted         Name = "app:game:restarted"
	NameErrorOccurred         Name = "app:error:occurred"
)

// Error codes carried by ErrorOccurred.
const (
	CodeUnknownPhase      = "UNKNOWN_PHASE"
	CodeQuestLimit        = "QUEST_LIMIT"
	CodeRequirementsUnmet = "REQUIREMENTS_UNMET"
	CodeInvalidRankStep   = "INVALID_RANK_STEP"
	CodeUnknownRank       = "UNKNOWN_RANK"
	CodeUnknownItem       = "UNKNOWN_ITEM"
	CodeInsufficientGold  = "INSUFFICIENT_GOLD"
	CodeRankTooLow        = "RANK_TOO_LOW"
	CodeInvalidQuantity   = "INVALID_QUANTITY"
	CodeCardNotInHand     = "CARD_NOT_IN_HAND"
	CodeWrongCardType     = "WRONG_CARD_TYPE"
	CodeInsufficientAP    = "INSUFFICIENT_AP"
	CodeInvalidMaterial   = "INVALID_MATERIAL"
	CodeMissingMaterials  = "MISSING_MATERIALS"
	CodeSaveFailed        = "SAVE_FAILED"
	CodeLoadFailed        = "LOAD_FAILED"
)

// Stats summarizes a finished game.
type Stats struct {
	FinalRank       types.Rank `json:"finalRank"`
	Day             int        `json:"day"`
	Gold            int        `json:"gold"`
	CompletedQuests int        `json:"completedQuests"`
	DayBonus        int        `json:"dayBonus"`
	GoldBonus       int        `json:"goldBonus"`
	QuestBonus      int        `json:"questBonus"`
	TotalScore      int        `json:"totalScore"`
}

type QuestAccepted struct {
	Quest types.Quest `json:"quest"`
}

type QuestsAcceptedUpdated struct {
	ActiveQuests []types.Quest `json:"activeQuests"`
}

type QuestDelivered struct {
	Quest          types.Quest  `json:"quest"`
	Reward         types.Reward `json:"reward"`
	PromotionGauge int          `json:"promotionGauge"`
}

type QuestFailed struct {
	QuestID string `json:"questId"`
	Reason  string `json:"reason"`
}

type GatheringComplete struct {
	CardID    string                `json:"cardId"`
	Materials []types.MaterialStack `json:"materials"`
	APSpent   int                   `json:"apSpent"`
}

type AlchemyCrafted struct {
	Item     types.Item            `json:"item"`
	Consumed []types.MaterialStack `json:"consumed"`
}

type ShopPurchased struct {
	Category   types.ShopCategory `json:"category"`
	ItemID     string             `json:"itemId"`
	Quantity   int                `json:"quantity"`
	TotalPrice int                `json:"totalPrice"`
}

type PlayerDataUpdated struct {
	Player types.PlayerState `json:"player"`
}

type InventoryUpdated struct {
	Inventory types.InventoryState `json:"inventory"`
}

type HandUpdated struct {
	Hand []types.Card `json:"hand"`
}

type DeckUpdated struct {
	CardsRemaining int `json:"cardsRemaining"`
	DiscardCount   int `json:"discardCount"`
}

type PhaseChanged struct {
	Phase    types.Phase `json:"phase"`
	Previous types.Phase `json:"previous"`
	Day      int         `json:"day"`
}

type DayEnded struct {
	PreviousDay int `json:"previousDay"`
	Day         int `json:"day"`
}

type DayWarning struct {
	RemainingDays int `json:"remainingDays"`
}

type RankupSuccess struct {
	PreviousRank types.Rank `json:"previousRank"`
	NewRank      types.Rank `json:"newRank"`
	RewardGold   int        `json:"rewardGold"`
	RewardCards  int        `json:"rewardCards"`
}

type RankupFailed struct {
	TargetRank types.Rank `json:"targetRank"`
	Reason     string     `json:"reason"`
}

type RankupAvailable struct {
	CurrentRank types.Rank `json:"currentRank"`
	NextRank    types.Rank `json:"nextRank"`
}

type GameOver struct {
	Reason string `json:"reason"`
	Stats  Stats  `json:"stats"`
}

type GameClear struct {
	Stats Stats `json:"stats"`
}

type GameRestarted struct{}

// ErrorOccurred reports a rejected request. Message is meant for display.
type ErrorOccurred struct {
	Message     string `json:"message"`
	Code        string `json:"code,omitempty"`
	Recoverable bool   `json:"recoverable"`
}

func (QuestAccepted) Name() Name         { return NameQuestAccepted }
func (QuestsAcceptedUpdated) Name() Name { return NameQuestsAcceptedUpdated }
func (QuestDelivered) Name() Name        { return NameQuestDelivered }
func (QuestFailed) Name() Name           { return NameQuestFailed }
func (GatheringComplete) Name() Name     { return NameGatheringComplete }
func (AlchemyCrafted) Name() Name        { return NameAlchemyCrafted }
func (ShopPurchased) Name() Name         { return NameShopPurchased }
func (PlayerDataUpdated) Name() Name     { return NamePlayerDataUpdated }
func (InventoryUpdated) Name() Name      { return NameInventoryUpdated }
func (HandUpdated) Name() Name           { return NameHandUpdated }
func (DeckUpdated) Name() Name           { return NameDeckUpdated }
func (PhaseChanged) Name() Name          { return NamePhaseChanged }
func (DayEnded) Name() Name              { return NameDayEnded }
func (DayWarning) Name() Name            { return NameDayWarning }
func (RankupSuccess) Name() Name         { return NameRankupSuccess }
func (RankupFailed) Name() Name          { return NameRankupFailed }
func (RankupAvailable) Name() Name       { return NameRankupAvailable }
func (GameOver) Name() Name              { return NameGameOver }
func (GameClear) Name() Name             { return NameGameClear }
func (GameRestarted) Name() Name         { return NameGameRestarted }
func (ErrorOccurred) Name() Name         { return NameErrorOccurred }

func (QuestAccepted) appEvent()         {}
func (QuestsAcceptedUpdated) appEvent() {}
func (QuestDelivered) appEvent()        {}
func (QuestFailed) appEvent()           {}
func (GatheringComplete) appEvent()     {}
func (AlchemyCrafted) appEvent()        {}
func (ShopPurchased) appEvent()         {}
func (PlayerDataUpdated) appEvent()     {}
func (InventoryUpdated) appEvent()      {}
func (HandUpdated) appEvent()           {}
func (DeckUpdated) appEvent()           {}
func (PhaseChanged) appEvent()          {}
func (DayEnded) appEvent()              {}
func (DayWarning) appEvent()            {}
func (RankupSuccess) appEvent()         {}
func (RankupFailed) appEvent()          {}
func (RankupAvailable) appEvent()       {}
func (GameOver) appEvent()              {}
func (GameClear) appEvent()             {}
func (GameRestarted) appEvent()         {}
func (ErrorOccurred) appEvent()         {}
