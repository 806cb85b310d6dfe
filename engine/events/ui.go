package events

import "github.com/nathoo/atelier/types"

// UIEvent is a request raised by a front end. The set is closed.
type UIEvent interface {
	Event
	uiEvent()
}

const (
	NameQuestAcceptRequested     Name = "ui:quest:accept:requested"
	NameQuestDeliveryRequested   Name = "ui:quest:delivery:requested"
	NameGatheringExecuteRequest  Name = "ui:gathering:execute:requested"
	NameAlchemyCraftRequested    Name = "ui:alchemy:craft:requested"
	NameShopPurchaseRequested    Name = "ui:shop:purchase:requested"
	NamePhaseComplete            Name = "ui:phase:complete"
	NamePhaseSkipRequested       Name = "ui:phase:skip:requested"
	NameDayEndRequested          Name = "ui:day:end:requested"
	NameDayAdvanceRequested      Name = "ui:day:advance:requested"
	NameRankupChallengeRequested Name = "ui:rankup:challenge:requested"
	NameGameSaveRequested        Name = "ui:game:save:requested"
	NameGameLoadRequested        Name = "ui:game:load:requested"
	NameGameRestartRequested     Name = "ui:game:restart:requested"
)

type QuestAcceptRequested struct {
	QuestID string `json:"questId"`
}

type QuestDeliveryRequested struct {
	QuestID string   `json:"questId"`
	ItemIDs []string `json:"itemIds,omitempty"`
}

type GatheringExecuteRequested struct {
	CardID              string   `json:"cardId"`
	SelectedMaterialIDs []string `json:"selectedMaterialIds"`
}

type AlchemyCraftRequested struct {
	RecipeCardID string   `json:"recipeCardId"`
	MaterialIDs  []string `json:"materialIds"`
}

// ShopPurchaseRequested buys Quantity of ItemID. A zero Price means the
// catalog price.
type ShopPurchaseRequested struct {
	Category types.ShopCategory `json:"category"`
	ItemID   string             `json:"itemId"`
	Quantity int                `json:"quantity"`
	Price    int                `json:"price,omitempty"`
}

type PhaseCompleted struct {
	Phase types.Phase `json:"phase"`
}

type PhaseSkipRequested struct {
	Phase types.Phase `json:"phase"`
}

type DayEndRequested struct{}

type DayAdvanceRequested struct{}

type RankupChallengeRequested struct {
	TargetRank types.Rank `json:"targetRank"`
}

type GameSaveRequested struct {
	SlotID int `json:"slotId"`
}

type GameLoadRequested struct {
	SlotID int `json:"slotId"`
}

type GameRestartRequested struct{}

func (QuestAcceptRequested) Name() Name      { return NameQuestAcceptRequested }
func (QuestDeliveryRequested) Name() Name    { return NameQuestDeliveryRequested }
func (GatheringExecuteRequested) Name() Name { return NameGatheringExecuteRequest }
func (AlchemyCraftRequested) Name() Name     { return NameAlchemyCraftRequested }
func (ShopPurchaseRequested) Name() Name     { return NameShopPurchaseRequested }
func (PhaseCompleted) Name() Name            { return NamePhaseComplete }
func (PhaseSkipRequested) Name() Name        { return NamePhaseSkipRequested }
func (DayEndRequested) Name() Name           { return NameDayEndRequested }
func (DayAdvanceRequested) Name() Name       { return NameDayAdvanceRequested }
func (RankupChallengeRequested) Name() Name  { return NameRankupChallengeRequested }
func (GameSaveRequested) Name() Name         { return NameGameSaveRequested }
func (GameLoadRequested) Name() Name         { return NameGameLoadRequested }
func (GameRestartRequested) Name() Name      { return NameGameRestartRequested }

func (QuestAcceptRequested) uiEvent()      {}
func (QuestDeliveryRequested) uiEvent()    {}
func (GatheringExecuteRequested) uiEvent() {}
func (AlchemyCraftRequested) uiEvent()     {}
func (ShopPurchaseRequested) uiEvent()     {}
func (PhaseCompleted) uiEvent()            {}
func (PhaseSkipRequested) uiEvent()        {}
func (DayEndRequested) uiEvent()           {}
func (DayAdvanceRequested) uiEvent()       {}
func (RankupChallengeRequested) uiEvent()  {}
func (GameSaveRequested) uiEvent()         {}
func (GameLoadRequested) uiEvent()         {}
func (GameRestartRequested) uiEvent()      {}
