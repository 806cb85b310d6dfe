package events

const (
	NameSaveComplete     Name = "save:complete"
	NameSaveFailed       Name = "save:failed"
	NameSaveDeleted      Name = "save:deleted"
	NameLoadComplete     Name = "load:complete"
	NameAutosaveComplete Name = "autosave:complete"
)

// AutoSlot is the SlotID reported for the reserved auto-save slot.
const AutoSlot = 0

type SaveComplete struct {
	SlotID int `json:"slotId"`
}

type SaveFailed struct {
	SlotID int    `json:"slotId"`
	Reason string `json:"reason"`
}

type SaveDeleted struct {
	SlotID int `json:"slotId"`
}

type LoadComplete struct {
	SlotID int `json:"slotId"`
}

type AutosaveComplete struct {
	SlotID int `json:"slotId"`
}

func (SaveComplete) Name() Name     { return NameSaveComplete }
func (SaveFailed) Name() Name       { return NameSaveFailed }
func (SaveDeleted) Name() Name      { return NameSaveDeleted }
func (LoadComplete) Name() Name     { return NameLoadComplete }
func (AutosaveComplete) Name() Name { return NameAutosaveComplete }
