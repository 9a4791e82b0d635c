package models

import "github.com/malexanderboyd/pwr9-cubeflow/internal/game"

type GameMessageType string

type Message struct {
	Type GameMessageType `json:"type"`
	Data string          `json:"data"`
}

type ChooseCardJson struct {
	PickedCardIndex int `json:"pickedCardIndex"`
}

// CardPack is the pack the human seat holds, sent as pack_content.
type CardPack struct {
	DraftID    string      `json:"draftId"`
	PackNumber int         `json:"packNumber"`
	PickNumber int         `json:"pickNumber"`
	Action     game.Action `json:"action"`
	Pack       []game.Card `json:"pack"`
	Timer      int         `json:"timer"`
}

// DraftPool is the human seat's picks so far, sent as pool_content.
type DraftPool struct {
	Picks   []game.Card `json:"picks"`
	Trashed []game.Card `json:"trashed"`
}
