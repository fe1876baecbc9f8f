package store

import "time"

type InstructionRevision struct {
	ID           string    `json:"id"` // UUID
	Instructions string    `json:"instructions"`
	CreatedAt    time.Time `json:"created_at"`
}

type ChatExchange struct {
	ID        string    `json:"id"` // UUID
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	Model     string    `json:"model"`
	Fallback  bool      `json:"fallback"`
	CreatedAt time.Time `json:"created_at"`
}
