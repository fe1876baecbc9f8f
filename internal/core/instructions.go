package core

import "sync"

// DefaultInstructions is the bootstrap phrase the store starts with on every
// process start.
const DefaultInstructions = `You are WromGPT, a helpful and knowledgeable AI assistant.
You provide accurate, concise, and helpful responses to user queries.
Always maintain a professional and friendly tone.`

// InstructionStore holds the system instructions that are prepended to every
// generation prompt. Safe for concurrent use; last write wins.
type InstructionStore struct {
	mu           sync.RWMutex
	instructions string
}

func NewInstructionStore() *InstructionStore {
	return &InstructionStore{instructions: DefaultInstructions}
}

func (s *InstructionStore) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.instructions
}

// Set replaces the instructions and returns the stored value. Rejecting empty
// input is the caller's responsibility.
func (s *InstructionStore) Set(instructions string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instructions = instructions
	return s.instructions
}
