package core

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInstructionStoreReadAfterWrite(t *testing.T) {
	s := NewInstructionStore()
	require.Equal(t, DefaultInstructions, s.Get())

	updated := s.Set("Answer only in haiku.")
	require.Equal(t, "Answer only in haiku.", updated)
	require.Equal(t, "Answer only in haiku.", s.Get())
}

func TestInstructionStoreConcurrentWrites(t *testing.T) {
	s := NewInstructionStore()

	const writers = 32
	values := make([]string, writers)
	for i := range values {
		values[i] = fmt.Sprintf("instructions variant %d", i)
	}

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Set(values[i])
		}(i)
	}
	wg.Wait()

	// The store must end up holding exactly one of the submitted values,
	// never an interleaving of several.
	require.Contains(t, values, s.Get())
}

func TestInstructionStoreConcurrentReadsDuringWrites(t *testing.T) {
	s := NewInstructionStore()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.Set(fmt.Sprintf("v%d", i))
		}(i)
		go func() {
			defer wg.Done()
			_ = s.Get()
		}()
	}
	wg.Wait()
}
