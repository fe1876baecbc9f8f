package core

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"wromgpt/internal/llm"
	"wromgpt/internal/store"
)

// stubProvider echoes the prompt back followed by a canned reply, the way a
// raw completion model like gpt2 behaves.
type stubProvider struct {
	lastReq llm.GenerateRequest
	reply   string
	err     error
	pingErr error
}

func (s *stubProvider) Generate(_ context.Context, req llm.GenerateRequest) (string, error) {
	s.lastReq = req
	if s.err != nil {
		return "", s.err
	}
	return req.Prompt + " " + s.reply, nil
}

func (s *stubProvider) Ping(context.Context) error {
	return s.pingErr
}

func TestChatPromptIncludesSystemInstructions(t *testing.T) {
	stub := &stubProvider{reply: "General Kenobi."}
	svc := NewChatService(stub, NewInstructionStore(), nil, "gpt2")

	result := svc.Chat(context.Background(), ChatParams{
		Message:     "Hello!",
		MaxLength:   200,
		Temperature: 0.7,
	})

	require.False(t, result.Fallback)
	require.Equal(t, "General Kenobi.", result.Response)
	require.Equal(t, "gpt2", result.ModelUsed)

	require.True(t, strings.HasPrefix(stub.lastReq.Prompt, DefaultInstructions))
	require.Contains(t, stub.lastReq.Prompt, "\n\nUser: Hello!\n\nAssistant:")
}

func TestChatPromptUsesUpdatedInstructions(t *testing.T) {
	stub := &stubProvider{reply: "Aye."}
	svc := NewChatService(stub, NewInstructionStore(), nil, "gpt2")

	svc.UpdateInstructions("Talk like a pirate.")
	svc.Chat(context.Background(), ChatParams{Message: "Hello!"})

	require.True(t, strings.HasPrefix(stub.lastReq.Prompt, "Talk like a pirate."))
	require.NotContains(t, stub.lastReq.Prompt, "WromGPT")
}

func TestChatCustomInstructionsOverrideStore(t *testing.T) {
	stub := &stubProvider{reply: "Oui."}
	svc := NewChatService(stub, NewInstructionStore(), nil, "gpt2")

	svc.Chat(context.Background(), ChatParams{
		Message:            "Hello!",
		CustomInstructions: "Answer in French.",
	})

	require.True(t, strings.HasPrefix(stub.lastReq.Prompt, "Answer in French."))
	require.NotContains(t, stub.lastReq.Prompt, "WromGPT")

	// The store itself is untouched by per-request overrides.
	require.Equal(t, DefaultInstructions, svc.Instructions())
}

func TestChatPassesSamplingParams(t *testing.T) {
	stub := &stubProvider{reply: "ok"}
	svc := NewChatService(stub, NewInstructionStore(), nil, "gpt2")

	svc.Chat(context.Background(), ChatParams{
		Message:     "Hello!",
		MaxLength:   64,
		Temperature: 0.2,
	})

	require.Equal(t, "gpt2", stub.lastReq.Model)
	require.Equal(t, 64, stub.lastReq.MaxLength)
	require.InDelta(t, 0.2, stub.lastReq.Temperature, 1e-9)
}

func TestChatFallbackOnProviderError(t *testing.T) {
	stub := &stubProvider{err: errors.New("model not loaded")}
	svc := NewChatService(stub, NewInstructionStore(), nil, "gpt2")

	result := svc.Chat(context.Background(), ChatParams{Message: "Hello!"})

	require.True(t, result.Fallback)
	require.Equal(t, FallbackResponse, result.Response)
	require.Equal(t, "gpt2", result.ModelUsed)
}

func TestStripPromptEcho(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no marker", "just some text\n", "just some text"},
		{"single marker", "instructions\n\nUser: hi\n\nAssistant: hello there", "hello there"},
		{"marker in user text", "User: say Assistant: please\n\nAssistant: done", "done"},
		{"empty completion", "prompt\n\nAssistant:", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, StripPromptEcho(tc.in))
		})
	}
}

func TestWarmUpMarksModelLoaded(t *testing.T) {
	stub := &stubProvider{}
	svc := NewChatService(stub, NewInstructionStore(), nil, "gpt2")

	require.False(t, svc.ModelLoaded())
	svc.WarmUp(context.Background())
	require.True(t, svc.ModelLoaded())
}

func TestWarmUpStopsOnCancelledContext(t *testing.T) {
	stub := &stubProvider{pingErr: errors.New("connection refused")}
	svc := NewChatService(stub, NewInstructionStore(), nil, "gpt2")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.WarmUp(ctx)
	require.False(t, svc.ModelLoaded())
}

func TestChatAndUpdatesAreAudited(t *testing.T) {
	auditStore, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	defer auditStore.Close()

	stub := &stubProvider{reply: "logged reply"}
	svc := NewChatService(stub, NewInstructionStore(), auditStore, "gpt2")

	svc.UpdateInstructions("Be terse.")
	result := svc.Chat(context.Background(), ChatParams{Message: "Hello!"})
	require.False(t, result.Fallback)

	revisions, err := auditStore.ListInstructionRevisions(10)
	require.NoError(t, err)
	require.Len(t, revisions, 1)
	require.Equal(t, "Be terse.", revisions[0].Instructions)

	exchanges, err := auditStore.RecentExchanges(10)
	require.NoError(t, err)
	require.Len(t, exchanges, 1)
	require.Equal(t, "Hello!", exchanges[0].Message)
	require.Equal(t, "logged reply", exchanges[0].Response)
	require.False(t, exchanges[0].Fallback)
}
