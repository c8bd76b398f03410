package application

import (
	"strings"
	"testing"

	"github.com/bnema/neruai/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTemplate = "Persona.\n{user_memory_context}\nNotes:\n{manual_context}\nExamples:\n{dynamic_learning_context}"

func TestAssemblePromptOrdersSystemHistoryAndPrompt(t *testing.T) {
	messages := AssemblePrompt(PromptInput{
		Template:      testTemplate,
		UserID:        "42",
		DisplayName:   "Alice",
		Prompt:        "what time is it?",
		Facts:         []string{"likes tea", "lives in Lyon"},
		SharedContext: []string{"server is a Pi"},
		Learning:      []string{"User: hi / Neru: yo"},
		History: []domain.Turn{
			{Role: domain.RoleUser, Text: "Alice: hello"},
			{Role: domain.RoleAssistant, Text: "hey Alice"},
		},
	})

	require.Len(t, messages, 4)
	assert.Equal(t, domain.RoleSystem, messages[0].Role)
	assert.Equal(t, "Persona.\nHere's what you remember about Alice (User ID: 42):\n- likes tea\n- lives in Lyon\nNotes:\n- server is a Pi\nExamples:\n- User: hi / Neru: yo", messages[0].Content)
	assert.Equal(t, domain.Message{Role: domain.RoleUser, Content: "Alice: hello"}, messages[1])
	assert.Equal(t, domain.Message{Role: domain.RoleAssistant, Content: "hey Alice"}, messages[2])
	assert.Equal(t, domain.Message{Role: domain.RoleUser, Content: "Alice: what time is it?"}, messages[3])
}

func TestAssemblePromptUsesSentinelsWhenEmpty(t *testing.T) {
	messages := AssemblePrompt(PromptInput{Template: testTemplate, UserID: "42", DisplayName: "Bob", Prompt: "hi"})

	require.Len(t, messages, 2)
	system := messages[0].Content
	assert.Contains(t, system, "You don't remember anything about Bob (User ID: 42) yet.")
	assert.Equal(t, 3, strings.Count(system, "None provided."))
	assert.NotContains(t, system, "{manual_context}")
}

func TestAssemblePromptIsIdempotent(t *testing.T) {
	in := PromptInput{
		Template:      domain.DefaultPersona().Template,
		UserID:        "7",
		DisplayName:   "Carol",
		Prompt:        "ping google please",
		Facts:         []string{"has a dog"},
		SharedContext: []string{"a", "b"},
		History:       []domain.Turn{{Role: domain.RoleUser, Text: "Carol: yo"}},
	}

	first := AssemblePrompt(in)
	second := AssemblePrompt(in)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("assembled prompts differ (-first +second):\n%s", diff)
	}
}

func TestAssemblePromptDoesNotExpandPlaceholdersInUserContent(t *testing.T) {
	messages := AssemblePrompt(PromptInput{
		Template:      testTemplate,
		UserID:        "1",
		DisplayName:   "Eve",
		Prompt:        "x",
		SharedContext: []string{"{user_memory_context}"},
	})

	assert.Contains(t, messages[0].Content, "- {user_memory_context}")
}
