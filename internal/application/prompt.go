package application

import (
	"fmt"
	"strings"

	"github.com/bnema/neruai/internal/domain"
)

const noneProvided = "None provided."

type PromptInput struct {
	Template      string
	UserID        domain.UserID
	DisplayName   string
	Prompt        string
	Facts         []string
	SharedContext []string
	Learning      []string
	History       []domain.Turn
}

// AssemblePrompt builds the message list for one remote call. It has no side
// effects; identical input yields identical output.
func AssemblePrompt(in PromptInput) []domain.Message {
	system := strings.NewReplacer(
		domain.PlaceholderUserMemory, userMemoryBlock(in.UserID, in.DisplayName, in.Facts),
		domain.PlaceholderContext, bulletList(in.SharedContext),
		domain.PlaceholderLearning, bulletList(in.Learning),
	).Replace(in.Template)

	messages := make([]domain.Message, 0, len(in.History)+2)
	messages = append(messages, domain.Message{Role: domain.RoleSystem, Content: system})
	for _, turn := range in.History {
		messages = append(messages, turn.Message())
	}
	messages = append(messages, domain.Message{
		Role:    domain.RoleUser,
		Content: domain.FormatUserPrompt(in.DisplayName, in.Prompt),
	})

	return messages
}

func userMemoryBlock(user domain.UserID, name string, facts []string) string {
	if len(facts) == 0 {
		return fmt.Sprintf("You don't remember anything about %s (User ID: %s) yet. %s", name, user, noneProvided)
	}

	return fmt.Sprintf("Here's what you remember about %s (User ID: %s):\n%s", name, user, bulletList(facts))
}

func bulletList(entries []string) string {
	if len(entries) == 0 {
		return noneProvided
	}

	var b strings.Builder
	for i, entry := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(entry)
	}
	return b.String()
}
