package discord

import (
	"regexp"
	"strings"
)

type triggerInput struct {
	Content       string
	BotID         string
	Mentioned     bool
	ActiveChannel bool
	Keyword       string
	PersonaName   string
	AuthorMention string
}

type trigger struct {
	Respond bool
	Prompt  string
	// Prefix is prepended to the reply, used to address the author when the
	// bot was only named rather than mentioned.
	Prefix string
}

// decideTrigger checks mention, then active channel, then keyword.
func decideTrigger(in triggerInput) trigger {
	mention := mentionPattern(in.BotID)
	if in.Mentioned || (mention != nil && mention.MatchString(in.Content)) {
		prompt := in.Content
		if mention != nil {
			prompt = mention.ReplaceAllString(prompt, "")
		}
		prompt = strings.TrimSpace(prompt)
		if prompt == "" {
			prompt = "Hey " + in.PersonaName + "!"
		}
		return trigger{Respond: true, Prompt: prompt}
	}

	prompt := strings.TrimSpace(in.Content)
	if prompt == "" {
		return trigger{}
	}
	if in.ActiveChannel {
		return trigger{Respond: true, Prompt: prompt}
	}
	if containsWord(prompt, in.Keyword) {
		prefix := ""
		if in.AuthorMention != "" {
			prefix = in.AuthorMention + " "
		}
		return trigger{Respond: true, Prompt: prompt, Prefix: prefix}
	}
	return trigger{}
}

func mentionPattern(botID string) *regexp.Regexp {
	if botID == "" {
		return nil
	}
	return regexp.MustCompile(`<@!?` + regexp.QuoteMeta(botID) + `>`)
}

func containsWord(text, word string) bool {
	word = strings.TrimSpace(word)
	if word == "" {
		return false
	}
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`).MatchString(text)
}
