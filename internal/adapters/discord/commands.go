package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/neruai/internal/application"
	"github.com/bnema/neruai/internal/domain"
	"github.com/bwmarrin/discordgo"
)

const (
	commandTalk        = "talk"
	commandContext     = "context"
	commandAddLearning = "addlearning"
	commandAIChannel   = "aichannel"
	commandAIConfig    = "aiconfig"
	commandForget      = "forget"

	notePreviewLength = 1000
)

func ptr[T any](v T) *T {
	return &v
}

func slashCommands() []*discordgo.ApplicationCommand {
	admin := ptr(int64(discordgo.PermissionAdministrator))

	return []*discordgo.ApplicationCommand{
		{
			Name:        commandTalk,
			Description: "Have a chat with the bot",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "prompt", Description: "What do you want to say?", Required: true},
			},
		},
		{
			Name:                     commandContext,
			Description:              "Add a piece of shared context for the AI (Admin Only)",
			DefaultMemberPermissions: admin,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "text", Description: "The context snippet to add", Required: true},
			},
		},
		{
			Name:                     commandAddLearning,
			Description:              "Add a learning example for the AI (Admin Only)",
			DefaultMemberPermissions: admin,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "text", Description: "The learning example to add", Required: true},
			},
		},
		{
			Name:                     commandAIChannel,
			Description:              "Toggle replying to every message in this channel (Admin Only)",
			DefaultMemberPermissions: admin,
		},
		{
			Name:                     commandAIConfig,
			Description:              "Configure your AI settings (Admin Only)",
			DefaultMemberPermissions: admin,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "model", Description: "Model identifier, e.g. 'google/gemini-2.0-flash-001'"},
				{Type: discordgo.ApplicationCommandOptionNumber, Name: "temperature", Description: "Creativity (0.0-2.0)", MinValue: ptr(0.0), MaxValue: 2},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "max_tokens", Description: "Max response length (1-16384)", MinValue: ptr(1.0), MaxValue: 16384},
				{Type: discordgo.ApplicationCommandOptionNumber, Name: "top_p", Description: "Nucleus sampling (0.0-1.0)", MinValue: ptr(0.0), MaxValue: 1},
				{Type: discordgo.ApplicationCommandOptionNumber, Name: "frequency_penalty", Description: "Penalty for repeated tokens (-2.0-2.0)", MinValue: ptr(-2.0), MaxValue: 2},
				{Type: discordgo.ApplicationCommandOptionNumber, Name: "presence_penalty", Description: "Penalty for repeated topics (-2.0-2.0)", MinValue: ptr(-2.0), MaxValue: 2},
			},
		},
		{
			Name:        commandForget,
			Description: "Make the bot forget something it remembered about you",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "fact", Description: "The fact to forget, as the bot stored it", Required: true},
			},
		},
	}
}

func (b *Bot) handleInteraction(s sender, i *discordgo.Interaction) {
	if i == nil || i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	options := optionMap(data.Options)
	user := interactionUser(i)
	logger := b.logger.With().Str("command", data.Name).Str("user_id", user.ID).Logger()

	ephemeral := data.Name != commandTalk && data.Name != commandAIChannel
	if err := b.deferResponse(s, i, ephemeral); err != nil {
		logger.Error().Err(err).Msg("defer interaction")
		return
	}

	var text string
	switch data.Name {
	case commandTalk:
		b.handleTalk(s, i, user, stringOption(options, "prompt"))
		return
	case commandContext:
		text = b.requireAdmin(i, func() string {
			return b.addNote(b.admin.AddSharedContext, "context", stringOption(options, "text"))
		})
	case commandAddLearning:
		text = b.requireAdmin(i, func() string {
			return b.addNote(b.admin.AddLearningExample, "learning example", stringOption(options, "text"))
		})
	case commandAIChannel:
		text = b.requireAdmin(i, func() string {
			return b.toggleChannel(i.ChannelID)
		})
	case commandAIConfig:
		text = b.requireAdmin(i, func() string {
			return b.setConfig(user, options)
		})
	case commandForget:
		text = b.forget(user, stringOption(options, "fact"))
	default:
		text = "I don't know that command."
	}

	b.followup(s, i, text, ephemeral)
	logger.Debug().Msg("slash command handled")
}

func (b *Bot) handleTalk(s sender, i *discordgo.Interaction, user *discordgo.User, prompt string) {
	if req, ok := parseTimeout(prompt); ok && i.GuildID != "" && i.Member != nil {
		inv := timeoutInvocation{GuildID: i.GuildID, ChannelID: i.ChannelID, InvokerID: user.ID, Permissions: &i.Member.Permissions}
		b.followup(s, i, b.moderate(s, b.selfID(), inv, req), false)
		return
	}

	ctx, cancel := b.exchangeContext()
	defer cancel()

	reply, err := b.responder.Respond(ctx, application.ExchangeRequest{
		UserID:      domain.UserID(user.ID),
		DisplayName: displayName(i.Member, user),
		Prompt:      prompt,
		ChannelID:   i.ChannelID,
		GuildID:     i.GuildID,
	})
	text := reply.Text
	if err != nil {
		b.logger.Warn().Err(err).Str("user_id", user.ID).Msg("exchange failed")
		text = b.responder.UserMessage(err)
	}

	for _, chunk := range domain.SplitReply(text, domain.MaxMessageLength) {
		if !b.followup(s, i, chunk, false) {
			return
		}
	}
}

func (b *Bot) addNote(add func(ctx context.Context, text string) (bool, error), kind string, text string) string {
	ctx, cancel := b.exchangeContext()
	defer cancel()

	added, err := add(ctx, text)
	switch {
	case errors.Is(err, application.ErrEmptyNote):
		return fmt.Sprintf("Hmm, that %s is empty.", kind)
	case err != nil:
		b.logger.Error().Err(err).Str("kind", kind).Msg("add note")
		return fmt.Sprintf("Hmm, I couldn't add that %s.", kind)
	case !added:
		return fmt.Sprintf("I already have that %s.", kind)
	default:
		return fmt.Sprintf("Okay~! Added the following %s:\n```\n%s\n```", kind, preview(text, notePreviewLength))
	}
}

func (b *Bot) toggleChannel(channelID string) string {
	if channelID == "" {
		return "Cannot use that here."
	}
	if b.channels.Toggle(channelID) {
		return fmt.Sprintf("Yay! I'll now respond to **all** messages in <#%s>!", channelID)
	}
	return fmt.Sprintf("Okay! I won't reply to *every* message in <#%s> anymore.", channelID)
}

func (b *Bot) setConfig(user *discordgo.User, options map[string]*discordgo.ApplicationCommandInteractionDataOption) string {
	patch, changes := configPatch(options)
	if len(changes) == 0 {
		return "No settings changed."
	}

	ctx, cancel := b.exchangeContext()
	defer cancel()

	resolved, err := b.admin.SetUserConfig(ctx, application.SetUserConfigCommand{UserID: domain.UserID(user.ID), Patch: patch})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidConfig) {
			return fmt.Sprintf("Invalid setting: %s", strings.TrimPrefix(err.Error(), domain.ErrInvalidConfig.Error()+": "))
		}
		b.logger.Error().Err(err).Str("user_id", user.ID).Msg("set user config")
		return "Hmm, I couldn't save those settings."
	}

	return fmt.Sprintf("Okay~! %s updated your AI config:\n%s\n\nChanges:\n- %s",
		user.Mention(), formatConfig(resolved), strings.Join(changes, "\n- "))
}

func (b *Bot) forget(user *discordgo.User, fact string) string {
	ctx, cancel := b.exchangeContext()
	defer cancel()

	removed, err := b.admin.ForgetFact(ctx, domain.UserID(user.ID), fact)
	switch {
	case err != nil:
		b.logger.Error().Err(err).Str("user_id", user.ID).Msg("forget fact")
		return "Hmm, I couldn't forget that right now."
	case !removed:
		return "I didn't remember that about you anyway."
	default:
		return fmt.Sprintf("Okay, I forgot: '%s'", fact)
	}
}

// requireAdmin runs fn only for guild members with the Administrator permission.
func (b *Bot) requireAdmin(i *discordgo.Interaction, fn func() string) string {
	if i.GuildID == "" || i.Member == nil {
		return "This command only works in a server."
	}
	if i.Member.Permissions&discordgo.PermissionAdministrator == 0 {
		return "Hehe, you need **Administrator** powers for this!"
	}
	return fn()
}

func (b *Bot) deferResponse(s sender, i *discordgo.Interaction, ephemeral bool) error {
	resp := &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredChannelMessageWithSource}
	if ephemeral {
		resp.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}
	return s.InteractionRespond(i, resp)
}

func (b *Bot) followup(s sender, i *discordgo.Interaction, text string, ephemeral bool) bool {
	flags := discordgo.MessageFlagsSuppressEmbeds
	if ephemeral {
		flags |= discordgo.MessageFlagsEphemeral
	}

	if _, err := s.FollowupMessageCreate(i, true, &discordgo.WebhookParams{Content: text, Flags: flags}); err != nil {
		b.logger.Error().Err(err).Msg("send interaction followup")
		return false
	}
	return true
}

func configPatch(options map[string]*discordgo.ApplicationCommandInteractionDataOption) (domain.ModelConfigOverride, []string) {
	var patch domain.ModelConfigOverride
	var changes []string

	if opt, ok := options["model"]; ok {
		patch.Model = ptr(strings.TrimSpace(opt.StringValue()))
		changes = append(changes, fmt.Sprintf("Model: `%s`", *patch.Model))
	}
	if opt, ok := options["temperature"]; ok {
		patch.Temperature = ptr(opt.FloatValue())
		changes = append(changes, fmt.Sprintf("Temperature: `%g`", *patch.Temperature))
	}
	if opt, ok := options["max_tokens"]; ok {
		patch.MaxTokens = ptr(int(opt.IntValue()))
		changes = append(changes, fmt.Sprintf("Max Tokens: `%d`", *patch.MaxTokens))
	}
	if opt, ok := options["top_p"]; ok {
		patch.TopP = ptr(opt.FloatValue())
		changes = append(changes, fmt.Sprintf("Top P: `%g`", *patch.TopP))
	}
	if opt, ok := options["frequency_penalty"]; ok {
		patch.FrequencyPenalty = ptr(opt.FloatValue())
		changes = append(changes, fmt.Sprintf("Frequency Penalty: `%g`", *patch.FrequencyPenalty))
	}
	if opt, ok := options["presence_penalty"]; ok {
		patch.PresencePenalty = ptr(opt.FloatValue())
		changes = append(changes, fmt.Sprintf("Presence Penalty: `%g`", *patch.PresencePenalty))
	}

	return patch, changes
}

func formatConfig(cfg domain.ModelConfig) string {
	return strings.Join([]string{
		fmt.Sprintf("- Model: `%s`", cfg.Model),
		fmt.Sprintf("- Temperature: `%g`", cfg.Temperature),
		fmt.Sprintf("- Max Tokens: `%d`", cfg.MaxTokens),
		fmt.Sprintf("- Top P: `%g`", cfg.TopP),
		fmt.Sprintf("- Frequency Penalty: `%g`", cfg.FrequencyPenalty),
		fmt.Sprintf("- Presence Penalty: `%g`", cfg.PresencePenalty),
	}, "\n")
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	out := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		out[opt.Name] = opt
	}
	return out
}

func stringOption(options map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt, ok := options[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func interactionUser(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	if i.User != nil {
		return i.User
	}
	return &discordgo.User{}
}

func preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
