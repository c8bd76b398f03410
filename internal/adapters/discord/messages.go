package discord

import (
	"github.com/bnema/neruai/internal/application"
	"github.com/bnema/neruai/internal/domain"
	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleMessage(s sender, botID string, m *discordgo.Message) {
	if m == nil || m.Author == nil || m.Author.Bot || m.Author.ID == botID {
		return
	}

	persona := b.responder.Persona()
	decision := decideTrigger(triggerInput{
		Content:       m.Content,
		BotID:         botID,
		Mentioned:     isMentioned(botID, m.Mentions),
		ActiveChannel: b.channels.Contains(m.ChannelID),
		Keyword:       persona.Keyword,
		PersonaName:   persona.Name,
		AuthorMention: m.Author.Mention(),
	})
	logger := b.logger.With().Str("channel_id", m.ChannelID).Str("user_id", m.Author.ID).Logger()
	if !decision.Respond {
		b.maybeReact(s, m, logger)
		return
	}

	if req, ok := parseTimeout(decision.Prompt); ok && m.GuildID != "" {
		text := b.moderate(s, botID, timeoutInvocation{GuildID: m.GuildID, ChannelID: m.ChannelID, InvokerID: m.Author.ID}, req)
		b.sendChunks(s, m, decision.Prefix+text)
		return
	}

	ctx, cancel := b.exchangeContext()
	defer cancel()

	stopTyping := keepTyping(s, m.ChannelID, logger)
	reply, err := b.responder.Respond(ctx, application.ExchangeRequest{
		UserID:      domain.UserID(m.Author.ID),
		DisplayName: displayName(m.Member, m.Author),
		Prompt:      decision.Prompt,
		ChannelID:   m.ChannelID,
		GuildID:     m.GuildID,
	})
	stopTyping()

	text := reply.Text
	if err != nil {
		logger.Warn().Err(err).Msg("exchange failed")
		text = b.responder.UserMessage(err)
	}

	b.sendChunks(s, m, decision.Prefix+text)
}

// sendChunks posts text in order; the first chunk replies to the source message.
func (b *Bot) sendChunks(s sender, source *discordgo.Message, text string) {
	for i, chunk := range domain.SplitReply(text, domain.MaxMessageLength) {
		msg := &discordgo.MessageSend{
			Content: chunk,
			Flags:   discordgo.MessageFlagsSuppressEmbeds,
		}
		if i == 0 {
			msg.Reference = source.Reference()
		}

		if _, err := s.ChannelMessageSendComplex(source.ChannelID, msg); err != nil {
			b.logger.Error().Err(err).Str("channel_id", source.ChannelID).Int("chunk", i).Msg("send reply chunk")
			return
		}
	}
}
