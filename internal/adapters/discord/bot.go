package discord

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/bnema/neruai/internal/application"
	"github.com/bnema/neruai/internal/domain"
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

const (
	DefaultExchangeTimeout = 2 * time.Minute
	typingInterval         = 8 * time.Second
)

var ErrMissingToken = errors.New("discord token is required")

// Responder runs one exchange; *application.Orchestrator satisfies it.
type Responder interface {
	Respond(ctx context.Context, req application.ExchangeRequest) (application.Reply, error)
	UserMessage(err error) string
	Persona() domain.Persona
}

// Admin holds the operator operations reachable from slash commands;
// *application.Service satisfies it.
type Admin interface {
	AddSharedContext(ctx context.Context, text string) (bool, error)
	AddLearningExample(ctx context.Context, text string) (bool, error)
	SetUserConfig(ctx context.Context, cmd application.SetUserConfigCommand) (domain.ModelConfig, error)
	ForgetFact(ctx context.Context, user domain.UserID, fact string) (bool, error)
}

// sender is the subset of *discordgo.Session the handlers talk to.
type sender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelTyping(channelID string, options ...discordgo.RequestOption) error
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	UserChannelPermissions(userID, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildMemberTimeout(guildID, userID string, until *time.Time, options ...discordgo.RequestOption) error
}

type Options struct {
	Token string
	// GuildID registers slash commands on one guild; empty registers them
	// globally.
	GuildID         string
	ExchangeTimeout time.Duration
	// ReactionChance is the probability of reacting to a message the bot
	// does not answer; zero disables reactions.
	ReactionChance float64
	Reactions      []string
}

type Bot struct {
	opts      Options
	responder Responder
	admin     Admin
	channels  *activeChannels
	logger    zerolog.Logger

	roll func() float64
	pick func(n int) int
	now  func() time.Time

	mu       sync.Mutex
	ctx      context.Context
	botID    string
	draining bool
	wg       sync.WaitGroup
}

func New(opts Options, responder Responder, admin Admin, logger zerolog.Logger) (*Bot, error) {
	if opts.Token == "" {
		return nil, ErrMissingToken
	}
	if opts.ExchangeTimeout <= 0 {
		opts.ExchangeTimeout = DefaultExchangeTimeout
	}
	if opts.Reactions == nil {
		opts.Reactions = DefaultReactions
	}

	return &Bot{
		opts:      opts,
		responder: responder,
		admin:     admin,
		channels:  newActiveChannels(),
		logger:    logger.With().Str("component", "discord").Logger(),
		roll:      rand.Float64,
		pick:      rand.Intn,
		now:       time.Now,
		ctx:       context.Background(),
	}, nil
}

// Run connects, registers slash commands and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	session, err := discordgo.New("Bot " + b.opts.Token)
	if err != nil {
		return fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()

	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.mu.Lock()
		b.botID = r.User.ID
		b.mu.Unlock()
		b.logger.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("connected to discord")
	})
	session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		b.track(func() { b.handleMessage(s, s.State.User.ID, m.Message) })
	})
	session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		b.track(func() { b.handleInteraction(s, i.Interaction) })
	})

	if err := session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			b.logger.Warn().Err(err).Msg("close discord session")
		}
		b.drain()
	}()

	registered, err := session.ApplicationCommandBulkOverwrite(session.State.User.ID, b.opts.GuildID, slashCommands())
	if err != nil {
		return fmt.Errorf("register slash commands: %w", err)
	}
	b.logger.Info().Int("commands", len(registered)).Str("guild_id", b.opts.GuildID).Msg("slash commands registered")

	<-ctx.Done()
	b.logger.Info().Msg("discord shutting down")
	return nil
}

// track runs fn as one in-flight handler. Events arriving once the bot is
// draining or its context is done are dropped.
func (b *Bot) track(fn func()) {
	b.mu.Lock()
	if b.draining || b.ctx.Err() != nil {
		b.mu.Unlock()
		return
	}
	b.wg.Add(1)
	b.mu.Unlock()

	defer b.wg.Done()
	fn()
}

// drain stops admitting handlers and waits for the in-flight ones.
func (b *Bot) drain() {
	b.mu.Lock()
	b.draining = true
	b.mu.Unlock()

	b.wg.Wait()
}

func (b *Bot) selfID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.botID
}

func (b *Bot) exchangeContext() (context.Context, context.CancelFunc) {
	b.mu.Lock()
	parent := b.ctx
	b.mu.Unlock()

	return context.WithTimeout(parent, b.opts.ExchangeTimeout)
}

// keepTyping refreshes the typing indicator until the returned stop is called.
func keepTyping(s sender, channelID string, logger zerolog.Logger) (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})
	var once sync.Once

	go func() {
		defer close(finished)
		ticker := time.NewTicker(typingInterval)
		defer ticker.Stop()
		for {
			if err := s.ChannelTyping(channelID); err != nil {
				logger.Debug().Err(err).Msg("typing indicator")
			}
			select {
			case <-done:
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		once.Do(func() { close(done) })
		<-finished
	}
}

func displayName(member *discordgo.Member, user *discordgo.User) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}
	if user == nil {
		return "someone"
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}

func isMentioned(botID string, mentions []*discordgo.User) bool {
	for _, user := range mentions {
		if user != nil && user.ID == botID {
			return true
		}
	}
	return false
}
