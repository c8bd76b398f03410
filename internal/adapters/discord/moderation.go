package discord

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

const (
	defaultTimeoutMinutes = 5
	// MaxTimeoutMinutes is the longest timeout Discord accepts (28 days).
	MaxTimeoutMinutes = 40320
)

var timeoutPattern = regexp.MustCompile(`(?i)timeout\s+<@!?(\d+)>(?:\s+for\s+(\d+)\s*(minute|minutes|min|mins|hour|hours|day|days))?`)

type timeoutRequest struct {
	TargetID string
	Minutes  int
}

// parseTimeout finds a "timeout @user [for N minutes|hours|days]" request in
// prompt. Durations default to five minutes and are capped at
// MaxTimeoutMinutes.
func parseTimeout(prompt string) (timeoutRequest, bool) {
	match := timeoutPattern.FindStringSubmatch(prompt)
	if match == nil {
		return timeoutRequest{}, false
	}

	minutes := defaultTimeoutMinutes
	if match[2] != "" {
		n, err := strconv.Atoi(match[2])
		if err != nil || n > MaxTimeoutMinutes {
			n = MaxTimeoutMinutes
		}
		minutes = n
	}
	unit := strings.ToLower(match[3])
	switch {
	case strings.HasPrefix(unit, "hour"):
		minutes *= 60
	case strings.HasPrefix(unit, "day"):
		minutes *= 1440
	}
	minutes = min(minutes, MaxTimeoutMinutes)

	return timeoutRequest{TargetID: match[1], Minutes: minutes}, true
}

func formatTimeoutDuration(minutes int) string {
	switch {
	case minutes >= 1440:
		return fmt.Sprintf("%d day(s)", minutes/1440)
	case minutes >= 60:
		return fmt.Sprintf("%d hour(s)", minutes/60)
	default:
		return fmt.Sprintf("%d minute(s)", minutes)
	}
}

// timeoutInvocation carries who asked for a timeout and where.
type timeoutInvocation struct {
	GuildID   string
	ChannelID string
	InvokerID string
	// Permissions are the invoker's resolved channel permissions. Nil means
	// they have to be fetched.
	Permissions *int64
}

// moderate applies a timeout request. The invoker needs Timeout Members, and
// the bot needs it too along with a top role above the target's.
func (b *Bot) moderate(s sender, botID string, inv timeoutInvocation, req timeoutRequest) string {
	logger := b.logger.With().
		Str("guild_id", inv.GuildID).
		Str("user_id", inv.InvokerID).
		Str("target_id", req.TargetID).
		Logger()

	perms, err := b.invokerPermissions(s, inv)
	if err != nil {
		logger.Warn().Err(err).Msg("resolve invoker permissions")
		return "Hmm, I couldn't check your permissions for that."
	}
	if !canModerate(perms) {
		return "Hehe, you need **Timeout Members** powers for this!"
	}

	if err := b.checkBotOutranks(s, botID, inv, req.TargetID); err != nil {
		logger.Info().Err(err).Msg("timeout refused")
		return "Aww, I couldn't timeout that user... Maybe I don't have the 'Timeout Members' permission, or they have a higher role than me?"
	}

	until := b.now().Add(time.Duration(req.Minutes) * time.Minute)
	if err := s.GuildMemberTimeout(inv.GuildID, req.TargetID, &until); err != nil {
		logger.Warn().Err(err).Msg("timeout member")
		return "Aww, I couldn't timeout that user... Maybe I don't have the 'Timeout Members' permission, or they have a higher role than me?"
	}

	logger.Info().Int("minutes", req.Minutes).Msg("member timed out")
	return fmt.Sprintf("Okay~! I've timed out <@%s> for %s! Tee-hee!", req.TargetID, formatTimeoutDuration(req.Minutes))
}

func (b *Bot) invokerPermissions(s sender, inv timeoutInvocation) (int64, error) {
	if inv.Permissions != nil {
		return *inv.Permissions, nil
	}
	return s.UserChannelPermissions(inv.InvokerID, inv.ChannelID)
}

func (b *Bot) checkBotOutranks(s sender, botID string, inv timeoutInvocation, targetID string) error {
	if targetID == botID {
		return errors.New("target is the bot itself")
	}

	perms, err := s.UserChannelPermissions(botID, inv.ChannelID)
	if err != nil {
		return fmt.Errorf("bot permissions: %w", err)
	}
	if !canModerate(perms) {
		return errors.New("bot lacks moderate members")
	}

	roles, err := s.GuildRoles(inv.GuildID)
	if err != nil {
		return fmt.Errorf("guild roles: %w", err)
	}
	self, err := s.GuildMember(inv.GuildID, botID)
	if err != nil {
		return fmt.Errorf("bot member: %w", err)
	}
	target, err := s.GuildMember(inv.GuildID, targetID)
	if err != nil {
		return fmt.Errorf("target member: %w", err)
	}

	if topRolePosition(target, roles) >= topRolePosition(self, roles) {
		return errors.New("target role is not below the bot's")
	}
	return nil
}

func canModerate(perms int64) bool {
	return perms&(discordgo.PermissionModerateMembers|discordgo.PermissionAdministrator) != 0
}

func topRolePosition(member *discordgo.Member, roles []*discordgo.Role) int {
	positions := make(map[string]int, len(roles))
	for _, role := range roles {
		positions[role.ID] = role.Position
	}

	top := 0
	for _, id := range member.Roles {
		if pos, ok := positions[id]; ok && pos > top {
			top = pos
		}
	}
	return top
}

// DefaultReactions are the emoji used for passive reactions.
var DefaultReactions = []string{"🍞", "🥖", "✨", "🎤", "🎶", "🎉", "👍"}

// maybeReact occasionally adds an emoji reaction to a message the bot did
// not answer.
func (b *Bot) maybeReact(s sender, m *discordgo.Message, logger zerolog.Logger) {
	if b.opts.ReactionChance <= 0 || len(b.opts.Reactions) == 0 {
		return
	}
	if b.roll() >= b.opts.ReactionChance {
		return
	}

	emoji := b.opts.Reactions[b.pick(len(b.opts.Reactions))]
	if err := s.MessageReactionAdd(m.ChannelID, m.ID, emoji); err != nil {
		logger.Debug().Err(err).Str("emoji", emoji).Msg("add reaction")
	}
}
