package profile

import (
	"fmt"
	"math"
	"strings"

	"github.com/bnema/neruai/internal/application"
	"github.com/bnema/neruai/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	// HistoryTurns caps how many trailing turns are shown; zero shows none.
	HistoryTurns int
	// TurnWidth truncates each shown turn to this many runes.
	TurnWidth int
}

func renderView(p application.Profile, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render(fmt.Sprintf("Profile for %s", p.UserID)),
		s.header.Render(fmt.Sprintf("facts: %d  history turns: %d", len(p.Facts), len(p.History))),
		s.section.Render("Model settings"),
	}
	lines = append(lines, configLines(p, s)...)

	lines = append(lines, s.section.Render("Remembered facts"))
	if len(p.Facts) == 0 {
		lines = append(lines, s.empty.Render("Nothing remembered yet."))
	}
	for _, fact := range p.Facts {
		lines = append(lines, s.bullet.Render("• ")+s.value.Render(fact))
	}

	if opts.HistoryTurns > 0 {
		lines = append(lines, s.section.Render("Recent history"))
		lines = append(lines, historyLines(p.History, opts, s)...)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func configLines(p application.Profile, s styles) []string {
	cfg, o := p.Config, p.Overrides

	return []string{
		settingLine("model", cfg.Model, o.Model != nil, s),
		gaugeLine("temperature", cfg.Temperature, 2, o.Temperature != nil, s),
		settingLine("max_tokens", fmt.Sprintf("%d", cfg.MaxTokens), o.MaxTokens != nil, s),
		gaugeLine("top_p", cfg.TopP, 1, o.TopP != nil, s),
		settingLine("frequency_penalty", formatFloat(cfg.FrequencyPenalty), o.FrequencyPenalty != nil, s),
		settingLine("presence_penalty", formatFloat(cfg.PresencePenalty), o.PresencePenalty != nil, s),
	}
}

func settingLine(name, value string, overridden bool, s styles) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, s.label.Render(name), s.value.Render(value), " ", sourceTag(overridden, s))
}

func gaugeLine(name string, value, scale float64, overridden bool, s styles) string {
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.label.Render(name),
		renderGauge(value/scale, 12, s),
		" ",
		s.value.Render(formatFloat(value)),
		" ",
		sourceTag(overridden, s),
	)
}

func sourceTag(overridden bool, s styles) string {
	if overridden {
		return s.override.Render("(override)")
	}
	return s.inherited.Render("(default)")
}

func historyLines(turns []domain.Turn, opts RenderOptions, s styles) []string {
	if len(turns) == 0 {
		return []string{s.empty.Render("No conversation yet.")}
	}

	start := max(len(turns)-opts.HistoryTurns, 0)
	lines := make([]string, 0, len(turns)-start)
	for _, turn := range turns[start:] {
		role := s.roleUser.Render("user ")
		if turn.Role == domain.RoleAssistant {
			role = s.roleBot.Render("bot  ")
		}
		lines = append(lines, role+s.value.Render(clip(turn.Text, opts.TurnWidth)))
	}
	return lines
}

func renderGauge(fraction float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	fraction = math.Max(0, math.Min(1, fraction))
	filled := int(math.Round(float64(width) * fraction))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func clip(text string, width int) string {
	text = strings.Join(strings.Fields(text), " ")
	if width <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	return string(runes[:max(width-1, 0)]) + "…"
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
