package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCommand(t *testing.T) {
	tests := []struct {
		name    string
		command string
		safe    bool
	}{
		{name: "date", command: "date", safe: true},
		{name: "rm is denied", command: "rm -rf /", safe: false},
		{name: "ping with count", command: "ping -c 1 8.8.8.8", safe: true},
		{name: "ping with substitution", command: "ping $(whoami)", safe: false},
		{name: "chained commands", command: "ls; cat /etc/passwd", safe: false},
		{name: "empty", command: "   ", safe: false},
		{name: "listing with flags", command: "ls -la /tmp", safe: true},
		{name: "case insensitive name", command: "UPTIME", safe: true},
		{name: "cat is denied", command: "cat /etc/hostname", safe: false},
		{name: "not allowlisted", command: "python3 -c print", safe: false},
		{name: "redirection", command: "echo hi > out.txt", safe: false},
		{name: "pipe", command: "ps aux | grep x", safe: false},
		{name: "glob", command: "ls *.go", safe: false},
		{name: "quotes", command: "echo 'hi'", safe: false},
		{name: "ip addr inspection", command: "ip addr show", safe: true},
		{name: "ip route inspection", command: "ip route", safe: true},
		{name: "bare ip", command: "ip", safe: false},
		{name: "ip mutation", command: "ip neigh flush all", safe: false},
		{name: "ping hostname", command: "ping -c 3 example.com", safe: true},
		{name: "ping ipv6", command: "ping -c 2 ::1", safe: true},
		{name: "ping with slash argument", command: "ping -c 1 host/evil", safe: false},
		{name: "ping with equals option", command: "ping --count=1 example.com", safe: false},
		{name: "fork bomb", command: ":(){:|:&};:", safe: false},
		// Allowlisted names pass with any plain arguments. The check is
		// advisory; these are accepted today.
		{name: "find with delete action", command: "find / -delete", safe: true},
		{name: "head of a sensitive file", command: "head /etc/shadow", safe: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := CheckCommand(tt.command)
			assert.Equal(t, tt.safe, verdict.Safe, verdict.Reason)
			if !tt.safe {
				assert.NotEmpty(t, verdict.Reason)
			}
		})
	}
}

func TestTrimHistoryKeepsMostRecentInOrder(t *testing.T) {
	turns := make([]Turn, 0, 25)
	for i := 0; i < 25; i++ {
		turns = append(turns, Turn{Role: RoleUser, Text: string(rune('a' + i))})
	}

	trimmed := TrimHistory(turns, MaxHistoryTurns)
	require.Len(t, trimmed, MaxHistoryTurns)
	assert.Equal(t, "f", trimmed[0].Text)
	assert.Equal(t, "y", trimmed[len(trimmed)-1].Text)
	assert.Nil(t, TrimHistory(turns, 0))
}

func TestAppendUniqueIsCaseInsensitive(t *testing.T) {
	facts, added := AppendUnique(nil, "Likes Pizza")
	require.True(t, added)

	facts, added = AppendUnique(facts, "  likes pizza ")
	assert.False(t, added)
	facts, added = AppendUnique(facts, "")
	assert.False(t, added)
	assert.Equal(t, []string{"Likes Pizza"}, facts)

	facts, removed := RemoveEntry(facts, "LIKES PIZZA")
	assert.True(t, removed)
	assert.Empty(t, facts)
}

func TestParseToolCall(t *testing.T) {
	invocation, err := ParseToolCall(ToolCallRequest{Name: "run_safe_shell_command", Arguments: `{"command":" date "}`})
	require.NoError(t, err)
	assert.Equal(t, ShellCommand{Command: "date"}, invocation)

	invocation, err = ParseToolCall(ToolCallRequest{Name: "remember_fact_about_user", Arguments: `{"user_id":123456789012345678,"fact":"has a cat"}`})
	require.NoError(t, err)
	assert.Equal(t, RememberFact{UserID: "123456789012345678", Fact: "has a cat"}, invocation)

	_, err = ParseToolCall(ToolCallRequest{Name: "launch_rockets", Arguments: `{}`})
	assert.True(t, errors.Is(err, ErrUnknownTool))

	_, err = ParseToolCall(ToolCallRequest{Name: "run_safe_shell_command", Arguments: `{"command":`})
	assert.True(t, errors.Is(err, ErrInvalidToolArguments))
}

func TestToolDefinitionsAreFreshCopies(t *testing.T) {
	first := ToolDefinitions()
	first[0].Name = "mutated"

	second := ToolDefinitions()
	require.Len(t, second, 2)
	assert.Equal(t, ToolRunSafeShellCommand, second[0].Name)
	assert.Equal(t, ToolRememberFactAboutUser, second[1].Name)
}

func TestCommandResultSummary(t *testing.T) {
	tests := []struct {
		name   string
		result CommandResult
		want   string
	}{
		{name: "output", result: CommandResult{Stdout: "Mon Jan 1\n"}, want: "Mon Jan 1"},
		{name: "no output", result: CommandResult{}, want: "(Command executed successfully with no output)"},
		{name: "stderr on success", result: CommandResult{Stdout: "ok", Stderr: "warn"}, want: "ok\n[Stderr: warn]"},
		{name: "failure with stderr", result: CommandResult{ExitCode: 2, Stderr: "nope"}, want: "(Command failed with exit code 2)\nError Output:\nnope"},
		{name: "failure with stdout", result: CommandResult{ExitCode: 1, Stdout: "partial"}, want: "(Command failed with exit code 1)\nOutput (might contain error):\npartial"},
		{name: "timeout", result: CommandResult{TimedOut: true, Timeout: 10 * time.Second}, want: "Command timed out after 10s."},
		{name: "spawn failure", result: CommandResult{ExitCode: -1, Error: "executable not found"}, want: "Error executing command: executable not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.Summary())
		})
	}
}

func TestModelConfigOverrideResolveFallsBackToDefaults(t *testing.T) {
	model := "anthropic/claude-3.5-haiku"
	temperature := 0.2
	override := ModelConfigOverride{Model: &model, Temperature: &temperature}

	defaults := DefaultModelConfig()
	resolved := override.Resolve(defaults)
	assert.Equal(t, model, resolved.Model)
	assert.Equal(t, 0.2, resolved.Temperature)
	assert.Equal(t, defaults.MaxTokens, resolved.MaxTokens)

	defaults.MaxTokens = 800
	assert.Equal(t, 800, override.Resolve(defaults).MaxTokens)
}

func TestModelConfigOverrideMergeAndValidate(t *testing.T) {
	model := "openai/gpt-4o-mini"
	tokens := 500
	merged := ModelConfigOverride{Model: &model}.Merge(ModelConfigOverride{MaxTokens: &tokens})
	require.NotNil(t, merged.Model)
	require.NotNil(t, merged.MaxTokens)
	require.NoError(t, merged.Validate())

	bad := "gpt4"
	assert.ErrorIs(t, ModelConfigOverride{Model: &bad}.Validate(), ErrInvalidConfig)

	hot := 3.5
	assert.ErrorIs(t, ModelConfigOverride{Temperature: &hot}.Validate(), ErrInvalidConfig)

	assert.True(t, ModelConfigOverride{}.IsEmpty())
}

func TestSplitReplyPreservesOrderAndLimit(t *testing.T) {
	text := strings.Repeat("word ", 1000) + strings.Repeat("x", 2500)

	chunks := SplitReply(text, MaxMessageLength)
	require.Greater(t, len(chunks), 2)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), MaxMessageLength)
	}
	assert.Equal(t, text, strings.Join(chunks, ""))
	assert.Nil(t, SplitReply("", MaxMessageLength))
	assert.Equal(t, []string{"short"}, SplitReply("short", MaxMessageLength))
}

func TestTruncateAnswer(t *testing.T) {
	assert.Equal(t, "hello", TruncateAnswer("hello", 10))

	truncated := TruncateAnswer(strings.Repeat("é", 30), 10)
	assert.Equal(t, 10, len([]rune(truncated)))
	assert.True(t, strings.HasSuffix(truncated, "…"))
}

func TestPersonaWithDefaultsKeepsOverrides(t *testing.T) {
	persona := Persona{Name: "Teto", Messages: PersonaMessages{RateLimited: "slow down"}}.WithDefaults()

	assert.Equal(t, "Teto", persona.Name)
	assert.Equal(t, "slow down", persona.Messages.RateLimited)
	assert.Equal(t, DefaultPersona().Messages.Timeout, persona.Messages.Timeout)
	assert.Contains(t, persona.Template, PlaceholderUserMemory)
}

func TestParseSearchQuery(t *testing.T) {
	tests := []struct {
		prompt string
		query  string
		ok     bool
	}{
		{prompt: "search for cheap flights to Oslo", query: "cheap flights to Oslo", ok: true},
		{prompt: "Neru, search the latest go release on the internet", query: "the latest go release", ok: true},
		{prompt: "SEARCH weather in Paris", query: "weather in Paris", ok: true},
		{prompt: "my research for the thesis is done", ok: false},
		{prompt: "search", ok: false},
		{prompt: "what time is it", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			query, ok := ParseSearchQuery(tt.prompt)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.query, query)
		})
	}
}

func TestSearchDigestText(t *testing.T) {
	hits := []SearchHit{
		{Title: "One", Snippet: "first\nline", Link: "https://one.example"},
		{Title: "Two", Snippet: "second"},
		{Title: "Three", Snippet: "third", Link: "https://three.example"},
		{Title: "Four", Snippet: "fourth", Link: "https://four.example"},
	}

	t.Run("organic hits only", func(t *testing.T) {
		text := SearchDigest{Results: hits}.Text()
		assert.Equal(t, "**One**: first line\n  Link: <https://one.example>\n\n"+
			"**Two**: second\n  Link: <#>\n\n"+
			"**Three**: third\n  Link: <https://three.example>", text)
	})

	t.Run("summary limits hits to two", func(t *testing.T) {
		text := SearchDigest{Summary: "Short answer.", Info: "ignored", Results: hits}.Text()
		assert.True(t, strings.HasPrefix(text, "**Summary:** Short answer.\n\n**One**"))
		assert.NotContains(t, text, "ignored")
		assert.NotContains(t, text, "Three")
	})

	t.Run("knowledge panel with source", func(t *testing.T) {
		text := SearchDigest{Info: "Oslo: capital of Norway", InfoSource: "https://wiki.example"}.Text()
		assert.Equal(t, "**Info:** Oslo: capital of Norway\n\n  Source: <https://wiki.example>", text)
	})

	t.Run("long summary is shortened", func(t *testing.T) {
		text := SearchDigest{Summary: strings.Repeat("a", 400)}.Text()
		assert.Equal(t, "**Summary:** "+strings.Repeat("a", 300)+"...", text)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, SearchNoResultsText, SearchDigest{}.Text())
	})
}
