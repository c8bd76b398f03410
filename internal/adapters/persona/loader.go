package persona

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bnema/neruai/internal/domain"
	"gopkg.in/yaml.v3"
)

type file struct {
	Name     string       `yaml:"name"`
	Keyword  string       `yaml:"keyword"`
	Template string       `yaml:"template"`
	Messages messagesFile `yaml:"messages"`
}

type messagesFile struct {
	MissingCredentials string `yaml:"missing_credentials"`
	Unavailable        string `yaml:"unavailable"`
	Timeout            string `yaml:"timeout"`
	RateLimited        string `yaml:"rate_limited"`
	RemoteError        string `yaml:"remote_error"`
	Malformed          string `yaml:"malformed"`
	EmptyReply         string `yaml:"empty_reply"`
	TooManyToolRounds  string `yaml:"too_many_tool_rounds"`
	Generic            string `yaml:"generic"`
}

// Load reads a persona YAML file. An empty path yields the built-in persona;
// any field left out of the file keeps its built-in value.
func Load(path string) (domain.Persona, error) {
	if strings.TrimSpace(path) == "" {
		return domain.DefaultPersona(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Persona{}, fmt.Errorf("read persona %s: %w", path, err)
	}

	return Parse(data)
}

func Parse(data []byte) (domain.Persona, error) {
	var f file
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.DefaultPersona(), nil
		}
		return domain.Persona{}, fmt.Errorf("%w: persona: %v", domain.ErrInvalidConfig, err)
	}

	p := domain.Persona{
		Name:     strings.TrimSpace(f.Name),
		Keyword:  strings.ToLower(strings.TrimSpace(f.Keyword)),
		Template: f.Template,
		Messages: domain.PersonaMessages{
			MissingCredentials: f.Messages.MissingCredentials,
			Unavailable:        f.Messages.Unavailable,
			Timeout:            f.Messages.Timeout,
			RateLimited:        f.Messages.RateLimited,
			RemoteError:        f.Messages.RemoteError,
			Malformed:          f.Messages.Malformed,
			EmptyReply:         f.Messages.EmptyReply,
			TooManyToolRounds:  f.Messages.TooManyToolRounds,
			Generic:            f.Messages.Generic,
		},
	}
	return p.WithDefaults(), nil
}

// MissingPlaceholders lists the context placeholders a template never uses.
func MissingPlaceholders(template string) []string {
	var missing []string
	for _, placeholder := range []string{domain.PlaceholderUserMemory, domain.PlaceholderContext, domain.PlaceholderLearning} {
		if !strings.Contains(template, placeholder) {
			missing = append(missing, placeholder)
		}
	}
	return missing
}
