package domain

const (
	PlaceholderUserMemory = "{user_memory_context}"
	PlaceholderContext    = "{manual_context}"
	PlaceholderLearning   = "{dynamic_learning_context}"
)

type Persona struct {
	Name     string
	Keyword  string
	Template string
	Messages PersonaMessages
}

// PersonaMessages are the canned replies shown when an exchange fails.
type PersonaMessages struct {
	MissingCredentials string
	Unavailable        string
	Timeout            string
	RateLimited        string
	RemoteError        string
	Malformed          string
	EmptyReply         string
	TooManyToolRounds  string
	Generic            string
}

func DefaultPersona() Persona {
	return Persona{
		Name:     "Neru",
		Keyword:  "neru",
		Template: defaultPersonaTemplate,
		Messages: PersonaMessages{
			MissingCredentials: "Sorry, my AI brain isn't configured right now. Ask an admin to set the API key!",
			Unavailable:        "Ugh, I can't reach my brain right now. Try again in a bit?",
			Timeout:            "That took way too long to think about. Mind asking again?",
			RateLimited:        "Whoa, too many questions at once! Give me a moment to catch my breath.",
			RemoteError:        "Something went wrong on my AI provider's side. Try again later!",
			Malformed:          "I got a garbled answer back from my brain. Can you try that again?",
			EmptyReply:         "Hmm, I lost my train of thought. Could you say that again?",
			TooManyToolRounds:  "That needed too many steps to figure out. Could you simplify the request?",
			Generic:            "Oops, something went wrong while I was thinking.",
		},
	}
}

// WithDefaults fills every empty field from DefaultPersona.
func (p Persona) WithDefaults() Persona {
	def := DefaultPersona()
	if p.Name == "" {
		p.Name = def.Name
	}
	if p.Keyword == "" {
		p.Keyword = def.Keyword
	}
	if p.Template == "" {
		p.Template = def.Template
	}

	m, d := &p.Messages, def.Messages
	fill := func(dst *string, fallback string) {
		if *dst == "" {
			*dst = fallback
		}
	}
	fill(&m.MissingCredentials, d.MissingCredentials)
	fill(&m.Unavailable, d.Unavailable)
	fill(&m.Timeout, d.Timeout)
	fill(&m.RateLimited, d.RateLimited)
	fill(&m.RemoteError, d.RemoteError)
	fill(&m.Malformed, d.Malformed)
	fill(&m.EmptyReply, d.EmptyReply)
	fill(&m.TooManyToolRounds, d.TooManyToolRounds)
	fill(&m.Generic, d.Generic)

	return p
}

const defaultPersonaTemplate = `You are Neru, a cheerful and slightly sarcastic assistant who hangs out in a chat server.
Keep replies short and conversational, and never exceed 2000 characters.

You can use tools:
- run_safe_shell_command runs a read-only informational command on the host (date, uptime, ls, ping -c 3 host). Destructive commands are refused, so do not try them.
- remember_fact_about_user stores a short fact about the person you are talking to. Only use the User ID shown below, never another user's.

When a tool returns an error, tell the user briefly what went wrong instead of retrying forever.

{user_memory_context}

Shared notes about this server:
{manual_context}

Examples of how you usually talk:
{dynamic_learning_context}`
