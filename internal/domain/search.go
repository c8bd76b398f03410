package domain

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	SearchDisabledText  = "Search is disabled (missing API key)."
	SearchNoResultsText = "No relevant results found."
	SearchFailedText    = "Search failed."

	summaryLimit = 300
	infoLimit    = 350
	snippetLimit = 250
)

var searchPattern = regexp.MustCompile(`(?i)\bsearch(?:\s+for)?\s+(.+?)(?:\s+on\s+the\s+internet)?\s*$`)

// SearchDigest is what a web search returned, before it is rendered for the
// model.
type SearchDigest struct {
	Summary    string
	Info       string
	InfoSource string
	Results    []SearchHit
}

type SearchHit struct {
	Title   string
	Snippet string
	Link    string
}

// ParseSearchQuery extracts the query of a "search [for] X [on the internet]"
// request anywhere in prompt.
func ParseSearchQuery(prompt string) (string, bool) {
	match := searchPattern.FindStringSubmatch(prompt)
	if match == nil {
		return "", false
	}
	query := strings.TrimSpace(match[1])
	return query, query != ""
}

// Text renders the digest: a summary or knowledge panel first, then up to
// three organic hits (two when a summary or panel is present).
func (d SearchDigest) Text() string {
	var parts []string

	summary := strings.TrimSpace(d.Summary)
	if summary != "" {
		parts = append(parts, "**Summary:** "+ellipsize(summary, summaryLimit))
	} else if d.Info != "" {
		parts = append(parts, "**Info:** "+ellipsize(d.Info, infoLimit))
		if d.InfoSource != "" {
			parts = append(parts, fmt.Sprintf("  Source: <%s>", d.InfoSource))
		}
	}

	maxHits := 3
	if len(parts) > 0 {
		maxHits = 2
	}
	for i, hit := range d.Results {
		if i >= maxHits {
			break
		}
		link := hit.Link
		if link == "" {
			link = "#"
		}
		snippet := ellipsize(strings.TrimSpace(strings.ReplaceAll(hit.Snippet, "\n", " ")), snippetLimit)
		parts = append(parts, fmt.Sprintf("**%s**: %s\n  Link: <%s>", hit.Title, snippet, link))
	}

	if len(parts) == 0 {
		return SearchNoResultsText
	}
	return strings.Join(parts, "\n\n")
}

// SearchNote is appended to the user prompt so the model answers from the
// search results instead of quoting them.
func SearchNote(personaName string, query string, results string) string {
	return fmt.Sprintf("\n\n[System Note: I just searched the internet for '%s'. Use the following results to answer the user's request naturally as %s. Do not just repeat the results verbatim.]\nSearch Results:\n%s",
		query, personaName, results)
}

func ellipsize(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
