package domain

import "strings"

// AppendUnique appends entry unless an equal entry, compared trimmed and
// case-insensitively, is already present.
func AppendUnique(entries []string, entry string) ([]string, bool) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return entries, false
	}
	if IndexOfEntry(entries, entry) >= 0 {
		return entries, false
	}

	return append(entries, entry), true
}

func IndexOfEntry(entries []string, entry string) int {
	needle := normalizeEntry(entry)
	for i, existing := range entries {
		if normalizeEntry(existing) == needle {
			return i
		}
	}
	return -1
}

func RemoveEntry(entries []string, entry string) ([]string, bool) {
	i := IndexOfEntry(entries, entry)
	if i < 0 {
		return entries, false
	}

	out := make([]string, 0, len(entries)-1)
	out = append(out, entries[:i]...)
	out = append(out, entries[i+1:]...)
	return out, true
}

func normalizeEntry(entry string) string {
	return strings.ToLower(strings.TrimSpace(entry))
}
