package textutil

import (
	"strings"
	"unicode"
)

// fileNameReplacer maps characters Windows and Unix refuse in file names.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName makes name safe to use as a single path segment. Unsafe
// characters become dashes or are removed, control characters are dropped,
// whitespace runs collapse to one space, and trailing dots are trimmed.
// Returns "unnamed" when nothing usable remains.
func SanitizeFileName(name string) string {
	name = fileNameReplacer.Replace(strings.TrimSpace(name))
	var b strings.Builder
	lastSpace := false
	for _, r := range name {
		switch {
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
			}
			lastSpace = true
			continue
		case unicode.IsControl(r):
			continue
		}
		lastSpace = false
		b.WriteRune(r)
	}
	out := strings.TrimRight(strings.TrimSpace(b.String()), ". ")
	if out == "" || out == "-" {
		return "unnamed"
	}
	return out
}

// ScriptFileName builds the default file name for an extracted map script.
func ScriptFileName(mapName, author string) string {
	base := SanitizeFileName(mapName)
	if author = strings.TrimSpace(author); author != "" && !strings.HasPrefix(author, "(") {
		base += " by " + SanitizeFileName(author)
	}
	return base + ".galaxy"
}
