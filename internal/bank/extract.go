package bank

import (
	"regexp"
	"strings"
)

// Record describes one bank referenced by a map script.
type Record struct {
	// Name is the literal bank name, which is also the bank file's base name.
	Name string `json:"name"`
	// Player is the raw player argument text, e.g. "1" or "lp_player".
	Player string `json:"player"`
	// Native is the galaxy function the bank was first seen in.
	Native string `json:"native"`
	// Line is the 1-based script line of the first reference.
	Line int `json:"line"`
}

// BankLoad("name", player) and BankExists("name", player) with a literal name.
var bankCallPattern = regexp.MustCompile(`\b(BankLoad|BankExists)\s*\(\s*"((?:[^"\\]|\\.)*)"\s*,\s*([^)]*?)\s*\)`)

// Extractor pulls bank records out of galaxy script text.
type Extractor struct{}

// NewExtractor returns a bank extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns one record per distinct bank name in order of first
// appearance. An empty slice is returned when no literal bank call exists.
func (e *Extractor) Extract(script string) []Record {
	records := make([]Record, 0)
	if strings.TrimSpace(script) == "" {
		return records
	}
	seen := make(map[string]struct{})
	for idx, line := range strings.Split(script, "\n") {
		if !strings.Contains(line, "Bank") {
			continue
		}
		code := stripLineComment(line)
		for _, match := range bankCallPattern.FindAllStringSubmatch(code, -1) {
			name := unescape(match[2])
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			records = append(records, Record{
				Name:   name,
				Player: strings.TrimSpace(match[3]),
				Native: match[1],
				Line:   idx + 1,
			})
		}
	}
	return records
}

// stripLineComment drops a trailing // comment that is not inside a string literal.
func stripLineComment(line string) string {
	inString := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			if inString {
				i++
			}
		case '"':
			inString = !inString
		case '/':
			if !inString && i+1 < len(line) && line[i+1] == '/' {
				return line[:i]
			}
		}
	}
	return line
}

func unescape(value string) string {
	if !strings.Contains(value, `\`) {
		return value
	}
	replacer := strings.NewReplacer(`\"`, `"`, `\\`, `\`)
	return replacer.Replace(value)
}
